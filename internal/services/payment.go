package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
)

// ErrDeclined signale un refus explicite du prestataire de paiement.
var ErrDeclined = errors.New("paiement refusé")

type ChargeRequest struct {
	Email  string
	Amount float64
}

type ChargeResult struct {
	ID     string
	Status string
}

// PaymentGateway débite le client pour le montant du panier.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// StripeGateway crée et confirme un PaymentIntent en une seule requête.
type StripeGateway struct {
	client        *paymentintent.Client
	currency      string
	paymentMethod string
}

func NewStripeGateway(key, currency, paymentMethod string) *StripeGateway {
	return NewStripeGatewayWithBackend(stripe.GetBackend(stripe.APIBackend), key, currency, paymentMethod)
}

// NewStripeGatewayWithBackend permet de pointer vers un autre backend (tests).
func NewStripeGatewayWithBackend(b stripe.Backend, key, currency, paymentMethod string) *StripeGateway {
	return &StripeGateway{
		client:        &paymentintent.Client{B: b, Key: key},
		currency:      currency,
		paymentMethod: paymentMethod,
	}
}

// ToMinorUnits convertit un montant en centimes.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	amount := ToMinorUnits(req.Amount)
	if amount <= 0 {
		return nil, fmt.Errorf("%w: montant invalide %.2f", ErrDeclined, req.Amount)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(g.currency),
		PaymentMethod: stripe.String(g.paymentMethod),
		Confirm:       stripe.Bool(true),
		ReceiptEmail:  stripe.String(req.Email),
		Description:   stripe.String("Pizza Delivery order"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())
	params.AddMetadata("email", req.Email)

	intent, err := g.client.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return nil, fmt.Errorf("%w: %s", ErrDeclined, stripeErr.Msg)
		}
		return nil, fmt.Errorf("stripe: %w", err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: statut %s", ErrDeclined, intent.Status)
	}
	return &ChargeResult{ID: intent.ID, Status: string(intent.Status)}, nil
}
