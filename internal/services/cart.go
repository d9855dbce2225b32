package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"pizza_back_end/internal/apperr"
	"pizza_back_end/internal/database"
	"pizza_back_end/internal/logger"
	"pizza_back_end/internal/models"
)

// CartService gère le panier de chaque identité (namespace "orders").
// La session est vérifiée par l'appelant.
type CartService struct {
	store    database.Store
	locks    *database.KeyLock
	menu     *models.Menu
	payments PaymentGateway
	notifier Notifier
	currency string
	log      *logger.Logger
	now      func() time.Time
}

func NewCartService(store database.Store, locks *database.KeyLock, menu *models.Menu, payments PaymentGateway, notifier Notifier, currency string, log *logger.Logger) *CartService {
	return &CartService{
		store:    store,
		locks:    locks,
		menu:     menu,
		payments: payments,
		notifier: notifier,
		currency: currency,
		log:      log,
		now:      time.Now,
	}
}

func (s *CartService) Menu() *models.Menu { return s.menu }

// requireAccount s'appelle sous le verrou "orders", que Delete garde jusqu'à
// la suppression du compte.
func (s *CartService) requireAccount(ctx context.Context, id string) error {
	var user models.User
	err := s.store.Read(ctx, database.Users, id, &user)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return apperr.ErrUnauthenticated
	case err != nil:
		return fmt.Errorf("add item: %w", err)
	}
	return nil
}

// AddItem ajoute une unité de l'article, en créant le panier au besoin.
func (s *CartService) AddItem(ctx context.Context, email, itemName string) (*models.Cart, error) {
	id, err := identity(email)
	if err != nil {
		return nil, err
	}
	item, ok := s.menu.Lookup(itemName)
	if !ok {
		return nil, apperr.ErrUnknownItem
	}

	unlock := s.locks.Lock(database.Orders, id)
	defer unlock()

	cart := models.NewCart()
	err = s.store.Read(ctx, database.Orders, id, cart)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		if err := s.requireAccount(ctx, id); err != nil {
			return nil, err
		}
		cart = models.NewCart()
		cart.Items[item.Name] = 1
		cart.Recalculate(s.menu)
		if err := s.store.Create(ctx, database.Orders, id, cart); err != nil {
			return nil, fmt.Errorf("add item: %w", err)
		}
		return cart, nil
	case err != nil:
		return nil, fmt.Errorf("add item: %w", err)
	}

	if cart.Items == nil {
		cart.Items = map[string]int{}
	}
	cart.Items[item.Name]++
	cart.Recalculate(s.menu)
	if err := s.store.Update(ctx, database.Orders, id, cart); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	return cart, nil
}

// RemoveItem retire une unité; la ligne disparaît quand la quantité tombe à 0.
func (s *CartService) RemoveItem(ctx context.Context, email, itemName string) (*models.Cart, error) {
	id, err := identity(email)
	if err != nil {
		return nil, err
	}
	item, ok := s.menu.Lookup(itemName)
	if !ok {
		return nil, apperr.ErrUnknownItem
	}

	unlock := s.locks.Lock(database.Orders, id)
	defer unlock()

	cart, err := s.read(ctx, id)
	if err != nil {
		return nil, err
	}
	qty := cart.Items[item.Name]
	if qty <= 0 {
		return nil, apperr.ErrItemNotInCart
	}
	if qty > 1 {
		cart.Items[item.Name] = qty - 1
	} else {
		delete(cart.Items, item.Name)
	}
	cart.Recalculate(s.menu)
	if err := s.store.Update(ctx, database.Orders, id, cart); err != nil {
		return nil, fmt.Errorf("remove item: %w", err)
	}
	return cart, nil
}

func (s *CartService) GetCart(ctx context.Context, email string) (*models.Cart, error) {
	id, err := identity(email)
	if err != nil {
		return nil, err
	}
	return s.read(ctx, id)
}

// ClearCart supprime le panier.
func (s *CartService) ClearCart(ctx context.Context, email string) error {
	id, err := identity(email)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(database.Orders, id)
	defer unlock()
	if err := s.store.Delete(ctx, database.Orders, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrCartNotFound
		}
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Checkout débite le total du panier et déclenche l'envoi du reçu.
// Le panier n'est modifié ni en cas de refus ni après un paiement accepté.
func (s *CartService) Checkout(ctx context.Context, email string) (*models.Receipt, error) {
	id, err := identity(email)
	if err != nil {
		return nil, err
	}
	cart, err := s.read(ctx, id)
	if err != nil {
		return nil, err
	}
	if cart.Empty() {
		return nil, apperr.ErrEmptyCart
	}

	res, err := s.payments.Charge(ctx, ChargeRequest{Email: id, Amount: cart.TotalPrice})
	if err != nil {
		s.log.Warn("💳 Paiement refusé", "email", id, "amount", cart.TotalPrice, "error", err)
		return nil, fmt.Errorf("%w: %v", apperr.ErrPaymentDeclined, err)
	}
	s.log.Info("💳 Paiement accepté", "email", id, "amount", cart.TotalPrice, "payment_id", res.ID)

	receipt := s.buildReceipt(id, cart, res.ID)
	s.notifier.Notify(ctx, receipt)
	return receipt, nil
}

func (s *CartService) buildReceipt(id string, cart *models.Cart, paymentID string) *models.Receipt {
	names := make([]string, 0, len(cart.Items))
	for name := range cart.Items {
		names = append(names, name)
	}
	sort.Strings(names)

	r := &models.Receipt{
		Email:     id,
		PaymentID: paymentID,
		Total:     cart.TotalPrice,
		Currency:  s.currency,
		PaidAt:    s.now().UTC(),
	}
	for _, name := range names {
		qty := cart.Items[name]
		var price float64
		if item, ok := s.menu.Lookup(name); ok {
			price = item.Price
		}
		r.Lines = append(r.Lines, models.ReceiptLine{
			Name:      name,
			Quantity:  qty,
			UnitPrice: price,
			LineTotal: price * float64(qty),
		})
	}
	return r
}

func (s *CartService) read(ctx context.Context, id string) (*models.Cart, error) {
	cart := models.NewCart()
	if err := s.store.Read(ctx, database.Orders, id, cart); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrCartNotFound
		}
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = map[string]int{}
	}
	return cart, nil
}
