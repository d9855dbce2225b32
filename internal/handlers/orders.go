package handlers

import (
	"context"
	"errors"
	"net/http"

	"pizza_back_end/internal/apperr"
	"pizza_back_end/internal/logger"
	"pizza_back_end/internal/models"
	"pizza_back_end/internal/services"
)

// OrderHandler : toutes les actions exigent une session valide.
type OrderHandler struct {
	sessions *services.SessionManager
	carts    *services.CartService
	log      *logger.Logger
}

type cartResponse struct {
	Success string       `json:"Success"`
	Cart    *models.Cart `json:"cart"`
}

type paymentResponse struct {
	Success string          `json:"Success"`
	Receipt *models.Receipt `json:"receipt"`
}

func (h *OrderHandler) Handle(ctx context.Context, action OrderAction, req Request) Response {
	email := req.Query.Get("email")
	if err := h.sessions.Validate(ctx, email, req.Query.Get("token")); err != nil {
		return h.fail(err, "")
	}

	switch action {
	case OrderAddToCart:
		cart, err := h.carts.AddItem(ctx, email, req.Payload.String("item"))
		if err != nil {
			return h.fail(err, "Could not add item to cart")
		}
		return ok(cartResponse{Success: "Item added to cart successfully", Cart: cart})

	case OrderGetCart:
		cart, err := h.carts.GetCart(ctx, email)
		if err != nil {
			return h.fail(err, "")
		}
		return ok(cart)

	case OrderRemoveItem:
		cart, err := h.carts.RemoveItem(ctx, email, req.Payload.String("item"))
		if err != nil {
			return h.fail(err, "Sorry, could not drop this from the shopping cart")
		}
		return ok(cartResponse{Success: "Item removed from your cart", Cart: cart})

	case OrderDeleteCart:
		if err := h.carts.ClearCart(ctx, email); err != nil {
			if errors.Is(err, apperr.ErrCartNotFound) {
				return Response{Status: http.StatusInternalServerError, Body: failure("Shopping cart could not be emptied at the moment")}
			}
			return h.fail(err, "Shopping cart could not be emptied at the moment")
		}
		return ok(success("All items have been dropped from your shopping cart"))

	case OrderPayment:
		receipt, err := h.carts.Checkout(ctx, email)
		if err != nil {
			if errors.Is(err, apperr.ErrCartNotFound) {
				return Response{Status: http.StatusNotFound, Body: failure("Could not find anything in the shopping cart")}
			}
			return h.fail(err, "")
		}
		return ok(paymentResponse{
			Success: "Your payment is successful and the order has been placed. You will receive an email receipt",
			Receipt: receipt,
		})
	}
	return Response{Status: http.StatusMethodNotAllowed, Body: failure("Method not allowed")}
}

func (h *OrderHandler) fail(err error, internal string) Response {
	resp := errorResponse(groupOrders, err, internal)
	if resp.Status >= http.StatusInternalServerError {
		h.log.Error("❌ orders", "error", err)
	}
	return resp
}
