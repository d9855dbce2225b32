package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"pizza_back_end/internal/apperr"
)

type group int

const (
	groupUsers group = iota
	groupOrders
)

const msgInternal = "Something went wrong, try again later"

func errMethodNotAllowed(req Request) error {
	return fmt.Errorf("%w: %s %s/%s", apperr.ErrMethodNotAllowed, req.Method, req.Resource, req.Action)
}

// statusFor traduit une erreur de service en code HTTP pour un groupe.
func statusFor(g group, err error) int {
	var verr *apperr.ValidationError
	switch {
	case errors.Is(err, apperr.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.As(err, &verr), errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	}

	if g == groupOrders {
		switch {
		case errors.Is(err, apperr.ErrUnauthenticated), errors.Is(err, apperr.ErrSessionExpired):
			return http.StatusForbidden
		case errors.Is(err, apperr.ErrUnknownItem),
			errors.Is(err, apperr.ErrEmptyCart),
			errors.Is(err, apperr.ErrPaymentDeclined):
			return http.StatusBadRequest
		case errors.Is(err, apperr.ErrNotFound):
			return http.StatusNotFound
		}
		return http.StatusInternalServerError
	}

	switch {
	case errors.Is(err, apperr.ErrNoSession),
		errors.Is(err, apperr.ErrInvalidCredentials),
		errors.Is(err, apperr.ErrAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrSessionExpired):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// messageFor renvoie un message générique, sans détail interne.
func messageFor(g group, err error) string {
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	if g == groupOrders && (errors.Is(err, apperr.ErrUnauthenticated) || errors.Is(err, apperr.ErrSessionExpired)) {
		return "Please login before placing an order"
	}
	switch {
	case errors.Is(err, apperr.ErrMethodNotAllowed):
		return "Method not allowed"
	case errors.Is(err, apperr.ErrValidation):
		return "Invalid request"
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return "User-id or password invalid"
	case errors.Is(err, apperr.ErrAlreadyExists):
		return "User with this email id already exists in our database"
	case errors.Is(err, apperr.ErrNoSession):
		return "Seems to be an invalid session. Try logging in again"
	case errors.Is(err, apperr.ErrUnauthenticated):
		return "Unauthorised attempt!"
	case errors.Is(err, apperr.ErrSessionExpired):
		return "Session has expired, login again"
	case errors.Is(err, apperr.ErrUnknownItem):
		return "Sorry, we do not have this on our menu today!"
	case errors.Is(err, apperr.ErrItemNotInCart):
		return "This item has not been found in your cart"
	case errors.Is(err, apperr.ErrCartNotFound):
		return "Shopping cart does not exist"
	case errors.Is(err, apperr.ErrEmptyCart):
		return "Your shopping cart is empty"
	case errors.Is(err, apperr.ErrPaymentDeclined):
		return "Payment could not be completed, please try again or with a different card"
	}
	return msgInternal
}

// errorResponse construit la réponse d'erreur; internal remplace le message
// générique des erreurs 500 quand l'action en a un plus précis.
func errorResponse(g group, err error, internal string) Response {
	status := statusFor(g, err)
	msg := messageFor(g, err)
	if status == http.StatusInternalServerError && internal != "" {
		msg = internal
	}
	return Response{Status: status, Body: failure(msg)}
}
