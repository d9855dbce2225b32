package handlers

import (
	"net/http"
	"strings"
)

type UserAction string

const (
	UserRegister UserAction = "register"
	UserLogin    UserAction = "login"
	UserUpdate   UserAction = "update"
	UserLogout   UserAction = "logout"
	UserDelete   UserAction = "delete"
)

var userMethods = map[UserAction][]string{
	UserRegister: {http.MethodPost},
	UserLogin:    {http.MethodGet},
	UserUpdate:   {http.MethodPut},
	UserLogout:   {http.MethodDelete},
	UserDelete:   {http.MethodDelete},
}

func ParseUserAction(s string) (UserAction, bool) {
	a := UserAction(s)
	_, ok := userMethods[a]
	return a, ok
}

// Methods liste les verbes HTTP acceptés pour l'action.
func (a UserAction) Methods() []string { return userMethods[a] }

type OrderAction string

const (
	OrderAddToCart  OrderAction = "addToCart"
	OrderGetCart    OrderAction = "getCart"
	OrderRemoveItem OrderAction = "removeItem"
	OrderDeleteCart OrderAction = "deleteCart"
	OrderPayment    OrderAction = "payment"
)

var orderMethods = map[OrderAction][]string{
	OrderAddToCart:  {http.MethodPost},
	OrderGetCart:    {http.MethodGet},
	OrderRemoveItem: {http.MethodPost, http.MethodDelete},
	OrderDeleteCart: {http.MethodDelete},
	OrderPayment:    {http.MethodPost},
}

func ParseOrderAction(s string) (OrderAction, bool) {
	a := OrderAction(s)
	_, ok := orderMethods[a]
	return a, ok
}

func (a OrderAction) Methods() []string { return orderMethods[a] }

// RouteLabel ramène un chemin à "ressource/action" connue, ou "other",
// pour borner la cardinalité des métriques.
func RouteLabel(path string) string {
	resource, action, _ := strings.Cut(strings.Trim(path, "/"), "/")
	switch Resource(strings.ToLower(resource)) {
	case ResourcePing:
		return string(ResourcePing)
	case ResourceUsers:
		if _, ok := ParseUserAction(action); ok {
			return "users/" + action
		}
	case ResourceOrders:
		if _, ok := ParseOrderAction(action); ok {
			return "orders/" + action
		}
	}
	return "other"
}
