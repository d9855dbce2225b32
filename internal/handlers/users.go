package handlers

import (
	"context"
	"net/http"

	"pizza_back_end/internal/logger"
	"pizza_back_end/internal/models"
	"pizza_back_end/internal/services"
)

type UserHandler struct {
	accounts *services.AccountService
	sessions *services.SessionManager
	menu     *models.Menu
	log      *logger.Logger
}

func (h *UserHandler) Handle(ctx context.Context, action UserAction, req Request) Response {
	switch action {
	case UserRegister:
		return h.register(ctx, req)
	case UserLogin:
		return h.login(ctx, req)
	case UserUpdate:
		return h.update(ctx, req)
	case UserLogout:
		return h.logout(ctx, req)
	case UserDelete:
		return h.delete(ctx, req)
	}
	return Response{Status: http.StatusMethodNotAllowed, Body: failure("Method not allowed")}
}

// POST users/register
func (h *UserHandler) register(ctx context.Context, req Request) Response {
	err := h.accounts.Register(ctx, services.RegisterInput{
		FirstName:     req.Payload.String("firstName"),
		LastName:      req.Payload.String("lastName"),
		Email:         req.Payload.String("email"),
		StreetAddress: req.Payload.String("streetAddress"),
		Password:      req.Payload.String("password"),
	})
	if err != nil {
		return h.fail(err, "Could not create the user due to an internal error. Try again later")
	}
	return ok(success("Welcome to Pizza Delivery, your account has been created"))
}

// GET users/login?email=&password=
func (h *UserHandler) login(ctx context.Context, req Request) Response {
	token, err := h.sessions.Login(ctx, req.Query.Get("email"), req.Query.Get("password"))
	if err != nil {
		return h.fail(err, "Could not generate a token for this session")
	}
	return ok(loginResponse{Token: token.Token, Menu: h.menu.ByName()})
}

type loginResponse struct {
	Token string                     `json:"token"`
	Menu  map[string]models.MenuItem `json:"menu"`
}

// PUT users/update?email=&token=
func (h *UserHandler) update(ctx context.Context, req Request) Response {
	err := h.accounts.Update(ctx, req.Query.Get("email"), req.Query.Get("token"), services.UpdateInput{
		FirstName:     req.Payload.String("firstName"),
		LastName:      req.Payload.String("lastName"),
		StreetAddress: req.Payload.String("streetAddress"),
		Password:      req.Payload.String("password"),
	})
	if err != nil {
		return h.fail(err, "Could not update the record")
	}
	return ok(success("Record has been updated"))
}

// DELETE users/logout?email= : toujours 200.
func (h *UserHandler) logout(ctx context.Context, req Request) Response {
	_ = h.sessions.Logout(ctx, req.Query.Get("email"))
	return ok(success("You have been logged out"))
}

// DELETE users/delete?email=&token=
func (h *UserHandler) delete(ctx context.Context, req Request) Response {
	if err := h.accounts.Delete(ctx, req.Query.Get("email"), req.Query.Get("token")); err != nil {
		return h.fail(err, "Could not delete the record")
	}
	return ok(success("You have been successfully de-registered"))
}

func (h *UserHandler) fail(err error, internal string) Response {
	resp := errorResponse(groupUsers, err, internal)
	if resp.Status >= http.StatusInternalServerError {
		h.log.Error("❌ users", "error", err)
	}
	return resp
}
