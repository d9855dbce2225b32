package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"pizza_back_end/internal/apperr"
	"pizza_back_end/internal/database"
	"pizza_back_end/internal/logger"
	"pizza_back_end/internal/models"
	"pizza_back_end/internal/utils"
)

// RegisterInput : les champs sont validés dans l'ordre de déclaration.
type RegisterInput struct {
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	StreetAddress string `json:"streetAddress" validate:"required"`
	Password      string `json:"password" validate:"required"`
}

// UpdateInput : seuls les champs non vides sont appliqués.
type UpdateInput struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	StreetAddress string `json:"streetAddress"`
	Password      string `json:"password"`
}

func (in UpdateInput) trimmed() UpdateInput {
	return UpdateInput{
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		StreetAddress: strings.TrimSpace(in.StreetAddress),
		Password:      strings.TrimSpace(in.Password),
	}
}

func (in UpdateInput) empty() bool {
	return in.FirstName == "" && in.LastName == "" && in.StreetAddress == "" && in.Password == ""
}

var registerMessages = map[string]string{
	"FirstName":     "Missing firstname",
	"LastName":      "Missing lastname",
	"Email":         "Invalid email id",
	"StreetAddress": "Missing street address",
	"Password":      "Missing password",
}

// AccountService gère le cycle de vie des comptes (namespace "users").
type AccountService struct {
	store    database.Store
	locks    *database.KeyLock
	sessions *SessionManager
	validate *validator.Validate
	log      *logger.Logger
}

func NewAccountService(store database.Store, locks *database.KeyLock, sessions *SessionManager, log *logger.Logger) *AccountService {
	return &AccountService{
		store:    store,
		locks:    locks,
		sessions: sessions,
		validate: validator.New(),
		log:      log,
	}
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) error {
	in = RegisterInput{
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Email:         utils.NormalizeEmail(in.Email),
		StreetAddress: strings.TrimSpace(in.StreetAddress),
		Password:      strings.TrimSpace(in.Password),
	}
	if err := s.validate.Struct(in); err != nil {
		return toValidationError(err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	user := models.User{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		StreetAddress: in.StreetAddress,
		PasswordHash:  hash,
	}
	if err := s.store.Create(ctx, database.Users, in.Email, user); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("register: %w", err)
	}
	s.log.Info("✅ Compte créé", "email", in.Email)
	return nil
}

// Update fusionne les champs fournis dans le compte existant.
func (s *AccountService) Update(ctx context.Context, email, token string, in UpdateInput) error {
	id, err := identity(email)
	if err != nil {
		return err
	}
	in = in.trimmed()
	if in.empty() {
		return apperr.NewValidation("fields", "No fields passed for updation")
	}
	if err := s.sessions.Validate(ctx, id, token); err != nil {
		return err
	}

	var hash string
	if in.Password != "" {
		if hash, err = utils.HashPassword(in.Password); err != nil {
			return fmt.Errorf("update: %w", err)
		}
	}

	unlock := s.locks.Lock(database.Users, id)
	defer unlock()

	var user models.User
	if err := s.store.Read(ctx, database.Users, id, &user); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrInvalidCredentials
		}
		return fmt.Errorf("update: %w", err)
	}
	if in.FirstName != "" {
		user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		user.LastName = in.LastName
	}
	if in.StreetAddress != "" {
		user.StreetAddress = in.StreetAddress
	}
	if hash != "" {
		user.PasswordHash = hash
	}
	if err := s.store.Update(ctx, database.Users, id, user); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

// Delete supprime le jeton, le panier (best effort) puis le compte.
func (s *AccountService) Delete(ctx context.Context, email, token string) error {
	id, err := identity(email)
	if err != nil {
		return err
	}
	if err := s.sessions.Validate(ctx, id, token); err != nil {
		return err
	}

	// Ordre des verrous : orders, tokens, users. AddItem et Login revérifient
	// le compte sous leur verrou, qui reste pris jusqu'à la fin.
	unlockOrders := s.locks.Lock(database.Orders, id)
	defer unlockOrders()
	unlockTokens := s.locks.Lock(database.Tokens, id)
	defer unlockTokens()

	if err := s.store.Delete(ctx, database.Tokens, id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		s.log.Error("suppression du jeton", "email", id, "error", err)
		return fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	if err := s.store.Delete(ctx, database.Orders, id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		s.log.Warn("suppression du panier", "email", id, "error", err)
	}
	if err := s.deleteLocked(ctx, database.Users, id); err != nil {
		s.log.Error("suppression du compte", "email", id, "error", err)
		return fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	s.log.Info("🗑️ Compte supprimé", "email", id)
	return nil
}

func (s *AccountService) deleteLocked(ctx context.Context, ns database.Namespace, id string) error {
	unlock := s.locks.Lock(ns, id)
	defer unlock()
	return s.store.Delete(ctx, ns, id)
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].StructField()
		msg, ok := registerMessages[field]
		if !ok {
			msg = "Invalid " + strings.ToLower(field)
		}
		return apperr.NewValidation(verrs[0].Field(), msg)
	}
	return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
}
