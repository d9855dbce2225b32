package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"pizza_back_end/internal/apperr"
	"pizza_back_end/internal/database"
	"pizza_back_end/internal/logger"
	"pizza_back_end/internal/models"
	"pizza_back_end/internal/utils"
)

// DefaultTokenTTL est la durée de vie d'une session.
const DefaultTokenTTL = time.Hour

// SessionManager émet et vérifie les jetons de session (namespace "tokens").
type SessionManager struct {
	store    database.Store
	locks    *database.KeyLock
	log      *logger.Logger
	ttl      time.Duration
	now      func() time.Time
	newToken func() (string, error)
}

type SessionOption func(*SessionManager)

// WithClock remplace l'horloge, utile pour tester l'expiration.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionManager) { s.now = now }
}

func WithTokenTTL(ttl time.Duration) SessionOption {
	return func(s *SessionManager) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewSessionManager(store database.Store, locks *database.KeyLock, log *logger.Logger, opts ...SessionOption) *SessionManager {
	s := &SessionManager{
		store: store,
		locks: locks,
		log:   log,
		ttl:   DefaultTokenTTL,
		now:   time.Now,
		newToken: func() (string, error) {
			return utils.RandomString(utils.TokenLength)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login vérifie le mot de passe puis remplace le jeton courant. Un compte
// inconnu et un mauvais mot de passe donnent la même erreur.
func (s *SessionManager) Login(ctx context.Context, email, password string) (*models.Token, error) {
	id, err := identity(email)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.store.Read(ctx, database.Users, id, &user); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	ok, err := utils.VerifyPassword(strings.TrimSpace(password), user.PasswordHash)
	if err != nil {
		s.log.Warn("hash illisible", "email", id, "error", err)
		return nil, apperr.ErrInvalidCredentials
	}
	if !ok {
		return nil, apperr.ErrInvalidCredentials
	}

	value, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("login: génération du jeton: %w", err)
	}
	token := models.NewToken(value, s.now().Add(s.ttl))

	unlock := s.locks.Lock(database.Tokens, id)
	defer unlock()
	// Delete tient ce verrou jusqu'à la suppression du compte.
	if err := s.store.Read(ctx, database.Users, id, &user); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.store.Create(ctx, database.Tokens, id, token); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	s.log.Info("🔑 Session ouverte", "email", id)
	return token, nil
}

// Validate renvoie nil si le jeton présenté est celui de la session courante
// et qu'il n'a pas expiré.
func (s *SessionManager) Validate(ctx context.Context, email, presented string) error {
	id, err := identity(email)
	if err != nil {
		return err
	}
	var token models.Token
	if err := s.store.Read(ctx, database.Tokens, id, &token); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNoSession
		}
		return fmt.Errorf("validate: %w", err)
	}
	if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token.Token)) != 1 {
		return apperr.ErrUnauthenticated
	}
	if token.Expired(s.now()) {
		return apperr.ErrSessionExpired
	}
	return nil
}

// Logout supprime le jeton. Toujours un succès, même sans session.
func (s *SessionManager) Logout(ctx context.Context, email string) error {
	id := utils.NormalizeEmail(email)
	if id == "" {
		return nil
	}
	unlock := s.locks.Lock(database.Tokens, id)
	defer unlock()
	if err := s.store.Delete(ctx, database.Tokens, id); err != nil {
		s.log.Debug("logout sans jeton", "email", id, "error", err)
	}
	return nil
}

// identity normalise l'email et le valide avant tout accès au store.
func identity(email string) (string, error) {
	id := utils.NormalizeEmail(email)
	if !utils.ValidEmail(id) {
		return "", apperr.NewValidation("email", "Invalid email id")
	}
	return id, nil
}
