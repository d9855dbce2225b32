package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pizza_back_end/internal/database"
	"pizza_back_end/internal/logger"
	"pizza_back_end/internal/models"
)

// fakeClock est une horloge réglable partagée par les services du test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeGateway struct {
	mu       sync.Mutex
	requests []ChargeRequest
	err      error
}

func (g *fakeGateway) Charge(_ context.Context, req ChargeRequest) (*ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &ChargeResult{ID: "pi_test", Status: "succeeded"}, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	receipts []*models.Receipt
}

func (n *recordingNotifier) Notify(_ context.Context, r *models.Receipt) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receipts = append(n.receipts, r)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.receipts)
}

type testEnv struct {
	store    database.Store
	locks    *database.KeyLock
	clock    *fakeClock
	sessions *SessionManager
	accounts *AccountService
	carts    *CartService
	gateway  *fakeGateway
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := database.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return newTestEnvWithStore(t, store)
}

func newTestEnvWithStore(t *testing.T, store database.Store) *testEnv {
	t.Helper()
	log := logger.NewNop()
	locks := database.NewKeyLock()
	clock := newFakeClock()
	env := &testEnv{
		store:    store,
		locks:    locks,
		clock:    clock,
		gateway:  &fakeGateway{},
		notifier: &recordingNotifier{},
	}
	env.sessions = NewSessionManager(store, locks, log, WithClock(clock.Now))
	env.accounts = NewAccountService(store, locks, env.sessions, log)
	env.carts = NewCartService(store, locks, models.DefaultMenu(), env.gateway, env.notifier, "usd", log)
	env.carts.now = clock.Now
	return env
}

const (
	testEmail    = "jane@example.com"
	testPassword = "hunter2"
)

func validRegistration() RegisterInput {
	return RegisterInput{
		FirstName:     "Jane",
		LastName:      "Doe",
		Email:         testEmail,
		StreetAddress: "1 Main St",
		Password:      testPassword,
	}
}

func (e *testEnv) registered(t *testing.T) {
	t.Helper()
	require.NoError(t, e.accounts.Register(context.Background(), validRegistration()))
}

// loggedIn inscrit l'utilisateur de test et renvoie son jeton.
func (e *testEnv) loggedIn(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	e.registered(t)
	tok, err := e.sessions.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)
	return tok.Token
}
