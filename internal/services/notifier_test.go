package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"pizza_back_end/internal/logger"
	"pizza_back_end/internal/models"
)

type flakySender struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (s *flakySender) SendReceipt(context.Context, *models.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return errors.New("smtp indisponible")
	}
	return nil
}

func newTestDispatcher(sender ReceiptSender) (*ReceiptDispatcher, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	d := NewReceiptDispatcher(sender, logger.NewFromCore(core))
	d.backoff = time.Millisecond
	return d, logs
}

func TestReceiptDispatcher_RetriesUntilSuccess(t *testing.T) {
	sender := &flakySender{failures: 2}
	d, logs := newTestDispatcher(sender)

	d.Notify(context.Background(), &models.Receipt{Email: testEmail, PaymentID: "pi_1"})
	require.NoError(t, d.Wait(context.Background()))

	assert.Equal(t, 3, sender.calls)
	assert.Equal(t, 1, logs.FilterMessage("📧 Reçu envoyé").Len())
}

func TestReceiptDispatcher_GivesUp(t *testing.T) {
	sender := &flakySender{failures: 100}
	d, logs := newTestDispatcher(sender)

	d.Notify(context.Background(), &models.Receipt{Email: testEmail})
	require.NoError(t, d.Wait(context.Background()))

	assert.Equal(t, 4, sender.calls, "one attempt plus three retries")
	assert.Equal(t, 1, logs.FilterMessage("❌ Reçu non envoyé").Len())
}

func TestReceiptDispatcher_DetachedFromRequest(t *testing.T) {
	sender := &flakySender{}
	d, _ := newTestDispatcher(sender)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Notify(ctx, &models.Receipt{Email: testEmail})
	require.NoError(t, d.Wait(context.Background()))
	assert.Equal(t, 1, sender.calls)
}

type blockingSender struct{ release chan struct{} }

func (s *blockingSender) SendReceipt(ctx context.Context, _ *models.Receipt) error {
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestReceiptDispatcher_NotifyDoesNotBlock(t *testing.T) {
	sender := &blockingSender{release: make(chan struct{})}
	d, _ := newTestDispatcher(sender)

	done := make(chan struct{})
	go func() {
		d.Notify(context.Background(), &models.Receipt{Email: testEmail})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked")
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(waitCtx), context.DeadlineExceeded)

	close(sender.release)
	assert.NoError(t, d.Wait(context.Background()))
}

func TestLogReceiptSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewLogReceiptSender(logger.NewFromCore(core))
	require.NoError(t, s.SendReceipt(context.Background(), &models.Receipt{Email: testEmail, Total: 100}))
	assert.Equal(t, 1, logs.Len())
}
