package services

import (
	"context"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"pizza_back_end/internal/logger"
	"pizza_back_end/internal/models"
	"pizza_back_end/internal/utils"
)

// Notifier reçoit le reçu après un paiement accepté. Notify ne bloque pas.
type Notifier interface {
	Notify(ctx context.Context, receipt *models.Receipt)
}

// ReceiptSender effectue l'envoi réel; il peut échouer et sera retenté.
type ReceiptSender interface {
	SendReceipt(ctx context.Context, receipt *models.Receipt) error
}

// ReceiptDispatcher envoie les reçus en tâche de fond avec un nombre de
// tentatives borné. Les échecs sont journalisés, jamais remontés.
type ReceiptDispatcher struct {
	sender     ReceiptSender
	log        *logger.Logger
	timeout    time.Duration
	maxRetries uint64
	backoff    time.Duration
	wg         sync.WaitGroup
}

func NewReceiptDispatcher(sender ReceiptSender, log *logger.Logger) *ReceiptDispatcher {
	return &ReceiptDispatcher{
		sender:     sender,
		log:        log,
		timeout:    time.Minute,
		maxRetries: 3,
		backoff:    500 * time.Millisecond,
	}
}

func (d *ReceiptDispatcher) Notify(ctx context.Context, receipt *models.Receipt) {
	// La requête HTTP sera terminée avant l'envoi : on garde les valeurs
	// du contexte mais pas son annulation.
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		d.send(bg, receipt)
	}()
}

func (d *ReceiptDispatcher) send(ctx context.Context, receipt *models.Receipt) {
	attempt := 0
	b := retry.WithMaxRetries(d.maxRetries, retry.NewExponential(d.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := d.sender.SendReceipt(ctx, receipt); err != nil {
			d.log.Warn("envoi du reçu échoué", "email", receipt.Email, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		d.log.Error("❌ Reçu non envoyé", "email", receipt.Email, "payment_id", receipt.PaymentID, "error", err)
		return
	}
	d.log.Info("📧 Reçu envoyé", "email", receipt.Email, "payment_id", receipt.PaymentID)
}

// Wait attend la fin des envois en cours ou l'expiration de ctx.
func (d *ReceiptDispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MailReceiptSender rend le reçu en HTML et l'envoie par SMTP.
type MailReceiptSender struct {
	mailer *utils.Mailer
}

func NewMailReceiptSender(mailer *utils.Mailer) *MailReceiptSender {
	return &MailReceiptSender{mailer: mailer}
}

func (s *MailReceiptSender) SendReceipt(ctx context.Context, receipt *models.Receipt) error {
	body, err := utils.RenderReceiptHTML(receipt)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, receipt.Email, utils.ReceiptSubject, body)
}

// LogReceiptSender remplace le SMTP quand il n'est pas configuré.
type LogReceiptSender struct {
	log *logger.Logger
}

func NewLogReceiptSender(log *logger.Logger) *LogReceiptSender {
	return &LogReceiptSender{log: log}
}

func (s *LogReceiptSender) SendReceipt(_ context.Context, receipt *models.Receipt) error {
	s.log.Info("reçu (SMTP non configuré)",
		"email", receipt.Email,
		"payment_id", receipt.PaymentID,
		"total", receipt.Total,
		"lines", len(receipt.Lines),
	)
	return nil
}
