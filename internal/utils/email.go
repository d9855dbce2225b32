package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wneessen/go-mail"
)

var validate = validator.New()

// NormalizeEmail produit l'identité utilisée comme clé dans le store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// MailerConfig regroupe les paramètres SMTP.
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer envoie des emails HTML via SMTP (go-mail).
type Mailer struct {
	cfg MailerConfig
	// dial est remplacé dans les tests
	dial func(ctx context.Context, msg *mail.Msg) error
}

func NewMailer(cfg MailerConfig) *Mailer {
	m := &Mailer{cfg: cfg}
	m.dial = m.dialAndSend
	return m
}

func (m *Mailer) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// BuildMessage prépare le message sans l'envoyer.
func (m *Mailer) BuildMessage(to, subject, htmlBody string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("expéditeur invalide: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("destinataire invalide: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	return msg, nil
}

func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg, err := m.BuildMessage(to, subject, htmlBody)
	if err != nil {
		return err
	}
	return m.dial(ctx, msg)
}
