// Package notify sends reminder and milestone emails.
package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"github.com/yourname/leettrack/internal"
	"github.com/yourname/leettrack/internal/config"
)

type Notifier interface {
	Send(ctx context.Context, to string, kind Kind, data any) error
}

// New returns an SMTP notifier when mail is configured and a logging one
// otherwise.
func New(cfg *config.Config, logger internal.Logger) (Notifier, error) {
	if !cfg.SMTP.Enabled() {
		logger.Info("SMTP not configured, emails will only be logged")
		return NewLogNotifier(cfg.AppURL, logger), nil
	}
	return NewSMTPMailer(cfg.SMTP, cfg.AppURL, logger)
}

type SMTPMailer struct {
	client *mail.Client
	from   string
	link   string
	logger internal.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, link string, logger internal.Logger) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From, link: link, logger: logger}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to string, kind Kind, data any) error {
	msg, err := Render(kind, data, m.link)
	if err != nil {
		return err
	}
	mm := mail.NewMsg()
	if err := mm.From(m.from); err != nil {
		return fmt.Errorf("notify: from address: %w", err)
	}
	if err := mm.To(to); err != nil {
		return fmt.Errorf("notify: to address: %w", err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextHTML, msg.HTML)

	if err := m.client.DialAndSendWithContext(ctx, mm); err != nil {
		m.logger.Errorf("failed to send %s email to %s: %v", kind, to, err)
		return fmt.Errorf("notify: send: %w", err)
	}
	m.logger.Infof("sent %s email to %s", kind, to)
	return nil
}

// LogNotifier renders messages and logs them instead of sending.
type LogNotifier struct {
	link   string
	logger internal.Logger
}

func NewLogNotifier(link string, logger internal.Logger) *LogNotifier {
	return &LogNotifier{link: link, logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, to string, kind Kind, data any) error {
	msg, err := Render(kind, data, n.link)
	if err != nil {
		return err
	}
	n.logger.Infof("email (not sent) to=%s subject=%q", to, msg.Subject)
	return nil
}
