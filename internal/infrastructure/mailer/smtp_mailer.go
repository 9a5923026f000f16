package mailer

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/boutique/storefront/internal/application/notification"
	"github.com/boutique/storefront/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sendFunc matches smtp.SendMail
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer delivers plain-text email through an SMTP relay
type SMTPMailer struct {
	addr   string
	auth   smtp.Auth
	from   string
	send   sendFunc
	logger *zap.Logger
}

// NewSMTPMailer creates an SMTP mailer. Authentication is used only when a username is set.
func NewSMTPMailer(cfg config.MailConfig, logger *zap.Logger) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		auth:   auth,
		from:   cfg.From,
		send:   smtp.SendMail,
		logger: logger.Named("mailer"),
	}
}

// Send delivers one message. net/smtp takes no context; a cancelled ctx only
// prevents the attempt from starting.
func (m *SMTPMailer) Send(ctx context.Context, msg notification.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("mailer: no recipients")
	}

	start := time.Now()
	if err := m.send(m.addr, m.auth, m.from, msg.To, m.compose(msg)); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", m.addr, err)
	}
	m.logger.Debug("mail delivered",
		zap.Strings("to", msg.To),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (m *SMTPMailer) compose(msg notification.Message) []byte {
	var b bytes.Buffer
	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}
	header("From", m.from)
	header("To", strings.Join(msg.To, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", time.Now().Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@storefront>", uuid.NewString()))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return b.Bytes()
}

// LogMailer stands in when mail is disabled; it only logs what would be sent
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a new LogMailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger.Named("mailer")}
}

// Send logs the message
func (m *LogMailer) Send(_ context.Context, msg notification.Message) error {
	m.logger.Info("mail disabled, message dropped",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// New returns the SMTP mailer when mail is enabled and a LogMailer otherwise
func New(cfg config.MailConfig, logger *zap.Logger) notification.Mailer {
	if !cfg.Enabled || cfg.Host == "" {
		return NewLogMailer(logger)
	}
	return NewSMTPMailer(cfg, logger)
}

var (
	_ notification.Mailer = (*SMTPMailer)(nil)
	_ notification.Mailer = (*LogMailer)(nil)
)
