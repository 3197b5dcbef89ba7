// Package mailer delivers HTML email through an SMTP relay.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/giftstore-backend/pkg/config"
	"github.com/angelmondragon/giftstore-backend/pkg/logger"
	"github.com/angelmondragon/giftstore-backend/pkg/metrics"
	"github.com/sony/gobreaker/v2"
	"gopkg.in/gomail.v2"
)

// ErrCircuitOpen is returned while the relay is considered unhealthy.
var ErrCircuitOpen = errors.New("smtp circuit open")

// Message is a single outbound HTML email.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("recipient is required")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("subject is required")
	}
	return nil
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends through gomail. Consecutive relay failures trip a circuit
// breaker so requests fail fast instead of waiting on a dead relay.
type SMTPSender struct {
	dialer  dialer
	from    string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[struct{}]
	metrics *metrics.MailMetrics
	logg    *logger.Logger
}

// NewSMTPSender builds a sender for the configured relay.
func NewSMTPSender(cfg config.SMTPConfig, logg *logger.Logger, m *metrics.MailMetrics) (*SMTPSender, error) {
	if !cfg.Enabled() {
		return nil, errors.New("smtp host is required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return newSMTPSender(d, cfg, logg, m), nil
}

func newSMTPSender(d dialer, cfg config.SMTPConfig, logg *logger.Logger, m *metrics.MailMetrics) *SMTPSender {
	return &SMTPSender{
		dialer:  d,
		from:    cfg.Sender(),
		timeout: cfg.Timeout,
		breaker: newBreaker(cfg, logg),
		metrics: m,
		logg:    logg,
	}
}

func newBreaker(cfg config.SMTPConfig, logg *logger.Logger) *gobreaker.CircuitBreaker[struct{}] {
	minRequests := cfg.BreakerMinRequests
	if minRequests == 0 {
		minRequests = 3
	}
	ratio := cfg.BreakerFailureRatio
	if ratio <= 0 {
		ratio = 0.6
	}
	var st gobreaker.Settings
	st.Name = "smtp"
	st.Timeout = cfg.BreakerOpenTimeout
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= minRequests && failureRatio >= ratio
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		ctx := logg.WithFields(context.Background(), map[string]any{
			"breaker": name,
			"from":    from.String(),
			"to":      to.String(),
		})
		logg.Warn(ctx, "mail.breaker_state_changed")
	}
	return gobreaker.NewCircuitBreaker[struct{}](st)
}

// Send delivers msg or returns the relay error.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		s.metrics.IncResult("rejected")
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", s.from)
	gm.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		gm.SetHeader("Reply-To", msg.ReplyTo)
	}
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)

	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.dial(ctx, gm)
	})
	if err != nil {
		s.metrics.IncResult("failed")
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return fmt.Errorf("smtp send: %w", err)
	}
	s.metrics.IncResult("sent")
	return nil
}

// dial runs the blocking gomail call, giving up when ctx or the send timeout
// expires first.
func (s *SMTPSender) dial(ctx context.Context, gm *gomail.Message) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(gm) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogSender writes messages to the log instead of sending them. It backs local
// development when no relay is configured.
type LogSender struct {
	logg    *logger.Logger
	metrics *metrics.MailMetrics
}

func NewLogSender(logg *logger.Logger, m *metrics.MailMetrics) (*LogSender, error) {
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &LogSender{logg: logg, metrics: m}, nil
}

func (l *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		l.metrics.IncResult("rejected")
		return err
	}
	ctx = l.logg.WithFields(ctx, map[string]any{
		"to":         msg.To,
		"subject":    msg.Subject,
		"html_bytes": len(msg.HTML),
	})
	l.logg.Info(ctx, "mail.logged")
	l.metrics.IncResult("logged")
	return nil
}

// New picks the SMTP sender when a relay is configured and the log sender otherwise.
func New(cfg config.SMTPConfig, logg *logger.Logger, m *metrics.MailMetrics) (Sender, error) {
	if cfg.Enabled() {
		return NewSMTPSender(cfg, logg, m)
	}
	return NewLogSender(logg, m)
}
