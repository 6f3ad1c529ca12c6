package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

// Alerts sends operator email when a scheduled verification finds failed
// publications. Nil receiver disables alerting.
type Alerts struct {
	From      string
	Password  string
	Host      string
	Port      string
	Recipient string
	log       *zerolog.Logger
}

func NewAlerts(from, password, host, port, recipient string, log *zerolog.Logger) *Alerts {
	if from == "" || recipient == "" {
		return nil
	}
	return &Alerts{
		From:      from,
		Password:  password,
		Host:      host,
		Port:      port,
		Recipient: recipient,
		log:       log,
	}
}

// SendVerificationAlert reports the failed targets of one event's
// verification run.
func (a *Alerts) SendVerificationAlert(eventID string, failures []string) error {
	if a == nil {
		return nil
	}

	subject := fmt.Sprintf("Verification failed for event %s", eventID)
	body := fmt.Sprintf(
		"Scheduled verification found %d failed publication(s) for event %s:\n\n%s\n\nCheck the publishing dashboard for details.",
		len(failures), eventID, strings.Join(failures, "\n"),
	)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		a.From, a.Recipient, subject, body,
	)

	addr := a.Host + ":" + a.Port
	auth := smtp.PlainAuth("", a.From, a.Password, a.Host)

	if err := smtp.SendMail(addr, auth, a.From, []string{a.Recipient}, []byte(msg)); err != nil {
		a.log.Warn().Err(err).Str("event_id", eventID).Msg("failed to send verification alert")
		return fmt.Errorf("send alert: %w", err)
	}

	a.log.Info().Str("event_id", eventID).Int("failures", len(failures)).Msg("verification alert sent")
	return nil
}
