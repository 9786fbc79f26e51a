package service

import (
	"fmt"

	"clinic-queue/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// MailerService delivers booking confirmation mail. Delivery is best-effort:
// callers fire it from a goroutine and a failed send never rolls back or
// fails the booking that triggered it.
type MailerService struct {
	dialer *gomail.Dialer
	from   string
	log    *logrus.Logger
}

func NewMailerService(cfg config.SMTPConfig, log *logrus.Logger) *MailerService {
	s := &MailerService{
		from: cfg.From,
		log:  log,
	}
	if cfg.Host != "" {
		s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return s
}

// SendBookingConfirmation mails the patient their token number and check-in
// code. A blank SMTP host disables sending.
func (s *MailerService) SendBookingConfirmation(to, patientName string, tokenNumber int, checkInCode string) {
	if s.dialer == nil {
		s.log.Debugf("SMTP disabled, skipping confirmation mail to %s", to)
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Appointment Confirmed - Token #%d", tokenNumber))
	m.SetBody("text/html", fmt.Sprintf(
		`<p>Hi <strong>%s</strong>,</p>
<p>Your appointment is confirmed. Your token number is <strong>%d</strong>.</p>
<p>Show this code at reception to check in:</p>
<p><code>%s</code></p>`,
		patientName, tokenNumber, checkInCode,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		s.log.Warnf("Failed to send confirmation mail to %s: %+v", to, err)
		return
	}
	s.log.Debugf("Sent confirmation mail to %s for token %d", to, tokenNumber)
}
