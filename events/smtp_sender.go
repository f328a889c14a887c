package events

import (
	"context"
	"fmt"
	"net/smtp"
)

// transientSendError marks mail-transport failures the worker may retry.
type transientSendError struct {
	err error
}

func (e *transientSendError) Error() string   { return e.err.Error() }
func (e *transientSendError) Unwrap() error   { return e.err }
func (e *transientSendError) Temporary() bool { return true }

// SMTPSender delivers notices over plain SMTP. Rendering stays minimal: the
// serialized payload is the body, subject is fixed. Anything fancier is a
// presentation concern that does not belong in the pipeline.
type SMTPSender struct {
	addr     string
	username string
	password string
	host     string
}

// NewSMTPSender builds a sender for host:port.
func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	return &SMTPSender{
		addr:     fmt.Sprintf("%s:%d", host, port),
		username: username,
		password: password,
		host:     host,
	}
}

// Send implements MailSender. Transport failures are wrapped as transient
// so the worker retries them.
func (s *SMTPSender) Send(_ context.Context, to, message, infoType string) error {
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Currency Converter info request\r\n\r\nRequested %s exchange rate info:\r\n\r\n%s\r\n",
		s.username, to, infoType, message,
	)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := smtp.SendMail(s.addr, auth, s.username, []string{to}, []byte(body)); err != nil {
		return &transientSendError{err: fmt.Errorf("sending mail to %s: %w", to, err)}
	}
	return nil
}

var _ MailSender = (*SMTPSender)(nil)
