package mailer

import (
	"context"
	"log"
)

// Mailer is the outbound email collaborator. Sending is always best-effort:
// callers log failures and never surface them as workflow errors.
type Mailer interface {
	SendHTMLMail(ctx context.Context, to, subject, html, text string) error
}

// LogMailer writes the mail that would be sent to the process log. It stands
// in for the real transport in development and tests; production deployments
// plug in an implementation backed by the university relay.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) SendHTMLMail(ctx context.Context, to, subject, html, text string) error {
	log.Printf("[EMAIL] To=%s, Subject=%s, Bytes=%d", to, subject, len(html))
	return nil
}
