package mail

import (
	"context"
	"fmt"
)

// Mailer renders the account emails and hands them to a Sender.
type Mailer struct {
	sender    Sender
	templates *Templates
	from      string
}

func NewMailer(sender Sender, templates *Templates, from string) *Mailer {
	return &Mailer{sender: sender, templates: templates, from: from}
}

func (m *Mailer) SendVerification(ctx context.Context, to string, data VerificationData) error {
	html, err := m.templates.Verification(data)
	if err != nil {
		return err
	}
	if err := m.sender.Send(ctx, Message{From: m.from, To: to, Subject: VerificationSubject, HTML: html}); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}
	return nil
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to string, data ResetData) error {
	html, err := m.templates.PasswordReset(data)
	if err != nil {
		return err
	}
	if err := m.sender.Send(ctx, Message{From: m.from, To: to, Subject: ResetSubject, HTML: html}); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}
