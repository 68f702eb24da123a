package account

import (
	"context"
	"fmt"
	"strings"
)

// Message is an outbound notification handed to the Mailer.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers messages. Delivery is an external collaborator; this
// package only composes content and hands it off.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// MailerFunc adapts a function to the Mailer interface.
type MailerFunc func(ctx context.Context, msg Message) error

// Send implements Mailer.
func (f MailerFunc) Send(ctx context.Context, msg Message) error {
	if f == nil {
		return nil
	}
	return f(ctx, msg)
}

type noopMailer struct{}

func (noopMailer) Send(context.Context, Message) error {
	return nil
}

func normalizeMailer(m Mailer) Mailer {
	if m == nil {
		return noopMailer{}
	}
	return m
}

func linkURL(baseURL, link string) string {
	return fmt.Sprintf("%s/%s/", strings.TrimRight(baseURL, "/"), link)
}

func welcomeMessage(acc *Account, baseURL string) Message {
	link := linkURL(baseURL, acc.EmailLink)
	return Message{
		To:      acc.Email,
		Subject: "Welcome! Please confirm your email",
		HTML:    fmt.Sprintf(`<p>Welcome! Confirm your email by following <a href="%s">this link</a>.</p>`, link),
		Text:    fmt.Sprintf("Welcome! Confirm your email by following this link: %s", link),
	}
}

func emailChangeMessage(acc *Account, baseURL string) Message {
	link := linkURL(baseURL, acc.EmailLink)
	return Message{
		To:      acc.PendingEmail,
		Subject: "Confirm your new email",
		HTML:    fmt.Sprintf(`<p>Confirm your new email address by following <a href="%s">this link</a>.</p>`, link),
		Text:    fmt.Sprintf("Confirm your new email address by following this link: %s", link),
	}
}

func passwordResetMessage(acc *Account, baseURL string) Message {
	link := linkURL(baseURL, acc.PasswordLink)
	return Message{
		To:      acc.Email,
		Subject: "Change your password here",
		HTML:    fmt.Sprintf(`<p>You can change your password by following <a href="%s">this link</a>.</p>`, link),
		Text:    fmt.Sprintf("You can change your password by following this link: %s", link),
	}
}
