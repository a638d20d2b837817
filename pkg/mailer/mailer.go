// Package mailer sends templated emails. Templates are markdown files
// with YAML frontmatter; the rendered HTML is sanitized before delivery.
// Actual transport is behind the Sender interface.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNoRecipient is returned when an email has no recipient.
	ErrNoRecipient = errors.New("mailer: no recipient")
	// ErrNoSubject is returned when an email has no subject.
	ErrNoSubject = errors.New("mailer: no subject")
	// ErrRenderFailed wraps template rendering failures.
	ErrRenderFailed = errors.New("mailer: render failed")
	// ErrSendFailed wraps delivery failures.
	ErrSendFailed = errors.New("mailer: send failed")
)

// Email is a fully prepared message.
type Email struct {
	Subject     string
	HTML        string
	Text        string
	From        string
	ReplyTo     string
	To          []string
	CC          []string
	BCC         []string
	Attachments []Attachment
}

// Attachment is one email attachment.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Sender delivers prepared emails. Provider adapters implement it.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Config holds mailer defaults.
type Config struct {
	// From is the default sender address.
	From string
	// ReplyTo is the default reply-to address.
	ReplyTo string
	// FallbackSubject is used when neither the call nor the template
	// provides a subject.
	FallbackSubject string
}

// Mailer renders templates and hands the result to a sender.
type Mailer struct {
	sender    Sender
	templates fs.FS
	config    Config
}

// New creates a mailer reading templates from the given filesystem.
func New(sender Sender, templates fs.FS, cfg Config) *Mailer {
	return &Mailer{sender: sender, templates: templates, config: cfg}
}

// SendParams describes one templated send.
type SendParams struct {
	To       string
	Template string // template filename, e.g. "welcome.md"
	Data     any

	Subject     string // overrides the template's frontmatter subject
	From        string
	ReplyTo     string
	CC          []string
	BCC         []string
	Attachments []Attachment
}

// Send renders the template and delivers the email. Subject resolution:
// params.Subject, then the template's frontmatter, then the fallback.
func (m *Mailer) Send(ctx context.Context, params SendParams) error {
	if params.To == "" {
		return ErrNoRecipient
	}

	raw, err := fs.ReadFile(m.templates, params.Template)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	result, err := render(raw, params.Data)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	subject := params.Subject
	if subject == "" {
		if s, ok := result.Metadata["subject"].(string); ok {
			subject = s
		} else {
			subject = m.config.FallbackSubject
		}
	}
	if subject == "" {
		return ErrNoSubject
	}

	replyTo := params.ReplyTo
	if replyTo == "" {
		replyTo = m.config.ReplyTo
	}

	email := &Email{
		Subject:     subject,
		HTML:        result.HTML,
		Text:        result.Text,
		From:        params.From,
		ReplyTo:     replyTo,
		To:          []string{params.To},
		CC:          params.CC,
		BCC:         params.BCC,
		Attachments: params.Attachments,
	}
	if email.From == "" {
		email.From = m.config.From
	}

	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

// SendRaw delivers a prepared email without rendering.
func (m *Mailer) SendRaw(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return ErrNoRecipient
	}
	if email.Subject == "" {
		return ErrNoSubject
	}
	if email.From == "" {
		email.From = m.config.From
	}
	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}
