package mailer

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	sent []*Email
	err  error
}

func (s *captureSender) Send(ctx context.Context, email *Email) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, email)
	return nil
}

var welcomeTemplate = []byte(`---
subject: Welcome aboard
---
# Hello {{.Name}}

Your account is ready.
`)

func newMailerFixture(t *testing.T, cfg Config) (*Mailer, *captureSender) {
	t.Helper()
	sender := &captureSender{}
	templates := fstest.MapFS{
		"welcome.md": &fstest.MapFile{Data: welcomeTemplate},
		"plain.md":   &fstest.MapFile{Data: []byte("Just text.")},
	}
	return New(sender, templates, cfg), sender
}

func TestMailerSend(t *testing.T) {
	t.Parallel()

	m, sender := newMailerFixture(t, Config{From: "noreply@example.com", ReplyTo: "support@example.com"})

	err := m.Send(context.Background(), SendParams{
		To:       "alice@example.com",
		Template: "welcome.md",
		Data:     map[string]string{"Name": "Alice"},
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	email := sender.sent[0]
	assert.Equal(t, []string{"alice@example.com"}, email.To)
	assert.Equal(t, "noreply@example.com", email.From)
	assert.Equal(t, "support@example.com", email.ReplyTo)
	assert.Equal(t, "Welcome aboard", email.Subject)
	assert.Contains(t, email.HTML, "<h1>Hello Alice</h1>")
	assert.Contains(t, email.Text, "# Hello Alice")
}

func TestMailerSubjectResolution(t *testing.T) {
	t.Parallel()

	t.Run("explicit subject wins", func(t *testing.T) {
		t.Parallel()
		m, sender := newMailerFixture(t, Config{})
		err := m.Send(context.Background(), SendParams{
			To: "a@b.c", Template: "welcome.md", Subject: "Override",
			Data: map[string]string{"Name": "X"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Override", sender.sent[0].Subject)
	})

	t.Run("fallback subject", func(t *testing.T) {
		t.Parallel()
		m, sender := newMailerFixture(t, Config{FallbackSubject: "Notification"})
		err := m.Send(context.Background(), SendParams{To: "a@b.c", Template: "plain.md"})
		require.NoError(t, err)
		assert.Equal(t, "Notification", sender.sent[0].Subject)
	})

	t.Run("no subject anywhere", func(t *testing.T) {
		t.Parallel()
		m, _ := newMailerFixture(t, Config{})
		err := m.Send(context.Background(), SendParams{To: "a@b.c", Template: "plain.md"})
		assert.ErrorIs(t, err, ErrNoSubject)
	})
}

func TestMailerSendErrors(t *testing.T) {
	t.Parallel()

	t.Run("no recipient", func(t *testing.T) {
		t.Parallel()
		m, _ := newMailerFixture(t, Config{})
		err := m.Send(context.Background(), SendParams{Template: "welcome.md"})
		assert.ErrorIs(t, err, ErrNoRecipient)
	})

	t.Run("unknown template", func(t *testing.T) {
		t.Parallel()
		m, _ := newMailerFixture(t, Config{})
		err := m.Send(context.Background(), SendParams{To: "a@b.c", Template: "missing.md"})
		assert.ErrorIs(t, err, ErrRenderFailed)
	})

	t.Run("delivery failure", func(t *testing.T) {
		t.Parallel()
		m, sender := newMailerFixture(t, Config{})
		sender.err = errors.New("smtp down")
		err := m.Send(context.Background(), SendParams{
			To: "a@b.c", Template: "welcome.md", Data: map[string]string{"Name": "X"},
		})
		assert.ErrorIs(t, err, ErrSendFailed)
	})
}

func TestMailerSendRaw(t *testing.T) {
	t.Parallel()

	m, sender := newMailerFixture(t, Config{From: "noreply@example.com"})

	err := m.SendRaw(context.Background(), &Email{
		To:      []string{"a@b.c"},
		Subject: "Hi",
		Text:    "body",
	})
	require.NoError(t, err)
	assert.Equal(t, "noreply@example.com", sender.sent[0].From)

	assert.ErrorIs(t, m.SendRaw(context.Background(), &Email{Subject: "Hi"}), ErrNoRecipient)
	assert.ErrorIs(t, m.SendRaw(context.Background(), &Email{To: []string{"a@b.c"}}), ErrNoSubject)
}

func TestRenderSanitizesHTML(t *testing.T) {
	t.Parallel()

	result, err := render([]byte("Hello <script>alert(1)</script> world"), nil)
	require.NoError(t, err)
	assert.NotContains(t, result.HTML, "<script>")
	assert.Contains(t, result.Text, "<script>", "text alternative keeps the raw markdown")
}

func TestSplitFrontmatter(t *testing.T) {
	t.Parallel()

	t.Run("with frontmatter", func(t *testing.T) {
		t.Parallel()
		meta, body, err := splitFrontmatter([]byte("---\nsubject: Hi\n---\nBody"))
		require.NoError(t, err)
		assert.Equal(t, "Hi", meta["subject"])
		assert.Equal(t, "Body", body)
	})

	t.Run("without frontmatter", func(t *testing.T) {
		t.Parallel()
		meta, body, err := splitFrontmatter([]byte("Body only"))
		require.NoError(t, err)
		assert.Empty(t, meta)
		assert.Equal(t, "Body only", body)
	})

	t.Run("unclosed frontmatter", func(t *testing.T) {
		t.Parallel()
		_, _, err := splitFrontmatter([]byte("---\nsubject: Hi\nBody"))
		assert.ErrorIs(t, err, ErrInvalidFrontmatter)
	})

	t.Run("broken yaml", func(t *testing.T) {
		t.Parallel()
		_, _, err := splitFrontmatter([]byte("---\n[broken\n---\nBody"))
		assert.ErrorIs(t, err, ErrInvalidFrontmatter)
	})
}
