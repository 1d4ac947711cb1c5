package mail

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestTemplatesRender(t *testing.T) {
	t.Parallel()

	tmpl, err := NewTemplates()
	require.NoError(t, err)

	html, err := tmpl.Verification(VerificationData{Name: "Ada", Label: "User", Code: "042817", ExpiresIn: "15 minutes"})
	require.NoError(t, err)
	require.Contains(t, html, "042817")
	require.Contains(t, html, "15 minutes")

	html, err = tmpl.PasswordReset(ResetData{Link: "https://shop.example/reset-password?token=abc", ExpiresIn: "1 hour"})
	require.NoError(t, err)
	require.Contains(t, html, `href="https://shop.example/reset-password?token=abc"`)
}

func TestTemplatesEscapeInput(t *testing.T) {
	t.Parallel()

	tmpl, err := NewTemplates()
	require.NoError(t, err)

	html, err := tmpl.Verification(VerificationData{Name: "<script>x</script>", Code: "1"})
	require.NoError(t, err)
	require.NotContains(t, html, "<script>x</script>")
}

func TestBuildMIME(t *testing.T) {
	t.Parallel()

	raw := string(buildMIME(Message{From: "Supashop Support<s@x.com>", To: "a@x.com", Subject: VerificationSubject, HTML: "<p>hi</p>"}))

	require.True(t, strings.HasPrefix(raw, "From: Supashop Support<s@x.com>\r\nTo: a@x.com\r\n"))
	require.Contains(t, raw, "Subject: Verify your account SupaShop!\r\n")
	require.True(t, strings.HasSuffix(raw, "\r\n\r\n<p>hi</p>"))
}

func TestRelayHandle(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	relay := &Relay{sender: sender, logger: slog.Default()}

	payload, err := json.Marshal(Message{From: "s@x.com", To: "a@x.com", Subject: "s", HTML: "b"})
	require.NoError(t, err)

	require.NoError(t, relay.Handle(context.Background(), payload))
	require.Len(t, sender.sent, 1)
	require.Equal(t, "a@x.com", sender.sent[0].To)

	require.Error(t, relay.Handle(context.Background(), []byte("{")))
	require.Error(t, relay.Handle(context.Background(), []byte(`{"to":"a@x.com"}`)))

	sender.err = errors.New("smtp down")
	require.ErrorContains(t, relay.Handle(context.Background(), payload), "smtp down")
}

func TestLogSender(t *testing.T) {
	t.Parallel()

	require.NoError(t, NewLogSender(nil).Send(context.Background(), Message{To: "a@x.com"}))
}

func TestMailerSendsRenderedMessages(t *testing.T) {
	t.Parallel()

	tmpl, err := NewTemplates()
	require.NoError(t, err)

	sender := &recordingSender{}
	m := NewMailer(sender, tmpl, "Supashop Support<s@x.com>")

	require.NoError(t, m.SendVerification(context.Background(), "a@x.com", VerificationData{Name: "Ada", Code: "123456"}))
	require.NoError(t, m.SendPasswordReset(context.Background(), "a@x.com", ResetData{Link: "https://x/reset-password?token=t"}))

	require.Len(t, sender.sent, 2)
	require.Equal(t, VerificationSubject, sender.sent[0].Subject)
	require.Equal(t, "Supashop Support<s@x.com>", sender.sent[0].From)
	require.Contains(t, sender.sent[0].HTML, "123456")
	require.Equal(t, ResetSubject, sender.sent[1].Subject)

	sender.err = errors.New("refused")
	require.ErrorContains(t, m.SendVerification(context.Background(), "a@x.com", VerificationData{}), "refused")
}
