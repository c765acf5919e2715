package mail_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/branch-pos-api/internal/infrastructure/mail"
)

type captured struct {
	from string
	to   []string
	raw  string
}

func TestSMTPMailer_EnviaEnlace(t *testing.T) {
	var got captured
	sender := gomail.SendFunc(func(from string, to []string, msg io.WriterTo) error {
		var buf bytes.Buffer
		if _, err := msg.WriteTo(&buf); err != nil {
			return err
		}
		got = captured{from: from, to: to, raw: buf.String()}
		return nil
	})
	m := mail.NewMailerWithSender("no-reply@pos.local", sender)

	err := m.SendPasswordReset(context.Background(), "jane@example.com", "Jane", "http://pos.local/reset-password?token=abc")
	require.NoError(t, err)

	assert.Equal(t, "no-reply@pos.local", got.from)
	assert.Equal(t, []string{"jane@example.com"}, got.to)
	assert.Contains(t, got.raw, "reset-password?token", "el cuerpo va en quoted-printable")
	assert.Contains(t, got.raw, "text/html")
}

func TestSMTPMailer_PropagaErrorDelServidor(t *testing.T) {
	sender := gomail.SendFunc(func(string, []string, io.WriterTo) error {
		return errors.New("connection refused")
	})
	m := mail.NewMailerWithSender("no-reply@pos.local", sender)

	err := m.SendPasswordReset(context.Background(), "jane@example.com", "Jane", "http://x")
	assert.ErrorContains(t, err, "connection refused")
}

func TestSMTPMailer_ContextoCancelado(t *testing.T) {
	called := false
	sender := gomail.SendFunc(func(string, []string, io.WriterTo) error {
		called = true
		return nil
	})
	m := mail.NewMailerWithSender("no-reply@pos.local", sender)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.SendPasswordReset(ctx, "jane@example.com", "Jane", "http://x"), context.Canceled)
	assert.False(t, called)
}
