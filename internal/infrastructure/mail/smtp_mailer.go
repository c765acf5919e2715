package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/branch-pos-api/internal/application/auth"
	"github.com/jhoicas/branch-pos-api/pkg/config"
)

var _ auth.Mailer = (*SMTPMailer)(nil)

const resetSubject = "Restablecer contraseña"

var resetTemplate = template.Must(template.New("reset").Parse(`<p>Hola {{.Name}},</p>
<p>Recibimos una solicitud para restablecer la contraseña de tu cuenta.</p>
<p><a href="{{.Link}}">Restablecer contraseña</a></p>
<p>Si no fuiste tú, ignora este correo; el enlace vence solo.</p>`))

// SMTPMailer envía los correos de la cuenta por SMTP.
type SMTPMailer struct {
	from   string
	sender func(msgs ...*gomail.Message) error
}

// NewSMTPMailer construye el mailer con el servidor configurado. Cada envío abre y
// cierra su propia conexión.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &SMTPMailer{from: cfg.From, sender: d.DialAndSend}
}

// NewMailerWithSender usa s en vez de un servidor SMTP real (tests, proveedores con API).
func NewMailerWithSender(from string, s gomail.Sender) *SMTPMailer {
	return &SMTPMailer{from: from, sender: func(msgs ...*gomail.Message) error { return gomail.Send(s, msgs...) }}
}

// SendPasswordReset envía el enlace de restablecimiento a to.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, name, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, struct{ Name, Link string }{name, link}); err != nil {
		return fmt.Errorf("render reset mail: %w", err)
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", resetSubject)
	msg.SetBody("text/plain", fmt.Sprintf("Hola %s,\n\nPara restablecer tu contraseña abre este enlace:\n%s\n", name, link))
	msg.AddAlternative("text/html", body.String())
	if err := m.sender(msg); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}
