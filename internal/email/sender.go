package email

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"confroom-backend/internal/config"
)

// Sender dispatches transactional mail. Implementations must be safe for
// concurrent use.
type Sender interface {
	SendVerificationCode(to, name, code string) error
}

var verificationTmpl = template.Must(template.New("verification").Parse(`
<p>Hi {{.Name}},</p>
<p>Your verification code is <strong>{{.Code}}</strong>. It expires in {{.TTL}} minutes.</p>
`))

type GomailSender struct {
	dialer *gomail.Dialer
	from   string
	ttl    int
}

func NewGomailSender(cfg config.SMTPConfig, ttlMinutes int) *GomailSender {
	return &GomailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		ttl:    ttlMinutes,
	}
}

func (s *GomailSender) SendVerificationCode(to, name, code string) error {
	var buf bytes.Buffer
	err := verificationTmpl.Execute(&buf, map[string]any{
		"Name": name,
		"Code": code,
		"TTL":  s.ttl,
	})
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your verification code")
	m.SetBody("text/html", buf.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}

	return nil
}

// NoopSender is used when no SMTP host is configured.
type NoopSender struct{}

func (NoopSender) SendVerificationCode(to, name, code string) error {
	return nil
}
