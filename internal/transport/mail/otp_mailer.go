package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/veridian-dev/auth-api/internal/domain"
)

// OTPMailer sends one-time codes over SMTP. The same mailer serves both the
// email-verification and password-reset flows; only subject and wording
// change with the purpose.
type OTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	useTLS   bool
}

func NewOTPMailer(host, port, username, password, from string, useTLS bool) *OTPMailer {
	return &OTPMailer{
		host:     strings.TrimSpace(host),
		port:     strings.TrimSpace(port),
		username: username,
		password: password,
		from:     strings.TrimSpace(from),
		useTLS:   useTLS,
	}
}

func (m *OTPMailer) SendOTP(ctx context.Context, email, code string, purpose domain.OTPPurpose) error {
	if m == nil {
		return errors.New("mailer not configured")
	}
	if m.host == "" || m.port == "" || m.from == "" {
		return errors.New("mailer missing configuration")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	subject := "Your email verification code"
	if purpose == domain.OTPPurposePasswordReset {
		subject = "Your password reset code"
	}
	body := fmt.Sprintf("Your one-time code for %s is: %s\n\nDo not share this code with anyone. If you did not request it, ignore this email.", purpose, code)

	message := strings.Builder{}
	message.WriteString(fmt.Sprintf("From: %s\r\n", m.from))
	message.WriteString(fmt.Sprintf("To: %s\r\n", email))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	message.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	message.WriteString(body)
	message.WriteString("\r\n")

	addr := net.JoinHostPort(m.host, m.port)
	var auth smtp.Auth
	if m.username != "" || m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{email}, []byte(message.String()))
}
