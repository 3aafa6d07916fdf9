package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"huski_bookings/internal/shared"
)

// Mailer sends transactional mail over SMTP. Port 465 gets implicit TLS,
// anything else STARTTLS.
type Mailer struct {
	host    string
	port    int
	user    string
	pass    string
	from    string
	timeout time.Duration
}

func New(cfg shared.Config) *Mailer {
	return &Mailer{
		host:    cfg.SMTPHost,
		port:    cfg.SMTPPort,
		user:    cfg.SMTPUser,
		pass:    cfg.SMTPPass,
		from:    cfg.SMTPFrom,
		timeout: 30 * time.Second,
	}
}

func (m *Mailer) SendActivation(ctx context.Context, to, name, activationURL string) error {
	body := fmt.Sprintf(`<div>
<p><strong>Hello %s</strong></p>
<p>You registered an account on Huski. Before being able to use your account, you need to verify your email address by clicking here:</p>
<a href=%q><button style="background-color:#609966; display:inline-block; padding:20px; width:200px;color:#ffffff;text-align:center;">Click here</button></a>
<br />
<p>Kind Regards</p>
</div>`, name, activationURL)
	return m.send(ctx, to, "Verify Email", body)
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	body := fmt.Sprintf(`<div>
<p>A password change was requested for your Huski account.</p>
<p><a href=%q>Reset your password</a> (the link expires in 30 minutes).</p>
<p>If this wasn't you, you can ignore this mail.</p>
</div>`, resetURL)
	return m.send(ctx, to, "change password", body)
}

// BuildMessage assembles headers and HTML body. Exposed for tests.
func (m *Mailer) BuildMessage(to, subject, htmlBody string) string {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: Huski <%s>\r\n", m.from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	msg.WriteString("\r\n")
	return msg.String()
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	dialer := &net.Dialer{Timeout: m.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if m.port == 465 {
		conn = tls.Client(conn, &tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12})
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if m.port != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			cfg := &tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12}
			if err := client.StartTLS(cfg); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if m.user != "" && m.pass != "" {
		auth := smtp.PlainAuth("", m.user, m.pass, m.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("start message: %w", err)
	}
	if _, err := w.Write([]byte(m.BuildMessage(to, subject, htmlBody))); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	// Message is already accepted at this point; a failed QUIT is harmless.
	_ = client.Quit()
	return nil
}
