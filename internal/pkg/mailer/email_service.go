package mailer

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	Send(ctx context.Context, to []string, subject, body string) error
	SendReport(ctx context.Context, to []string, title, content string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) Send(ctx context.Context, to []string, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.senderEmail, s.senderName))
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)

	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			%s
		</div>
	`, strings.ReplaceAll(body, "\n", "<br>"))

	m.SetBody("text/html", html)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send email to %s: %v\n", strings.Join(to, ", "), err)
		return err
	}

	fmt.Printf("[MAILER] Email sent to %s\n", strings.Join(to, ", "))
	return nil
}

func (s *emailService) SendReport(ctx context.Context, to []string, title, content string) error {
	body := fmt.Sprintf(`
		<h2>%s</h2>
		<p>%s</p>
		<p style="color: #888; font-size: 12px;">This report was generated automatically by your business assistant.</p>
	`, title, strings.ReplaceAll(content, "\n", "<br>"))

	return s.Send(ctx, to, title, body)
}
