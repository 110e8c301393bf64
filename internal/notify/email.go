package notify

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"eventreg/internal/models"
)

// EmailSender mails the organisers about each new registration.
type EmailSender struct {
	Host       string
	Port       int
	From       string
	To         []string
	Username   string
	Password   string
	EventTitle string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailSender returns nil unless host, from and to are all set. to is a
// comma-separated list.
func NewEmailSender(host string, port int, from, to, username, password, eventTitle string) *EmailSender {
	if host == "" || from == "" || to == "" {
		return nil
	}
	var recipients []string
	for _, r := range strings.Split(to, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	if len(recipients) == 0 {
		return nil
	}
	return &EmailSender{
		Host:       host,
		Port:       port,
		From:       from,
		To:         recipients,
		Username:   username,
		Password:   password,
		EventTitle: eventTitle,
		sendMail:   smtp.SendMail,
	}
}

func (es *EmailSender) message(r models.Registration) []byte {
	name := html.UnescapeString(r.Name)
	subject := fmt.Sprintf("New registration: %s", es.EventTitle)

	var body strings.Builder
	fmt.Fprintf(&body, "%s registered for %s.\n\nPhone: %s\n", name, es.EventTitle, r.Phone)
	if r.Comment != "" {
		fmt.Fprintf(&body, "Comment: %s\n", html.UnescapeString(r.Comment))
	}

	return []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		es.From, strings.Join(es.To, ", "), subject, body.String()))
}

// Send ignores ctx cancellation once the SMTP dialogue has started.
func (es *EmailSender) Send(ctx context.Context, r models.Registration) error {
	if es == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", es.Host, es.Port)

	var auth smtp.Auth
	if es.Username != "" {
		auth = smtp.PlainAuth("", es.Username, es.Password, es.Host)
	}

	if err := es.sendMail(addr, auth, es.From, es.To, es.message(r)); err != nil {
		return fmt.Errorf("send registration email: %w", err)
	}
	return nil
}
