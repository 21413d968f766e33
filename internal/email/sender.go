// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

/*
Package email delivers transactional mail for the Forkful platform.

It currently covers one message class: email-confirmation links, sent on
registration, on reconfirmation requests and by the weekly reminder sweep.

# Architecture

Callers depend on the [Sender] interface. Two implementations ship:

  - [SMTPSender] renders an HTML template and submits it to a relay.
  - [LogSender] writes the link to the log, for development environments
    without a relay.
*/
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
)

// Sender delivers a confirmation link to a recipient.
type Sender interface {
	SendConfirmation(ctx context.Context, toEmail, name, link string) error
}

// confirmationSubject is the subject line for confirmation messages.
const confirmationSubject = "Confirm your Forkful account"

// confirmationTemplate renders the HTML body. The layout mirrors the
// in-app palette so the message is recognizably ours.
var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333;">
  <h2>Hi {{.Name}},</h2>
  <p>Welcome to Forkful! Please confirm your email address to activate your account.</p>
  <p style="margin: 24px 0;">
    <a href="{{.Link}}" style="background: #e8542f; color: #fff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Confirm Email</a>
  </p>
  <p>This link expires shortly. If it has already expired, request a new one from the sign-in screen.</p>
  <p>If you did not create a Forkful account, you can safely ignore this message.</p>
</body>
</html>`))

type confirmationData struct {
	Name string
	Link string
}

// SMTPSender delivers mail through a standard SMTP relay.
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPSender constructs a sender for the given relay.
func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// SendConfirmation renders the confirmation body and submits it to the relay.
//
// The ctx parameter is accepted for interface symmetry; net/smtp has no
// context support, so cancellation takes effect only between messages.
func (sender *SMTPSender) SendConfirmation(ctx context.Context, toEmail, name, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, confirmationData{Name: name, Link: link}); err != nil {
		return fmt.Errorf("email_template_render_failed: %w", err)
	}

	message := buildMessage(sender.from, toEmail, confirmationSubject, body.String())

	var auth smtp.Auth
	if sender.username != "" {
		auth = smtp.PlainAuth("", sender.username, sender.password, sender.host)
	}

	address := sender.host + ":" + sender.port
	if err := smtp.SendMail(address, auth, sender.from, []string{toEmail}, message); err != nil {
		return fmt.Errorf("email_send_failed: %w", err)
	}

	return nil
}

// buildMessage assembles RFC 5322 headers plus the HTML body.
func buildMessage(from, to, subject, htmlBody string) []byte {
	var builder strings.Builder

	builder.WriteString("From: " + from + "\r\n")
	builder.WriteString("To: " + to + "\r\n")
	builder.WriteString("Subject: " + subject + "\r\n")
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(htmlBody)

	return []byte(builder.String())
}

// LogSender writes confirmation links to the structured log instead of
// sending mail. Used in development when no SMTP relay is configured.
type LogSender struct {
	log *slog.Logger
}

// NewLogSender constructs a log-backed sender.
func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

// SendConfirmation logs the link at INFO so developers can click through.
func (sender *LogSender) SendConfirmation(ctx context.Context, toEmail, name, link string) error {
	sender.log.InfoContext(ctx, "confirmation_email_logged",
		slog.String("to", toEmail),
		slog.String("name", name),
		slog.String("link", link),
	)
	return nil
}
