// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

// Package mail delivers transactional messages such as activation codes.
package mail

import (
	"context"
	"fmt"
	"log/slog"
)

// Template names understood by [Render].
const (
	TemplateActivation = "activation-mail"
)

// Message is one outbound mail. Data feeds the named template.
type Message struct {
	To       string
	Subject  string
	Template string
	Data     map[string]any
}

//go:generate mockgen -source=mail.go -destination=mocks/mail_mocks.go -package=mocks

// Sender delivers a [Message]. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, message Message) error
}

// Render produces the plain-text body of message.
func Render(message Message) (string, error) {
	switch message.Template {
	case TemplateActivation:
		return fmt.Sprintf(`Hello %v,

Thank you for registering. Use the code below to activate your account:

    %v

This code expires shortly. If you did not sign up, you can ignore this email.
`, message.Data["name"], message.Data["activationCode"]), nil
	default:
		return "", fmt.Errorf("mail: unknown template %q", message.Template)
	}
}

// LogSender writes messages to the log instead of delivering them.
// It is used when no SMTP relay is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a [LogSender].
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements [Sender].
func (s *LogSender) Send(ctx context.Context, message Message) error {
	body, err := Render(message)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "mail_logged",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("template", message.Template),
		slog.String("body", body),
	)
	return nil
}
