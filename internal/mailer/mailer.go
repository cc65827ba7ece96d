package mailer

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const listingCreatedSubject = "New Listing Created"

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer notifies owners about their listings.
type SMTPMailer struct {
	from   string
	sender sender
	logger *logger.Logger
}

func NewSMTPMailer(host string, port int, username, password string, log *logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		from:   username,
		sender: gomail.NewDialer(host, port, username, password),
		logger: log.Named("SMTPMailer"),
	}
}

func listingCreatedMessage(from, to, title string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", listingCreatedSubject)
	m.SetBody("text/plain", fmt.Sprintf("Your listing '%s' has been created successfully.", title))
	return m
}

func (s *SMTPMailer) SendListingCreated(ctx context.Context, toEmail, listingTitle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.sender.DialAndSend(listingCreatedMessage(s.from, toEmail, listingTitle)); err != nil {
		return fmt.Errorf("send listing created email to %s: %w", toEmail, err)
	}
	s.logger.Info("Listing created email sent", zap.String("to", toEmail))
	return nil
}
