package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/academy-commerce/internal/lib/sl"
	smtplib "github.com/magabrotheeeer/academy-commerce/internal/lib/smtp"
	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// SenderService отправляет пользователям письма-квитанции о покупках.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

type Transport interface {
	Connect() (smtplib.Client, error)
	GetSMTPUser() string
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport Transport) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendReceipt отправляет квитанцию о покупке из сообщения очереди.
func (s *SenderService) SendReceipt(body []byte) error {
	var receipt models.Receipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		s.log.Error("Failed to unmarshal message body", "error", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{receipt.Email}
	subject := "Your purchase receipt"
	bodyText := fmt.Sprintf("Hello, %s!\n\nThank you for your purchase:\n%s\n\nTotal charged: $%.2f.",
		receipt.Username, receipt.Summary, receipt.TotalUSD)
	if receipt.Source == "coupon" {
		subject = "Your coupon has been redeemed"
		bodyText = fmt.Sprintf("Hello, %s!\n\nYour coupon has been redeemed:\n%s",
			receipt.Username, receipt.Summary)
	}

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("Failed to connect to SMTP server", "error", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("Failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("Failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("Failed to get Data writer", "error", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("Failed to write email body", "error", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("Failed to close Data writer", "error", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("Failed to quit SMTP client", "error", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
