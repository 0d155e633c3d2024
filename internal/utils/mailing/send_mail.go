package mailing

import (
	"errors"
	"strconv"

	"gopkg.in/gomail.v2"

	"Pantry-Service/internal/utils"
)

type MailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPEmail    string
	SMTPPassword string
}

// Mailer sends HTML mail over SMTP.
type Mailer struct {
	config MailConfig
	dialer *gomail.Dialer
}

func LoadMailConfig() MailConfig {
	return MailConfig{
		SMTPHost:     utils.GetConfig("SMTP_HOST"),
		SMTPPort:     utils.GetConfig("SMTP_PORT"),
		SMTPSender:   utils.GetConfig("SMTP_SENDER_NAME"),
		SMTPEmail:    utils.GetConfig("SMTP_AUTH_EMAIL"),
		SMTPPassword: utils.GetConfig("SMTP_AUTH_PASSWORD"),
	}
}

func NewMailer(config MailConfig) (*Mailer, error) {
	if config.SMTPHost == "" || config.SMTPEmail == "" {
		return nil, errors.New("mailing: SMTP host and sender email are required")
	}
	port, err := strconv.Atoi(config.SMTPPort)
	if err != nil {
		return nil, err
	}

	return &Mailer{
		config: config,
		dialer: gomail.NewDialer(config.SMTPHost, port, config.SMTPEmail, config.SMTPPassword),
	}, nil
}

func (m *Mailer) SendMail(toEmail string, subject string, body string) error {
	return m.dialer.DialAndSend(m.message(toEmail, subject, body))
}

func (m *Mailer) message(toEmail string, subject string, body string) *gomail.Message {
	mailer := gomail.NewMessage()
	if m.config.SMTPSender != "" {
		mailer.SetAddressHeader("From", m.config.SMTPEmail, m.config.SMTPSender)
	} else {
		mailer.SetHeader("From", m.config.SMTPEmail)
	}
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)
	return mailer
}
