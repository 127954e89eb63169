package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/collabdesk/backend/internal/models"
	"github.com/collabdesk/backend/pkg/logger"
	"gorm.io/gorm"
)

// EmailService sends notification mail using SMTP settings stored in
// system configs so they can be changed at runtime. Sending silently
// succeeds when email is disabled or unconfigured.
type EmailService struct {
	db *gorm.DB
}

type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

func NewEmailService(db *gorm.DB) *EmailService {
	return &EmailService{db: db}
}

func (s *EmailService) GetConfig() *EmailConfig {
	config := &EmailConfig{}

	var configs []models.SystemConfig
	s.db.Where("`group` = ?", "email").Find(&configs)

	for _, c := range configs {
		switch c.Key {
		case "email_enabled":
			config.Enabled = c.Value == "true"
		case "email_host":
			config.Host = c.Value
		case "email_port":
			if port, err := strconv.Atoi(c.Value); err == nil {
				config.Port = port
			}
		case "email_username":
			config.Username = c.Value
		case "email_password":
			config.Password = c.Value
		case "email_from":
			config.From = c.Value
		case "email_use_tls":
			config.UseTLS = c.Value == "true"
		}
	}

	if config.Port == 0 {
		config.Port = 587
	}

	return config
}

// Send delivers a plain-text mail to the recipients.
func (s *EmailService) Send(recipients []string, subject, body string) error {
	config := s.GetConfig()
	if !config.Enabled || config.Host == "" {
		return nil
	}
	if len(recipients) == 0 {
		return nil
	}

	msg := s.buildMessage(config.From, recipients, subject, body)
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var err error
	if config.UseTLS {
		err = s.sendWithTLS(addr, config, recipients, msg)
	} else {
		var auth smtp.Auth
		if config.Username != "" {
			auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
		}
		err = smtp.SendMail(addr, auth, config.From, recipients, msg)
	}

	if err != nil {
		logger.Error().Err(err).Strs("recipients", recipients).Msg("failed to send email")
		return err
	}
	return nil
}

func (s *EmailService) buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func (s *EmailService) sendWithTLS(addr string, config *EmailConfig, recipients []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: config.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, config.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if config.Username != "" {
		auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(config.From); err != nil {
		return err
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
