package service

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/docvault/docvault/internal/config"
	appErr "github.com/docvault/docvault/internal/pkg/errors"
)

type EmailSender interface {
	Send(to, subject, markdownBody string) error
}

type smtpSender struct {
	cfg config.MailConfig
}

func NewEmailSender(cfg config.MailConfig) EmailSender {
	return &smtpSender{cfg: cfg}
}

// Send renders the markdown body to HTML and delivers it over plain SMTP.
func (s *smtpSender) Send(to, subject, markdownBody string) error {
	from := strings.TrimSpace(s.cfg.From)
	if s.cfg.Host == "" || s.cfg.Port == 0 || from == "" {
		return appErr.ErrInvalid
	}
	html, err := renderMailHTML(markdownBody)
	if err != nil {
		return err
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	msg := []byte("From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" + html)
	return smtp.SendMail(addr, auth, from, []string{to}, msg)
}
