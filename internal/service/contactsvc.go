package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"softwareprosweb/internal/domain"
	"softwareprosweb/internal/email"

	"github.com/google/uuid"
)

type ContactsStore interface {
	CreateMessage(ctx context.Context, m domain.ContactMessage) (domain.ContactMessage, error)
	ListMessages(ctx context.Context, limit, offset int) ([]domain.ContactMessage, error)
}

// ContactLimiter is the slice of the rate limiter the contact pipeline
// uses; ratelimit.Limiter satisfies it.
type ContactLimiter interface {
	Allow(id string) bool
	Remaining(id string) int
	RetryAfter(id string) time.Duration
}

// RateLimitedError carries advisory backoff hints alongside the
// rate-limit denial.
type RateLimitedError struct {
	RetryAfter time.Duration
	Remaining  int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error { return domain.ErrRateLimited }

const maxContactMessageLen = 4000

// ContactService accepts contact-form submissions: validate, throttle
// per submitter email, persist, then notify the sales inbox over SMTP.
type ContactService struct {
	Messages ContactsStore
	Limiter  ContactLimiter

	Mail      email.Settings
	FromName  string
	FromEmail string
	ToEmail   string

	// SendMail defaults to email.Send; tests swap it out.
	SendMail func(email.Settings, email.Message) error
	NewID    func() string
}

func (s *ContactService) Submit(ctx context.Context, name, emailAddr, company, message, clientIP string) (domain.ContactMessage, error) {
	sendMail := s.SendMail
	if sendMail == nil {
		sendMail = email.Send
	}
	newID := s.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	name = strings.TrimSpace(name)
	emailAddr = strings.TrimSpace(strings.ToLower(emailAddr))
	company = strings.TrimSpace(company)
	message = strings.TrimSpace(message)

	fields := map[string]string{}
	if name == "" {
		fields["name"] = "required"
	}
	if !validEmail(emailAddr) {
		fields["email"] = "must be a valid email address"
	}
	if message == "" || len(message) > maxContactMessageLen {
		fields["message"] = "required, at most 4000 characters"
	}
	if len(fields) > 0 {
		return domain.ContactMessage{}, domain.NewValidationError(fields)
	}

	key := "email:" + emailAddr
	if !s.Limiter.Allow(key) {
		return domain.ContactMessage{}, &RateLimitedError{
			RetryAfter: s.Limiter.RetryAfter(key),
			Remaining:  s.Limiter.Remaining(key),
		}
	}

	m, err := s.Messages.CreateMessage(ctx, domain.ContactMessage{
		ID:       newID(),
		Name:     name,
		Email:    emailAddr,
		Company:  company,
		Message:  message,
		ClientIP: clientIP,
	})
	if err != nil {
		return domain.ContactMessage{}, err
	}

	if s.Mail.Host != "" && s.FromEmail != "" && s.ToEmail != "" {
		if err := s.sendNotification(sendMail, m); err != nil {
			// The message is already stored; the caller decides whether a
			// failed notification is fatal.
			return m, fmt.Errorf("send contact notification: %w", err)
		}
	}

	return m, nil
}

func (s *ContactService) ListMessages(ctx context.Context, limit, offset int) ([]domain.ContactMessage, error) {
	return s.Messages.ListMessages(ctx, clampLimit(limit), max(offset, 0))
}

// Remaining and RetryAfter expose the limiter's advisory hints for a
// submitter, for client-side backoff.
func (s *ContactService) Remaining(emailAddr string) int {
	return s.Limiter.Remaining("email:" + strings.TrimSpace(strings.ToLower(emailAddr)))
}

func (s *ContactService) RetryAfter(emailAddr string) time.Duration {
	return s.Limiter.RetryAfter("email:" + strings.TrimSpace(strings.ToLower(emailAddr)))
}

func (s *ContactService) sendNotification(send func(email.Settings, email.Message) error, m domain.ContactMessage) error {
	lines := []string{
		"New contact form message",
		"",
		"Name: " + m.Name,
		"Email: " + m.Email,
	}
	if m.Company != "" {
		lines = append(lines, "Company: "+m.Company)
	}
	lines = append(lines, "", m.Message)

	return send(s.Mail, email.Message{
		FromName:  s.FromName,
		FromEmail: s.FromEmail,
		ToEmail:   s.ToEmail,
		ReplyTo:   m.Email,
		Subject:   "New contact form message from " + m.Name,
		TextBody:  strings.Join(lines, "\n"),
	})
}

func validEmail(s string) bool {
	if len(s) < 3 || len(s) > 254 {
		return false
	}
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	return !strings.ContainsAny(s, " \t\r\n")
}
