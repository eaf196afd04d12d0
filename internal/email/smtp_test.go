package email

import (
	"strings"
	"testing"
)

func TestBuildMessage(t *testing.T) {
	got := buildMessage(Message{
		FromName:  "SoftwarePros",
		FromEmail: "no-reply@softwarepros.example.com",
		ToEmail:   "sales@softwarepros.example.com",
		ReplyTo:   "visitor@example.com",
		Subject:   "New contact form message",
		TextBody:  "Hello",
	})

	for _, want := range []string{
		"From: SoftwarePros <no-reply@softwarepros.example.com>\r\n",
		"To: sales@softwarepros.example.com\r\n",
		"Reply-To: visitor@example.com\r\n",
		"Subject: New contact form message\r\n",
		"\r\n\r\nHello",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("message missing %q:\n%s", want, got)
		}
	}
}

func TestBuildMessage_NoOptionalHeaders(t *testing.T) {
	got := buildMessage(Message{
		FromEmail: "a@example.com",
		ToEmail:   "b@example.com",
		Subject:   "s",
		TextBody:  "body",
	})

	if strings.Contains(got, "Reply-To:") {
		t.Fatalf("unexpected Reply-To header:\n%s", got)
	}
	if !strings.HasPrefix(got, "From: a@example.com\r\n") {
		t.Fatalf("bare address should be used without display name:\n%s", got)
	}
}
