package pipeline

import (
	"reflect"
	"strings"
	"testing"

	"ctxpipe/internal/message"
)

const testSecret = "sk-" + "a1B2c3D4e5F6g7H8i9J0a1B2c3D4e5F6g7H8i9J0a1B2c3D4"

func TestRedactor_PlainText(t *testing.T) {
	r, err := NewRedactor(DefaultSecretPattern, DefaultReplacement)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history := []message.Message{
		message.Text(message.RoleUser, "my key is "+testSecret+" please keep it safe"),
	}

	out, report, err := r.Apply(history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out[0].Content.Text
	if strings.Contains(got, testSecret) {
		t.Errorf("secret survived redaction: %s", got)
	}
	if got != "my key is REDACTED please keep it safe" {
		t.Errorf("surrounding text should be unchanged, got: %s", got)
	}
	if !report.Changed || report.Replacements != 1 {
		t.Errorf("report: got %+v, want 1 replacement", report)
	}
}

func TestRedactor_PartList(t *testing.T) {
	r, err := NewRedactor(DefaultSecretPattern, DefaultReplacement)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history := []message.Message{
		{Role: message.RoleUser, Content: message.Content{Kind: message.KindParts, Parts: []message.Part{
			{Type: "text", Text: "use " + testSecret},
			{Type: "image", Extra: map[string]any{"url": "https://example.com/sk-not-a-key.png"}},
			{Type: "text", Text: "no secrets here"},
		}}},
	}

	out, report, err := r.Apply(history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parts := out[0].Content.Parts
	if parts[0].Text != "use REDACTED" {
		t.Errorf("expected redacted span, got: %s", parts[0].Text)
	}
	if parts[1].Extra["url"] != "https://example.com/sk-not-a-key.png" {
		t.Errorf("non-text part should be untouched, got: %v", parts[1].Extra)
	}
	if parts[2].Text != "no secrets here" {
		t.Errorf("non-matching span should be unchanged, got: %s", parts[2].Text)
	}
	if report.Replacements != 1 {
		t.Errorf("expected 1 replacement, got %d", report.Replacements)
	}
}

func TestRedactor_NoMatch(t *testing.T) {
	r, err := NewRedactor(DefaultSecretPattern, DefaultReplacement)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history := []message.Message{
		message.Text(message.RoleUser, "status=200 OK"),
	}
	out, report, err := r.Apply(history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(out, history) {
		t.Error("expected no change for safe content")
	}
	if report.Changed {
		t.Error("report should not mark a no-op as changed")
	}
}

func TestNewRedactor_InvalidPattern(t *testing.T) {
	_, err := NewRedactor("(unclosed", "X")
	if err == nil {
		t.Fatal("expected a compile error for an invalid pattern")
	}
}
