package message

import (
	"reflect"
	"strings"
	"testing"
)

func TestContent_Texts(t *testing.T) {
	plain := Content{Kind: KindText, Text: "hello"}
	if got := plain.Texts(); !reflect.DeepEqual(got, []string{"hello"}) {
		t.Errorf("plain content should yield one span, got %v", got)
	}

	parts := Content{Kind: KindParts, Parts: []Part{
		{Type: "text", Text: "one"},
		{Type: "image", Extra: map[string]any{"url": "x"}},
		{Type: "text", Text: "two"},
	}}
	if got := parts.Texts(); !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Errorf("part content should yield text spans only, got %v", got)
	}

	imageOnly := Content{Kind: KindParts, Parts: []Part{
		{Type: "image", Extra: map[string]any{"url": "x"}},
	}}
	if got := imageOnly.Texts(); len(got) != 0 {
		t.Errorf("non-text content should yield no spans, got %v", got)
	}
}

func TestContent_MapText(t *testing.T) {
	parts := Content{Kind: KindParts, Parts: []Part{
		{Type: "text", Text: "one"},
		{Type: "image", Extra: map[string]any{"url": "x"}},
		{Type: "text", Text: "two"},
	}}

	got := parts.MapText(func(i int, text string) string {
		return strings.ToUpper(text)
	})

	if got.Parts[0].Text != "ONE" || got.Parts[2].Text != "TWO" {
		t.Errorf("text spans should be rewritten, got %+v", got.Parts)
	}
	if got.Parts[1].Type != "image" || got.Parts[1].Extra["url"] != "x" {
		t.Errorf("non-text part should be untouched, got %+v", got.Parts[1])
	}
	// The receiver is not mutated.
	if parts.Parts[0].Text != "one" {
		t.Errorf("MapText mutated its receiver: %+v", parts.Parts[0])
	}
}

func TestClone_Independence(t *testing.T) {
	original := []Message{
		{Role: RoleUser, Content: Content{Kind: KindParts, Parts: []Part{
			{Type: "text", Text: "payload"},
			{Type: "image", Extra: map[string]any{
				"nested": map[string]any{"key": "value"},
			}},
		}}},
	}

	cloned := CloneHistory(original)
	if !reflect.DeepEqual(cloned, original) {
		t.Fatalf("clone should be value-equal")
	}

	cloned[0].Content.Parts[0].Text = "mutated"
	cloned[0].Content.Parts[1].Extra["nested"].(map[string]any)["key"] = "mutated"

	if original[0].Content.Parts[0].Text != "payload" {
		t.Error("clone shares text with original")
	}
	if original[0].Content.Parts[1].Extra["nested"].(map[string]any)["key"] != "value" {
		t.Error("clone shares nested extra fields with original")
	}
}
