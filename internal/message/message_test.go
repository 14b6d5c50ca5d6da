package message

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestContent_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Content
		wantErr bool
	}{
		{
			name:  "plain string",
			input: `"hello world"`,
			want:  Content{Kind: KindText, Text: "hello world"},
		},
		{
			name:  "empty string",
			input: `""`,
			want:  Content{Kind: KindText, Text: ""},
		},
		{
			name:  "text parts",
			input: `[{"type":"text","text":"one"},{"type":"text","text":"two"}]`,
			want: Content{Kind: KindParts, Parts: []Part{
				{Type: "text", Text: "one"},
				{Type: "text", Text: "two"},
			}},
		},
		{
			name:  "mixed parts keep opaque fields",
			input: `[{"type":"image","url":"https://example.com/a.png"},{"type":"text","text":"caption"}]`,
			want: Content{Kind: KindParts, Parts: []Part{
				{Type: "image", Extra: map[string]any{"url": "https://example.com/a.png"}},
				{Type: "text", Text: "caption"},
			}},
		},
		{
			name:    "number is not content",
			input:   `42`,
			wantErr: true,
		},
		{
			name:    "object is not content",
			input:   `{"text":"nope"}`,
			wantErr: true,
		},
		{
			name:    "array of non-objects",
			input:   `["just","strings"]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Content
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				var fe *FormatError
				if !errors.As(err, &fe) {
					t.Fatalf("expected FormatError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMessage_UnmarshalJSON_MissingKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "missing role", input: `{"content":"hi"}`},
		{name: "missing content", input: `{"role":"user"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Message
			err := json.Unmarshal([]byte(tt.input), &m)
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FormatError, got %v", err)
			}
		})
	}
}

func TestContent_MarshalJSON_RoundTrip(t *testing.T) {
	original := []Message{
		Text(RoleSystem, "be helpful"),
		{Role: RoleUser, Content: Content{Kind: KindParts, Parts: []Part{
			{Type: "text", Text: "look at this"},
			{Type: "image", Extra: map[string]any{"url": "https://example.com/a.png", "detail": "low"}},
		}}},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Plain text stays a JSON string, parts stay an array.
	var shapes []struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &shapes); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if shapes[0].Content[0] != '"' {
		t.Errorf("plain content should marshal as a string, got %s", shapes[0].Content)
	}
	if shapes[1].Content[0] != '[' {
		t.Errorf("part content should marshal as an array, got %s", shapes[1].Content)
	}

	var decoded []Message
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded, original) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}

func TestValidateHistory_ReportsIndex(t *testing.T) {
	history := []Message{
		Text(RoleUser, "fine"),
		{Role: "", Content: Content{Kind: KindText}},
	}
	err := ValidateHistory(history)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if fe.Index != 1 {
		t.Errorf("expected index 1, got %d", fe.Index)
	}
}
