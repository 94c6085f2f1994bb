package agent

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", "print(1)", "print(1)"},
		{"python fence", "```python\nprint(1)\n```", "print(1)"},
		{"plain fence", "```\nx = 1\ny = 2\n```", "x = 1\ny = 2"},
		{"surrounding space", "  \n```py\nprint(1)\n```  \n", "print(1)"},
		{"inner backticks kept", "s = '`'", "s = '`'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"envelope", `{"content_type":"code","response":"print(1)"}`, "print(1)"},
		{"fenced envelope", "```json\n{\"content_type\":\"code\",\"response\":\"x = 1\"}\n```", "x = 1"},
		{"fence inside envelope", `{"content_type":"code","response":"` + "```python\\nx = 1\\n```" + `"}`, "x = 1"},
		{"raw code", "```python\nx = 1\n```", "x = 1"},
		{"empty response falls back", `{"content_type":"code","response":""}`, `{"content_type":"code","response":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractCode(tt.in); got != tt.want {
				t.Errorf("ExtractCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseEnvelope_DefaultsContentType(t *testing.T) {
	env, err := ParseEnvelope(`{"response":"hello"}`)
	if err != nil {
		t.Fatalf("ParseEnvelope: %v", err)
	}
	if env.ContentType != ContentContent {
		t.Errorf("content type = %q, want %q", env.ContentType, ContentContent)
	}
}
