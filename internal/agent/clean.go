package agent

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	openFence  = regexp.MustCompile("^```[a-zA-Z0-9_+-]*[ \t]*\r?\n")
	closeFence = regexp.MustCompile("\r?\n?```[ \t]*$")
)

// Content types a model may declare in its response envelope.
const (
	ContentCode    = "code"
	ContentContent = "content"
)

// Envelope is the JSON object models are asked to answer with.
type Envelope struct {
	ContentType string `json:"content_type"`
	Response    string `json:"response"`
}

// StripFences removes a surrounding markdown code fence, if any.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	text = openFence.ReplaceAllString(text, "")
	text = closeFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ParseEnvelope decodes a {"content_type","response"} object. Fences around
// the object are tolerated. A missing content_type defaults to "content".
func ParseEnvelope(text string) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(StripFences(text)), &env); err != nil {
		return Envelope{}, err
	}
	if env.ContentType == "" {
		env.ContentType = ContentContent
	}
	return env, nil
}

// ExtractCode returns the source code in a model response. Enveloped and
// bare responses are both accepted.
func ExtractCode(text string) string {
	if env, err := ParseEnvelope(text); err == nil && env.Response != "" {
		return StripFences(env.Response)
	}
	return StripFences(text)
}
