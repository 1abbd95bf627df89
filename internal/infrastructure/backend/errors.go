package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	serverMinLengthMsg = "Ensure this field has at least 8 characters."
	minLengthMsg       = "Password must be at least 8 characters long"
)

// failureMessage picks the user-facing text of an error body: the error,
// detail or message field, then the raw body, then a generic text.
func failureMessage(data json.RawMessage) string {
	if msg := firstField(data, "error", "detail", "message"); msg != "" {
		return msg
	}
	if len(data) > 0 {
		var text string
		if err := json.Unmarshal(data, &text); err == nil {
			if strings.TrimSpace(text) != "" {
				return text
			}
		} else if string(data) != "null" {
			return string(data)
		}
	}
	return msgUnknownServer
}

// firstField returns the first non-empty string field of a JSON object.
func firstField(data []byte, names ...string) string {
	var obj map[string]json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &obj) != nil {
		return ""
	}
	for _, name := range names {
		raw, ok := obj[name]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}

// flattenMessages collects every string value of a validation body, in
// document order. {"email": ["taken"], "password": ["short", "common"]}
// yields [taken short common]. Object keys are skipped.
func flattenMessages(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var (
		out []string
		// containers holds '{' or '[' for each open level.
		containers []json.Delim
		expectKey  bool
	)
	inObject := func() bool {
		return len(containers) > 0 && containers[len(containers)-1] == '{'
	}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			if len(containers) > 0 {
				return nil, fmt.Errorf("decode validation body: %w", io.ErrUnexpectedEOF)
			}
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode validation body: %w", err)
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				containers = append(containers, v)
				expectKey = v == '{'
			default:
				containers = containers[:len(containers)-1]
				expectKey = inObject()
			}
		case string:
			if inObject() && expectKey {
				expectKey = false
				continue
			}
			out = append(out, v)
			expectKey = inObject()
		default:
			expectKey = inObject()
		}
	}
}

// joinValidation flattens a validation body into one sentence, or returns
// fallback when the body carries nothing usable.
func joinValidation(data []byte, fallback string) string {
	msgs, err := flattenMessages(data)
	if err != nil || len(msgs) == 0 {
		return fallback
	}
	return strings.Join(msgs, " ")
}

// resetMessage maps a password-reset error body to one sentence. Duplicate
// messages are dropped and the backend's minimum-length text is reworded.
func resetMessage(data []byte) string {
	msgs, err := flattenMessages(data)
	if err != nil || len(msgs) == 0 {
		return "Validation failed"
	}
	seen := make(map[string]struct{}, len(msgs))
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m == serverMinLengthMsg {
			m = minLengthMsg
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return strings.Join(out, " ")
}
