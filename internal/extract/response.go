package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/copextract/internal/record"
)

// ErrNoJSON means the response text contained no JSON object.
var ErrNoJSON = errors.New("no json object in response")

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// FirstJSONObject returns the first balanced {...} in s, skipping braces
// inside string literals. An unterminated object falls back to the span
// ending at the last closing brace.
func FirstJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", ErrNoJSON
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	if end := strings.LastIndexByte(s, '}'); end > start {
		return s[start : end+1], nil
	}
	return "", ErrNoJSON
}

type responsePayload struct {
	Details   []record.Detail   `json:"details"`
	Standards []record.Standard `json:"standards"`
	Warnings  []record.Warning  `json:"warnings"`
}

// DecodeResponse extracts, schema-checks and decodes the model's reply.
func DecodeResponse(text string) (record.Set, error) {
	raw, err := FirstJSONObject(stripCodeBlock(text))
	if err != nil {
		return record.Set{}, fmt.Errorf("%w (raw: %s)", err, truncate(text, 200))
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return record.Set{}, fmt.Errorf("parse response json: %w (raw: %s)", err, truncate(raw, 200))
	}

	sch, err := compiledSchema()
	if err != nil {
		return record.Set{}, fmt.Errorf("compile response schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return record.Set{}, fmt.Errorf("response schema: %w", err)
	}

	var payload responsePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return record.Set{}, fmt.Errorf("decode response: %w", err)
	}
	return record.Set{
		Details:   payload.Details,
		Standards: payload.Standards,
		Warnings:  payload.Warnings,
	}, nil
}
