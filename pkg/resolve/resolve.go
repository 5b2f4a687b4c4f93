// Package resolve extracts the hosted file URL from an upload response.
//
// Three strategies run in a fixed order and the first match wins:
//
//  1. the whole body, trimmed, is a URL;
//  2. the profile's {json:<path>} template points at a URL string;
//  3. one of the well-known keys url, link, result or data.url holds a URL.
package resolve

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/bft-labs/dropship/pkg/profile"
)

// MaxPreview bounds the response text carried by errors.
const MaxPreview = 2048

// ErrNotFound is matched by *NotFoundError.
var ErrNotFound = errors.New("resolve: no URL found in response")

// Strategy names the rule that produced a URL.
type Strategy int

const (
	StrategyBareURL Strategy = iota + 1
	StrategyTemplate
	StrategyHeuristic
)

// String returns a short name for logs.
func (s Strategy) String() string {
	switch s {
	case StrategyBareURL:
		return "bare-url"
	case StrategyTemplate:
		return "template"
	case StrategyHeuristic:
		return "heuristic"
	default:
		return "none"
	}
}

// candidates are probed by the heuristic strategy, in order.
var candidates = [][]string{
	{"url"},
	{"link"},
	{"result"},
	{"data", "url"},
}

// Result is a successful resolution.
type Result struct {
	URL      *url.URL
	Strategy Strategy
}

// NotFoundError carries a preview of a response no strategy matched.
type NotFoundError struct {
	Preview string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unexpected response: %s", e.Preview)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Resolve finds the uploaded file's URL in body. p may be nil, which
// disables the template strategy.
func Resolve(p *profile.Profile, body []byte) (Result, error) {
	if u, ok := bareURL(body); ok {
		return Result{URL: u, Strategy: StrategyBareURL}, nil
	}

	// JSON decode failures only mean the JSON strategies do not apply.
	doc, err := ParseJSON(body)
	if err == nil {
		if p != nil {
			if tmpl, ok := p.URLTemplate(); ok {
				if u, ok := FromTemplate(doc, tmpl); ok {
					return Result{URL: u, Strategy: StrategyTemplate}, nil
				}
			}
		}
		if u, ok := fromCandidates(doc); ok {
			return Result{URL: u, Strategy: StrategyHeuristic}, nil
		}
	}

	return Result{}, &NotFoundError{Preview: Preview(body)}
}

// FromTemplate applies a {json:<path>} template to doc.
func FromTemplate(doc Value, template string) (*url.URL, bool) {
	if !profile.IsJSONTemplate(template) {
		return nil, false
	}
	path := strings.TrimSuffix(strings.TrimPrefix(template, "{json:"), "}")

	node, ok := doc.Walk(SplitPath(path))
	if !ok {
		return nil, false
	}
	s, ok := node.Str()
	if !ok {
		return nil, false
	}
	return ParseAbsolute(s)
}

func bareURL(body []byte) (*url.URL, bool) {
	if !utf8.Valid(body) {
		return nil, false
	}
	return ParseAbsolute(strings.TrimSpace(string(body)))
}

func fromCandidates(doc Value) (*url.URL, bool) {
	for _, path := range candidates {
		node, ok := doc.Walk(path)
		if !ok || node.Kind() != KindString {
			continue
		}
		s, _ := node.Str()
		if u, ok := ParseAbsolute(s); ok {
			return u, true
		}
	}
	return nil, false
}

// ParseAbsolute parses s as a URL with a non-empty scheme. Text containing
// whitespace is rejected, so prose such as "Error: too large" is not
// mistaken for a URL.
func ParseAbsolute(s string) (*url.URL, bool) {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return nil, false
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return nil, false
	}
	return u, true
}

// Preview renders body for diagnostics: the text itself, cut to
// MaxPreview bytes, or its byte count when it is not UTF-8.
func Preview(body []byte) string {
	if !utf8.Valid(body) {
		return fmt.Sprintf("%d bytes", len(body))
	}
	if len(body) <= MaxPreview {
		return string(body)
	}
	cut := MaxPreview
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "…"
}
