// Package profile decodes ShareX "custom uploader" server profiles.
//
// A Profile is immutable once parsed. Only RequestURL is required; every
// other field has a documented default, and unknown keys are ignored so
// profiles exported by newer ShareX versions keep loading.
package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

const (
	// DefaultMethod is used when the profile names no request method.
	DefaultMethod = "POST"

	// DefaultFileFormName is the multipart field carrying the file bytes.
	DefaultFileFormName = "file"

	// BodyMultipart is the only ShareX body type this uploader speaks.
	BodyMultipart = "MultipartFormData"
)

// ErrInvalidProfile is returned when the profile JSON cannot be used.
var ErrInvalidProfile = errors.New("profile: invalid server profile")

// document mirrors the consumed subset of the ShareX schema.
type document struct {
	Version         *string            `json:"Version"`
	Name            *string            `json:"Name"`
	DestinationType *string            `json:"DestinationType"`
	RequestMethod   *string            `json:"RequestMethod"`
	RequestType     *string            `json:"RequestType"`
	RequestURL      *string            `json:"RequestURL"`
	Parameters      map[string]string  `json:"Parameters"`
	Headers         map[string]string  `json:"Headers"`
	Body            *string            `json:"Body"`
	Arguments       map[string]*string `json:"Arguments"`
	FileFormName    *string            `json:"FileFormName"`
	URL             *string            `json:"URL"`
}

// Profile is a decoded server profile.
type Profile struct {
	name            string
	version         string
	destinationType string
	method          string
	requestURL      string
	parameters      map[string]string
	headers         map[string]string
	body            string
	arguments       map[string]string
	fileFormName    string
	urlTemplate     string
	hasURLTemplate  bool
}

// Parse decodes and validates profile JSON.
func Parse(data []byte) (*Profile, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidProfile, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: unexpected data after profile object", ErrInvalidProfile)
	}

	if doc.RequestURL == nil || strings.TrimSpace(*doc.RequestURL) == "" {
		return nil, fmt.Errorf("%w: RequestURL is required", ErrInvalidProfile)
	}

	p := &Profile{
		name:            deref(doc.Name),
		version:         deref(doc.Version),
		destinationType: deref(doc.DestinationType),
		requestURL:      *doc.RequestURL,
		body:            deref(doc.Body),
		method:          DefaultMethod,
		fileFormName:    DefaultFileFormName,
		parameters:      copyStrings(doc.Parameters),
		headers:         copyStrings(doc.Headers),
		arguments:       make(map[string]string, len(doc.Arguments)),
	}

	// RequestType is the pre-13 spelling of RequestMethod.
	switch {
	case doc.RequestMethod != nil && strings.TrimSpace(*doc.RequestMethod) != "":
		p.method = strings.ToUpper(strings.TrimSpace(*doc.RequestMethod))
	case doc.RequestType != nil && strings.TrimSpace(*doc.RequestType) != "":
		p.method = strings.ToUpper(strings.TrimSpace(*doc.RequestType))
	}

	if doc.FileFormName != nil && *doc.FileFormName != "" {
		p.fileFormName = *doc.FileFormName
	}

	for k, v := range doc.Arguments {
		if v == nil {
			continue
		}
		p.arguments[k] = *v
	}

	if doc.URL != nil {
		p.urlTemplate = *doc.URL
		p.hasURLTemplate = true
	}

	return p, nil
}

// Name returns the display name, possibly empty.
func (p *Profile) Name() string { return p.name }

// Version returns the ShareX version that wrote the profile.
func (p *Profile) Version() string { return p.version }

// DestinationType returns the ShareX destination list, e.g. "ImageUploader, FileUploader".
func (p *Profile) DestinationType() string { return p.destinationType }

// Method returns the upper-cased request method.
func (p *Profile) Method() string { return p.method }

// RawRequestURL returns RequestURL exactly as written in the profile.
func (p *Profile) RawRequestURL() string { return p.requestURL }

// FileFormName returns the multipart field name for the file part.
func (p *Profile) FileFormName() string { return p.fileFormName }

// Body returns the declared ShareX body type, empty when absent.
func (p *Profile) Body() string { return p.body }

// URLTemplate returns the URL extraction template and whether one was set.
func (p *Profile) URLTemplate() (string, bool) { return p.urlTemplate, p.hasURLTemplate }

// Headers returns a copy of the request headers. Never nil.
func (p *Profile) Headers() map[string]string { return copyStrings(p.headers) }

// Arguments returns a copy of the static form fields with null entries removed. Never nil.
func (p *Profile) Arguments() map[string]string { return copyStrings(p.arguments) }

// Parameters returns a copy of the query parameters. Never nil.
func (p *Profile) Parameters() map[string]string { return copyStrings(p.parameters) }

// Endpoint trims RequestURL, merges Parameters into its query and checks
// that the result is absolute.
func (p *Profile) Endpoint() (*url.URL, error) {
	trimmed := strings.TrimSpace(p.requestURL)
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", trimmed, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%q is not an absolute URL", trimmed)
	}

	if len(p.parameters) > 0 {
		q := u.Query()
		for k, v := range p.parameters {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

// Validate reports whether the profile can drive an upload.
func (p *Profile) Validate() error {
	if _, err := p.Endpoint(); err != nil {
		return fmt.Errorf("%w: RequestURL: %v", ErrInvalidProfile, err)
	}
	return nil
}

// Warnings lists profile settings that are accepted but not honored.
func (p *Profile) Warnings() []string {
	var out []string
	if p.body != "" && p.body != BodyMultipart {
		out = append(out, fmt.Sprintf("Body %q is not supported, sending %s", p.body, BodyMultipart))
	}
	if tmpl, ok := p.URLTemplate(); ok && tmpl != "" && !IsJSONTemplate(tmpl) {
		out = append(out, fmt.Sprintf("URL %q is not a {json:...} template and will be ignored", tmpl))
	}
	if _, err := p.Endpoint(); err != nil {
		out = append(out, fmt.Sprintf("RequestURL: %v", err))
	}
	sort.Strings(out)
	return out
}

// IsJSONTemplate reports whether s has the exact form {json:<path>}.
func IsJSONTemplate(s string) bool {
	return strings.HasPrefix(s, "{json:") && strings.HasSuffix(s, "}") && len(s) >= len("{json:}")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func copyStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
