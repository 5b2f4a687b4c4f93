// Package form builds multipart/form-data request bodies.
//
// Names and filenames are emitted verbatim. Field values and file bytes
// are not scanned for the boundary.
package form

import (
	"bytes"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const crlf = "\r\n"

// DefaultContentType is used for extensions missing from the MIME table.
const DefaultContentType = "application/octet-stream"

var mimeTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"pdf":  "application/pdf",
}

// File is the single file part of an upload.
type File struct {
	FieldName   string
	Filename    string
	ContentType string
	Data        []byte
}

// NewBoundary returns a fresh boundary token.
func NewBoundary() string {
	return "Boundary-" + strings.ToUpper(uuid.NewString())
}

// ContentType returns the request Content-Type header for boundary.
func ContentType(boundary string) string {
	return "multipart/form-data; boundary=" + boundary
}

// MIMEType maps a filename's extension to a MIME type.
func MIMEType(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if t, ok := mimeTypes[ext]; ok {
		return t
	}
	return DefaultContentType
}

// Encode writes fields followed by file, then the closing delimiter.
// Fields are emitted in key order.
func Encode(boundary string, fields map[string]string, file File) []byte {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Grow(len(file.Data) + 256*(len(fields)+2))

	for _, k := range keys {
		buf.WriteString("--" + boundary + crlf)
		buf.WriteString(`Content-Disposition: form-data; name="` + k + `"` + crlf + crlf)
		buf.WriteString(fields[k] + crlf)
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = MIMEType(file.Filename)
	}

	buf.WriteString("--" + boundary + crlf)
	buf.WriteString(`Content-Disposition: form-data; name="` + file.FieldName + `"; filename="` + file.Filename + `"` + crlf)
	buf.WriteString("Content-Type: " + contentType + crlf + crlf)
	buf.Write(file.Data)
	buf.WriteString(crlf)

	buf.WriteString("--" + boundary + "--" + crlf)
	return buf.Bytes()
}
