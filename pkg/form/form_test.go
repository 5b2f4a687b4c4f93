package form

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_WireFormat(t *testing.T) {
	body := Encode("XYZ", map[string]string{"b": "2", "a": "1"}, File{
		FieldName:   "file",
		Filename:    "f.png",
		ContentType: "image/png",
		Data:        []byte("PNGDATA"),
	})

	want := "--XYZ\r\n" +
		"Content-Disposition: form-data; name=\"a\"\r\n\r\n" +
		"1\r\n" +
		"--XYZ\r\n" +
		"Content-Disposition: form-data; name=\"b\"\r\n\r\n" +
		"2\r\n" +
		"--XYZ\r\n" +
		"Content-Disposition: form-data; name=\"file\"; filename=\"f.png\"\r\n" +
		"Content-Type: image/png\r\n\r\n" +
		"PNGDATA\r\n" +
		"--XYZ--\r\n"

	assert.Equal(t, want, string(body))
}

func TestEncode_NoFields(t *testing.T) {
	body := Encode("b", nil, File{FieldName: "upload", Filename: "x.bin", Data: []byte{0, 1, 2}})

	want := "--b\r\n" +
		"Content-Disposition: form-data; name=\"upload\"; filename=\"x.bin\"\r\n" +
		"Content-Type: application/octet-stream\r\n\r\n" +
		"\x00\x01\x02\r\n" +
		"--b--\r\n"
	assert.Equal(t, want, string(body))
}

func TestEncode_RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte{0x89, 'P', 'N', 'G', '\r', '\n'}, 1000)
	boundary := NewBoundary()
	body := Encode(boundary, map[string]string{"a": "1"}, File{
		FieldName:   "image",
		Filename:    "f.png",
		ContentType: MIMEType("f.png"),
		Data:        data,
	})

	mediaType, params, err := mime.ParseMediaType(ContentType(boundary))
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	r := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	form, err := r.ReadForm(10 << 20)
	require.NoError(t, err)
	defer form.RemoveAll()

	assert.Equal(t, []string{"1"}, form.Value["a"])
	require.Len(t, form.File["image"], 1)

	fh := form.File["image"][0]
	assert.Equal(t, "f.png", fh.Filename)
	assert.Equal(t, "image/png", fh.Header.Get("Content-Type"))

	f, err := fh.Open()
	require.NoError(t, err)
	defer f.Close()
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestNewBoundary_Fresh(t *testing.T) {
	a, b := NewBoundary(), NewBoundary()
	assert.NotEqual(t, a, b)
	assert.LessOrEqual(t, len(a), 70)
	assert.Regexp(t, `^Boundary-[0-9A-F-]{36}$`, a)
}

func TestMIMEType(t *testing.T) {
	tests := map[string]string{
		"f.png":          "image/png",
		"F.PNG":          "image/png",
		"a.jpg":          "image/jpeg",
		"a.jpeg":         "image/jpeg",
		"a.gif":          "image/gif",
		"clip.mp4":       "video/mp4",
		"clip.mov":       "video/quicktime",
		"doc.pdf":        "application/pdf",
		"x.unknownext":   "application/octet-stream",
		"noext":          "application/octet-stream",
		"archive.tar.gz": "application/octet-stream",
	}
	for name, want := range tests {
		assert.Equal(t, want, MIMEType(name), name)
	}
}
