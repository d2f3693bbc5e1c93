package gateway

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// EncodeFile wraps content into a single-part multipart/form-data body keyed
// by field. The part keeps the declared media type, falling back to
// application/octet-stream.
func EncodeFile(field, filename, mediaType string, content []byte) (Payload, error) {
	if field == "" {
		return Payload{}, errors.New("multipart field name is required")
	}
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", mediaType)

	part, err := w.CreatePart(h)
	if err != nil {
		return Payload{}, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return Payload{}, fmt.Errorf("write multipart part: %w", err)
	}
	if err := w.Close(); err != nil {
		return Payload{}, fmt.Errorf("close multipart writer: %w", err)
	}

	return Payload{ContentType: w.FormDataContentType(), Body: buf.Bytes()}, nil
}
