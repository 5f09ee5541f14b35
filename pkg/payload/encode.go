package payload

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

// IsReadMethod reports whether method carries its payload in the query
// string rather than the body.
func IsReadMethod(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead:
		return true
	}
	return false
}

// Query serialises the pairs as application/x-www-form-urlencoded, keeping
// pair order. File values contribute their file name.
func (p *Payload) Query() string {
	if p == nil {
		return ""
	}
	var sb strings.Builder
	for i, pair := range p.pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(pair.Name))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(pair.Value.String()))
	}
	return sb.String()
}

// AppendQuery appends query to the target, joining with "&" when the target
// already carries a query string and "?" otherwise. Fragments are dropped.
func AppendQuery(target *url.URL, query string) string {
	var base string
	if target != nil {
		u := *target
		u.Fragment = ""
		u.RawFragment = ""
		base = u.String()
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + query
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Multipart encodes the pairs as a multipart/form-data body and returns the
// body together with its content type.
func (p *Payload) Multipart() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, pair := range p.Pairs() {
		if !pair.Value.IsFile() {
			if err := w.WriteField(pair.Name, pair.Value.Text); err != nil {
				return nil, "", fmt.Errorf("payload: write field %q: %w", pair.Name, err)
			}
			continue
		}

		file := pair.Value.File
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(pair.Name), quoteEscaper.Replace(file.Name)))
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("payload: create part %q: %w", pair.Name, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("payload: write part %q: %w", pair.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("payload: close multipart: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
