// This file implements parsing of request bodies. Handlers accept the same
// fields as JSON or as form-encoded data.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"homefinances/internal/register"
)

// maxBodyBytes bounds JSON and form bodies; imports have their own limit.
const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("Malformed request body.")

// RequestBodyParser reads a JSON or form body once.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse decodes the body as JSON when the content type says so or the
// body starts with '{', as a form otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	media, _, _ := mime.ParseMediaType(p.contentType)
	if media == "application/json" || trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = errMalformedBody
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	if p.err != nil {
		p.err = errMalformedBody
	}
	return p.err
}

// Get returns the sanitized value of key, "" when absent.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims and drops control characters other than tab and
// newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// parseBody reads r's body or writes a 400 and returns nil.
func parseBody(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return nil
	}
	return p
}

func (p *RequestBodyParser) draft() register.Draft {
	return register.Draft{
		Date:     p.Get("date"),
		Account:  p.Get("account"),
		Payee:    p.Get("payee"),
		Category: p.Get("category"),
		Memo:     p.Get("memo"),
		Outflow:  p.Get("outflow"),
		Inflow:   p.Get("inflow"),
	}
}

// HeaderRegisterView carries the id of the client's register view.
const HeaderRegisterView = "X-Register-View"

const maxViewIDLength = 64

// viewID returns the register view of the request, from the header or the
// view query parameter. Oversized ids are ignored.
func viewID(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(HeaderRegisterView))
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("view"))
	}
	if len(id) > maxViewIDLength {
		return ""
	}
	return id
}

// filtersFromQuery reads the register filters of one request. Missing
// parameters mean all accounts, all types and no search text.
func filtersFromQuery(q url.Values) register.Filters {
	f := register.Filters{
		Account: strings.TrimSpace(q.Get("account")),
		Type:    strings.TrimSpace(q.Get("type")),
		Search:  q.Get("q"),
	}
	if f.Account == "" {
		f.Account = register.All
	}
	if f.Type == "" {
		f.Type = register.All
	}
	return f
}
