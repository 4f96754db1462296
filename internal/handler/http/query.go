package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/validator"
)

// queryParser reads optional query parameters and collects parse failures.
type queryParser struct {
	r    *http.Request
	errs validator.ValidationErrors
}

func newQueryParser(r *http.Request) *queryParser {
	return &queryParser{r: r}
}

func (p *queryParser) String(key string) *string {
	v := p.r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	return &v
}

func (p *queryParser) Int(key string) *int {
	v := p.r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs.Add(key, "must be a number")
		return nil
	}
	return &n
}

// IntOr returns def when key is absent or malformed.
func (p *queryParser) IntOr(key string, def int) int {
	if n := p.Int(key); n != nil {
		return *n
	}
	return def
}

func (p *queryParser) Bool(key string) *bool {
	v := p.r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs.Add(key, "must be true or false")
		return nil
	}
	return &b
}

func (p *queryParser) Err() error {
	return p.errs.Err()
}

// decodeJSON decodes the body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, op string) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return true
	}
	if err != nil {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}
