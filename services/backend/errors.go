package backend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core"
)

// HTTPError is a non-2xx backend response.
type HTTPError struct {
	Code   int
	Detail string
	Fields map[string]string // FastAPI validation errors, by field
}

func (e *HTTPError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("backend: %d %s", e.Code, e.Detail)
}

func (e *HTTPError) StatusCode() int { return e.Code }

var _ core.StatusError = (*HTTPError)(nil)

// errorBody is the FastAPI error envelope: detail is a string or a list of validation errors.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationDetail struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

const maxErrorBody = 64 << 10

func newHTTPError(resp *http.Response) *HTTPError {
	herr := &HTTPError{Code: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return herr
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		herr.Detail = strings.TrimSpace(string(data))
		return herr
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil {
		herr.Detail = detail
		return herr
	}

	var details []validationDetail
	if err := json.Unmarshal(body.Detail, &details); err == nil && len(details) > 0 {
		herr.Fields = make(map[string]string, len(details))
		msgs := make([]string, 0, len(details))
		for _, d := range details {
			field := fieldName(d.Loc)
			if _, dup := herr.Fields[field]; !dup {
				herr.Fields[field] = d.Msg
			}
			msgs = append(msgs, field+": "+d.Msg)
		}
		herr.Detail = strings.Join(msgs, "; ")
		return herr
	}

	herr.Detail = string(body.Detail)
	return herr
}

// fieldName drops the location prefix ("body", "query"...) of a FastAPI loc.
func fieldName(loc []interface{}) string {
	parts := make([]string, 0, len(loc))
	for i, l := range loc {
		s := fmt.Sprint(l)
		if i == 0 && len(loc) > 1 {
			switch s {
			case "body", "query", "path", "header":
				continue
			}
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ".")
}

// IsStatus reports whether err is (or wraps) a backend response with status code.
func IsStatus(err error, code int) bool {
	var herr *HTTPError
	return errors.As(err, &herr) && herr.Code == code
}

func IsUnauthorized(err error) bool { return IsStatus(err, http.StatusUnauthorized) }

func IsNotFound(err error) bool { return IsStatus(err, http.StatusNotFound) }

// Message returns the text to show the user for err.
func Message(err error) string {
	var herr *HTTPError
	if errors.As(err, &herr) {
		if herr.Detail != "" {
			return herr.Detail
		}
		return http.StatusText(herr.Code)
	}
	return errors.Cause(err).Error()
}
