package core

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

type (
	// Upload is a single multipart file part, sent along with optional form Fields.
	Upload struct {
		Field    string // form field name; "file" if empty
		Filename string
		Content  io.Reader
		Fields   map[string]string
	}

	// APIRequest describes one call to the PRODIGY backend.
	APIRequest struct {
		Method string
		Path   string // relative to the backend base URL, eg. "/classes"
		Query  url.Values
		Body   interface{} // JSON encoded when set
		Upload *Upload     // multipart encoded when set (Body is ignored)

		// Anonymous requests never carry the bearer credential
		// and never tear down the session on a 401 (eg. login, signup).
		Anonymous bool
	}

	// Backend is anything that can dispatch APIRequests to the PRODIGY backend.
	// A non-nil out is JSON decoded from the response body.
	Backend interface {
		Do(ctx context.Context, req APIRequest, out interface{}) error
	}
)

func Get(path string, query ...url.Values) APIRequest {
	req := APIRequest{Method: http.MethodGet, Path: path}
	if len(query) > 0 {
		req.Query = query[0]
	}
	return req
}

func Post(path string, body interface{}) APIRequest {
	return APIRequest{Method: http.MethodPost, Path: path, Body: body}
}

func Put(path string, body interface{}) APIRequest {
	return APIRequest{Method: http.MethodPut, Path: path, Body: body}
}

func Delete(path string) APIRequest {
	return APIRequest{Method: http.MethodDelete, Path: path}
}

// Message is the generic {"message": "..."} acknowledgement returned by some endpoints.
type Message struct {
	Message string `json:"message"`
}

// StatusError is a backend error carrying the HTTP status of the response.
type StatusError interface {
	error
	StatusCode() int
}

// IsUnauthorized reports whether the backend rejected the request's credential.
func IsUnauthorized(err error) bool {
	var se StatusError
	return errors.As(err, &se) && se.StatusCode() == http.StatusUnauthorized
}
