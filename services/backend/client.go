package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core"
)

type (
	// Authorizer supplies the bearer credential and is told which one the backend rejected (session.Manager).
	Authorizer interface {
		Credential(ctx context.Context) string
		Unauthorized(ctx context.Context, credential string)
	}

	Options struct {
		BaseURL    string
		HTTPClient *http.Client
		Timeout    time.Duration // 0: no timeout other than the request context
		UserAgent  string
	}

	// Client dispatches core.APIRequests to the PRODIGY backend.
	Client struct {
		baseURL   *url.URL
		http      *http.Client
		userAgent string
		auth      Authorizer
		logger    core.Logger
	}
)

var _ core.Backend = (*Client)(nil)

func New(opts Options, logger core.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing backend base URL")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("invalid backend base URL %q", opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "prodigy-go"
	}
	return &Client{baseURL: base, http: hc, userAgent: ua, logger: logger}, nil
}

// Authorize installs the credential source. Until called, every request is anonymous.
func (c *Client) Authorize(auth Authorizer) { c.auth = auth }

func (c *Client) Do(ctx context.Context, req core.APIRequest, out interface{}) error {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return err
	}

	var credential string
	if !req.Anonymous && c.auth != nil {
		if credential = c.auth.Credential(ctx); credential != "" {
			httpReq.Header.Set("Authorization", "Bearer "+credential)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, req.Path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		herr := newHTTPError(resp)
		if resp.StatusCode == http.StatusUnauthorized && credential != "" {
			c.logger.Info("backend rejected credential", herr, map[string]interface{}{"path": req.Path})
			c.auth.Unauthorized(ctx, credential)
		}
		return herr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return errors.Wrapf(err, "decoding %s %s", req.Method, req.Path)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, req core.APIRequest) (*http.Request, error) {
	u := *c.baseURL
	u.Path = u.Path + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Upload != nil:
		buf, ct, err := encodeUpload(req.Upload)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	return httpReq, nil
}

func encodeUpload(up *core.Upload) (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	for k, v := range up.Fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return nil, "", errors.Wrap(err, "writing form field")
		}
	}
	field := up.Field
	if field == "" {
		field = "file"
	}
	part, err := w.CreateFormFile(field, up.Filename)
	if err != nil {
		return nil, "", errors.Wrap(err, "creating form file")
	}
	if up.Content != nil {
		if _, err := io.Copy(part, up.Content); err != nil {
			return nil, "", errors.Wrap(err, "copying upload")
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "closing multipart writer")
	}
	return buf, w.FormDataContentType(), nil
}
