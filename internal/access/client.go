/*
Package access issues the HTTP requests of every crawl stage.

Transport failures (connect errors, timeouts, body read errors) are
retried with exponential backoff. A received non-2xx response is never
retried: it is returned together with an ErrCauseBadResponse error, since
the meaning of a status depends on the endpoint. Every non-2xx response
and every retry is reported to the metadata sink with the method, URL and
query parameters.
*/
package access

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/retry"
)

// Doer is what the crawl stages need from a Client.
type Doer interface {
	Do(ctx context.Context, req Request) (Response, failure.ClassifiedError)
}

var _ Doer = (*Client)(nil)

type Client struct {
	metadataSink   metadata.MetadataSink
	param          ClientParam
	secureClient   *http.Client
	insecureClient *http.Client
}

func NewClient(metadataSink metadata.MetadataSink, param ClientParam) *Client {
	secure := param.HTTPClient
	if secure == nil {
		secure = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}
	insecure := param.InsecureHTTPClient
	if insecure == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // per-call opt-in for portals with broken chains
		insecure = &http.Client{Transport: transport}
	}
	if param.DefaultTimeout <= 0 {
		param.DefaultTimeout = 90 * time.Second
	}
	return &Client{
		metadataSink:   metadataSink,
		param:          param,
		secureClient:   secure,
		insecureClient: insecure,
	}
}

// BaseURL returns the URL relative paths are resolved against.
func (c *Client) BaseURL() url.URL {
	return c.param.BaseURL
}

func (c *Client) Do(ctx context.Context, req Request) (Response, failure.ClassifiedError) {
	callerMethod := "Client.Do"

	target, err := c.resolve(req)
	if err != nil {
		c.recordError(callerMethod, req.Method, req.Path, err)
		return Response{}, err
	}

	params := target.RawQuery
	retryParam := c.param.RetryParam.WithOnRetry(func(attempt int, delay time.Duration, cause failure.ClassifiedError) {
		c.metadataSink.RecordRetry(req.Method, stripQuery(target), params, attempt, delay, cause.Error())
	})

	attempt := 0
	result := retry.Retry(ctx, retryParam, func() (Response, failure.ClassifiedError) {
		attempt++
		return c.attempt(ctx, req, target, attempt)
	})

	if result.IsFailure() {
		accessErr := c.classifyRetryFailure(result.Err(), result.Attempts())
		c.recordError(callerMethod, req.Method, target.String(), accessErr)
		return Response{}, accessErr
	}

	resp := result.Value()
	resp.attempts = result.Attempts()
	if !resp.IsSuccess() {
		badResponse := &AccessError{
			Message:    fmt.Sprintf("%s %s returned %d", req.Method, target.String(), resp.statusCode),
			Retryable:  false,
			Cause:      ErrCauseBadResponse,
			StatusCode: resp.statusCode,
			Attempts:   resp.attempts,
		}
		return resp, badResponse
	}
	return resp, nil
}

func (c *Client) resolve(req Request) (url.URL, *AccessError) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	ref, err := url.Parse(req.Path)
	if err != nil {
		return url.URL{}, &AccessError{
			Message: fmt.Sprintf("invalid path %q: %v", req.Path, err),
			Cause:   ErrCauseInvalidRequest,
		}
	}

	target := *ref
	if !ref.IsAbs() {
		base := c.param.BaseURL
		if base.Host == "" {
			return url.URL{}, &AccessError{
				Message: fmt.Sprintf("relative path %q without base URL", req.Path),
				Cause:   ErrCauseInvalidRequest,
			}
		}
		// keep any base path prefix, e.g. https://host/api + /documents
		target = base
		target.Path = strings.TrimSuffix(base.Path, "/") + "/" + strings.TrimPrefix(ref.Path, "/")
		target.RawPath = ""
		target.RawQuery = ref.RawQuery
	}

	if len(req.Query) > 0 {
		query := target.Query()
		for key, values := range req.Query {
			query[key] = append([]string(nil), values...)
		}
		target.RawQuery = query.Encode()
	}
	return target, nil
}

func (c *Client) attempt(ctx context.Context, req Request, target url.URL, attempt int) (Response, failure.ClassifiedError) {
	if c.param.Limiter != nil {
		if err := c.param.Limiter.Wait(ctx); err != nil {
			return Response{}, &AccessError{
				Message: fmt.Sprintf("rate limiter: %v", err),
				Cause:   ErrCauseCanceled,
			}
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.param.DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(callCtx, method, target.String(), body)
	if err != nil {
		return Response{}, &AccessError{
			Message: fmt.Sprintf("failed to create request: %v", err),
			Cause:   ErrCauseInvalidRequest,
		}
	}
	for key, value := range requestHeaders(c.param.UserAgent) {
		httpReq.Header.Set(key, value)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	client := c.secureClient
	if req.Insecure {
		client = c.insecureClient
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		c.metadataSink.RecordRequest(method, stripQuery(target), target.RawQuery, 0, time.Since(start), attempt)
		if ctx.Err() != nil {
			return Response{}, &AccessError{Message: ctx.Err().Error(), Cause: ErrCauseCanceled}
		}
		return Response{}, &AccessError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
			Cause:     ErrCauseTransport,
		}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	c.metadataSink.RecordRequest(method, stripQuery(target), target.RawQuery, resp.StatusCode, duration, attempt)
	if err != nil {
		return Response{}, &AccessError{
			Message:   fmt.Sprintf("failed to read response body: %v", err),
			Retryable: true,
			Cause:     ErrCauseTransport,
		}
	}

	return Response{
		url:        target,
		statusCode: resp.StatusCode,
		header:     resp.Header.Clone(),
		body:       payload,
	}, nil
}

// classifyRetryFailure turns the retry outcome into the error callers see.
func (c *Client) classifyRetryFailure(err failure.ClassifiedError, attempts int) *AccessError {
	var retryErr *retry.RetryError
	if errors.As(err, &retryErr) {
		switch retryErr.Cause {
		case retry.ErrExhaustedAttempts:
			return &AccessError{
				Message:   fmt.Sprintf("gave up after %d attempts: %v", retryErr.Attempts, retryErr.Last),
				Retryable: true,
				Cause:     ErrCauseTransport,
				Attempts:  retryErr.Attempts,
			}
		case retry.ErrContextDone:
			return &AccessError{Message: retryErr.Error(), Cause: ErrCauseCanceled, Attempts: retryErr.Attempts}
		}
	}

	var accessErr *AccessError
	if errors.As(err, &accessErr) {
		accessErr.Attempts = attempts
		return accessErr
	}
	return &AccessError{Message: err.Error(), Cause: ErrCauseInvalidRequest, Attempts: attempts}
}

func (c *Client) recordError(callerMethod, method, target string, err *AccessError) {
	c.metadataSink.RecordError(
		time.Now(),
		"access",
		callerMethod,
		mapAccessErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrMethod, method),
			metadata.NewAttr(metadata.AttrURL, target),
		},
	)
}

func asAccessError(err error) (*AccessError, bool) {
	var accessErr *AccessError
	if errors.As(err, &accessErr) {
		return accessErr, true
	}
	return nil, false
}

func stripQuery(u url.URL) string {
	u.RawQuery = ""
	u.ForceQuery = false
	return u.String()
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8",
		"Accept-Language": "vi-VN,vi;q=0.9,en;q=0.5",
	}
}
