package access

import (
	"net/http"
	"net/url"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/pkg/retry"
	"golang.org/x/time/rate"
)

// Request is one logical call. Path is resolved against the client's base
// URL unless it is absolute.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
	// Timeout bounds each attempt; zero uses the client default.
	Timeout time.Duration
	// Insecure skips TLS certificate validation for this call only.
	Insecure bool
}

func Get(path string, query url.Values) Request {
	return Request{Method: http.MethodGet, Path: path, Query: query}
}

type Response struct {
	url        url.URL
	statusCode int
	header     http.Header
	body       []byte
	attempts   int
}

func (r Response) URL() url.URL {
	return r.url
}

func (r Response) StatusCode() int {
	return r.statusCode
}

func (r Response) Header() http.Header {
	return r.header
}

func (r Response) Body() []byte {
	return r.body
}

// Attempts is the number of attempts it took to get this response.
func (r Response) Attempts() int {
	return r.attempts
}

func (r Response) IsSuccess() bool {
	return r.statusCode >= 200 && r.statusCode <= 299
}

// ClientParam configures a Client.
type ClientParam struct {
	BaseURL        url.URL
	UserAgent      string
	DefaultTimeout time.Duration
	RetryParam     retry.RetryParam
	// Limiter caps the request rate of every attempt. Nil means unlimited.
	Limiter *rate.Limiter
	// HTTPClient and InsecureHTTPClient replace the built-in clients.
	HTTPClient         *http.Client
	InsecureHTTPClient *http.Client
}
