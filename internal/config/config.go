package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/build"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/hashutil"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// BaseURLs are the endpoints of the crawled sites. VBPL, Anle and Concetti
// are required; VBPLPDF defaults to VBPL and an empty TVPL disables the
// full-text fallback.
type BaseURLs struct {
	VBPL     string
	VBPLPDF  string
	Anle     string
	Concetti string
	TVPL     string
}

type Config struct {
	//===============
	//  Endpoints
	//===============
	baseURLs BaseURLs

	//===============
	// Crawl
	//===============
	// Width of the document and graph worker pools.
	concurrency int
	// Rows requested per vbpl listing page.
	vbplPageSize int
	// Delay between two listing pages of the same collection.
	pageDelay time.Duration
	// Delay between two related or cross-reference fetches.
	graphDelay time.Duration

	//===============
	// Fetch
	//===============
	// Timeout of a single vbpl, registry or fallback request.
	timeout time.Duration
	// Timeout of a single case-law portal request.
	caseLawTimeout time.Duration
	userAgent      string
	// Global request rate across all sites. Zero is unlimited.
	requestsPerSecond float64

	//===============
	// Retry
	//===============
	maxAttempt             int
	backoffInitialDuration time.Duration
	backoffMultiplier      float64
	backoffMaxDuration     time.Duration
	// Randomized variation added on top of each backoff delay.
	jitter     time.Duration
	randomSeed int64

	//===============
	// Enrichment
	//===============
	// Minimum similarity for a registry candidate to be confirmed.
	matchThreshold float64
	// Registry result pages scanned per identifying field.
	matchMaxPages int

	//===============
	// Output
	//===============
	// Root directory of attachments and previews.
	outputDir   string
	hashAlgo    hashutil.HashAlgo
	storeDriver string
	databaseURL string

	//===============
	// Observability
	//===============
	logLevel    string
	logEncoding string
	// Listen address of the Prometheus endpoint. Empty disables it.
	metricsAddr string
}

// WithDefault creates a new Config with the given base URLs and default
// values for all other fields. Missing required URLs are reported by Build.
func WithDefault(urls BaseURLs) *Config {
	defaultConfig := Config{
		baseURLs:               urls,
		concurrency:            8,
		vbplPageSize:           130,
		pageDelay:              3 * time.Second,
		graphDelay:             time.Second,
		timeout:                90 * time.Second,
		caseLawTimeout:         30 * time.Second,
		userAgent:              build.UserAgent(),
		requestsPerSecond:      0,
		maxAttempt:             3,
		backoffInitialDuration: time.Second,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     30 * time.Second,
		jitter:                 0,
		randomSeed:             time.Now().UnixNano(),
		matchThreshold:         0.8,
		matchMaxPages:          2,
		outputDir:              "documents",
		hashAlgo:               hashutil.HashAlgoBLAKE3,
		storeDriver:            StoreDriverPostgres,
		logLevel:               "info",
		logEncoding:            "console",
	}
	return &defaultConfig
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithVbplPageSize(size int) *Config {
	c.vbplPageSize = size
	return c
}

func (c *Config) WithPageDelay(delay time.Duration) *Config {
	c.pageDelay = delay
	return c
}

func (c *Config) WithGraphDelay(delay time.Duration) *Config {
	c.graphDelay = delay
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithCaseLawTimeout(timeout time.Duration) *Config {
	c.caseLawTimeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithRequestsPerSecond(rps float64) *Config {
	c.requestsPerSecond = rps
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMatchThreshold(threshold float64) *Config {
	c.matchThreshold = threshold
	return c
}

func (c *Config) WithMatchMaxPages(pages int) *Config {
	c.matchMaxPages = pages
	return c
}

func (c *Config) WithOutputDir(outputDir string) *Config {
	c.outputDir = outputDir
	return c
}

func (c *Config) WithHashAlgo(algo hashutil.HashAlgo) *Config {
	c.hashAlgo = algo
	return c
}

func (c *Config) WithStoreDriver(driver string) *Config {
	c.storeDriver = driver
	return c
}

func (c *Config) WithDatabaseURL(dsn string) *Config {
	c.databaseURL = dsn
	return c
}

func (c *Config) WithLogLevel(level string) *Config {
	c.logLevel = level
	return c
}

func (c *Config) WithLogEncoding(encoding string) *Config {
	c.logEncoding = encoding
	return c
}

func (c *Config) WithMetricsAddr(addr string) *Config {
	c.metricsAddr = addr
	return c
}

// Build validates the configuration and returns an immutable copy.
func (c *Config) Build() (Config, error) {
	required := []struct {
		name  string
		value string
	}{
		{"VBPL_BASE_URL", c.baseURLs.VBPL},
		{"ANLE_BASE_URL", c.baseURLs.Anle},
		{"CONCETTI_BASE_URL", c.baseURLs.Concetti},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return Config{}, fmt.Errorf("%w: %s", ErrMissingBaseURL, r.name)
		}
	}

	if c.baseURLs.VBPLPDF == "" {
		c.baseURLs.VBPLPDF = c.baseURLs.VBPL
	}
	for _, raw := range []string{c.baseURLs.VBPL, c.baseURLs.VBPLPDF, c.baseURLs.Anle, c.baseURLs.Concetti, c.baseURLs.TVPL} {
		if raw == "" {
			continue
		}
		if _, err := parseBaseURL(raw); err != nil {
			return Config{}, err
		}
	}

	switch {
	case c.concurrency <= 0:
		return Config{}, fmt.Errorf("%w: concurrency must be positive", ErrInvalidConfig)
	case c.vbplPageSize <= 0:
		return Config{}, fmt.Errorf("%w: vbpl page size must be positive", ErrInvalidConfig)
	case c.maxAttempt <= 0:
		return Config{}, fmt.Errorf("%w: max attempt must be positive", ErrInvalidConfig)
	case c.backoffMultiplier < 1:
		return Config{}, fmt.Errorf("%w: backoff multiplier must be at least 1", ErrInvalidConfig)
	case c.pageDelay < 0 || c.graphDelay < 0 || c.jitter < 0:
		return Config{}, fmt.Errorf("%w: delays cannot be negative", ErrInvalidConfig)
	case c.requestsPerSecond < 0:
		return Config{}, fmt.Errorf("%w: requests per second cannot be negative", ErrInvalidConfig)
	case c.matchThreshold <= 0 || c.matchThreshold > 1:
		return Config{}, fmt.Errorf("%w: match threshold must be in (0, 1]", ErrInvalidConfig)
	}

	if c.hashAlgo != hashutil.HashAlgoBLAKE3 && c.hashAlgo != hashutil.HashAlgoSHA256 {
		return Config{}, fmt.Errorf("%w: unsupported hash algorithm %q", ErrInvalidConfig, c.hashAlgo)
	}

	switch c.storeDriver {
	case StoreDriverMemory:
	case StoreDriverPostgres:
		if c.databaseURL == "" {
			return Config{}, fmt.Errorf("%w: DATABASE_URL is required by the postgres store", ErrInvalidConfig)
		}
	default:
		return Config{}, fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.storeDriver)
	}

	return *c, nil
}

func parseBaseURL(raw string) (url.URL, error) {
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return url.URL{}, fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrInvalidConfig, raw)
	}
	return *u, nil
}

func mustURL(raw string) url.URL {
	u, _ := parseBaseURL(raw)
	return u
}

func (c Config) VbplBaseURL() url.URL {
	return mustURL(c.baseURLs.VBPL)
}

func (c Config) VbplPDFBaseURL() string {
	return strings.TrimRight(c.baseURLs.VBPLPDF, "/")
}

func (c Config) AnleBaseURL() url.URL {
	return mustURL(c.baseURLs.Anle)
}

func (c Config) ConcettiBaseURL() url.URL {
	return mustURL(c.baseURLs.Concetti)
}

// TvplBaseURL reports false when the fallback site is not configured.
func (c Config) TvplBaseURL() (url.URL, bool) {
	if c.baseURLs.TVPL == "" {
		return url.URL{}, false
	}
	return mustURL(c.baseURLs.TVPL), true
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) VbplPageSize() int {
	return c.vbplPageSize
}

func (c Config) PageDelay() time.Duration {
	return c.pageDelay
}

func (c Config) GraphDelay() time.Duration {
	return c.graphDelay
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) CaseLawTimeout() time.Duration {
	return c.caseLawTimeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) RequestsPerSecond() float64 {
	return c.requestsPerSecond
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) MatchThreshold() float64 {
	return c.matchThreshold
}

func (c Config) MatchMaxPages() int {
	return c.matchMaxPages
}

func (c Config) OutputDir() string {
	return c.outputDir
}

func (c Config) HashAlgo() hashutil.HashAlgo {
	return c.hashAlgo
}

func (c Config) StoreDriver() string {
	return c.storeDriver
}

func (c Config) DatabaseURL() string {
	return c.databaseURL
}

func (c Config) LogLevel() string {
	return c.logLevel
}

func (c Config) LogEncoding() string {
	return c.logEncoding
}

func (c Config) MetricsAddr() string {
	return c.metricsAddr
}
