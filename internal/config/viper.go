package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rohmanhakim/vnlaw-crawler/pkg/hashutil"
	"github.com/spf13/viper"
)

// Keys read by FromViper. With the "." to "_" env key replacer each key
// is also read from the upper-cased environment variable, e.g.
// vbpl.base_url from VBPL_BASE_URL.
const (
	KeyVbplBaseURL       = "vbpl.base_url"
	KeyVbplPDFBaseURL    = "vbpl.pdf_base_url"
	KeyVbplPageSize      = "vbpl.page_size"
	KeyAnleBaseURL       = "anle.base_url"
	KeyAnleTimeout       = "anle.timeout"
	KeyConcettiBaseURL   = "concetti.base_url"
	KeyTvplBaseURL       = "tvpl.base_url"
	KeyConcurrency       = "crawl.concurrency"
	KeyPageDelay         = "crawl.page_delay"
	KeyGraphDelay        = "crawl.graph_delay"
	KeyTimeout           = "http.timeout"
	KeyUserAgent         = "http.user_agent"
	KeyRequestsPerSecond = "http.requests_per_second"
	KeyMaxAttempt        = "retry.max_attempts"
	KeyBackoffInitial    = "retry.backoff_initial"
	KeyBackoffMultiplier = "retry.backoff_multiplier"
	KeyBackoffMax        = "retry.backoff_max"
	KeyJitter            = "retry.jitter"
	KeyRandomSeed        = "retry.random_seed"
	KeyMatchThreshold    = "match.threshold"
	KeyMatchMaxPages     = "match.max_pages"
	KeyOutputDir         = "output.dir"
	KeyHashAlgo          = "output.hash_algo"
	KeyStoreDriver       = "store.driver"
	KeyDatabaseURL       = "database.url"
	KeyLogLevel          = "log.level"
	KeyLogEncoding       = "log.encoding"
	KeyMetricsAddr       = "metrics.addr"
)

// NewViper returns a viper instance reading environment variables and,
// when path is not empty, the given JSON or YAML file.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path == "" {
		return v, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	return v, nil
}

// FromViper maps the keys set in v onto the defaults and builds the result.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := WithDefault(BaseURLs{
		VBPL:     v.GetString(KeyVbplBaseURL),
		VBPLPDF:  v.GetString(KeyVbplPDFBaseURL),
		Anle:     v.GetString(KeyAnleBaseURL),
		Concetti: v.GetString(KeyConcettiBaseURL),
		TVPL:     v.GetString(KeyTvplBaseURL),
	})

	if v.IsSet(KeyVbplPageSize) {
		cfg.WithVbplPageSize(v.GetInt(KeyVbplPageSize))
	}
	if v.IsSet(KeyAnleTimeout) {
		cfg.WithCaseLawTimeout(v.GetDuration(KeyAnleTimeout))
	}
	if v.IsSet(KeyConcurrency) {
		cfg.WithConcurrency(v.GetInt(KeyConcurrency))
	}
	if v.IsSet(KeyPageDelay) {
		cfg.WithPageDelay(v.GetDuration(KeyPageDelay))
	}
	if v.IsSet(KeyGraphDelay) {
		cfg.WithGraphDelay(v.GetDuration(KeyGraphDelay))
	}
	if v.IsSet(KeyTimeout) {
		cfg.WithTimeout(v.GetDuration(KeyTimeout))
	}
	if ua := v.GetString(KeyUserAgent); ua != "" {
		cfg.WithUserAgent(ua)
	}
	if v.IsSet(KeyRequestsPerSecond) {
		cfg.WithRequestsPerSecond(v.GetFloat64(KeyRequestsPerSecond))
	}
	if v.IsSet(KeyMaxAttempt) {
		cfg.WithMaxAttempt(v.GetInt(KeyMaxAttempt))
	}
	if v.IsSet(KeyBackoffInitial) {
		cfg.WithBackoffInitialDuration(v.GetDuration(KeyBackoffInitial))
	}
	if v.IsSet(KeyBackoffMultiplier) {
		cfg.WithBackoffMultiplier(v.GetFloat64(KeyBackoffMultiplier))
	}
	if v.IsSet(KeyBackoffMax) {
		cfg.WithBackoffMaxDuration(v.GetDuration(KeyBackoffMax))
	}
	if v.IsSet(KeyJitter) {
		cfg.WithJitter(v.GetDuration(KeyJitter))
	}
	if v.IsSet(KeyRandomSeed) {
		cfg.WithRandomSeed(v.GetInt64(KeyRandomSeed))
	}
	if v.IsSet(KeyMatchThreshold) {
		cfg.WithMatchThreshold(v.GetFloat64(KeyMatchThreshold))
	}
	if v.IsSet(KeyMatchMaxPages) {
		cfg.WithMatchMaxPages(v.GetInt(KeyMatchMaxPages))
	}
	if dir := v.GetString(KeyOutputDir); dir != "" {
		cfg.WithOutputDir(dir)
	}
	if algo := v.GetString(KeyHashAlgo); algo != "" {
		cfg.WithHashAlgo(hashutil.HashAlgo(strings.ToLower(algo)))
	}
	if driver := v.GetString(KeyStoreDriver); driver != "" {
		cfg.WithStoreDriver(strings.ToLower(driver))
	}
	cfg.WithDatabaseURL(v.GetString(KeyDatabaseURL))
	if level := v.GetString(KeyLogLevel); level != "" {
		cfg.WithLogLevel(level)
	}
	if encoding := v.GetString(KeyLogEncoding); encoding != "" {
		cfg.WithLogEncoding(encoding)
	}
	cfg.WithMetricsAddr(v.GetString(KeyMetricsAddr))

	return cfg.Build()
}
