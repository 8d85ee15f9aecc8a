package config

import "errors"

var ErrFileDoesNotExist = errors.New("config file does not exist")
var ErrReadConfigFail = errors.New("failed to read config file")
var ErrInvalidConfig = errors.New("invalid config")

// ErrMissingBaseURL is returned when a required portal or registry base
// URL is not configured. The crawler cannot start without them.
var ErrMissingBaseURL = errors.New("missing base URL")
