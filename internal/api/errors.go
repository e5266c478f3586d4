package api

import "errors"

var (
	errMissingAPIKey = errors.New("missing api key header")
	errInvalidAPIKey = errors.New("invalid api key")
	errRateLimited   = errors.New("rate limit exceeded")
)
