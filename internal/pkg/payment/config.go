package payment

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/lromand/matchpoint/internal/pkg/env"
)

const defaultTimeout = 15 * time.Second

// Config holds the payment gateway connection settings. The client only ever
// sees this struct; it performs no ambient env lookups of its own.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// LoadConfig loads the gateway configuration from environment variables.
func LoadConfig() (*Config, error) {
	base := strings.TrimRight(strings.TrimSpace(env.GetEnv("PAYMENT_API_URL", "")), "/")
	if base == "" {
		return nil, errors.New("PAYMENT_API_URL is not configured")
	}

	timeout := defaultTimeout
	if raw := strings.TrimSpace(env.GetEnv("PAYMENT_TIMEOUT_SECONDS", "")); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return nil, errors.New("PAYMENT_TIMEOUT_SECONDS must be a positive integer")
		}
		timeout = time.Duration(secs) * time.Second
	}

	return &Config{
		BaseURL: base,
		Timeout: timeout,
	}, nil
}
