package reportexport

import (
	"errors"
	"fmt"
	"time"

	"github.com/lromand/matchpoint/internal/pkg/env"
)

// Config holds the S3 settings for revenue report exports.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
}

// LoadConfig loads the export configuration from environment variables.
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("REPORT_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("REPORT_S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("REPORT_S3_REGION", "us-west-001"),
		BucketName:      env.GetEnv("REPORT_S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("REPORT_S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("REPORT_EXPORT_ENABLED", "false") == "true",
	}

	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("REPORT_S3_ACCESS_KEY_ID is required when report export is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("REPORT_S3_SECRET_ACCESS_KEY is required when report export is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("REPORT_S3_BUCKET_NAME is required when report export is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if report export is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// ObjectKey generates the S3 object key for one exported range.
// Format: revenue/YYYY/MM/revenue_<start>_<end>_<exported-at-unix>.csv
func (c *Config) ObjectKey(start, end, exportedAt time.Time) string {
	return fmt.Sprintf("revenue/%04d/%02d/revenue_%s_%s_%d.csv",
		exportedAt.Year(), int(exportedAt.Month()),
		start.Format("2006-01-02"), end.Format("2006-01-02"),
		exportedAt.Unix())
}
