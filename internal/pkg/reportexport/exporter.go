package reportexport

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/lromand/matchpoint/internal/pkg/revenue"
)

// Exporter uploads rendered revenue reports to S3 for archival.
type Exporter struct {
	s3Client *s3.Client
	config   *Config
}

// NewExporter creates an S3-backed report exporter.
func NewExporter(cfg *Config) (*Exporter, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("report export is disabled")
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			// S3-compatible services need path-style URLs.
			o.UsePathStyle = true
			o.UseAccelerate = false
		}
	})

	return &Exporter{
		s3Client: s3Client,
		config:   cfg,
	}, nil
}

// NewExporterFromEnv creates an exporter from environment configuration.
func NewExporterFromEnv() (*Exporter, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewExporter(cfg)
}

// ExportTransactions renders the detail listing to CSV and uploads it,
// returning the stored object key.
func (e *Exporter) ExportTransactions(ctx context.Context, start, end time.Time, details []revenue.TransactionDetail) (string, error) {
	body, err := RenderCSV(details)
	if err != nil {
		return "", err
	}

	key := e.config.ObjectKey(start, end, time.Now())
	_, err = e.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("upload report %s: %w", key, err)
	}

	log.Printf("[ReportExport] Uploaded revenue report %s (%d rows)", key, len(details))
	return key, nil
}
