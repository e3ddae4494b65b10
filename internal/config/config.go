// Package config declares every setting of the job. Values are resolved by
// kong from flags or from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config holds every setting of the job. Field tags carry the flag name,
// the environment variable and the default.
type Config struct {
	AppEnv   string `name:"app-env" env:"APP_ENV" default:"dev" enum:"dev,prod" help:"Runtime environment (dev or prod)."`
	LogLevel string `name:"log-level" env:"LOG_LEVEL" default:"info" help:"Log level (debug, info, warn, error)."`

	AWSRegion    string `name:"aws-region" env:"AWS_REGION" help:"S3 region."`
	AWSKeyAccess string `name:"aws-key-access" env:"AWS_KEY_ACCESS" help:"S3 access key id. Empty uses the default credential chain."`
	AWSKeySecret string `name:"aws-key-secret" env:"AWS_KEY_SECRET" help:"S3 secret access key."`
	S3Bucket     string `name:"s3-bucket" env:"AWS_S3_BUCKET" help:"Target bucket."`
	S3Directory  string `name:"s3-directory" env:"AWS_S3_DIRECTORY" help:"Key prefix for hourly objects."`
	S3Endpoint   string `name:"s3-endpoint" env:"AWS_S3_ENDPOINT" help:"Custom S3 endpoint (MinIO, localstack)."`

	DataKey     string        `name:"data-key" env:"DATA_KEY" help:"Weather API service key."`
	APIURL      string        `name:"api-url" env:"ASOS_API_URL" default:"http://apis.data.go.kr/1360000/AsosHourlyInfoService/getWthrDataList" help:"ASOS hourly API endpoint."`
	HTTPTimeout time.Duration `name:"http-timeout" env:"HTTP_TIMEOUT" default:"300s" help:"Per-request timeout."`

	RequestDate string `name:"date" env:"REQUEST_DATE" help:"Target date, YYYYMMDD."`
	RequestHour string `name:"hour" env:"REQUEST_HOUR" help:"Target hour, 0-23."`

	AuditDB        string `name:"audit-db" env:"AUDIT_DB" help:"Path of the sqlite audit ledger. Empty disables it."`
	PushgatewayURL string `name:"pushgateway-url" env:"PUSHGATEWAY_URL" help:"Prometheus Pushgateway URL. Empty disables pushing."`
}

// Level returns the parsed log level.
func (c Config) Level() (slog.Level, error) {
	return parseLogLevel(c.LogLevel)
}

// ValidateStorage reports missing settings needed to reach the bucket.
func (c Config) ValidateStorage() error {
	var errs []error
	if strings.TrimSpace(c.AWSRegion) == "" {
		errs = append(errs, errors.New("AWS_REGION is required"))
	}
	if strings.TrimSpace(c.S3Bucket) == "" {
		errs = append(errs, errors.New("AWS_S3_BUCKET is required"))
	}
	if strings.TrimSpace(c.S3Directory) == "" {
		errs = append(errs, errors.New("AWS_S3_DIRECTORY is required"))
	}
	if (c.AWSKeyAccess == "") != (c.AWSKeySecret == "") {
		errs = append(errs, errors.New("AWS_KEY_ACCESS and AWS_KEY_SECRET must be set together"))
	}
	return errors.Join(errs...)
}

// ValidateSlot reports a missing target date or hour. Their format is
// checked by slot.New.
func (c Config) ValidateSlot() error {
	var errs []error
	if strings.TrimSpace(c.RequestDate) == "" {
		errs = append(errs, errors.New("REQUEST_DATE is required"))
	}
	if strings.TrimSpace(c.RequestHour) == "" {
		errs = append(errs, errors.New("REQUEST_HOUR is required"))
	}
	return errors.Join(errs...)
}

// ValidateIngest reports everything a full ingestion run needs.
func (c Config) ValidateIngest() error {
	var errs []error
	if err := c.ValidateStorage(); err != nil {
		errs = append(errs, err)
	}
	if err := c.ValidateSlot(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.DataKey) == "" {
		errs = append(errs, errors.New("DATA_KEY is required"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
