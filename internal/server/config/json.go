package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophalbum/internal/flagx"
	"github.com/dmitrijs2005/gophalbum/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "30s" and integer nanoseconds are accepted.
// Pointer fields distinguish "absent" from "zero" so a partial file only
// overrides what it names.
type JsonConfig struct {
	HTTPAddr            *string         `json:"http_addr"`
	SecretKey           *string         `json:"secret_key"`
	MetadataBackend     *string         `json:"metadata_backend"`
	DatabaseDSN         *string         `json:"database_dsn"`
	BadgerDir           *string         `json:"badger_dir"`
	BlobBackend         *string         `json:"blob_backend"`
	S3RootUser          *string         `json:"s3_root_user"`
	S3RootPassword      *string         `json:"s3_root_password"`
	S3Bucket            *string         `json:"s3_bucket"`
	S3Region            *string         `json:"s3_region"`
	S3BaseEndpoint      *string         `json:"s3_base_endpoint"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	StoreRetryAttempts  *uint64         `json:"store_retry_attempts"`
	StoreRetryBaseDelay *timex.Duration `json:"store_retry_base_delay"`
	ScanPageSize        *int            `json:"scan_page_size"`
	LogLevel            *string         `json:"log_level"`
}

// parseJson overlays values from the file named by -c/-config onto config.
// Nothing happens when no file is given. An unreadable file or invalid JSON
// panics, same as a bad flag.
func parseJson(config *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.MetadataBackend, c.MetadataBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.BadgerDir, c.BadgerDir)
	setString(&config.BlobBackend, c.BlobBackend)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)

	if c.RequestTimeout != nil {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.StoreRetryAttempts != nil {
		config.StoreRetryAttempts = *c.StoreRetryAttempts
	}
	if c.StoreRetryBaseDelay != nil {
		config.StoreRetryBaseDelay = c.StoreRetryBaseDelay.Duration
	}
	if c.ScanPageSize != nil {
		config.ScanPageSize = *c.ScanPageSize
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
