package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mediaplanhq/campaignstore/internal/flagx"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, its fields are copied into the
// runtime Config struct. The token validity is expressed in whole minutes.
type JsonConfig struct {
	EndpointAddrHTTP             string `json:"endpoint_addr_http"`
	DatabaseDSN                  string `json:"database_dsn"`
	SecretKey                    string `json:"secret_key"`
	TokenValidityDurationMinutes int    `json:"token_validity_duration_minutes"`
	S3AccessKey                  string `json:"s3_access_key"`
	S3SecretKey                  string `json:"s3_secret_key"`
	S3Bucket                     string `json:"s3_bucket"`
	S3Region                     string `json:"s3_region"`
	S3BaseEndpoint               string `json:"s3_base_endpoint"`
	S3PublicBaseURL              string `json:"s3_public_base_url"`
	UploadGroupSize              int    `json:"upload_group_size"`
	BatchChunkSize               int    `json:"batch_chunk_size"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. Zero-valued JSON fields leave the
// corresponding Config fields untouched. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenValidityDurationMinutes > 0 {
		config.TokenValidityDuration = time.Duration(c.TokenValidityDurationMinutes) * time.Minute
	}
	if c.S3AccessKey != "" {
		config.S3AccessKey = c.S3AccessKey
	}
	if c.S3SecretKey != "" {
		config.S3SecretKey = c.S3SecretKey
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.S3PublicBaseURL != "" {
		config.S3PublicBaseURL = c.S3PublicBaseURL
	}
	if c.UploadGroupSize > 0 {
		config.UploadGroupSize = c.UploadGroupSize
	}
	if c.BatchChunkSize > 0 {
		config.BatchChunkSize = c.BatchChunkSize
	}
}
