package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. A .env file in
// the working directory is loaded first if present; already-set variables
// win over file entries.
//
// Recognized variables:
//
//	CAMPAIGNSTORE_HTTP_ADDR
//	CAMPAIGNSTORE_DATABASE_DSN
//	CAMPAIGNSTORE_SECRET_KEY
//	CAMPAIGNSTORE_S3_ACCESS_KEY
//	CAMPAIGNSTORE_S3_SECRET_KEY
//	CAMPAIGNSTORE_S3_BUCKET
//	CAMPAIGNSTORE_S3_REGION
//	CAMPAIGNSTORE_S3_BASE_ENDPOINT
//	CAMPAIGNSTORE_S3_PUBLIC_BASE_URL
//	CAMPAIGNSTORE_UPLOAD_GROUP_SIZE
//	CAMPAIGNSTORE_BATCH_CHUNK_SIZE
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v, ok := os.LookupEnv(key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString(&config.EndpointAddrHTTP, "CAMPAIGNSTORE_HTTP_ADDR")
	setString(&config.DatabaseDSN, "CAMPAIGNSTORE_DATABASE_DSN")
	setString(&config.SecretKey, "CAMPAIGNSTORE_SECRET_KEY")
	setString(&config.S3AccessKey, "CAMPAIGNSTORE_S3_ACCESS_KEY")
	setString(&config.S3SecretKey, "CAMPAIGNSTORE_S3_SECRET_KEY")
	setString(&config.S3Bucket, "CAMPAIGNSTORE_S3_BUCKET")
	setString(&config.S3Region, "CAMPAIGNSTORE_S3_REGION")
	setString(&config.S3BaseEndpoint, "CAMPAIGNSTORE_S3_BASE_ENDPOINT")
	setString(&config.S3PublicBaseURL, "CAMPAIGNSTORE_S3_PUBLIC_BASE_URL")
	setInt(&config.UploadGroupSize, "CAMPAIGNSTORE_UPLOAD_GROUP_SIZE")
	setInt(&config.BatchChunkSize, "CAMPAIGNSTORE_BATCH_CHUNK_SIZE")
}
