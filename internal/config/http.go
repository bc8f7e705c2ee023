package config

const (
	HCType      = "Content-Type"
	HRequestID  = "X-Request-Id"
	HRetryAfter = "Retry-After"

	CTypeJSON = "application/json"
	CTypeText = "text/plain; charset=utf-8"
)

const (
	EnvConfigPath        = "CONFIG_PATH"
	EnvPort              = "PORT"
	EnvS3AccessKeyID     = "S3_ACCESS_KEY_ID"
	EnvS3SecretAccessKey = "S3_SECRET_ACCESS_KEY"
	EnvClientURL         = "POSTBOX_URL"

	DefaultConfigPath = "config.yaml"
	DefaultClientURL  = "http://localhost:3000"
)
