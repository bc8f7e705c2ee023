package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/postbox/internal/util/compression"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
	Debug   DebugConfig   `yaml:"debug"`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"3000"`

	MaxBodyBytes int64 `yaml:"max_body_bytes" default:"1048576"`

	// Requests per second allowed per client host. Zero disables limiting.
	RateLimit float64 `yaml:"rate_limit" default:"0"`
	RateBurst int     `yaml:"rate_burst" default:"20"`

	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" default:"10s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" default:"15s"`
}

type StoreConfig struct {
	Driver      string   `yaml:"driver" default:"file"`
	Path        string   `yaml:"path" default:"./db.json"`
	Compression string   `yaml:"compression" default:"none"`
	S3          S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket" default:""`
	Key      string `yaml:"key" default:"posts.json"`
	Region   string `yaml:"region" default:"auto"`
	Endpoint string `yaml:"endpoint" default:""`
}

type LoggingConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"console"`
}

type DebugConfig struct {
	Gops bool `yaml:"gops" default:"false"`
}

var AppConfig *Config

func LoadConfig(path string) error {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, just use defaults
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		applyEnv(config)
		AppConfig = config
		return nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return err
	}

	AppConfig = config
	return nil
}

func applyEnv(config *Config) {
	if port := os.Getenv(EnvPort); port != "" {
		config.Server.Port = port
	}
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverFile, DriverBolt, DriverSQLite:
	case DriverS3:
		if c.Store.S3.Bucket == "" {
			return fmt.Errorf("store.s3.bucket is required for the %q driver", DriverS3)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Store.Compression {
	case "", compression.None, compression.Gzip, compression.Zstd:
	default:
		return fmt.Errorf("unknown store compression %q", c.Store.Compression)
	}

	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative, got %v", c.Server.RateLimit)
	}

	return nil
}

// Addr is the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

var durationType = reflect.TypeOf(time.Duration(0))

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		if field.Type() == durationType {
			if val, err := time.ParseDuration(defaultValue); err == nil {
				field.SetInt(int64(val))
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int, reflect.Int64:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
