package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Redis holds the optional region cache configuration.
	Redis RedisConfig `mapstructure:",squash"`

	// Wialon holds the remote logistics service configuration.
	Wialon WialonConfig `mapstructure:",squash"`

	// Boundary holds the administrative boundary dataset configuration.
	Boundary BoundaryConfig `mapstructure:",squash"`

	// Dispatch holds the order submission tuning knobs.
	Dispatch DispatchConfig `mapstructure:",squash"`
}

// RedisConfig holds the region cache connection details.
type RedisConfig struct {
	// URL is the Redis connection string (redis://[:password@]host[:port][/db]).
	// Leave empty to run without the region resolution cache.
	URL string `mapstructure:"REDIS_URL"`
	// RegionTTLMinutes is how long resolved regions stay cached.
	RegionTTLMinutes int `mapstructure:"REDIS_REGION_TTL_MINUTES" default:"1440"`
}

// WialonConfig holds the connection details for the Wialon logistics API.
type WialonConfig struct {
	// BaseURL is the API host, e.g. https://hst-api.wialon.com.
	BaseURL string `mapstructure:"WIALON_URL" required:"true"`
	// TimeoutSeconds bounds every remote call; a hanging call would stall
	// the whole batch otherwise.
	TimeoutSeconds int `mapstructure:"WIALON_TIMEOUT_SECONDS" default:"15"`
}

// BoundaryConfig holds the administrative region dataset settings.
type BoundaryConfig struct {
	// Path is the GeoJSON file with the region polygons.
	Path string `mapstructure:"BOUNDARY_FILE" required:"true"`
	// NameProperty is the feature property carrying the region name.
	NameProperty string `mapstructure:"BOUNDARY_NAME_PROPERTY" default:"shapeName"`
}

// DispatchConfig holds batch submission settings.
type DispatchConfig struct {
	// RateLimitRPS caps remote calls per second during order creation and
	// path updates.
	RateLimitRPS float64 `mapstructure:"DISPATCH_RATE_LIMIT_RPS" default:"1"`
	// Timezone is the IANA zone used to anchor the delivery-day time window.
	Timezone string `mapstructure:"DELIVERY_TIMEZONE" default:"Africa/Nairobi"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields, binds env vars and sets
// default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
