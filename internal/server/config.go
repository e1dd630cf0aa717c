package server

import (
	"time"

	"github.com/recordhub/recordhub/internal/server/middleware"
	"github.com/recordhub/recordhub/internal/tracing"
)

type Config struct {
	Host        string        `json:"host" yaml:"host" conf:"host"`
	Port        int           `json:"port" yaml:"port" conf:"port"`
	Name        string        `json:"name" yaml:"name" conf:"name"`
	BasePath    string        `json:"base_path" yaml:"base_path" conf:"base_path"`
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout" conf:"read_timeout"`

	// RequestTimeout is the maximum duration for processing a request.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" conf:"request_timeout"`

	Trace tracing.Config        `json:"trace" yaml:"trace" conf:"trace"`
	Auth  middleware.AuthConfig `json:"auth" yaml:"auth" conf:"auth"`

	Debug bool `json:"debug" yaml:"debug" conf:"debug"`
	CORS  CORS `json:"cors" yaml:"cors" conf:"cors"`
}

type CORS struct {
	Enabled          bool          `json:"enabled" yaml:"enabled" conf:"enabled"`
	AllowedOrigins   []string      `json:"allowed_origins" yaml:"allowed_origins" conf:"allowed_origins"`
	AllowedMethods   []string      `json:"allowed_methods" yaml:"allowed_methods" conf:"allowed_methods"`
	AllowedHeaders   []string      `json:"allowed_headers" yaml:"allowed_headers" conf:"allowed_headers"`
	ExposedHeaders   []string      `json:"exposed_headers" yaml:"exposed_headers" conf:"exposed_headers"`
	AllowCredentials bool          `json:"allow_credentials" yaml:"allow_credentials" conf:"allow_credentials"`
	MaxAge           time.Duration `json:"max_age" yaml:"max_age" conf:"max_age"`
}
