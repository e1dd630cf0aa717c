// Package conf loads the process configuration from file and environment and
// exposes the section values the fx graph consumes.
package conf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/recordhub/recordhub/internal/files"
	"github.com/recordhub/recordhub/internal/log"
	"github.com/recordhub/recordhub/internal/metadata"
	"github.com/recordhub/recordhub/internal/pkg/xcache"
	"github.com/recordhub/recordhub/internal/records"
	"github.com/recordhub/recordhub/internal/server"
	"github.com/recordhub/recordhub/internal/server/api"
	"github.com/recordhub/recordhub/internal/store/sqlstore"
)

type Config struct {
	APIServer server.Config           `conf:"server" yaml:"server" json:"server"`
	API       api.Config              `conf:"api" yaml:"api" json:"api"`
	DB        sqlstore.Config         `conf:"db" yaml:"db" json:"db"`
	Log       log.Config              `conf:"log" yaml:"log" json:"log"`
	Files     files.Config            `conf:"files" yaml:"files" json:"files"`
	Cache     xcache.Config           `conf:"cache" yaml:"cache" json:"cache"`
	Tenants   []metadata.TenantConfig `conf:"tenants" yaml:"tenants" json:"tenants"`
	Entities  []records.Binding       `conf:"entities" yaml:"entities" json:"entities"`
}

// Load reads config.yml from the usual locations, then applies RECORDHUB_*
// environment overrides. A missing config file is not an error; defaults and
// environment still produce a runnable configuration.
func Load() (Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./conf")
	v.AddConfigPath("$HOME/.recordhub")
	v.AddConfigPath("/etc/recordhub")

	v.SetEnvPrefix("RECORDHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config

	err := v.Unmarshal(&config, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "conf"
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.name", "recordhub")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.auth.tenant_claim", "tenant")

	v.SetDefault("api.export_expiration", "15m")

	v.SetDefault("log.name", "recordhub")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("files.directory", "./data/files")

	v.SetDefault("cache.mode", "memory")
}

// Module feeds the loaded configuration and its sections into the fx graph.
var Module = fx.Options(
	fx.Provide(Load),
	fx.Provide(
		func(c Config) server.Config { return c.APIServer },
		func(c Config) api.Config { return c.API },
		func(c Config) sqlstore.Config { return c.DB },
		func(c Config) log.Config { return c.Log },
		func(c Config) files.Config { return c.Files },
		func(c Config) xcache.Config { return c.Cache },
		func(c Config) []metadata.TenantConfig { return c.Tenants },
		func(c Config) []records.Binding { return c.Entities },
	),
)
