package xcache

import (
	"time"

	"github.com/recordhub/recordhub/internal/pkg/xredis"
)

// Mode selects the cache backend.
//   - memory: pure in-memory
//   - redis: pure redis
//   - two-level: memory + redis chain
const (
	ModeMemory   = "memory"
	ModeRedis    = "redis"
	ModeTwoLevel = "two-level"
)

type Config struct {
	Mode   string        `json:"mode" yaml:"mode" conf:"mode"`
	Memory MemoryConfig  `json:"memory" yaml:"memory" conf:"memory"`
	Redis  xredis.Config `json:"redis" yaml:"redis" conf:"redis"`
}

type MemoryConfig struct {
	Expiration      time.Duration `json:"expiration" yaml:"expiration" conf:"expiration"`
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval" conf:"cleanup_interval"`
}
