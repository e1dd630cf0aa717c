package api

import "time"

type Config struct {
	// ExportExpiration bounds the lifetime of generated export links.
	ExportExpiration time.Duration `json:"export_expiration" yaml:"export_expiration" conf:"export_expiration"`
}
