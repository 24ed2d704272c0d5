package config

import (
	"fmt"
	"time"
)

// BackendConfig configures the development fake of the assistant backend.
type BackendConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetJWTSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshGracePeriod() time.Duration
	GetGoogleClientID() string
	GetAllowedOrigins() AllowedOrigins
}

type Backend struct {
	EnvVars
	Auth
	Cors
}

var _ BackendConfig = Backend{}

func NewBackend() BackendConfig {
	return Backend{}
}

func (Backend) GetAppName() string {
	return GetEnv(appNameVar, "uniassist devbackend")
}

func (Backend) GetPort() string {
	port := GetEnv("PORT", "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (Backend) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "dev-secret-change-me")
}

func (Backend) GetAccessTokenExpiry() time.Duration {
	return GetEnvDuration("ACCESS_TOKEN_EXPIRY", time.Hour)
}

// GetRefreshGracePeriod is how long after exp a token may still be refreshed.
func (Backend) GetRefreshGracePeriod() time.Duration {
	return GetEnvDuration("REFRESH_GRACE_PERIOD", 24*time.Hour)
}
