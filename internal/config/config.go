package config

import "time"

type Config interface {
	EnvConfig
	AuthConfig
	StoreConfig
	ChatConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetBackendURL() string
	GetLogLevel() string
	GetDataFolder() string
}

type AuthConfig interface {
	GetExpiryBuffer() time.Duration
	GetBackgroundRefreshInterval() time.Duration
	GetSingleFlightRefresh() bool
	GetRequestTimeout() time.Duration
	GetGoogleClientID() string
	GetGoogleClientSecret() string
}

type StoreConfig interface {
	GetStoreBackend() string
	GetStorePath() string
	StorePathFor(backend string) string
	GetStoreKey() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
}

type ChatConfig interface {
	GetMaxHistoryEntries() int
}

type mainConfig struct {
	EnvVars
	Auth
	Store
	Chat
}

func New() Config {
	return mainConfig{}
}
