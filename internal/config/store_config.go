package config

import "path/filepath"

type Store struct{}

var _ StoreConfig = Store{}

// GetStoreBackend is one of memory, file, sqlite, redis.
func (Store) GetStoreBackend() string {
	return GetEnv("UNIASSIST_STORE", "file")
}

func (s Store) GetStorePath() string {
	return s.StorePathFor(s.GetStoreBackend())
}

// StorePathFor is the store location for backend: UNIASSIST_STORE_PATH when
// set, otherwise a file in the data folder.
func (Store) StorePathFor(backend string) string {
	if path := GetEnv("UNIASSIST_STORE_PATH", ""); path != "" {
		return path
	}
	folder := EnvVars{}.GetDataFolder()
	if backend == "sqlite" {
		return filepath.Join(folder, "state.db")
	}
	return filepath.Join(folder, "state.json")
}

// GetStoreKey is a hex encoded 32 byte key; when set the file store seals its values.
func (Store) GetStoreKey() string {
	return GetEnv("UNIASSIST_STORE_KEY", "")
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Store) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

func (Store) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "uniassist:")
}
