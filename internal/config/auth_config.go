package config

import "time"

type Auth struct{}

var _ AuthConfig = Auth{}

// GetExpiryBuffer is how long before exp a token is already treated as expiring.
func (Auth) GetExpiryBuffer() time.Duration {
	return GetEnvDuration("UNIASSIST_EXPIRY_BUFFER", 5*time.Minute)
}

func (Auth) GetBackgroundRefreshInterval() time.Duration {
	return GetEnvDuration("UNIASSIST_REFRESH_INTERVAL", time.Hour)
}

func (Auth) GetSingleFlightRefresh() bool {
	return GetEnvBool("UNIASSIST_SINGLE_FLIGHT_REFRESH", true)
}

// GetRequestTimeout of 0 leaves requests unbounded.
func (Auth) GetRequestTimeout() time.Duration {
	return GetEnvDuration("UNIASSIST_REQUEST_TIMEOUT", 0)
}

func (Auth) GetGoogleClientID() string {
	return GetEnv("GOOGLE_CLIENT_ID", "")
}

func (Auth) GetGoogleClientSecret() string {
	return GetEnv("GOOGLE_CLIENT_SECRET", "")
}
