package config

import "time"

type RefreshConfig interface {
	GetRefreshEndpoint() string
	GetRefreshTimeout() time.Duration
}

type RefreshEnv struct{}

var _ RefreshConfig = RefreshEnv{}

func (RefreshEnv) GetRefreshEndpoint() string {
	return GetEnv("REFRESH_ENDPOINT", "http://localhost:8080/oauth2/token")
}

func (RefreshEnv) GetRefreshTimeout() time.Duration {
	return GetEnvSeconds("REFRESH_TIMEOUT_SECONDS", 10*time.Second)
}
