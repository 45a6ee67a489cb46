package config

import "time"

type SessionConfig interface {
	GetWarningThreshold() time.Duration
	GetCriticalThreshold() time.Duration
	GetPollInterval() time.Duration
}

type SessionEnv struct{}

var _ SessionConfig = SessionEnv{}

func (SessionEnv) GetWarningThreshold() time.Duration {
	return GetEnvSeconds("WARNING_THRESHOLD_SECONDS", 5*time.Minute)
}

func (SessionEnv) GetCriticalThreshold() time.Duration {
	return GetEnvSeconds("CRITICAL_THRESHOLD_SECONDS", 1*time.Minute)
}

func (SessionEnv) GetPollInterval() time.Duration {
	return GetEnvSeconds("POLL_INTERVAL_SECONDS", 30*time.Second)
}
