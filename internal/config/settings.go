package config

import "time"

// Settings is an explicit, programmatic Config for embedding applications
// and tests. Zero-valued fields are filled with the same defaults the
// environment-backed Config uses.
type Settings struct {
	AppName           string
	Env               string
	StorePath         string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	LogLevel          string
	WarningThreshold  time.Duration
	CriticalThreshold time.Duration
	PollInterval      time.Duration
	AutoSaveInterval  time.Duration
	DraftMaxAge       time.Duration
	RefreshEndpoint   string
	RefreshTimeout    time.Duration
}

var _ Config = Settings{}

// NewSettings returns a Settings populated with defaults, ready for
// field-level overrides.
func NewSettings() Settings {
	return Settings{
		AppName:           "RxDesk Session Keeper",
		Env:               "development",
		StorePath:         "sessionkeeper.json",
		LogLevel:          "info",
		WarningThreshold:  5 * time.Minute,
		CriticalThreshold: 1 * time.Minute,
		PollInterval:      30 * time.Second,
		AutoSaveInterval:  30 * time.Second,
		DraftMaxAge:       24 * time.Hour,
		RefreshEndpoint:   "http://localhost:8080/oauth2/token",
		RefreshTimeout:    10 * time.Second,
	}
}

func (s Settings) GetAppName() string       { return defaultString(s.AppName, "RxDesk Session Keeper") }
func (s Settings) GetEnv() string           { return defaultString(s.Env, "development") }
func (s Settings) GetStorePath() string     { return defaultString(s.StorePath, "sessionkeeper.json") }
func (s Settings) GetRedisAddr() string     { return s.RedisAddr }
func (s Settings) GetRedisPassword() string { return s.RedisPassword }
func (s Settings) GetRedisDB() int          { return s.RedisDB }
func (s Settings) GetLogLevel() string      { return defaultString(s.LogLevel, "info") }

func (s Settings) GetWarningThreshold() time.Duration {
	return defaultDuration(s.WarningThreshold, 5*time.Minute)
}

func (s Settings) GetCriticalThreshold() time.Duration {
	return defaultDuration(s.CriticalThreshold, 1*time.Minute)
}

func (s Settings) GetPollInterval() time.Duration {
	return defaultDuration(s.PollInterval, 30*time.Second)
}

func (s Settings) GetAutoSaveInterval() time.Duration {
	return defaultDuration(s.AutoSaveInterval, 30*time.Second)
}

func (s Settings) GetDraftMaxAge() time.Duration {
	return defaultDuration(s.DraftMaxAge, 24*time.Hour)
}

func (s Settings) GetRefreshEndpoint() string {
	return defaultString(s.RefreshEndpoint, "http://localhost:8080/oauth2/token")
}

func (s Settings) GetRefreshTimeout() time.Duration {
	return defaultDuration(s.RefreshTimeout, 10*time.Second)
}

func defaultString(v, d string) string {
	if v == "" {
		return d
	}
	return v
}

func defaultDuration(v, d time.Duration) time.Duration {
	if v == 0 {
		return d
	}
	return v
}
