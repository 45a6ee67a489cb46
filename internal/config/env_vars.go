package config

import (
	"os"
	"strconv"
	"time"
)

const (
	appNameVar   = "APP_NAME"
	envVar       = "ENV"
	storePathVar = "STORE_PATH"
	redisAddrVar = "REDIS_ADDR"
)

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetStorePath() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetLogLevel() string
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "RxDesk Session Keeper")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "development")
}

// GetStorePath returns the JSON file backing the persisted key-value
// store. Ignored when a Redis address is configured.
func (EnvVars) GetStorePath() string {
	return GetEnv(storePathVar, "sessionkeeper.json")
}

func (EnvVars) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "")
}

func (EnvVars) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (EnvVars) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

func (EnvVars) GetLogLevel() string {
	return GetEnv("LOG_LEVEL", "info")
}

// GetEnv returns the value of an environment variable, or defaultValue
// when unset or empty.
func GetEnv(name, defaultValue string) string {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt parses an integer environment variable, falling back to
// defaultValue on absence or parse failure.
func GetEnvInt(name string, defaultValue int) int {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// GetEnvSeconds reads an integer number of seconds from the environment.
func GetEnvSeconds(name string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return time.Duration(n) * time.Second
}
