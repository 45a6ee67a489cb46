package config

// Config aggregates everything the session keeper needs at construction
// time. The default implementation reads environment variables with sane
// fallbacks; embedding applications that want programmatic control use
// Settings instead.
type Config interface {
	EnvConfig
	SessionConfig
	DraftConfig
	RefreshConfig
}

type mainConfig struct {
	EnvVars
	SessionEnv
	DraftEnv
	RefreshEnv
}

func New() Config {
	return mainConfig{}
}
