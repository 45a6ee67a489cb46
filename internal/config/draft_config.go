package config

import "time"

type DraftConfig interface {
	GetAutoSaveInterval() time.Duration
	GetDraftMaxAge() time.Duration
}

type DraftEnv struct{}

var _ DraftConfig = DraftEnv{}

func (DraftEnv) GetAutoSaveInterval() time.Duration {
	return GetEnvSeconds("AUTOSAVE_INTERVAL_SECONDS", 30*time.Second)
}

func (DraftEnv) GetDraftMaxAge() time.Duration {
	return GetEnvSeconds("DRAFT_MAX_AGE_SECONDS", 24*time.Hour)
}
