package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// ViperRepository reads settings from an optional YAML file and OUTREACH_*
// environment variables. Upserts are kept in process and win over both.
type ViperRepository struct {
	mu      sync.RWMutex
	v       *viper.Viper
	secrets map[string]bool
}

// New loads path when it is non-empty. A missing or unreadable file is an
// error so that a typo in SETTINGS_FILE does not go unnoticed.
func New(path string) (*ViperRepository, error) {
	v := viper.New()
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read settings %s: %w", path, err)
		}
	}
	return &ViperRepository{v: v, secrets: map[string]bool{}}, nil
}

func (r *ViperRepository) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.v.IsSet(key) {
		return "", false, nil
	}
	return r.v.GetString(key), true, nil
}

func (r *ViperRepository) Upsert(_ context.Context, key string, value string, secret bool) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return fmt.Errorf("empty settings key")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.v.Set(key, value)
	if secret {
		r.secrets[key] = true
	}
	return nil
}

func (r *ViperRepository) IsSecret(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.secrets[strings.ToLower(key)]
}
