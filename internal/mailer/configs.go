package mailer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/shineum/mcp-mailer/internal/email"
	"github.com/shineum/mcp-mailer/internal/store"
)

// ConfigUpdate carries the fields of an update-smtp-config call. Nil
// pointers leave the stored value untouched; in particular a nil IsDefault
// leaves the default flags alone everywhere.
type ConfigUpdate struct {
	Name      *string
	Host      *string
	Port      *int
	Secure    *bool
	User      *string
	Pass      *string
	IsDefault *bool
}

// Configs returns all SMTP server configurations.
func (s *Service) Configs() []email.ServerConfig {
	return s.store.ReadConfigs()
}

// AddConfig stores a new SMTP server configuration, generating its id.
// When the new entry is flagged default, every other entry is demoted in
// the same write. The first entry added to an empty collection becomes the
// default regardless of the flag it was given.
func (s *Service) AddConfig(cfg email.ServerConfig) (email.ServerConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs := s.store.ReadConfigs()

	cfg.ID = uuid.NewString()
	if len(configs) == 0 {
		cfg.IsDefault = true
	}
	if cfg.IsDefault {
		clearOtherDefaults(configs, cfg.ID)
	}
	configs = append(configs, cfg)

	if !s.store.WriteConfigs(configs) {
		return email.ServerConfig{}, ErrStoreWrite
	}
	return cfg, nil
}

// UpdateConfig applies the given field updates to the configuration with
// the given id. Setting IsDefault true demotes every other entry.
func (s *Service) UpdateConfig(id string, upd ConfigUpdate) (email.ServerConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs := s.store.ReadConfigs()
	idx := indexByKey(configs, id)
	if idx < 0 {
		return email.ServerConfig{}, fmt.Errorf("%w: %s", ErrConfigNotFound, id)
	}

	cfg := &configs[idx]
	if upd.Name != nil {
		cfg.Name = *upd.Name
	}
	if upd.Host != nil {
		cfg.Host = *upd.Host
	}
	if upd.Port != nil {
		cfg.Port = *upd.Port
	}
	if upd.Secure != nil {
		cfg.Secure = *upd.Secure
	}
	if upd.User != nil {
		cfg.Auth.User = *upd.User
	}
	if upd.Pass != nil {
		cfg.Auth.Pass = *upd.Pass
	}
	if upd.IsDefault != nil {
		cfg.IsDefault = *upd.IsDefault
		if *upd.IsDefault {
			clearOtherDefaults(configs, id)
		} else {
			// Explicitly dropping the default flag re-elects the
			// first entry so the collection keeps exactly one.
			electDefault(configs)
		}
	}

	if !s.store.WriteConfigs(configs) {
		return email.ServerConfig{}, ErrStoreWrite
	}
	return configs[idx], nil
}

// DeleteConfig removes the configuration with the given id. Deleting the
// last remaining entry is rejected; deleting the default entry promotes
// the first remaining entry.
func (s *Service) DeleteConfig(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs := s.store.ReadConfigs()
	idx := indexByKey(configs, id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrConfigNotFound, id)
	}
	if len(configs) == 1 {
		return ErrLastConfig
	}

	wasDefault := configs[idx].IsDefault
	configs = append(configs[:idx], configs[idx+1:]...)
	if wasDefault {
		electDefault(configs)
	}

	if !s.store.WriteConfigs(configs) {
		return ErrStoreWrite
	}
	return nil
}

// DefaultServerConfig resolves the default configuration: the flagged
// entry, else the first entry, else the built-in fallback. It never
// returns an empty value.
func (s *Service) DefaultServerConfig() email.ServerConfig {
	configs := s.store.ReadConfigs()
	idx := defaultIndex(configs)
	if idx < 0 {
		return store.DefaultConfigs()[0]
	}
	return configs[idx]
}

func (s *Service) configByID(id string) (email.ServerConfig, error) {
	configs := s.store.ReadConfigs()
	idx := indexByKey(configs, id)
	if idx < 0 {
		return email.ServerConfig{}, fmt.Errorf("%w: %s", ErrConfigNotFound, id)
	}
	return configs[idx], nil
}
