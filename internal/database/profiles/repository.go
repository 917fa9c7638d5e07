// Package profiles stores imported profiles in the key-value store, one JSON
// record per profile keyed by profile id.
//
// # Usage
//
//	repo := profiles.NewRepository(db)
//	err := repo.SaveProfile(profile)
//	all, err := repo.Load()
package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/mrlokans/companion/internal/database"
	"github.com/mrlokans/companion/internal/entities"
)

// Store is the key-value store profiles are kept in.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	KeysWithPrefix(prefix string) ([]string, error)
	DeletePrefix(prefix string) (int64, error)
}

// Repository handles all profile storage operations.
type Repository struct {
	store Store
}

func NewRepository(store Store) *Repository {
	return &Repository{store: store}
}

// SaveProfile stores p under its id, replacing any previous value.
func (r *Repository) SaveProfile(p *entities.Profile) error {
	if !isProfileKey(p.ID) {
		return fmt.Errorf("invalid profile id %q", p.ID)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := r.store.Set(p.ID, string(data)); err != nil {
		return fmt.Errorf("failed to store profile %s: %w", p.ID, err)
	}
	return nil
}

// GetProfile returns the profile stored under id, or database.ErrNotFound.
func (r *Repository) GetProfile(id string) (*entities.Profile, error) {
	if !isProfileKey(id) {
		return nil, database.ErrNotFound
	}
	value, err := r.store.Get(id)
	if err != nil {
		return nil, err
	}
	var p entities.Profile
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", id, err)
	}
	return &p, nil
}

// Load returns every stored profile, most recently imported first. Records
// that no longer decode are skipped with a warning.
func (r *Repository) Load() ([]entities.Profile, error) {
	keys, err := r.store.KeysWithPrefix(entities.ProfileKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	profiles := make([]entities.Profile, 0, len(keys))
	for _, key := range keys {
		p, err := r.GetProfile(key)
		if errors.Is(err, database.ErrNotFound) {
			continue // deleted concurrently
		}
		if err != nil {
			log.Printf("WARNING: Skipping stored profile %s: %v", key, err)
			continue
		}
		profiles = append(profiles, *p)
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].WhenImported.After(profiles[j].WhenImported)
	})
	return profiles, nil
}

// Delete removes one profile.
func (r *Repository) Delete(id string) error {
	if !isProfileKey(id) {
		return database.ErrNotFound
	}
	return r.store.Delete(id)
}

// DeleteMany removes the given profiles and returns how many existed.
func (r *Repository) DeleteMany(ids ...string) (int, error) {
	removed := 0
	for _, id := range ids {
		err := r.Delete(id)
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// DeleteAll removes every stored profile and nothing else.
func (r *Repository) DeleteAll() (int64, error) {
	return r.store.DeletePrefix(entities.ProfileKeyPrefix)
}

func isProfileKey(id string) bool {
	return strings.HasPrefix(id, entities.ProfileKeyPrefix)
}
