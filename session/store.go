// Package session keeps the in-memory rifle profiles, the active selection and the
// current shooting conditions.
//
// Records are only ever replaced whole. Editing goes through Draft, which hands out a
// copy, and Commit, which validates the copy and swaps it in under the write lock.
package session

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/padraicbc/thunderbolt/ballistics"
)

var (
	ErrNotFound  = errors.New("profile not found")
	ErrDuplicate = errors.New("profile already exists")
	ErrEmpty     = errors.New("session needs at least one profile")
)

// Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]ballistics.RifleProfile
	order    []string
	activeID string
	env      ballistics.EnvironmentalData
}

// Snapshot is the active profile and conditions read together.
type Snapshot struct {
	Profile     ballistics.RifleProfile      `json:"profile"`
	Environment ballistics.EnvironmentalData `json:"environment"`
}

// New seeds a store. The first profile becomes active.
func New(profiles []ballistics.RifleProfile, env ballistics.EnvironmentalData) (*Store, error) {
	if len(profiles) == 0 {
		return nil, ErrEmpty
	}
	s := &Store{
		profiles: make(map[string]ballistics.RifleProfile, len(profiles)),
		env:      env,
	}
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, ok := s.profiles[p.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, p.ID)
		}
		s.profiles[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	s.activeID = s.order[0]
	return s, nil
}

// List returns all profiles in insertion order.
func (s *Store) List() []ballistics.RifleProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ballistics.RifleProfile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.profiles[id])
	}
	return out
}

func (s *Store) Get(id string) (ballistics.RifleProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return ballistics.RifleProfile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// Active returns the selected profile.
func (s *Store) Active() ballistics.RifleProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles[s.activeID]
}

func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

func (s *Store) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.activeID = id
	return nil
}

// Draft returns a working copy of a profile for editing.
func (s *Store) Draft(id string) (ballistics.RifleProfile, error) {
	return s.Get(id)
}

// Commit replaces an existing profile with p.
func (s *Store) Commit(p ballistics.RifleProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[p.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	s.profiles[p.ID] = p
	return nil
}

// Add inserts a new profile. An empty ID is derived from the name.
func (s *Store) Add(p ballistics.RifleProfile) (ballistics.RifleProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		p.ID = s.uniqueSlug(p.Name)
	}
	if err := p.Validate(); err != nil {
		return ballistics.RifleProfile{}, err
	}
	if _, ok := s.profiles[p.ID]; ok {
		return ballistics.RifleProfile{}, fmt.Errorf("%w: %s", ErrDuplicate, p.ID)
	}
	s.profiles[p.ID] = p
	s.order = append(s.order, p.ID)
	return p, nil
}

func (s *Store) Environment() ballistics.EnvironmentalData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.env
}

func (s *Store) SetEnvironment(env ballistics.EnvironmentalData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env = env
}

// Snapshot reads the active profile and the environment under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Profile: s.profiles[s.activeID], Environment: s.env}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// uniqueSlug must be called with the write lock held.
func (s *Store) uniqueSlug(name string) string {
	base := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if base == "" {
		base = "profile"
	}
	id := base
	for i := 2; ; i++ {
		if _, ok := s.profiles[id]; !ok {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, i)
	}
}
