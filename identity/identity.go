// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/danielhkuo/pollkit/storage"
)

// Accepted birth-year window. Outside it the onboarding flow routes to the
// too-old / too-young pages.
const (
	MinBirthYear = 2005
	MaxBirthYear = 2012
)

var (
	ErrTooOld   = errors.New("birth year is before the accepted window")
	ErrTooYoung = errors.New("birth year is after the accepted window")
)

const (
	keyUserUUID  = "user_uuid"
	keyBirthYear = "year_of_birth"
)

// Identity is the locally generated anonymous user record. There is no
// server-side session; the UUID is the only identifier votes carry.
type Identity struct {
	UserUUID  string
	BirthYear int
}

// Manager creates and loads the device identity. The identity is written
// once and never mutated afterwards.
type Manager struct {
	store *storage.Store
}

func NewManager(store *storage.Store) *Manager {
	return &Manager{store: store}
}

// Load returns the stored identity. The second return is false when no
// identity exists yet, which forces the caller into onboarding.
func (m *Manager) Load() (Identity, bool, error) {
	userUUID, ok, err := m.store.Get(keyUserUUID)
	if err != nil {
		return Identity{}, false, err
	}
	if !ok {
		return Identity{}, false, nil
	}

	year, _, err := m.store.GetInt64(keyBirthYear)
	if err != nil {
		return Identity{}, false, err
	}

	return Identity{UserUUID: userUUID, BirthYear: int(year)}, true, nil
}

// Create generates and persists a fresh identity. The UUID is a random
// v4 (122 bits of entropy). If an identity already exists it is returned
// unchanged: identity is immutable after creation.
func (m *Manager) Create(birthYear int) (Identity, error) {
	if err := ValidateBirthYear(birthYear); err != nil {
		return Identity{}, err
	}

	if existing, ok, err := m.Load(); err != nil {
		return Identity{}, err
	} else if ok {
		return existing, nil
	}

	id := Identity{
		UserUUID:  uuid.NewString(),
		BirthYear: birthYear,
	}

	if err := m.store.Set(keyUserUUID, id.UserUUID); err != nil {
		return Identity{}, fmt.Errorf("failed to persist identity: %w", err)
	}
	if err := m.store.SetInt64(keyBirthYear, int64(birthYear)); err != nil {
		return Identity{}, fmt.Errorf("failed to persist birth year: %w", err)
	}

	return id, nil
}

// ValidateBirthYear checks the year against the accepted window.
func ValidateBirthYear(year int) error {
	if year < MinBirthYear {
		return ErrTooOld
	}
	if year > MaxBirthYear {
		return ErrTooYoung
	}
	return nil
}

// String implements fmt.Stringer without exposing the birth year.
func (id Identity) String() string {
	return "user " + id.UserUUID + " (born " + strconv.Itoa(id.BirthYear) + ")"
}
