// Package user defines the user domain entity
package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents an account in the system
type User struct {
	id            uuid.UUID
	email         string
	name          string
	passwordHash  string
	customFilters []Filter
	createdAt     time.Time
	updatedAt     time.Time
	lastLoginAt   *time.Time
}

// NewUser creates a new user with validation
func NewUser(email, name, password string) (*User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	now := time.Now()
	return &User{
		id:            uuid.New(),
		email:         strings.ToLower(email),
		name:          name,
		passwordHash:  string(hashedPassword),
		customFilters: []Filter{},
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds a user from persisted state.
func Reconstruct(
	id uuid.UUID,
	email, name, passwordHash string,
	customFilters []Filter,
	createdAt, updatedAt time.Time,
	lastLoginAt *time.Time,
) *User {
	if customFilters == nil {
		customFilters = []Filter{}
	}
	// Records persisted before filters carried display data.
	for i := range customFilters {
		if customFilters[i].Row == 0 {
			customFilters[i].Row = CustomFilterRow
		}
		if customFilters[i].Color == "" {
			customFilters[i].Color = defaultFilterColor
		}
	}
	return &User{
		id:            id,
		email:         email,
		name:          name,
		passwordHash:  passwordHash,
		customFilters: customFilters,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		lastLoginAt:   lastLoginAt,
	}
}

// ID returns the user's ID
func (u *User) ID() uuid.UUID { return u.id }

// Email returns the user's email
func (u *User) Email() string { return u.email }

// Name returns the user's display name
func (u *User) Name() string { return u.name }

// PasswordHash returns the bcrypt hash of the user's password
func (u *User) PasswordHash() string { return u.passwordHash }

// CustomFilters returns the user's custom filter tags
func (u *User) CustomFilters() []Filter { return u.customFilters }

// CreatedAt returns when the account was created
func (u *User) CreatedAt() time.Time { return u.createdAt }

// UpdatedAt returns when the account was last updated
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// LastLoginAt returns when the user last logged in
func (u *User) LastLoginAt() *time.Time { return u.lastLoginAt }

// CheckPassword verifies if the provided password matches
func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password))
}

// UpdatePassword replaces the user's password
func (u *User) UpdatePassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}

	u.passwordHash = string(hashedPassword)
	u.updatedAt = time.Now()
	return nil
}

// Rename changes the user's display name
func (u *User) Rename(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	u.name = name
	u.updatedAt = time.Now()
	return nil
}

// RecordLogin records a login timestamp
func (u *User) RecordLogin() {
	now := time.Now()
	u.lastLoginAt = &now
	u.updatedAt = now
}

// AddFilter creates a custom filter tag on the reserved display row.
// Names must be unique among the user's filters and must not shadow a
// default filter. An empty color falls back to the default.
func (u *User) AddFilter(name, color string) (Filter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Filter{}, ErrFilterNameRequired
	}
	for _, f := range u.customFilters {
		if strings.EqualFold(f.Name, name) {
			return Filter{}, ErrFilterExists
		}
	}
	for _, f := range DefaultFilters() {
		if strings.EqualFold(f.Name, name) {
			return Filter{}, ErrFilterExists
		}
	}

	if color == "" {
		color = defaultFilterColor
	}
	filter := Filter{ID: uuid.NewString(), Name: name, Row: CustomFilterRow, Color: color}
	u.customFilters = append(u.customFilters, filter)
	u.updatedAt = time.Now()
	return filter, nil
}

// RenameFilter changes a custom filter's display name, and its color
// when one is given.
func (u *User) RenameFilter(filterID, name, color string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrFilterNameRequired
	}
	for i, f := range u.customFilters {
		if f.ID == filterID {
			u.customFilters[i].Name = name
			if color != "" {
				u.customFilters[i].Color = color
			}
			u.updatedAt = time.Now()
			return nil
		}
	}
	return ErrFilterNotFound
}

// RemoveFilter deletes a custom filter by id.
func (u *User) RemoveFilter(filterID string) error {
	for i, f := range u.customFilters {
		if f.ID == filterID {
			u.customFilters = append(u.customFilters[:i], u.customFilters[i+1:]...)
			u.updatedAt = time.Now()
			return nil
		}
	}
	return ErrFilterNotFound
}

// HasFilter reports whether the id names one of the user's custom
// filters or a default filter.
func (u *User) HasFilter(filterID string) bool {
	if IsDefaultFilter(filterID) {
		return true
	}
	for _, f := range u.customFilters {
		if f.ID == filterID {
			return true
		}
	}
	return false
}

// Validation functions
func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(email, "@") {
		return errors.New("invalid email format")
	}
	if len(email) > 255 {
		return errors.New("email too long")
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return errors.New("name is required")
	}
	if len(name) < 2 {
		return errors.New("name must be at least 2 characters")
	}
	if len(name) > 100 {
		return errors.New("name too long")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(password) > 128 {
		return errors.New("password too long")
	}
	return nil
}
