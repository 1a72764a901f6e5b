// Package entities contains domain entities used across the application.
package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownTier = errors.New("unknown tier")

// Tier is the difficulty level that decides which lesson and quiz pool a user draws from.
type Tier string

const (
	TierBeginner     Tier = "beginner"
	TierIntermediate Tier = "intermediate"
	TierAdvanced     Tier = "advanced"
)

// Tiers lists every tier from easiest to hardest.
var Tiers = []Tier{TierBeginner, TierIntermediate, TierAdvanced}

// ParseTier converts a stored or admin-supplied value into a Tier.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
	}
	return t, nil
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierBeginner, TierIntermediate, TierAdvanced:
		return true
	}
	return false
}

// Label returns the display name of the tier.
func (t Tier) Label() string {
	switch t {
	case TierBeginner:
		return "初級"
	case TierIntermediate:
		return "中級"
	case TierAdvanced:
		return "上級"
	}
	return string(t)
}

// User represents a bot subscriber.
type User struct {
	ID             string // opaque chat platform user identifier
	Tier           Tier
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// NewUser creates a beginner user registered at now.
func NewUser(id string, now time.Time) *User {
	return &User{
		ID:             id,
		Tier:           TierBeginner,
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// InactiveSince reports whether the user has not interacted since cutoff.
func (u *User) InactiveSince(cutoff time.Time) bool {
	return u.LastActivityAt.Before(cutoff)
}
