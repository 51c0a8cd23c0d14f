package types

import "time"

// Person is a node in the family tree. Records are owned and mutated by the
// external import pipeline; this service treats them as read-only.
//
// Nullable columns map to pointer fields so that "unset" stays distinct from
// a zero value: the privacy policy treats an unknown is_living flag very
// differently from an explicit false.
type Person struct {
	// ID is the stable internal handle. It is opaque and never changes.
	ID string `json:"id"`

	// AliasID is the optional external identifier carried over from the
	// source dataset (e.g. "I0001"). Empty when the import had none.
	AliasID string `json:"alias_id,omitempty"`

	// Name fields. Any of them may be empty.
	DisplayName string `json:"display_name,omitempty"`
	GivenName   string `json:"given_name,omitempty"`
	Surname     string `json:"surname,omitempty"`

	Gender string `json:"gender,omitempty"`

	// Structured dates. Nil when the source has no parseable date.
	BirthDate *time.Time `json:"birth_date,omitempty"`
	DeathDate *time.Time `json:"death_date,omitempty"`

	// Free-text dates, used as a fallback when the structured date is nil
	// (e.g. "abt 1650", "bef 1720").
	BirthText string `json:"birth_text,omitempty"`
	DeathText string `json:"death_text,omitempty"`

	// IsLiving is the imported living flag. Nil means unknown.
	IsLiving *bool `json:"is_living,omitempty"`

	// IsPrivate marks the record explicitly private. It always wins.
	IsPrivate bool `json:"is_private"`

	// IsLivingOverride is a manual tri-state correction that takes
	// precedence over IsLiving and over any death-date evidence.
	IsLivingOverride *bool `json:"is_living_override,omitempty"`
}
