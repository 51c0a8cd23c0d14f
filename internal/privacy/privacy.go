// Package privacy implements the redaction policy for person records.
//
// Every person-shaped payload that leaves the service passes through this
// policy first. The decision is a pure function of the person's explicit
// flags, date evidence, and a reference "today": same inputs always produce
// the same answer, and no sibling or parent state is ever consulted here.
// Cross-person inference (promoting undated ancestors near historic public
// relatives) lives in the engine package, on top of this base policy.
package privacy

import (
	"regexp"
	"strconv"
	"time"

	"github.com/lineage-works/lineage/pkg/types"
)

// Policy holds the tunable privacy constants. The defaults mirror the source
// dataset's policy; deployments may adjust them through configuration.
type Policy struct {
	// BornOnOrAfter marks the calendar date from which a living (or
	// unknown-living) person is always private regardless of age.
	BornOnOrAfter time.Time

	// AgeCutoffYears is the minimum age, as of "today", below which a
	// living (or unknown-living) person is private.
	AgeCutoffYears int
}

// DefaultPolicy returns the policy with documented defaults: born on or
// after 1946-01-01 is private, and so is anyone under 90.
func DefaultPolicy() Policy {
	return Policy{
		BornOnOrAfter:  time.Date(1946, time.January, 1, 0, 0, 0, 0, time.UTC),
		AgeCutoffYears: 90,
	}
}

// yearRe matches a plausible 4-digit year anywhere in a free-text date.
// Parsing is intentionally kept this simple: text dates in imported trees
// are messy ("abt 1650", "bef 1720-03", "1650?"), and a bare year is the
// only signal the policy needs.
var yearRe = regexp.MustCompile(`\b(\d{4})\b`)

// YearFromText extracts a plausible 4-digit year from a free-text date.
// Years outside [1, today.Year()+5] are rejected as nonsense.
func YearFromText(s string, today time.Time) (int, bool) {
	if s == "" {
		return 0, false
	}
	m := yearRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	if y < 1 || y > today.Year()+5 {
		return 0, false
	}
	return y, true
}

// EffectiveLiving resolves the living status from explicit signals and death
// evidence. Resolution order: the manual override wins, then the imported
// flag, then a known death date implies not-living. The returned pointer is
// nil when nothing resolves the question.
func EffectiveLiving(override, living *bool, deathDate *time.Time) *bool {
	if override != nil {
		v := *override
		return &v
	}
	if living != nil {
		v := *living
		return &v
	}
	if deathDate != nil {
		v := false
		return &v
	}
	return nil
}

// IsEffectivelyPrivate decides whether a person record must be redacted as of
// the given "today".
//
// The policy:
//  1. Explicitly private is terminal.
//  2. A credible death year (structured, or extracted from free text)
//     resolves the person as not-living unless an explicit living signal says
//     otherwise; not-living people are public.
//  3. Living or unknown: without any birth-year hint the person is private
//     (fail-safe default: undocumented people are protected).
//  4. Born on or after the cutoff date: private.
//  5. Younger than the age cutoff as of today: private.
//  6. Otherwise public.
func (p Policy) IsEffectivelyPrivate(person *types.Person, today time.Time) bool {
	if person.IsPrivate {
		return true
	}

	deathHint := person.DeathDate
	if deathHint == nil {
		if y, ok := YearFromText(person.DeathText, today); ok {
			d := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
			deathHint = &d
		}
	}

	living := EffectiveLiving(person.IsLivingOverride, person.IsLiving, deathHint)
	if living != nil && !*living {
		return false
	}

	// Living, or unknown: fall back to birth-year evidence.
	birthHint := person.BirthDate
	if birthHint == nil {
		if y, ok := YearFromText(person.BirthText, today); ok {
			b := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
			birthHint = &b
		}
	}
	if birthHint == nil {
		return true
	}

	if !birthHint.Before(p.BornOnOrAfter) {
		return true
	}
	if isYoungerThan(*birthHint, p.AgeCutoffYears, today) {
		return true
	}
	return false
}

// YearHint returns a best-effort year for a person: birth date first, then
// death date, then the first plausible 4-digit year found in either text
// field. Used by historic-anchor selection, never by the base policy above.
func YearHint(person *types.Person, today time.Time) (int, bool) {
	if person.BirthDate != nil {
		return person.BirthDate.Year(), true
	}
	if person.DeathDate != nil {
		return person.DeathDate.Year(), true
	}
	for _, s := range []string{person.BirthText, person.DeathText} {
		if y, ok := YearFromText(s, today); ok {
			return y, true
		}
	}
	return 0, false
}

// ExplicitlyLiving reports whether the record carries a positive explicit
// living signal (flag or override). Inference must never promote such a
// person, regardless of how historic their neighbors look.
func ExplicitlyLiving(person *types.Person) bool {
	if person.IsLivingOverride != nil && *person.IsLivingOverride {
		return true
	}
	return person.IsLiving != nil && *person.IsLiving
}

// isYoungerThan reports whether a person born on birth is younger than years
// as of today.
func isYoungerThan(birth time.Time, years int, today time.Time) bool {
	return today.Before(addYears(birth, years))
}

// addYears shifts a date by whole years, mapping Feb 29 to Feb 28 in
// non-leap target years.
func addYears(d time.Time, years int) time.Time {
	y := d.Year() + years
	if d.Month() == time.February && d.Day() == 29 && !isLeapYear(y) {
		return time.Date(y, time.February, 28, 0, 0, 0, 0, d.Location())
	}
	return time.Date(y, d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}
