package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record carries the fields every entity shares. Entities embed it so the
// Entity and Stamped methods are promoted and the JSON fields are flattened.
type Record struct {
	ID        int       `json:"Id"`
	CreatedAt time.Time `json:"createdAt,omitzero"`

	// Extra holds stored fields the entity struct does not declare. They are
	// written back unchanged by EncodeRecord.
	Extra map[string]json.RawMessage `json:"-"`
}

// GetID returns the record identifier.
func (r *Record) GetID() int { return r.ID }

// SetID sets the record identifier. Only the allocator calls this.
func (r *Record) SetID(id int) { r.ID = id }

// SetCreatedAt stamps the creation time.
func (r *Record) SetCreatedAt(t time.Time) { r.CreatedAt = t }

// Extras returns the undeclared fields kept from storage.
func (r *Record) Extras() map[string]json.RawMessage { return r.Extra }

// SetExtras replaces the undeclared fields.
func (r *Record) SetExtras(m map[string]json.RawMessage) { r.Extra = m }

// DateLayout is the calendar-date format used by every date field.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// requireDate validates a required date field and returns the parsed value.
func requireDate(v *ValidationError, field, value, label string) (time.Time, bool) {
	if value == "" {
		v.Add(field, label+" is required")
		return time.Time{}, false
	}
	t, err := ParseDate(value)
	if err != nil {
		v.Add(field, err.Error())
		return time.Time{}, false
	}
	return t, true
}

// oneOf reports whether s is in the allowed set.
func oneOf(s string, allowed []string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
