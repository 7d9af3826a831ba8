package types

import "time"

// Entity carries persistence timestamps for stored records.
// Embed this in models that are written to a store.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEntity creates a new Entity stamped with t (UTC).
func NewEntity(t time.Time) Entity {
	t = t.UTC()
	return Entity{
		CreatedAt: t,
		UpdatedAt: t,
	}
}

// Touch sets UpdatedAt to t (UTC).
func (e *Entity) Touch(t time.Time) {
	e.UpdatedAt = t.UTC()
}

// IsZero reports whether the entity was never stamped.
func (e Entity) IsZero() bool {
	return e.CreatedAt.IsZero()
}
