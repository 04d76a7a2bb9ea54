package model

import "time"

// PromoCode is a time-boxed, togglable discount token. It is valid for
// use during [ValidFrom, ValidTo) while Active is set.
type PromoCode struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Code      string    `json:"code" bson:"code" validate:"required,min=2,max=40,alphanum"`
	Percent   int       `json:"percent" bson:"percent" validate:"required,min=1,max=100"`
	ValidFrom time.Time `json:"valid_from" bson:"valid_from" validate:"required"`
	ValidTo   time.Time `json:"valid_to" bson:"valid_to" validate:"required,gtfield=ValidFrom"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// UsableAt reports whether the code may be attached to a new booking
// at the given instant: active and inside the validity window.
func (p *PromoCode) UsableAt(now time.Time) bool {
	return p.Active && !now.Before(p.ValidFrom) && now.Before(p.ValidTo)
}

type PromoCodeUpdate struct {
	Percent   *int       `json:"percent,omitempty" validate:"omitempty,min=1,max=100"`
	ValidFrom *time.Time `json:"valid_from,omitempty" validate:"omitempty"`
	ValidTo   *time.Time `json:"valid_to,omitempty" validate:"omitempty"`
}
