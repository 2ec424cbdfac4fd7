package models

import "time"

// Room represents a bookable hotel room
type Room struct {
	ID              string      `json:"id" db:"id"`
	RoomNumber      string      `json:"room_number" db:"room_number"`
	Category        string      `json:"category" db:"category"`
	PricePerNight   float64     `json:"price_per_night" db:"price_per_night"`
	DiscountedPrice *float64    `json:"discounted_price,omitempty" db:"discounted_price"`
	IsAvailable     bool        `json:"is_available" db:"is_available"`
	Capacity        int         `json:"capacity" db:"capacity"`
	SizeLabel       string      `json:"size_label" db:"size_label"`
	Amenities       StringArray `json:"amenities" db:"amenities"`
	Images          StringArray `json:"images" db:"images"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// NightlyRate returns the effective nightly price, preferring the
// discounted price when one is set.
func (r *Room) NightlyRate() float64 {
	if r.DiscountedPrice != nil && *r.DiscountedPrice > 0 {
		return *r.DiscountedPrice
	}
	return r.PricePerNight
}
