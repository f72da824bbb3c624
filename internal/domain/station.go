package domain

import "time"

// Station represents a fixed river-monitoring location
type Station struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	River      string    `json:"river,omitempty"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	AlarmLevel float64   `json:"alarm_level"`
	FloodLevel float64   `json:"flood_level"`
	CreatedAt  time.Time `json:"created_at"`
}
