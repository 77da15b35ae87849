package model

import "time"

// Site is an organizational location (a base) that holds equipment stock.
type Site struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}
