package entity

import "time"

// Course is a catalog record. It holds no back-reference to users.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Instructor  *string   `json:"instructor,omitempty"`
	Duration    *int      `json:"duration,omitempty"` // minutes
	CoverURL    string    `json:"cover_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
