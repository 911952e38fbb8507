package entity

import "encoding/json"

// Workout is one logged training session, keyed by user and date.
type Workout struct {
	UserID    string            `json:"userId"`
	Date      string            `json:"date"` // YYYY-MM-DD
	DayID     string            `json:"dayId"`
	Completed bool              `json:"completed"`
	Exercises []json.RawMessage `json:"exercises"`
}
