package models

import "time"

// Summary holds the caretaker dashboard figures for one reference day.
type Summary struct {
	ReferenceDate time.Time  `json:"reference_date"`
	Day           time.Time  `json:"day"` // The day the figures describe, the day before ReferenceDate
	InCare        int64      `json:"in_care"`
	Outliers      int64      `json:"outliers"`
	Attendance    Attendance `json:"attendance"`
}

// Weather is the current weather shown on the resident page.
type Weather struct {
	Condition   string    `json:"condition"`
	Temperature float64   `json:"temperature"`
	Fallback    bool      `json:"fallback"` // True when the upstream call failed
	FetchedAt   time.Time `json:"fetched_at"`
}

// MealPlanDay is one day of the weekly menu.
type MealPlanDay struct {
	Weekday time.Weekday `json:"weekday"`
	Label   string       `json:"label"` // German day name, "(Heute)" appended for today
	Dish    string       `json:"dish"`
	IsToday bool         `json:"is_today"`
}

// Event is a calendar appointment, encoded the way FullCalendar expects it.
type Event struct {
	Title string `json:"title"`
	Start Date   `json:"start"`
	End   Date   `json:"end"`
}
