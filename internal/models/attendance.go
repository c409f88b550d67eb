package models

import "time"

// Values of HISTORICAL_DATA.APPEARED
const (
	AppearedYes = "Yes"
	AppearedNo  = "No"
)

// Attendance is the cafeteria attendance breakdown for one day.
type Attendance struct {
	Day      time.Time `json:"day"`
	Appeared int64     `json:"appeared"`
	Missed   int64     `json:"missed"`
	Other    int64     `json:"other"` // Rows with APPEARED neither Yes nor No, including NULL
}

// Total returns the number of historical rows the breakdown covers.
func (a Attendance) Total() int64 {
	return a.Appeared + a.Missed + a.Other
}

// AttendanceCount is one row of the attendance aggregation query.
type AttendanceCount struct {
	Appeared *string `db:"appeared"`
	Count    int64   `db:"count"`
}
