package db

import (
	"context"
	"time"

	"caredash/internal/models"
)

const countInCareQuery = `
	SELECT COUNT(person_id)
	FROM person
	WHERE employee = ?
`

// Unexpected absences: residents flagged by outlier detection who missed a
// non-breakfast meal that was planned on a day they had an appointment.
const countOutliersQuery = `
	SELECT COUNT(hd.person_id)
	FROM outlier_detection od
	JOIN person p ON p.person_id = od.person_id
	JOIN historical_data hd ON hd.person_id = p.person_id AND hd.meal_date = od.date_
	JOIN appointment a ON a.person_id = p.person_id AND a.time_stamp = hd.meal_date
	JOIN mealplan mp ON mp.mealplan_id = hd.mealplan_id AND mp.meal_date = hd.meal_date
	WHERE od.date_ = ?
	  AND hd.mealtime <> 'breakfast'
	  AND hd.appeared = 'No'
`

// Columns are aliased with quoted lower-case names because Snowflake reports
// unquoted identifiers in upper case.
const attendanceQuery = `
	SELECT appeared AS "appeared", COUNT(*) AS "count"
	FROM historical_data
	WHERE meal_date = ?
	GROUP BY appeared
`

// CountInCare returns the number of residents assigned to a caretaker.
func (d *DB) CountInCare(ctx context.Context, employee string) (int64, error) {
	var n int64
	if err := d.get(ctx, "count_in_care", &n, countInCareQuery, employee); err != nil {
		return 0, err
	}
	return n, nil
}

// CountOutliers returns the number of unexpected meal absences on day.
func (d *DB) CountOutliers(ctx context.Context, on time.Time) (int64, error) {
	var n int64
	if err := d.get(ctx, "outlier_count", &n, countOutliersQuery, day(on)); err != nil {
		return 0, err
	}
	return n, nil
}

// Attendance returns the cafeteria attendance breakdown for day. The buckets
// always add up to the number of historical rows recorded for that day.
func (d *DB) Attendance(ctx context.Context, on time.Time) (models.Attendance, error) {
	var rows []models.AttendanceCount
	if err := d.selectAll(ctx, "attendance", &rows, attendanceQuery, day(on)); err != nil {
		return models.Attendance{}, err
	}
	return TallyAttendance(on, rows), nil
}

// TallyAttendance folds aggregation rows into an Attendance breakdown.
func TallyAttendance(on time.Time, rows []models.AttendanceCount) models.Attendance {
	a := models.Attendance{Day: on}
	for _, r := range rows {
		switch {
		case r.Appeared != nil && *r.Appeared == models.AppearedYes:
			a.Appeared += r.Count
		case r.Appeared != nil && *r.Appeared == models.AppearedNo:
			a.Missed += r.Count
		default:
			a.Other += r.Count
		}
	}
	return a
}
