package model

import "time"

// ClockRecord is a client-side view of one work interval. HoursWorked is only
// set once ClockOutAt is.
type ClockRecord struct {
	ID          int64
	Employee    string
	Employer    string
	ClockInAt   time.Time
	ClockOutAt  *time.Time
	HoursWorked *float64
}

// Closed reports whether the record has a clock-out time.
func (r ClockRecord) Closed() bool {
	return r.ClockOutAt != nil
}

const hundredthHour = 36 * time.Second

// HoursBetween returns the hours elapsed between in and out, rounded half up
// to two decimal places. Rounding is done on the duration itself so that
// exact halves are never lost to float error. A negative span counts as zero.
func HoursBetween(in, out time.Time) float64 {
	d := out.Sub(in)
	if d <= 0 {
		return 0
	}
	hundredths := (d + hundredthHour/2) / hundredthHour
	return float64(hundredths) / 100
}

// SumHours adds hours and rounds the total to two decimal places.
func SumHours(values ...float64) float64 {
	var cents int64
	for _, v := range values {
		cents += roundCents(v)
	}
	return float64(cents) / 100
}

func roundCents(v float64) int64 {
	if v < 0 {
		return -roundCents(-v)
	}
	return int64(v*100 + 0.5)
}
