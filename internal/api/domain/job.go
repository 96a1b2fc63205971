package domain

import "time"

type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
)

func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case JobStatusActive, JobStatusClosed:
		return JobStatus(s), nil
	case "":
		return JobStatusActive, nil
	default:
		return "", NewValidationError("status", "\""+s+"\" is not a valid choice.")
	}
}

// DeadlinePassed compares at date granularity: applying on the deadline day is allowed.
func DeadlinePassed(deadline *time.Time, now time.Time) bool {
	if deadline == nil {
		return false
	}
	d := deadline.UTC()
	n := now.UTC()
	deadlineDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	return deadlineDay.Before(today)
}

// CurrentJobStatus is the status shown to applicants: a job whose deadline has passed is closed.
func CurrentJobStatus(status JobStatus, deadline *time.Time, now time.Time) JobStatus {
	if status == JobStatusClosed || DeadlinePassed(deadline, now) {
		return JobStatusClosed
	}
	return status
}
