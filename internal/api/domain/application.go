package domain

import "fmt"

type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationReviewed    ApplicationStatus = "reviewed"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationAccepted    ApplicationStatus = "accepted"
	ApplicationRejected    ApplicationStatus = "rejected"
)

const rejectedTerminalMessage = "This application has been rejected and its status cannot be changed."

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending:     {ApplicationReviewed, ApplicationShortlisted, ApplicationAccepted, ApplicationRejected},
	ApplicationReviewed:    {ApplicationShortlisted, ApplicationAccepted, ApplicationRejected},
	ApplicationShortlisted: {ApplicationAccepted, ApplicationRejected},
	ApplicationAccepted:    {ApplicationRejected},
	ApplicationRejected:    nil,
}

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	status := ApplicationStatus(s)
	if _, ok := applicationTransitions[status]; !ok {
		return "", NewValidationError("status", fmt.Sprintf("%q is not a valid choice.", s))
	}
	return status, nil
}

func (s ApplicationStatus) IsTerminal() bool {
	return len(applicationTransitions[s]) == 0
}

// ValidateTransition is the only place application status changes are decided.
// It reports whether moving from -> to changes anything; a same-status update is a
// no-op everywhere except from a terminal status, which rejects every update.
func ValidateTransition(from, to ApplicationStatus) (bool, error) {
	if _, ok := applicationTransitions[to]; !ok {
		return false, NewValidationError("status", fmt.Sprintf("%q is not a valid choice.", to))
	}
	if from.IsTerminal() {
		return false, NewValidationError("status", rejectedTerminalMessage)
	}
	if from == to {
		return false, nil
	}
	for _, next := range applicationTransitions[from] {
		if next == to {
			return true, nil
		}
	}
	return false, NewValidationError("status", fmt.Sprintf("Cannot change status from %s to %s.", from, to))
}
