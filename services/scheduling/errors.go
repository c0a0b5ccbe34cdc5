package scheduling

import (
	"context"
	"errors"
	"fmt"
)

// Code identifies a validation rule outcome. All codes are terminal for the
// submitted input; callers must change the slot, not retry.
type Code string

const (
	CodeInvalidTimeRange      Code = "invalid_time_range"
	CodeInvalidDateRange      Code = "invalid_date_range"
	CodeStreamNotFound        Code = "stream_not_found"
	CodeSubjectNotFound       Code = "subject_not_found"
	CodeTeacherNotFound       Code = "teacher_not_found"
	CodeStreamOverlap         Code = "stream_overlap_conflict"
	CodeTeacherDoubleBooking  Code = "teacher_double_booking_conflict"
	CodeValidationTimedOut    Code = "validation_timed_out"
	CodeDependencyUnavailable Code = "dependency_unavailable"
)

// RuleError is the failure of a single timetable rule. ResourceID carries the
// offending stream/subject/teacher id where one applies; ConflictingSlotID is
// set for overlap conflicts so callers can point at the colliding entry.
type RuleError struct {
	Code              Code   `json:"code"`
	Message           string `json:"message"`
	ResourceID        uint   `json:"resource_id,omitempty"`
	ConflictingSlotID uint   `json:"conflicting_slot_id,omitempty"`
	Err               error  `json:"-"`
}

func (e *RuleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// AsRuleError unwraps err into a RuleError if one is in the chain.
func AsRuleError(err error) (*RuleError, bool) {
	var re *RuleError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// InfrastructureError wraps a failed store or lock call. Timed-out and
// cancelled calls become CodeValidationTimedOut, everything else
// CodeDependencyUnavailable. A failed call is never a pass.
func InfrastructureError(err error, message string) *RuleError {
	code := CodeDependencyUnavailable
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		code = CodeValidationTimedOut
	}
	return &RuleError{Code: code, Message: message, Err: err}
}
