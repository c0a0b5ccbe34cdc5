package scheduling

import (
	"context"
	"fmt"
)

// ResourceKind selects which booking dimension an overlap query runs against.
type ResourceKind string

const (
	ResourceStream  ResourceKind = "stream"
	ResourceTeacher ResourceKind = "teacher"
)

// SlotRecord is the slice of an existing active slot that overlap detection
// needs: its id, time window and validity date range.
type SlotRecord struct {
	ID        uint
	StartTime TimeOfDay
	EndTime   TimeOfDay
	Dates     DateRange
}

// ReferenceStore answers existence checks for the entities a slot references.
// Implementations are read-only.
type ReferenceStore interface {
	StreamExists(ctx context.Context, id uint) (bool, error)
	SubjectExists(ctx context.Context, id uint) (bool, error)
	TeacherExists(ctx context.Context, id uint) (bool, error)
}

// SlotStore returns the candidate set for one overlap query: every active
// slot occupying the given resource on the given weekday, minus excludeID
// when it is set.
type SlotStore interface {
	ActiveSlots(ctx context.Context, kind ResourceKind, resourceID uint, dayOfWeek string, excludeID *uint) ([]SlotRecord, error)
}

// SlotProposal is a timetable entry submitted for validation. On updates the
// slot's own id is passed separately as excludeID so the entry never
// conflicts with its pre-edit self.
type SlotProposal struct {
	StreamID  uint
	SubjectID *uint
	TeacherID *uint
	DayOfWeek string
	StartTime TimeOfDay
	EndTime   TimeOfDay
	Dates     DateRange
}

// Validator runs the timetable conflict rules. It is a stateless decision
// procedure over read-only stores: it never persists anything, and passing
// validation is not by itself a booking. Two concurrent submissions for the
// same resource can both pass before either is persisted, so the acceptance
// path must run validate-then-create inside a transaction that locks the
// affected resource rows (see controllers.ScheduleSlotController).
type Validator struct {
	refs  ReferenceStore
	slots SlotStore
}

func NewValidator(refs ReferenceStore, slots SlotStore) *Validator {
	return &Validator{refs: refs, slots: slots}
}

// ValidateTimetableRules checks a proposed slot in fixed order: referenced
// entities exist, the time window is non-empty, the date range is
// well-formed, the stream is free, and the teacher (when one is set) is not
// double-booked. The first failing rule is returned as a *RuleError; nil
// means the slot is acceptable.
func (v *Validator) ValidateTimetableRules(ctx context.Context, proposal SlotProposal, excludeID *uint) error {
	if err := v.resolveReferences(ctx, proposal); err != nil {
		return err
	}

	if !proposal.StartTime.Before(proposal.EndTime) {
		return &RuleError{
			Code:    CodeInvalidTimeRange,
			Message: fmt.Sprintf("start time %s must be before end time %s", proposal.StartTime, proposal.EndTime),
		}
	}

	if !proposal.Dates.Valid() {
		return &RuleError{
			Code:    CodeInvalidDateRange,
			Message: fmt.Sprintf("end date %s must be after effective date %s", proposal.Dates.End.Format("2006-01-02"), proposal.Dates.Start.Format("2006-01-02")),
		}
	}

	if err := v.checkResource(ctx, ResourceStream, proposal.StreamID, proposal, excludeID); err != nil {
		return err
	}

	if proposal.TeacherID != nil {
		if err := v.checkResource(ctx, ResourceTeacher, *proposal.TeacherID, proposal, excludeID); err != nil {
			return err
		}
	}

	return nil
}

// FindConflicts returns the ids of every active slot on the resource whose
// time window and date range both overlap the proposed ones.
func (v *Validator) FindConflicts(ctx context.Context, kind ResourceKind, resourceID uint, proposal SlotProposal, excludeID *uint) ([]uint, error) {
	candidates, err := v.slots.ActiveSlots(ctx, kind, resourceID, proposal.DayOfWeek, excludeID)
	if err != nil {
		return nil, storeError(err, fmt.Sprintf("overlap query for %s %d failed", kind, resourceID))
	}

	var conflicts []uint
	for _, candidate := range candidates {
		if TimesOverlap(proposal.StartTime, proposal.EndTime, candidate.StartTime, candidate.EndTime) &&
			proposal.Dates.Overlaps(candidate.Dates) {
			conflicts = append(conflicts, candidate.ID)
		}
	}
	return conflicts, nil
}

func (v *Validator) resolveReferences(ctx context.Context, proposal SlotProposal) error {
	ok, err := v.refs.StreamExists(ctx, proposal.StreamID)
	if err != nil {
		return storeError(err, fmt.Sprintf("stream %d lookup failed", proposal.StreamID))
	}
	if !ok {
		return &RuleError{
			Code:       CodeStreamNotFound,
			Message:    fmt.Sprintf("stream %d does not exist", proposal.StreamID),
			ResourceID: proposal.StreamID,
		}
	}

	if proposal.SubjectID != nil {
		ok, err := v.refs.SubjectExists(ctx, *proposal.SubjectID)
		if err != nil {
			return storeError(err, fmt.Sprintf("subject %d lookup failed", *proposal.SubjectID))
		}
		if !ok {
			return &RuleError{
				Code:       CodeSubjectNotFound,
				Message:    fmt.Sprintf("subject %d does not exist", *proposal.SubjectID),
				ResourceID: *proposal.SubjectID,
			}
		}
	}

	if proposal.TeacherID != nil {
		ok, err := v.refs.TeacherExists(ctx, *proposal.TeacherID)
		if err != nil {
			return storeError(err, fmt.Sprintf("teacher %d lookup failed", *proposal.TeacherID))
		}
		if !ok {
			return &RuleError{
				Code:       CodeTeacherNotFound,
				Message:    fmt.Sprintf("teacher %d does not exist", *proposal.TeacherID),
				ResourceID: *proposal.TeacherID,
			}
		}
	}

	return nil
}

func (v *Validator) checkResource(ctx context.Context, kind ResourceKind, resourceID uint, proposal SlotProposal, excludeID *uint) error {
	conflicts, err := v.FindConflicts(ctx, kind, resourceID, proposal, excludeID)
	if err != nil {
		return err
	}
	if len(conflicts) == 0 {
		return nil
	}

	// First conflict wins; no aggregation across remaining candidates.
	if kind == ResourceTeacher {
		return &RuleError{
			Code:              CodeTeacherDoubleBooking,
			Message:           fmt.Sprintf("teacher %d is already booked during %s-%s on %s (slot %d)", resourceID, proposal.StartTime, proposal.EndTime, proposal.DayOfWeek, conflicts[0]),
			ResourceID:        resourceID,
			ConflictingSlotID: conflicts[0],
		}
	}
	return &RuleError{
		Code:              CodeStreamOverlap,
		Message:           fmt.Sprintf("stream %d already has a slot during %s-%s on %s (slot %d)", resourceID, proposal.StartTime, proposal.EndTime, proposal.DayOfWeek, conflicts[0]),
		ResourceID:        resourceID,
		ConflictingSlotID: conflicts[0],
	}
}

// storeError classifies a failed store call so a failed query is never
// reported as "no conflict".
func storeError(err error, message string) error {
	return InfrastructureError(err, message)
}
