package scheduling

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type fakeRefStore struct {
	streams  map[uint]bool
	subjects map[uint]bool
	teachers map[uint]bool
	err      error
}

func (f *fakeRefStore) StreamExists(_ context.Context, id uint) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.streams[id], nil
}

func (f *fakeRefStore) SubjectExists(_ context.Context, id uint) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.subjects[id], nil
}

func (f *fakeRefStore) TeacherExists(_ context.Context, id uint) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.teachers[id], nil
}

type storedSlot struct {
	record   SlotRecord
	kind     ResourceKind
	resource uint
	day      string
}

type fakeSlotStore struct {
	slots   []storedSlot
	err     error
	queries []ResourceKind
}

func (f *fakeSlotStore) ActiveSlots(_ context.Context, kind ResourceKind, resourceID uint, dayOfWeek string, excludeID *uint) ([]SlotRecord, error) {
	f.queries = append(f.queries, kind)
	if f.err != nil {
		return nil, f.err
	}
	var out []SlotRecord
	for _, s := range f.slots {
		if s.kind != kind || s.resource != resourceID || s.day != dayOfWeek {
			continue
		}
		if excludeID != nil && s.record.ID == *excludeID {
			continue
		}
		out = append(out, s.record)
	}
	return out, nil
}

func uintPtr(v uint) *uint { return &v }

func defaultRefs() *fakeRefStore {
	return &fakeRefStore{
		streams:  map[uint]bool{1: true, 2: true},
		subjects: map[uint]bool{10: true},
		teachers: map[uint]bool{20: true},
	}
}

func proposal(t *testing.T, day, start, end, effective, endDate string) SlotProposal {
	t.Helper()
	p := SlotProposal{
		StreamID:  1,
		DayOfWeek: day,
		StartTime: mustTime(t, start),
		EndTime:   mustTime(t, end),
		Dates:     DateRange{Start: date(effective)},
	}
	if endDate != "" {
		p.Dates.End = datePtr(endDate)
	}
	return p
}

// existing booking for stream 1 and teacher 20 on monday 09:00-10:00,
// valid January 2025
func bookedStore(t *testing.T) *fakeSlotStore {
	t.Helper()
	record := SlotRecord{
		ID:        77,
		StartTime: mustTime(t, "09:00"),
		EndTime:   mustTime(t, "10:00"),
		Dates:     DateRange{Start: date("2025-01-01"), End: datePtr("2025-01-31")},
	}
	return &fakeSlotStore{slots: []storedSlot{
		{record: record, kind: ResourceStream, resource: 1, day: "monday"},
		{record: record, kind: ResourceTeacher, resource: 20, day: "monday"},
	}}
}

func expectCode(t *testing.T, err error, code Code) *RuleError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", code)
	}
	re, ok := AsRuleError(err)
	if !ok {
		t.Fatalf("expected *RuleError, got %T: %v", err, err)
	}
	if re.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, re.Code, re.Message)
	}
	return re
}

func TestValidateRejectsInvalidTimeRange(t *testing.T) {
	v := NewValidator(defaultRefs(), &fakeSlotStore{})

	tests := []struct {
		name       string
		start, end string
	}{
		{name: "start after end", start: "10:00", end: "09:00"},
		{name: "zero duration", start: "09:00:00", end: "09:00:00"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			p := proposal(t, "monday", tc.start, tc.end, "2025-01-01", "")
			err := v.ValidateTimetableRules(context.Background(), p, nil)
			expectCode(t, err, CodeInvalidTimeRange)
		})
	}
}

func TestValidateRejectsInvalidDateRange(t *testing.T) {
	v := NewValidator(defaultRefs(), &fakeSlotStore{})

	tests := []struct {
		name           string
		effective, end string
	}{
		{name: "end before effective", effective: "2025-01-15", end: "2025-01-01"},
		{name: "end equals effective", effective: "2025-01-01", end: "2025-01-01"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			p := proposal(t, "monday", "09:00", "10:00", tc.effective, tc.end)
			err := v.ValidateTimetableRules(context.Background(), p, nil)
			expectCode(t, err, CodeInvalidDateRange)
		})
	}
}

func TestValidateOpenEndedDateRangePasses(t *testing.T) {
	v := NewValidator(defaultRefs(), &fakeSlotStore{})
	p := proposal(t, "monday", "09:00", "10:00", "2025-01-01", "")
	if err := v.ValidateTimetableRules(context.Background(), p, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateMissingReferences(t *testing.T) {
	v := NewValidator(defaultRefs(), &fakeSlotStore{})

	t.Run("stream", func(t *testing.T) {
		p := proposal(t, "monday", "09:00", "10:00", "2025-01-01", "")
		p.StreamID = 999
		err := v.ValidateTimetableRules(context.Background(), p, nil)
		re := expectCode(t, err, CodeStreamNotFound)
		if re.ResourceID != 999 {
			t.Fatalf("expected offending id 999, got %d", re.ResourceID)
		}
	})

	t.Run("subject", func(t *testing.T) {
		p := proposal(t, "monday", "09:00", "10:00", "2025-01-01", "")
		p.SubjectID = uintPtr(888)
		err := v.ValidateTimetableRules(context.Background(), p, nil)
		expectCode(t, err, CodeSubjectNotFound)
	})

	t.Run("teacher", func(t *testing.T) {
		p := proposal(t, "monday", "09:00", "10:00", "2025-01-01", "")
		p.TeacherID = uintPtr(777)
		err := v.ValidateTimetableRules(context.Background(), p, nil)
		expectCode(t, err, CodeTeacherNotFound)
	})
}

func TestReferenceCheckRunsBeforeTimeCheck(t *testing.T) {
	// Broken time range AND missing stream: references are resolved first,
	// so the missing stream wins.
	v := NewValidator(defaultRefs(), &fakeSlotStore{})
	p := proposal(t, "monday", "10:00", "09:00", "2025-01-01", "")
	p.StreamID = 999
	err := v.ValidateTimetableRules(context.Background(), p, nil)
	expectCode(t, err, CodeStreamNotFound)
}

func TestValidateStreamOverlap(t *testing.T) {
	store := bookedStore(t)
	v := NewValidator(defaultRefs(), store)

	p := proposal(t, "monday", "09:30", "10:30", "2025-01-15", "2025-02-15")
	err := v.ValidateTimetableRules(context.Background(), p, nil)
	re := expectCode(t, err, CodeStreamOverlap)
	if re.ConflictingSlotID != 77 {
		t.Fatalf("expected conflicting slot 77, got %d", re.ConflictingSlotID)
	}
	if re.ResourceID != 1 {
		t.Fatalf("expected stream id 1, got %d", re.ResourceID)
	}
}

func TestValidateTouchingBoundaryDoesNotConflict(t *testing.T) {
	v := NewValidator(defaultRefs(), bookedStore(t))

	p := proposal(t, "monday", "10:00", "11:00", "2025-01-15", "2025-02-15")
	if err := v.ValidateTimetableRules(context.Background(), p, nil); err != nil {
		t.Fatalf("touching slots must not conflict: %v", err)
	}
}

func TestValidateDisjointDateRangesDoNotConflict(t *testing.T) {
	v := NewValidator(defaultRefs(), bookedStore(t))

	// Same weekday and time window, but the existing booking ends in
	// January and the proposal starts in March.
	p := proposal(t, "monday", "09:00", "10:00", "2025-03-01", "2025-06-30")
	if err := v.ValidateTimetableRules(context.Background(), p, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateOpenEndedExistingSlotConflictsWithFutureProposal(t *testing.T) {
	record := SlotRecord{
		ID:        5,
		StartTime: mustTime(t, "09:00"),
		EndTime:   mustTime(t, "10:00"),
		Dates:     DateRange{Start: date("2024-09-01")}, // no end date
	}
	store := &fakeSlotStore{slots: []storedSlot{
		{record: record, kind: ResourceStream, resource: 1, day: "monday"},
	}}
	v := NewValidator(defaultRefs(), store)

	p := proposal(t, "monday", "09:30", "10:30", "2030-01-01", "2030-06-30")
	err := v.ValidateTimetableRules(context.Background(), p, nil)
	expectCode(t, err, CodeStreamOverlap)
}

func TestValidateUpdateExcludesOwnSlot(t *testing.T) {
	v := NewValidator(defaultRefs(), bookedStore(t))

	// Re-submitting slot 77 with identical fields must pass when its own id
	// is excluded from the candidate set.
	p := proposal(t, "monday", "09:00", "10:00", "2025-01-01", "2025-01-31")
	p.TeacherID = uintPtr(20)
	if err := v.ValidateTimetableRules(context.Background(), p, uintPtr(77)); err != nil {
		t.Fatalf("slot must not conflict with itself: %v", err)
	}

	// Without the exclusion the same submission conflicts.
	err := v.ValidateTimetableRules(context.Background(), p, nil)
	expectCode(t, err, CodeStreamOverlap)
}

func TestValidateTeacherDoubleBookingAcrossStreams(t *testing.T) {
	v := NewValidator(defaultRefs(), bookedStore(t))

	// Stream 2 is free, but teacher 20 already teaches stream 1 at an
	// overlapping time on the same day.
	p := proposal(t, "monday", "09:30", "10:30", "2025-01-15", "2025-02-15")
	p.StreamID = 2
	p.TeacherID = uintPtr(20)
	err := v.ValidateTimetableRules(context.Background(), p, nil)
	re := expectCode(t, err, CodeTeacherDoubleBooking)
	if re.ResourceID != 20 {
		t.Fatalf("expected teacher id 20, got %d", re.ResourceID)
	}
	if re.ConflictingSlotID != 77 {
		t.Fatalf("expected conflicting slot 77, got %d", re.ConflictingSlotID)
	}
}

func TestValidateStreamConflictReportedBeforeTeacherConflict(t *testing.T) {
	store := bookedStore(t)
	v := NewValidator(defaultRefs(), store)

	// Both dimensions collide; the stream check runs first and wins.
	p := proposal(t, "monday", "09:30", "10:30", "2025-01-15", "2025-02-15")
	p.TeacherID = uintPtr(20)
	err := v.ValidateTimetableRules(context.Background(), p, nil)
	expectCode(t, err, CodeStreamOverlap)
	for _, kind := range store.queries {
		if kind == ResourceTeacher {
			t.Fatalf("teacher overlap query must not run after a stream conflict")
		}
	}
}

func TestValidateSkipsTeacherCheckWithoutTeacher(t *testing.T) {
	store := bookedStore(t)
	v := NewValidator(defaultRefs(), store)

	p := proposal(t, "tuesday", "09:00", "10:00", "2025-01-01", "")
	if err := v.ValidateTimetableRules(context.Background(), p, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, kind := range store.queries {
		if kind == ResourceTeacher {
			t.Fatalf("teacher overlap query ran for a slot without a teacher")
		}
	}
}

func TestValidateDifferentDaysNeverConflict(t *testing.T) {
	v := NewValidator(defaultRefs(), bookedStore(t))

	p := proposal(t, "wednesday", "09:00", "10:00", "2025-01-01", "2025-01-31")
	p.TeacherID = uintPtr(20)
	if err := v.ValidateTimetableRules(context.Background(), p, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateTimedOutLookupIsNotNoConflict(t *testing.T) {
	refs := defaultRefs()
	store := &fakeSlotStore{err: fmt.Errorf("query: %w", context.DeadlineExceeded)}
	v := NewValidator(refs, store)

	p := proposal(t, "monday", "09:00", "10:00", "2025-01-01", "")
	err := v.ValidateTimetableRules(context.Background(), p, nil)
	re := expectCode(t, err, CodeValidationTimedOut)
	if !errors.Is(re, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped deadline error, got %v", re.Err)
	}
}

func TestValidateStoreFailureIsDependencyUnavailable(t *testing.T) {
	store := &fakeSlotStore{err: errors.New("connection refused")}
	v := NewValidator(defaultRefs(), store)

	p := proposal(t, "monday", "09:00", "10:00", "2025-01-01", "")
	err := v.ValidateTimetableRules(context.Background(), p, nil)
	expectCode(t, err, CodeDependencyUnavailable)
}

func TestValidateReferenceLookupTimeout(t *testing.T) {
	refs := &fakeRefStore{err: context.DeadlineExceeded}
	v := NewValidator(refs, &fakeSlotStore{})

	p := proposal(t, "monday", "09:00", "10:00", "2025-01-01", "")
	err := v.ValidateTimetableRules(context.Background(), p, nil)
	expectCode(t, err, CodeValidationTimedOut)
}

func TestFindConflictsReturnsAllCollisions(t *testing.T) {
	base := DateRange{Start: date("2025-01-01"), End: datePtr("2025-12-31")}
	store := &fakeSlotStore{slots: []storedSlot{
		{record: SlotRecord{ID: 1, StartTime: mustTime(t, "09:00"), EndTime: mustTime(t, "10:00"), Dates: base}, kind: ResourceStream, resource: 1, day: "friday"},
		{record: SlotRecord{ID: 2, StartTime: mustTime(t, "09:45"), EndTime: mustTime(t, "11:00"), Dates: base}, kind: ResourceStream, resource: 1, day: "friday"},
		{record: SlotRecord{ID: 3, StartTime: mustTime(t, "13:00"), EndTime: mustTime(t, "14:00"), Dates: base}, kind: ResourceStream, resource: 1, day: "friday"},
	}}
	v := NewValidator(defaultRefs(), store)

	p := proposal(t, "friday", "09:30", "10:30", "2025-03-01", "2025-03-31")
	conflicts, err := v.FindConflicts(context.Background(), ResourceStream, 1, p, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conflicts) != 2 || conflicts[0] != 1 || conflicts[1] != 2 {
		t.Fatalf("expected conflicts [1 2], got %v", conflicts)
	}
}

// Validation is read-then-decide: it takes no locks and persists nothing, so
// two concurrent submissions can both pass before either is stored. The
// acceptance path, not the validator, must serialize validate+create.
func TestValidatePassesForBothConcurrentProposals(t *testing.T) {
	store := &fakeSlotStore{}
	v := NewValidator(defaultRefs(), store)

	first := proposal(t, "monday", "09:00", "10:00", "2025-01-01", "")
	second := proposal(t, "monday", "09:00", "10:00", "2025-01-01", "")

	if err := v.ValidateTimetableRules(context.Background(), first, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Nothing was persisted by the first call, so the identical second
	// proposal also passes.
	if err := v.ValidateTimetableRules(context.Background(), second, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
