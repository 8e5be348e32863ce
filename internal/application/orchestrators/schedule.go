package orchestrators

import (
	"context"
	"strings"

	"coachhub/internal/domain/audit"
	"coachhub/internal/domain/availability"
	"coachhub/internal/domain/timeoff"
	"coachhub/internal/domain/timeslot"
)

// AvailabilityStoreForSchedule replaces a coach's week.
type AvailabilityStoreForSchedule interface {
	ReplaceWeek(ctx context.Context, coachID string, windows []availability.Window) error
}

// SetAvailabilityDeps holds dependencies for SetAvailability.
type SetAvailabilityDeps struct {
	Availability AvailabilityStoreForSchedule
	Audit        AuditStore
	GenerateID   func() string
}

// ExecuteSetAvailability replaces the actor's weekly windows.
// PRE: Actor is a coach
// POST: the stored week equals windows, or nothing changed
// INVARIANT: windows on the same day never overlap
func ExecuteSetAvailability(ctx context.Context, actor Actor, windows []availability.Window, deps SetAvailabilityDeps) ([]availability.Window, error) {
	if err := actor.requireCoach(); err != nil {
		return nil, err
	}
	week := make([]availability.Window, 0, len(windows))
	for _, w := range windows {
		week = append(week, availability.Window{
			ID:        generateID(deps.GenerateID),
			CoachID:   actor.ID,
			Day:       strings.ToLower(strings.TrimSpace(w.Day)),
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
		})
	}
	if err := availability.ValidateWeek(week); err != nil {
		return nil, err
	}
	if err := deps.Availability.ReplaceWeek(ctx, actor.ID, week); err != nil {
		return nil, err
	}
	recordAudit(ctx, deps.Audit, actor.event(audit.CategoryCoach, audit.ActionUpdate).
		WithResource("availability", actor.ID).
		WithDescription("weekly availability replaced"))
	return week, nil
}

// TimeOffStoreForSchedule reads and writes time off.
type TimeOffStoreForSchedule interface {
	GetByID(ctx context.Context, id string) (timeoff.TimeOff, error)
	Save(ctx context.Context, t timeoff.TimeOff) error
	Delete(ctx context.Context, id string) error
}

// AddTimeOffInput carries a date range; dates are YYYY-MM-DD and inclusive.
type AddTimeOffInput struct {
	Actor     Actor
	StartDate string
	EndDate   string
	Reason    string
}

// TimeOffDeps holds dependencies for the time-off use cases.
type TimeOffDeps struct {
	TimeOff    TimeOffStoreForSchedule
	Audit      AuditStore
	GenerateID func() string
}

// ExecuteAddTimeOff blocks a date range on the actor's calendar.
// PRE: Actor is a coach
// POST: existing bookings inside the range are not touched
func ExecuteAddTimeOff(ctx context.Context, input AddTimeOffInput, deps TimeOffDeps) (timeoff.TimeOff, error) {
	if err := input.Actor.requireCoach(); err != nil {
		return timeoff.TimeOff{}, err
	}
	start, err := timeslot.ParseDate(input.StartDate)
	if err != nil {
		return timeoff.TimeOff{}, err
	}
	end, err := timeslot.ParseDate(input.EndDate)
	if err != nil {
		return timeoff.TimeOff{}, err
	}
	t := timeoff.TimeOff{
		ID:        generateID(deps.GenerateID),
		CoachID:   input.Actor.ID,
		StartDate: start,
		EndDate:   end,
		Reason:    strings.TrimSpace(input.Reason),
	}
	if err := t.Validate(); err != nil {
		return timeoff.TimeOff{}, err
	}
	if err := deps.TimeOff.Save(ctx, t); err != nil {
		return timeoff.TimeOff{}, err
	}
	recordAudit(ctx, deps.Audit, input.Actor.event(audit.CategoryCoach, audit.ActionCreate).WithResource("time_off", t.ID))
	return t, nil
}

// ExecuteDeleteTimeOff removes one of the actor's time-off ranges.
// PRE: Actor owns the range
func ExecuteDeleteTimeOff(ctx context.Context, actor Actor, id string, deps TimeOffDeps) error {
	if err := actor.requireCoach(); err != nil {
		return err
	}
	t, err := deps.TimeOff.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.CoachID != actor.ID {
		return ErrForbidden
	}
	if err := deps.TimeOff.Delete(ctx, id); err != nil {
		return err
	}
	recordAudit(ctx, deps.Audit, actor.event(audit.CategoryCoach, audit.ActionDelete).WithResource("time_off", id))
	return nil
}
