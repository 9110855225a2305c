// Package tide contains the pure business rules for tide operations.
// Guards are pure functions that evaluate preconditions without side
// effects; callers translate failed guards into validation errors.
package tide

import (
	"fmt"

	"github.com/example/tide/internal/fault"
	"github.com/example/tide/internal/models"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to a validation error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fault.Validationf("%s", r.Reason)
}

func denied(format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

var allowed = GuardResult{Allowed: true}

// CanCreateTide evaluates whether a tide can be created.
// Rules:
// - Name must be non-empty
// - Flow type must be one of the five flow types
// - Hierarchy tides require a date range; project/seasonal forbid one
// - date_start must not be after date_end
func CanCreateTide(t *models.Tide) GuardResult {
	if t.Name == "" {
		return denied("tide name must not be empty")
	}
	if !models.ValidFlowType(t.FlowType) {
		return denied("unknown flow type %q", t.FlowType)
	}
	if models.IsHierarchy(t.FlowType) {
		if t.DateStart == "" || t.DateEnd == "" {
			return denied("%s tides require a date range", t.FlowType)
		}
		if t.DateStart > t.DateEnd {
			return denied("date_start %s is after date_end %s", t.DateStart, t.DateEnd)
		}
	} else if t.DateStart != "" || t.DateEnd != "" {
		return denied("%s tides must not carry a date range", t.FlowType)
	}
	return allowed
}

// CanRecordSession evaluates whether a flow session is well formed.
// Rules:
// - Intensity must be gentle, moderate or strong
// - Duration must be positive
// - Energy snapshot, when present, must be within 1..10
func CanRecordSession(s *models.FlowSession) GuardResult {
	if models.IntensityWeight(s.Intensity) == 0 {
		return denied("unknown intensity %q", s.Intensity)
	}
	if s.Duration <= 0 {
		return denied("duration must be positive, got %d", s.Duration)
	}
	if s.EnergyLevel != 0 && !ValidEnergyLevel(s.EnergyLevel) {
		return denied("energy level must be within 1..10, got %d", s.EnergyLevel)
	}
	return allowed
}

// CanRecordEnergy evaluates whether an energy update is well formed.
func CanRecordEnergy(u *models.EnergyUpdate) GuardResult {
	if !ValidEnergyLevel(u.EnergyLevel) {
		return denied("energy level must be within 1..10, got %d", u.EnergyLevel)
	}
	return allowed
}

// CanLinkTask evaluates whether a task link is well formed.
func CanLinkTask(l *models.TaskLink) GuardResult {
	if l.URL == "" {
		return denied("task link url must not be empty")
	}
	if l.Title == "" {
		return denied("task link title must not be empty")
	}
	return allowed
}

// StatusTransitionContext provides context for status transition guards.
type StatusTransitionContext struct {
	TideID string
	Status string
}

// CanComplete evaluates whether a tide can be completed.
// Completion is the terminal transition; tides are never hard-deleted.
func CanComplete(ctx StatusTransitionContext) GuardResult {
	if ctx.Status == models.TideStatusCompleted {
		return denied("tide %s is already completed", ctx.TideID)
	}
	return allowed
}

// CanPause evaluates whether a tide can be paused.
func CanPause(ctx StatusTransitionContext) GuardResult {
	if ctx.Status != models.TideStatusActive {
		return denied("can only pause active tides (current status: %s)", ctx.Status)
	}
	return allowed
}

// CanResume evaluates whether a tide can be resumed.
func CanResume(ctx StatusTransitionContext) GuardResult {
	if ctx.Status != models.TideStatusPaused {
		return denied("can only resume paused tides (current status: %s)", ctx.Status)
	}
	return allowed
}

// ParentLinkContext provides context for parent linkage guards.
type ParentLinkContext struct {
	ChildOwner  string
	ParentOwner string
	ChildStart  string
	ChildEnd    string
	ParentStart string
	ParentEnd   string
}

// CanLinkParent evaluates whether a parent link may be established.
// Rules:
// - Parent and child must share an owner
// - The parent's date range must contain the child's
func CanLinkParent(ctx ParentLinkContext) GuardResult {
	if ctx.ChildOwner != ctx.ParentOwner {
		return denied("parent tide belongs to a different user")
	}
	if ctx.ParentStart > ctx.ChildStart || ctx.ChildEnd > ctx.ParentEnd {
		return denied("parent range %s..%s does not contain child range %s..%s",
			ctx.ParentStart, ctx.ParentEnd, ctx.ChildStart, ctx.ChildEnd)
	}
	return allowed
}

// ValidEnergyLevel reports whether level is within the 1..10 scale.
func ValidEnergyLevel(level int) bool {
	return level >= 1 && level <= 10
}
