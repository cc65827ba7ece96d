package usecase

import (
	"fmt"
	"strings"
)

// SideEffect names a secondary step whose failure does not fail the operation.
type SideEffect string

const (
	EffectImageURL     SideEffect = "image_url"
	EffectImageDestroy SideEffect = "image_destroy"
	EffectImageUpload  SideEffect = "image_upload"
	EffectCache        SideEffect = "cache"
	EffectEvent        SideEffect = "event"
	EffectMail         SideEffect = "mail"
)

// SideEffectFailure records one failed secondary step.
type SideEffectFailure struct {
	Effect SideEffect
	Target string
	Err    error
}

func (f SideEffectFailure) Error() string {
	return fmt.Sprintf("%s(%s): %v", f.Effect, f.Target, f.Err)
}

func (f SideEffectFailure) Unwrap() error { return f.Err }

// Outcome distinguishes "primary operation succeeded, some side effects failed"
// from a clean success. Full failures are reported through the returned error.
type Outcome struct {
	Failures []SideEffectFailure
}

func (o *Outcome) record(effect SideEffect, target string, err error) {
	o.Failures = append(o.Failures, SideEffectFailure{Effect: effect, Target: target, Err: err})
}

// Degraded reports whether any side effect failed.
func (o Outcome) Degraded() bool {
	return len(o.Failures) > 0
}

// Failed reports whether a side effect of the given kind failed.
func (o Outcome) Failed(effect SideEffect) bool {
	for _, f := range o.Failures {
		if f.Effect == effect {
			return true
		}
	}
	return false
}

func (o Outcome) String() string {
	if !o.Degraded() {
		return "ok"
	}
	parts := make([]string, 0, len(o.Failures))
	for _, f := range o.Failures {
		parts = append(parts, f.Error())
	}
	return "degraded: " + strings.Join(parts, "; ")
}
