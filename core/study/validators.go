package study

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/DeivFF/study-space-wire-57-sub000/core"
	"github.com/DeivFF/study-space-wire-57-sub000/core/clock"
)

var (
	slotOrderTag  = "slotorder"
	slotOrderText = "slot must end after it starts"

	slotOverlapTag  = "slotoverlap"
	slotOverlapText = "slots must be sorted and must not overlap"

	midnightTag  = "midnight"
	midnightText = "session cannot run past midnight"

	untilBeforeDateText = "until cannot be before the session date"

	// similar task titles
	titleMaxSim     = .9
	titleTooSimilar = "a similar task already exists for this subject"
	endOfDay        = clock.MustParseTime("24:00")
)

func init() {
	core.Validate.RegisterStructValidation(availabilityStructValidation, NewAvailability{})
	core.Validate.RegisterStructValidation(sessionStructValidation, NewSession{})
	core.RegisterCustomTranslation(core.Validate, core.Translator, slotOrderTag, slotOrderText)
	core.RegisterCustomTranslation(core.Validate, core.Translator, slotOverlapTag, slotOverlapText)
	core.RegisterCustomTranslation(core.Validate, core.Translator, midnightTag, midnightText)
}

// Custom Validators

// availabilityStructValidation checks that every slot ends after it starts,
// and that slots are sorted and do not overlap each other.
func availabilityStructValidation(sl validator.StructLevel) {
	na, ok := sl.Current().Interface().(NewAvailability)
	if !ok {
		return
	}
	for i, slot := range na.Slots {
		if !slot.Start.Before(slot.End) || slot.End.After(endOfDay) {
			sl.ReportError(na.Slots, "slots", "Slots", slotOrderTag, "")
			return
		}
		if i > 0 && slot.Start.Before(na.Slots[i-1].End) {
			sl.ReportError(na.Slots, "slots", "Slots", slotOverlapTag, "")
			return
		}
	}
}

// sessionStructValidation keeps manual sessions within their day.
func sessionStructValidation(sl validator.StructLevel) {
	ns, ok := sl.Current().Interface().(NewSession)
	if !ok {
		return
	}
	if ns.DurationMin > 0 && ns.Start.AddMinutes(ns.DurationMin).After(endOfDay) {
		sl.ReportError(ns.DurationMin, "duration_min", "DurationMin", midnightTag, "")
	}
}

// checkSimilarTitle rejects a title that is too similar to one of siblings' titles.
func checkSimilarTitle(title string, siblings []Task) error {
	lower := strings.ToLower(title)
	for _, t := range siblings {
		other := strings.ToLower(t.Title)
		if other == lower || titleRatio(lower, other) >= titleMaxSim {
			return core.NewValidationError(ErrSimilarTask, core.FieldError{Field: "title", Error: titleTooSimilar})
		}
	}
	return nil
}

func titleRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}
