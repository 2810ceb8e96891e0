package changelog

import (
	"strings"
	"time"

	"github.com/manav03panchal/indexlog/internal/model"
)

// Filter selects changes by kind, category, delta type, text, and time.
// Empty fields match everything; the zero Filter matches every change.
// Kind, category, and delta type apply to the top-level change only; Text
// also searches the sub-changes of a composite.
type Filter struct {
	Kinds      []model.Kind
	Categories []Category
	DeltaTypes []string
	Text       string
	Since      time.Time
	Until      time.Time
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return len(f.Kinds) == 0 &&
		len(f.Categories) == 0 &&
		len(f.DeltaTypes) == 0 &&
		strings.TrimSpace(f.Text) == "" &&
		f.Since.IsZero() &&
		f.Until.IsZero()
}

// Match reports whether c passes the filter.
func (f Filter) Match(c DisplayChange) bool {
	if len(f.Kinds) > 0 && !contains(f.Kinds, c.Kind) {
		return false
	}
	if len(f.Categories) > 0 && !contains(f.Categories, c.Category) {
		return false
	}
	if len(f.DeltaTypes) > 0 && !contains(f.DeltaTypes, c.DeltaType) {
		return false
	}
	if !f.Since.IsZero() && c.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && c.Timestamp.After(f.Until) {
		return false
	}
	if text := strings.TrimSpace(f.Text); text != "" {
		return matchText(c, strings.ToLower(text))
	}
	return true
}

// matchText does a case-insensitive substring search over everything a
// card shows, including nested sub-changes.
func matchText(c DisplayChange, needle string) bool {
	fields := []string{c.Label, c.TypeLabel, c.ItemRef, string(c.Kind)}
	for _, d := range c.Details {
		fields = append(fields, d.Value)
	}
	for _, s := range fields {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	for _, child := range c.Children {
		if matchText(child, needle) {
			return true
		}
	}
	return false
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
