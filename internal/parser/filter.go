package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/manav03panchal/indexlog/internal/changelog"
	"github.com/manav03panchal/indexlog/internal/errors"
	"github.com/manav03panchal/indexlog/internal/model"
)

// FilterArgs holds the raw change log filter flags.
type FilterArgs struct {
	Kinds      []string
	Categories []string
	DeltaTypes []string
	Search     string
	Since      string
	Until      string
}

// ParseFilter turns raw flag values into a change log filter.
func ParseFilter(args FilterArgs, now time.Time) (changelog.Filter, error) {
	var f changelog.Filter

	for _, v := range SplitList(args.Kinds) {
		k := model.Kind(strings.ToLower(v))
		if !k.IsKnown() {
			return changelog.Filter{}, invalidFilter("kind", v, kindNames())
		}
		f.Kinds = append(f.Kinds, k)
	}

	for _, v := range SplitList(args.Categories) {
		c, ok := changelog.ParseCategory(strings.ToLower(v))
		if !ok {
			return changelog.Filter{}, invalidFilter("category", v, categoryNames())
		}
		f.Categories = append(f.Categories, c)
	}

	for _, v := range SplitList(args.DeltaTypes) {
		tag := strings.ToLower(v)
		if !model.IsDeltaType(tag) {
			return changelog.Filter{}, invalidFilter("delta type", v, model.DeltaTypes)
		}
		f.DeltaTypes = append(f.DeltaTypes, tag)
	}

	f.Text = strings.TrimSpace(args.Search)

	since, until, err := ParseWindow(args.Since, args.Until, now)
	if err != nil {
		return changelog.Filter{}, err
	}
	f.Since, f.Until = since, until
	return f, nil
}

// SplitList flattens repeated and comma separated flag values, dropping
// blanks and duplicates while keeping first-seen order.
func SplitList(values []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			key := strings.ToLower(part)
			if part == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, part)
		}
	}
	return out
}

func invalidFilter(field, value string, valid []string) *errors.UserError {
	return &errors.UserError{
		Message:    fmt.Sprintf("unknown %s", field),
		Field:      field,
		Value:      value,
		Suggestion: "Valid values: " + strings.Join(valid, ", "),
		Err:        errors.ErrInvalidFilter,
	}
}

func kindNames() []string {
	names := make([]string, len(model.Kinds))
	for i, k := range model.Kinds {
		names[i] = string(k)
	}
	return names
}

func categoryNames() []string {
	names := make([]string, len(changelog.Categories))
	for i, c := range changelog.Categories {
		names[i] = string(c)
	}
	return names
}
