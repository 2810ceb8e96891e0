package structure

import (
	"fmt"

	"github.com/manav03panchal/indexlog/internal/errors"
	"github.com/manav03panchal/indexlog/internal/history"
	"github.com/manav03panchal/indexlog/internal/model"
	"github.com/manav03panchal/indexlog/internal/validate"
)

// group collects the edits made inside Group.
type group struct {
	edits []edit
}

// Group runs fn and records every edit it makes as one composite action of
// the given kind. If fn fails, the edits it made are rolled back in reverse
// order and nothing is recorded. Groups nest: an inner Group joins the
// outer one.
//
// parentCode and parentName give the category context shown with the
// change; if parentCode is empty it is inferred from the edits.
func (e *Editor) Group(kind model.Kind, label, parentCode, parentName string, fn func() error) (history.Action, error) {
	if e.group != nil {
		return history.Action{}, fn()
	}

	e.group = &group{}
	err := fn()
	edits := e.group.edits
	e.group = nil

	if err != nil {
		if rerr := rollback(edits); rerr != nil {
			e.logger.Error("rollback after failed group", "error", rerr)
		}
		return history.Action{}, err
	}
	if len(edits) == 0 {
		return history.Action{}, errors.NewUserError(
			"Nothing to record",
			"A grouped edit must contain at least one change")
	}

	steps := make([]model.Step, len(edits))
	for i, ed := range edits {
		steps[i] = model.Step{Kind: ed.kind, Delta: ed.delta}
	}
	if parentCode == "" {
		parentCode, parentName = e.inferParent(steps)
	}

	return e.commit(edit{
		kind:  kind,
		label: label,
		delta: model.CompositeDelta{
			ParentCode: parentCode,
			ParentName: parentName,
			Steps:      steps,
		},
		apply:   applyAll(label, edits),
		unapply: unapplyAll(label, edits),
	})
}

// Batch groups the edits made by fn as one composite action.
func (e *Editor) Batch(label string, fn func() error) (history.Action, error) {
	return e.Group(model.KindComposite, label, "", "", fn)
}

// CreateCategoryWithIndicators adds cat to the pillar and moves the listed
// indicators into it, recorded as one action.
func (e *Editor) CreateCategoryWithIndicators(pillarCode string, cat Category, indicators []string) (history.Action, error) {
	cat.Code = validate.SanitizeCode(cat.Code)
	cat.Name = validate.SanitizeName(cat.Name)
	cat.Indicators = nil

	label := fmt.Sprintf("Create category %s with %d indicators", cat.Name, len(indicators))
	return e.Group(model.KindCreateCategory, label, cat.Code, cat.Name, func() error {
		if _, err := e.AddCategory(pillarCode, cat, -1); err != nil {
			return err
		}
		for _, code := range indicators {
			if _, err := e.MoveIndicator(code, cat.Code, -1); err != nil {
				return err
			}
		}
		return nil
	})
}

// inferParent returns the category every step touches, if they share one.
func (e *Editor) inferParent(steps []model.Step) (code, name string) {
	for _, s := range steps {
		var c, n string
		switch d := s.Delta.(type) {
		case model.IndicatorDelta:
			c, n = d.CategoryCode, d.CategoryName
		case model.MoveDelta:
			if d.Entity != model.EntityIndicator {
				return "", ""
			}
			c, n = d.ToParent, d.ToParentName
		case model.CategoryDelta:
			c, n = d.Code, d.Name
		default:
			return "", ""
		}
		if code != "" && c != code {
			return "", ""
		}
		code, name = c, n
	}
	return code, name
}

// applyAll replays edits in order. On failure the edits already replayed
// are undone.
func applyAll(label string, edits []edit) func() error {
	return func() error {
		for i, ed := range edits {
			if err := ed.apply(); err != nil {
				_ = rollback(edits[:i])
				return fmt.Errorf("%s step %d: %w", label, i+1, err)
			}
		}
		return nil
	}
}

// unapplyAll reverts edits in reverse order. On failure the edits already
// reverted are reapplied.
func unapplyAll(label string, edits []edit) func() error {
	return func() error {
		for i := len(edits) - 1; i >= 0; i-- {
			if err := edits[i].unapply(); err != nil {
				for j := i + 1; j < len(edits); j++ {
					_ = edits[j].apply()
				}
				return fmt.Errorf("%s step %d: %w", label, i+1, err)
			}
		}
		return nil
	}
}

func rollback(edits []edit) error {
	var first error
	for i := len(edits) - 1; i >= 0; i-- {
		if err := edits[i].unapply(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
