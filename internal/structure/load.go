package structure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/manav03panchal/indexlog/internal/errors"
	"github.com/manav03panchal/indexlog/internal/history"
	"github.com/manav03panchal/indexlog/internal/model"
)

// Format is a file encoding for structures and scripts.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension. Anything other than
// .json is read as YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

func decode(data []byte, format Format, v any) error {
	if format == FormatJSON {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(v)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}

// LoadStructure reads, normalizes, and validates a structure file.
func LoadStructure(path string) (*Structure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewSystemErrorWithOp("load structure", "Failed to read structure file", err)
	}
	return ParseStructure(data, FormatFor(path))
}

// ParseStructure decodes, normalizes, and validates a structure.
func ParseStructure(data []byte, format Format) (*Structure, error) {
	var s Structure
	if err := decode(data, format, &s); err != nil {
		return nil, &errors.UserError{
			Message:    "Invalid structure file",
			Suggestion: "Check the file against the pillars/categories/indicators layout: " + err.Error(),
			Err:        errors.ErrNoStructure,
		}
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Ops accepted in scripts besides the edit kinds.
const (
	OpUndo  = "undo"
	OpRedo  = "redo"
	OpGroup = "group"
)

// Script is a sequence of edits and undo/redo steps.
type Script struct {
	Steps []Step `json:"steps" yaml:"steps"`
}

// Step is one script entry. Op is an edit kind (add-indicator, set-name,
// ...), "undo", "redo", or "group". Which fields apply depends on Op.
//
// Parent is the containing category for indicators, the pillar for
// categories, and the destination for moves. Indicator links a new dataset
// or lists the indicators of a create-category step.
type Step struct {
	Op         string   `json:"op" yaml:"op"`
	Label      string   `json:"label,omitempty" yaml:"label,omitempty"`
	Entity     string   `json:"entity,omitempty" yaml:"entity,omitempty"`
	Code       string   `json:"code,omitempty" yaml:"code,omitempty"`
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	Parent     string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Index      *int     `json:"index,omitempty" yaml:"index,omitempty"`
	Weight     *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	Source     string   `json:"source,omitempty" yaml:"source,omitempty"`
	Indicator  string   `json:"indicator,omitempty" yaml:"indicator,omitempty"`
	Datasets   []string `json:"datasets,omitempty" yaml:"datasets,omitempty"`
	Indicators []string `json:"indicators,omitempty" yaml:"indicators,omitempty"`
	Steps      []Step   `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// LoadScript reads a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewSystemErrorWithOp("load script", "Failed to read script file", err)
	}
	return ParseScript(data, FormatFor(path))
}

// ParseScript decodes a script and checks that every step names a known op.
func ParseScript(data []byte, format Format) (*Script, error) {
	var s Script
	if err := decode(data, format, &s); err != nil {
		return nil, invalidScript("Invalid script file: " + err.Error())
	}
	if err := checkSteps(s.Steps, ""); err != nil {
		return nil, err
	}
	return &s, nil
}

func checkSteps(steps []Step, path string) error {
	for i, st := range steps {
		where := fmt.Sprintf("%sstep %d", path, i+1)
		switch {
		case st.Op == OpUndo || st.Op == OpRedo:
			if path != "" {
				return invalidScript(where + ": undo and redo are not allowed inside a group")
			}
		case st.Op == OpGroup:
			if len(st.Steps) == 0 {
				return invalidScript(where + ": group has no steps")
			}
			if err := checkSteps(st.Steps, where+" > "); err != nil {
				return err
			}
		case !model.Kind(st.Op).IsKnown() || model.Kind(st.Op) == model.KindComposite:
			return invalidScript(fmt.Sprintf("%s: unknown op %q", where, st.Op))
		}
	}
	return nil
}

func invalidScript(msg string) *errors.UserError {
	return &errors.UserError{Message: msg, Err: errors.ErrInvalidScript}
}

// Apply performs one edit step. Undo and redo steps are not edits; the
// caller handles them.
func (e *Editor) Apply(st Step) (history.Action, error) {
	index := -1
	if st.Index != nil {
		index = *st.Index
	}
	var weight float64
	if st.Weight != nil {
		weight = *st.Weight
	}

	switch model.Kind(st.Op) {
	case model.KindAddIndicator:
		return e.AddIndicator(st.Parent, Indicator{
			Code:     st.Code,
			Name:     st.Name,
			Weight:   weight,
			Datasets: st.Datasets,
		}, index)
	case model.KindRemoveIndicator:
		return e.RemoveIndicator(st.Code)
	case model.KindMoveIndicator:
		return e.MoveIndicator(st.Code, st.Parent, index)
	case model.KindAddCategory:
		return e.AddCategory(st.Parent, Category{Code: st.Code, Name: st.Name}, index)
	case model.KindRemoveCategory:
		return e.RemoveCategory(st.Code)
	case model.KindMoveCategory:
		return e.MoveCategory(st.Code, st.Parent, index)
	case model.KindAddPillar:
		return e.AddPillar(Pillar{Code: st.Code, Name: st.Name}, index)
	case model.KindRemovePillar:
		return e.RemovePillar(st.Code)
	case model.KindAddDataset:
		return e.AddDataset(Dataset{Code: st.Code, Name: st.Name, Source: st.Source}, st.Indicator)
	case model.KindRemoveDataset:
		return e.RemoveDataset(st.Code)
	case model.KindSetName:
		entity, ok := model.ParseEntityType(st.Entity)
		if !ok {
			return history.Action{}, invalidScript(fmt.Sprintf("unknown entity %q", st.Entity))
		}
		return e.Rename(entity, st.Code, st.Name)
	case model.KindSetWeight:
		if st.Weight == nil {
			return history.Action{}, invalidScript("set-weight needs a weight")
		}
		return e.SetWeight(st.Code, weight)
	case model.KindCreateCategory:
		return e.CreateCategoryWithIndicators(st.Parent, Category{Code: st.Code, Name: st.Name}, st.Indicators)
	}

	if st.Op == OpGroup {
		label := st.Label
		if label == "" {
			label = fmt.Sprintf("%d grouped edits", len(st.Steps))
		}
		return e.Batch(label, func() error {
			for _, inner := range st.Steps {
				if _, err := e.Apply(inner); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return history.Action{}, invalidScript(fmt.Sprintf("unknown op %q", st.Op))
}
