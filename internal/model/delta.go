package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
)

// Delta describes what a recorded edit changed. It is display and export
// state only; the history engine never inspects it.
type Delta interface {
	// DeltaType returns a short tag for the delta's shape.
	DeltaType() string
}

// Delta type tags.
const (
	DeltaTypeIndicator = "indicator"
	DeltaTypeCategory  = "category"
	DeltaTypePillar    = "pillar"
	DeltaTypeDataset   = "dataset"
	DeltaTypeMove      = "move"
	DeltaTypeRename    = "rename"
	DeltaTypeWeight    = "weight"
	DeltaTypeComposite = "composite"
	DeltaTypeRaw       = "raw"
)

// DeltaTypes lists every built-in delta type tag.
var DeltaTypes = []string{
	DeltaTypeIndicator,
	DeltaTypeCategory,
	DeltaTypePillar,
	DeltaTypeDataset,
	DeltaTypeMove,
	DeltaTypeRename,
	DeltaTypeWeight,
	DeltaTypeComposite,
	DeltaTypeRaw,
}

// IsDeltaType reports whether tag is a built-in delta type tag.
func IsDeltaType(tag string) bool {
	for _, t := range DeltaTypes {
		if t == tag {
			return true
		}
	}
	return false
}

// IndicatorDelta describes an indicator that was added or removed.
type IndicatorDelta struct {
	Code         string   `json:"code" yaml:"code"`
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	CategoryCode string   `json:"category_code,omitempty" yaml:"category_code,omitempty"`
	CategoryName string   `json:"category_name,omitempty" yaml:"category_name,omitempty"`
	Index        int      `json:"index" yaml:"index"`
	Weight       float64  `json:"weight,omitempty" yaml:"weight,omitempty"`
	Datasets     []string `json:"datasets,omitempty" yaml:"datasets,omitempty"`
}

func (IndicatorDelta) DeltaType() string { return DeltaTypeIndicator }

// CategoryDelta describes a category that was added or removed.
type CategoryDelta struct {
	Code       string   `json:"code" yaml:"code"`
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	PillarCode string   `json:"pillar_code,omitempty" yaml:"pillar_code,omitempty"`
	PillarName string   `json:"pillar_name,omitempty" yaml:"pillar_name,omitempty"`
	Index      int      `json:"index" yaml:"index"`
	Indicators []string `json:"indicators,omitempty" yaml:"indicators,omitempty"`
}

func (CategoryDelta) DeltaType() string { return DeltaTypeCategory }

// PillarDelta describes a pillar that was added or removed.
type PillarDelta struct {
	Code       string   `json:"code" yaml:"code"`
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	Index      int      `json:"index" yaml:"index"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
}

func (PillarDelta) DeltaType() string { return DeltaTypePillar }

// DatasetDelta describes a dataset that was added or removed.
// LinkedIndicators lists the indicators that referenced the dataset.
type DatasetDelta struct {
	Code             string   `json:"code" yaml:"code"`
	Name             string   `json:"name,omitempty" yaml:"name,omitempty"`
	Source           string   `json:"source,omitempty" yaml:"source,omitempty"`
	IndicatorCode    string   `json:"indicator_code,omitempty" yaml:"indicator_code,omitempty"`
	Index            int      `json:"index" yaml:"index"`
	LinkedIndicators []string `json:"linked_indicators,omitempty" yaml:"linked_indicators,omitempty"`
}

func (DatasetDelta) DeltaType() string { return DeltaTypeDataset }

// MoveDelta describes an entity that moved between parents or positions.
type MoveDelta struct {
	Entity         EntityType `json:"entity" yaml:"entity"`
	Code           string     `json:"code" yaml:"code"`
	Name           string     `json:"name,omitempty" yaml:"name,omitempty"`
	FromParent     string     `json:"from_parent" yaml:"from_parent"`
	FromParentName string     `json:"from_parent_name,omitempty" yaml:"from_parent_name,omitempty"`
	ToParent       string     `json:"to_parent" yaml:"to_parent"`
	ToParentName   string     `json:"to_parent_name,omitempty" yaml:"to_parent_name,omitempty"`
	FromIndex      int        `json:"from_index" yaml:"from_index"`
	ToIndex        int        `json:"to_index" yaml:"to_index"`
}

func (MoveDelta) DeltaType() string { return DeltaTypeMove }

// RenameDelta describes a display name change.
type RenameDelta struct {
	Entity EntityType `json:"entity" yaml:"entity"`
	Code   string     `json:"code" yaml:"code"`
	Before string     `json:"before" yaml:"before"`
	After  string     `json:"after" yaml:"after"`
}

func (RenameDelta) DeltaType() string { return DeltaTypeRename }

// WeightDelta describes an indicator weight change.
type WeightDelta struct {
	Code   string  `json:"code" yaml:"code"`
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	Before float64 `json:"before" yaml:"before"`
	After  float64 `json:"after" yaml:"after"`
}

func (WeightDelta) DeltaType() string { return DeltaTypeWeight }

// Resolve strips pointers from d, so *IndicatorDelta and IndicatorDelta
// are handled alike. A nil pointer resolves to nil.
func Resolve(d Delta) Delta {
	for d != nil {
		rv := reflect.ValueOf(d)
		if rv.Kind() != reflect.Pointer {
			return d
		}
		if rv.IsNil() {
			return nil
		}
		inner, ok := rv.Elem().Interface().(Delta)
		if !ok {
			return d
		}
		d = inner
	}
	return nil
}

// TypeOf returns the type tag of d, or "" when d is nil or its DeltaType
// method panics.
func TypeOf(d Delta) (tag string) {
	d = Resolve(d)
	if d == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			tag = ""
		}
	}()
	return d.DeltaType()
}

// Step is one sub-edit of a composite action.
type Step struct {
	Kind  Kind  `json:"kind"`
	Delta Delta `json:"delta"`
}

// UnmarshalJSON decodes the step's delta according to its kind.
func (s *Step) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind  Kind            `json:"kind"`
		Delta json.RawMessage `json:"delta"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Kind = raw.Kind
	s.Delta = DecodeDelta(raw.Kind, raw.Delta)
	return nil
}

// CompositeDelta bundles several sub-edits recorded as one action.
// ParentCode and ParentName give the category context, when there is one.
type CompositeDelta struct {
	ParentCode string `json:"parent_code,omitempty"`
	ParentName string `json:"parent_name,omitempty"`
	Steps      []Step `json:"steps"`
}

func (CompositeDelta) DeltaType() string { return DeltaTypeComposite }

// RawDelta is an untyped delta. It is used for kinds outside the built-in
// vocabulary and for payloads that fail to decode into their typed shape.
type RawDelta map[string]any

func (RawDelta) DeltaType() string { return DeltaTypeRaw }

// DecodeDelta decodes a JSON payload into the delta type registered for kind.
// It never fails: anything that does not fit becomes a RawDelta, including
// objects carrying fields the typed shape does not have.
// An empty or null payload decodes to nil.
func DecodeDelta(kind Kind, data []byte) Delta {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var (
		d   Delta
		err error
	)
	switch kind {
	case KindAddIndicator, KindRemoveIndicator:
		d, err = decodeStrict[IndicatorDelta](data)
	case KindAddCategory, KindRemoveCategory:
		d, err = decodeStrict[CategoryDelta](data)
	case KindAddPillar, KindRemovePillar:
		d, err = decodeStrict[PillarDelta](data)
	case KindAddDataset, KindRemoveDataset:
		d, err = decodeStrict[DatasetDelta](data)
	case KindMoveIndicator, KindMoveCategory:
		d, err = decodeStrict[MoveDelta](data)
	case KindSetName:
		d, err = decodeStrict[RenameDelta](data)
	case KindSetWeight:
		d, err = decodeStrict[WeightDelta](data)
	case KindComposite, KindCreateCategory:
		d, err = decodeStrict[CompositeDelta](data)
	default:
		return decodeRaw(data)
	}
	if err != nil {
		return decodeRaw(data)
	}
	return d
}

// decodeStrict decodes data into T, rejecting unknown fields and trailing
// data.
func decodeStrict[T Delta](data []byte) (Delta, error) {
	var v T
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return v, nil
}

var errTrailingData = errors.New("trailing data after delta")

// decodeRaw decodes any JSON value into a RawDelta.
func decodeRaw(data []byte) RawDelta {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err == nil {
		return RawDelta(m)
	}
	var v any
	if err := json.Unmarshal(data, &v); err == nil {
		return RawDelta{"value": v}
	}
	return RawDelta{"raw": string(data)}
}
