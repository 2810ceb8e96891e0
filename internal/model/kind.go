package model

import "strings"

// Kind identifies the category of a recorded edit.
// The vocabulary is owned by the application, not by the history engine;
// kinds outside this list are allowed and render generically.
type Kind string

const (
	KindAddIndicator    Kind = "add-indicator"
	KindRemoveIndicator Kind = "remove-indicator"
	KindMoveIndicator   Kind = "move-indicator"
	KindAddCategory     Kind = "add-category"
	KindRemoveCategory  Kind = "remove-category"
	KindMoveCategory    Kind = "move-category"
	KindAddPillar       Kind = "add-pillar"
	KindRemovePillar    Kind = "remove-pillar"
	KindAddDataset      Kind = "add-dataset"
	KindRemoveDataset   Kind = "remove-dataset"
	KindSetName         Kind = "set-name"
	KindSetWeight       Kind = "set-weight"
	KindCreateCategory  Kind = "create-category"
	KindComposite       Kind = "composite"
)

// Kinds lists the built-in kinds in a stable order.
var Kinds = []Kind{
	KindAddIndicator,
	KindRemoveIndicator,
	KindMoveIndicator,
	KindAddCategory,
	KindRemoveCategory,
	KindMoveCategory,
	KindAddPillar,
	KindRemovePillar,
	KindAddDataset,
	KindRemoveDataset,
	KindSetName,
	KindSetWeight,
	KindCreateCategory,
	KindComposite,
}

// String returns the kind as a string.
func (k Kind) String() string {
	return string(k)
}

// Verb returns the leading segment of the kind ("add" for "add-indicator").
func (k Kind) Verb() string {
	s := string(k)
	if i := strings.IndexAny(s, "-_"); i >= 0 {
		return s[:i]
	}
	return s
}

// IsKnown reports whether the kind is part of the built-in vocabulary.
func (k Kind) IsKnown() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// EntityType names the structural entity an edit touches.
type EntityType string

const (
	EntityPillar    EntityType = "pillar"
	EntityCategory  EntityType = "category"
	EntityIndicator EntityType = "indicator"
	EntityDataset   EntityType = "dataset"
)

// ParseEntityType converts a string to an EntityType.
func ParseEntityType(s string) (EntityType, bool) {
	switch EntityType(strings.ToLower(strings.TrimSpace(s))) {
	case EntityPillar:
		return EntityPillar, true
	case EntityCategory:
		return EntityCategory, true
	case EntityIndicator:
		return EntityIndicator, true
	case EntityDataset:
		return EntityDataset, true
	}
	return "", false
}
