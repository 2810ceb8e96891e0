// Package changelog projects a history's committed actions into a
// display-ready, filterable change list and into an export document.
package changelog

import (
	"time"

	"github.com/manav03panchal/indexlog/internal/model"
)

// Category groups kinds for styling.
type Category string

const (
	CategoryAdd    Category = "add"
	CategoryRemove Category = "remove"
	CategoryMove   Category = "move"
	CategoryUpdate Category = "update"
	CategoryCreate Category = "create"
	CategoryOther  Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryAdd,
	CategoryRemove,
	CategoryMove,
	CategoryUpdate,
	CategoryCreate,
	CategoryOther,
}

// ParseCategory converts a string to a Category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// CategoryOf maps a kind to its display category by verb prefix.
func CategoryOf(k model.Kind) Category {
	switch k.Verb() {
	case "add":
		return CategoryAdd
	case "remove":
		return CategoryRemove
	case "move":
		return CategoryMove
	case "set":
		return CategoryUpdate
	case "create":
		return CategoryCreate
	default:
		return CategoryOther
	}
}

// Detail is one "Field: value" line of a change card.
type Detail struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// DisplayChange is the display projection of one committed action.
// Composite actions keep their sub-edits in Children rather than being
// flattened into the top-level list.
type DisplayChange struct {
	ID        string          `json:"id"`
	Kind      model.Kind      `json:"kind"`
	Category  Category        `json:"category"`
	TypeLabel string          `json:"type_label"`
	Label     string          `json:"label,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Time      string          `json:"time"`
	ItemRef   string          `json:"item_ref,omitempty"`
	DeltaType string          `json:"delta_type,omitempty"`
	Details   []Detail        `json:"details,omitempty"`
	Children  []DisplayChange `json:"children,omitempty"`
}

// IsComposite reports whether the change has nested sub-changes.
func (c DisplayChange) IsComposite() bool {
	return len(c.Children) > 0
}
