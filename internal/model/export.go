package model

import (
	"encoding/json"
	"time"
)

// ExportVersion is the current export document format version.
const ExportVersion = "1"

// ExportedAction is the serializable projection of a committed action.
type ExportedAction struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Label     string    `json:"label"`
	Delta     Delta     `json:"delta"`
}

// UnmarshalJSON decodes the action's delta according to its kind.
func (a *ExportedAction) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string          `json:"id"`
		Kind      Kind            `json:"kind"`
		Timestamp time.Time       `json:"timestamp"`
		Label     string          `json:"label"`
		Delta     json.RawMessage `json:"delta"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.ID = raw.ID
	a.Kind = raw.Kind
	a.Timestamp = raw.Timestamp
	a.Label = raw.Label
	a.Delta = DecodeDelta(raw.Kind, raw.Delta)
	return nil
}

// ExportDocument wraps an exported change log with export metadata.
// Changes are in chronological order, oldest first.
type ExportDocument struct {
	Key        string           `json:"-"`
	ID         string           `json:"id"`
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Structure  string           `json:"structure,omitempty"`
	Count      int              `json:"count"`
	Changes    []ExportedAction `json:"changes"`
}

// SetKey sets the database key for this document.
func (d *ExportDocument) SetKey(key string) {
	d.Key = key
}

// GetKey returns the database key for this document.
func (d *ExportDocument) GetKey() string {
	return d.Key
}

// ExportKey returns the database key for an export ID.
func ExportKey(id string) string {
	return PrefixExport + ":" + id
}
