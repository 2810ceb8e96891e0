package history

import (
	"fmt"
	"time"

	"github.com/manav03panchal/indexlog/internal/model"
)

// Action is one recorded reversible edit.
// Values handed out by History are copies; mutating them has no effect on
// the stored record.
type Action struct {
	ID        string
	Timestamp time.Time
	Kind      model.Kind
	Label     string
	Delta     model.Delta

	apply   func() error
	unapply func() error
}

// Export returns the serializable projection of the action.
func (a Action) Export() model.ExportedAction {
	return model.ExportedAction{
		ID:        a.ID,
		Kind:      a.Kind,
		Timestamp: a.Timestamp,
		Label:     a.Label,
		Delta:     a.Delta,
	}
}

// invoke runs fn, converting a panic into an error.
func invoke(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
