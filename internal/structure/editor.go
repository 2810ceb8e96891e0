package structure

import (
	"fmt"
	"log/slog"

	"github.com/manav03panchal/indexlog/internal/errors"
	"github.com/manav03panchal/indexlog/internal/history"
	"github.com/manav03panchal/indexlog/internal/logging"
	"github.com/manav03panchal/indexlog/internal/model"
	"github.com/manav03panchal/indexlog/internal/validate"
)

// Recorder records an edit that has already been applied.
// *history.History satisfies it.
type Recorder interface {
	Record(kind model.Kind, label string, delta model.Delta, apply, unapply func() error) (history.Action, error)
}

// edit is one reversible change to the structure.
type edit struct {
	kind    model.Kind
	label   string
	delta   model.Delta
	apply   func() error
	unapply func() error
}

// Editor mutates a Structure and records each change. Every operation
// applies the edit first and records it second; if recording fails the
// edit is rolled back.
type Editor struct {
	doc    *Structure
	rec    Recorder
	group  *group
	logger *slog.Logger
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithEditorLogger sets the editor's logger.
func WithEditorLogger(l *slog.Logger) EditorOption {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEditor creates an editor over doc that records into rec.
func NewEditor(doc *Structure, rec Recorder, opts ...EditorOption) *Editor {
	e := &Editor{
		doc:    doc,
		rec:    rec,
		logger: logging.Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Structure returns the document being edited.
func (e *Editor) Structure() *Structure {
	return e.doc
}

// perform applies ed and records it. Inside a group the edit is collected
// instead and the returned Action is zero.
func (e *Editor) perform(ed edit) (history.Action, error) {
	if err := ed.apply(); err != nil {
		return history.Action{}, fmt.Errorf("%s: %w", ed.label, err)
	}
	return e.commit(ed)
}

// commit records an edit that is already applied, rolling it back if the
// recorder refuses it.
func (e *Editor) commit(ed edit) (history.Action, error) {
	if e.group != nil {
		e.group.edits = append(e.group.edits, ed)
		return history.Action{}, nil
	}

	a, err := e.rec.Record(ed.kind, ed.label, ed.delta, ed.apply, ed.unapply)
	if err != nil {
		if uerr := ed.unapply(); uerr != nil {
			e.logger.Error("rollback after failed record",
				logging.KeyKind, string(ed.kind),
				logging.KeyError, uerr,
			)
		}
		return history.Action{}, err
	}

	e.logger.Debug("edit recorded",
		logging.KeyActionID, a.ID,
		logging.KeyKind, string(a.Kind),
		logging.KeyLabel, a.Label,
	)
	return a, nil
}

// =============================================================================
// Indicators
// =============================================================================

// AddIndicator inserts ind into the category at index. A negative index
// appends.
func (e *Editor) AddIndicator(categoryCode string, ind Indicator, index int) (history.Action, error) {
	categoryCode = validate.SanitizeCode(categoryCode)
	item := ind.clone()
	item.normalize()

	if err := e.checkNewIndicator(item, newClaims()); err != nil {
		return history.Action{}, err
	}
	cat, _, _ := e.doc.Category(categoryCode)
	if cat == nil {
		return history.Action{}, errors.NotFound(errors.ErrCategoryNotFound, "category", categoryCode)
	}

	index = clampIndex(index, len(cat.Indicators))

	return e.perform(edit{
		kind:  model.KindAddIndicator,
		label: "Add indicator " + item.Name,
		delta: model.IndicatorDelta{
			Code:         item.Code,
			Name:         item.Name,
			CategoryCode: cat.Code,
			CategoryName: cat.Name,
			Index:        index,
			Weight:       item.Weight,
			Datasets:     append([]string(nil), item.Datasets...),
		},
		apply:   e.insertIndicator(categoryCode, index, item),
		unapply: e.removeIndicator(categoryCode, index, item.Code),
	})
}

// RemoveIndicator removes the indicator with code.
func (e *Editor) RemoveIndicator(code string) (history.Action, error) {
	code = validate.SanitizeCode(code)
	item, cat, index := e.doc.Indicator(code)
	if item == nil {
		return history.Action{}, errors.NotFound(errors.ErrIndicatorNotFound, "indicator", code)
	}

	return e.perform(edit{
		kind:  model.KindRemoveIndicator,
		label: "Remove indicator " + item.Name,
		delta: model.IndicatorDelta{
			Code:         item.Code,
			Name:         item.Name,
			CategoryCode: cat.Code,
			CategoryName: cat.Name,
			Index:        index,
			Weight:       item.Weight,
			Datasets:     append([]string(nil), item.Datasets...),
		},
		apply:   e.removeIndicator(cat.Code, index, item.Code),
		unapply: e.insertIndicator(cat.Code, index, item),
	})
}

// MoveIndicator moves the indicator with code to position index of the
// target category. A negative index appends.
func (e *Editor) MoveIndicator(code, toCategory string, index int) (history.Action, error) {
	code = validate.SanitizeCode(code)
	toCategory = validate.SanitizeCode(toCategory)

	item, from, fromIndex := e.doc.Indicator(code)
	if item == nil {
		return history.Action{}, errors.NotFound(errors.ErrIndicatorNotFound, "indicator", code)
	}
	to, _, _ := e.doc.Category(toCategory)
	if to == nil {
		return history.Action{}, errors.NotFound(errors.ErrCategoryNotFound, "category", toCategory)
	}

	n := len(to.Indicators)
	if to == from {
		n--
	}
	index = clampIndex(index, n)
	if to == from && index == fromIndex {
		return history.Action{}, errors.NewUserErrorWithField("indicator", code,
			"Indicator is already at that position",
			"Choose a different category or position")
	}

	fromCode := from.Code
	return e.perform(edit{
		kind:  model.KindMoveIndicator,
		label: fmt.Sprintf("Move indicator %s to %s", item.Name, to.Name),
		delta: model.MoveDelta{
			Entity:         model.EntityIndicator,
			Code:           item.Code,
			Name:           item.Name,
			FromParent:     from.Code,
			FromParentName: from.Name,
			ToParent:       to.Code,
			ToParentName:   to.Name,
			FromIndex:      fromIndex,
			ToIndex:        index,
		},
		apply:   e.moveIndicator(item, fromCode, fromIndex, toCategory, index),
		unapply: e.moveIndicator(item, toCategory, index, fromCode, fromIndex),
	})
}

func (e *Editor) insertIndicator(categoryCode string, index int, item *Indicator) func() error {
	return func() error {
		cat, _, _ := e.doc.Category(categoryCode)
		if cat == nil {
			return errors.NotFound(errors.ErrCategoryNotFound, "category", categoryCode)
		}
		var err error
		cat.Indicators, err = insertAt(cat.Indicators, index, item)
		return err
	}
}

func (e *Editor) removeIndicator(categoryCode string, index int, code string) func() error {
	return func() error {
		cat, _, _ := e.doc.Category(categoryCode)
		if cat == nil {
			return errors.NotFound(errors.ErrCategoryNotFound, "category", categoryCode)
		}
		var err error
		cat.Indicators, _, err = removeAt(cat.Indicators, index, func(ind *Indicator) bool {
			return ind.Code == code
		})
		return err
	}
}

func (e *Editor) moveIndicator(item *Indicator, from string, fromIndex int, to string, toIndex int) func() error {
	remove := e.removeIndicator(from, fromIndex, item.Code)
	insert := e.insertIndicator(to, toIndex, item)
	return func() error {
		if err := remove(); err != nil {
			return err
		}
		if err := insert(); err != nil {
			// put it back where it was
			_ = e.insertIndicator(from, fromIndex, item)()
			return err
		}
		return nil
	}
}

// =============================================================================
// Categories
// =============================================================================

// AddCategory inserts cat into the pillar at index. A negative index
// appends. Any indicators the category carries are added with it.
func (e *Editor) AddCategory(pillarCode string, cat Category, index int) (history.Action, error) {
	pillarCode = validate.SanitizeCode(pillarCode)
	item := cat.clone()
	item.normalize()

	if err := e.checkNewCategory(item, newClaims()); err != nil {
		return history.Action{}, err
	}
	p, _ := e.doc.Pillar(pillarCode)
	if p == nil {
		return history.Action{}, errors.NotFound(errors.ErrPillarNotFound, "pillar", pillarCode)
	}

	index = clampIndex(index, len(p.Categories))

	return e.perform(edit{
		kind:  model.KindAddCategory,
		label: "Add category " + item.Name,
		delta: model.CategoryDelta{
			Code:       item.Code,
			Name:       item.Name,
			PillarCode: p.Code,
			PillarName: p.Name,
			Index:      index,
			Indicators: codes(item.Indicators, indicatorCode),
		},
		apply:   e.insertCategory(pillarCode, index, item),
		unapply: e.removeCategory(pillarCode, index, item.Code),
	})
}

// RemoveCategory removes the category with code and the indicators in it.
func (e *Editor) RemoveCategory(code string) (history.Action, error) {
	code = validate.SanitizeCode(code)
	item, p, index := e.doc.Category(code)
	if item == nil {
		return history.Action{}, errors.NotFound(errors.ErrCategoryNotFound, "category", code)
	}

	return e.perform(edit{
		kind:  model.KindRemoveCategory,
		label: "Remove category " + item.Name,
		delta: model.CategoryDelta{
			Code:       item.Code,
			Name:       item.Name,
			PillarCode: p.Code,
			PillarName: p.Name,
			Index:      index,
			Indicators: codes(item.Indicators, indicatorCode),
		},
		apply:   e.removeCategory(p.Code, index, item.Code),
		unapply: e.insertCategory(p.Code, index, item),
	})
}

// MoveCategory moves the category with code to position index of the target
// pillar. A negative index appends.
func (e *Editor) MoveCategory(code, toPillar string, index int) (history.Action, error) {
	code = validate.SanitizeCode(code)
	toPillar = validate.SanitizeCode(toPillar)

	item, from, fromIndex := e.doc.Category(code)
	if item == nil {
		return history.Action{}, errors.NotFound(errors.ErrCategoryNotFound, "category", code)
	}
	to, _ := e.doc.Pillar(toPillar)
	if to == nil {
		return history.Action{}, errors.NotFound(errors.ErrPillarNotFound, "pillar", toPillar)
	}

	n := len(to.Categories)
	if to == from {
		n--
	}
	index = clampIndex(index, n)
	if to == from && index == fromIndex {
		return history.Action{}, errors.NewUserErrorWithField("category", code,
			"Category is already at that position",
			"Choose a different pillar or position")
	}

	fromCode := from.Code
	return e.perform(edit{
		kind:  model.KindMoveCategory,
		label: fmt.Sprintf("Move category %s to %s", item.Name, to.Name),
		delta: model.MoveDelta{
			Entity:         model.EntityCategory,
			Code:           item.Code,
			Name:           item.Name,
			FromParent:     from.Code,
			FromParentName: from.Name,
			ToParent:       to.Code,
			ToParentName:   to.Name,
			FromIndex:      fromIndex,
			ToIndex:        index,
		},
		apply:   e.moveCategory(item, fromCode, fromIndex, toPillar, index),
		unapply: e.moveCategory(item, toPillar, index, fromCode, fromIndex),
	})
}

func (e *Editor) insertCategory(pillarCode string, index int, item *Category) func() error {
	return func() error {
		p, _ := e.doc.Pillar(pillarCode)
		if p == nil {
			return errors.NotFound(errors.ErrPillarNotFound, "pillar", pillarCode)
		}
		var err error
		p.Categories, err = insertAt(p.Categories, index, item)
		return err
	}
}

func (e *Editor) removeCategory(pillarCode string, index int, code string) func() error {
	return func() error {
		p, _ := e.doc.Pillar(pillarCode)
		if p == nil {
			return errors.NotFound(errors.ErrPillarNotFound, "pillar", pillarCode)
		}
		var err error
		p.Categories, _, err = removeAt(p.Categories, index, func(c *Category) bool {
			return c.Code == code
		})
		return err
	}
}

func (e *Editor) moveCategory(item *Category, from string, fromIndex int, to string, toIndex int) func() error {
	remove := e.removeCategory(from, fromIndex, item.Code)
	insert := e.insertCategory(to, toIndex, item)
	return func() error {
		if err := remove(); err != nil {
			return err
		}
		if err := insert(); err != nil {
			_ = e.insertCategory(from, fromIndex, item)()
			return err
		}
		return nil
	}
}

// =============================================================================
// Pillars
// =============================================================================

// AddPillar inserts p at index. A negative index appends. Any categories
// and indicators the pillar carries are added with it.
func (e *Editor) AddPillar(p Pillar, index int) (history.Action, error) {
	item := p.clone()
	item.normalize()

	if err := e.checkNew(item.Code, item.Name); err != nil {
		return history.Action{}, err
	}
	if found, _ := e.doc.Pillar(item.Code); found != nil {
		return history.Action{}, duplicate("pillar", item.Code)
	}
	claimed := newClaims()
	for _, c := range item.Categories {
		if err := e.checkNewCategory(c, claimed); err != nil {
			return history.Action{}, err
		}
	}

	index = clampIndex(index, len(e.doc.Pillars))

	return e.perform(edit{
		kind:  model.KindAddPillar,
		label: "Add pillar " + item.Name,
		delta: model.PillarDelta{
			Code:       item.Code,
			Name:       item.Name,
			Index:      index,
			Categories: codes(item.Categories, categoryCode),
		},
		apply:   e.insertPillar(index, item),
		unapply: e.removePillar(index, item.Code),
	})
}

// RemovePillar removes the pillar with code and everything under it.
func (e *Editor) RemovePillar(code string) (history.Action, error) {
	code = validate.SanitizeCode(code)
	item, index := e.doc.Pillar(code)
	if item == nil {
		return history.Action{}, errors.NotFound(errors.ErrPillarNotFound, "pillar", code)
	}

	return e.perform(edit{
		kind:  model.KindRemovePillar,
		label: "Remove pillar " + item.Name,
		delta: model.PillarDelta{
			Code:       item.Code,
			Name:       item.Name,
			Index:      index,
			Categories: codes(item.Categories, categoryCode),
		},
		apply:   e.removePillar(index, item.Code),
		unapply: e.insertPillar(index, item),
	})
}

func (e *Editor) insertPillar(index int, item *Pillar) func() error {
	return func() error {
		var err error
		e.doc.Pillars, err = insertAt(e.doc.Pillars, index, item)
		return err
	}
}

func (e *Editor) removePillar(index int, code string) func() error {
	return func() error {
		var err error
		e.doc.Pillars, _, err = removeAt(e.doc.Pillars, index, func(p *Pillar) bool {
			return p.Code == code
		})
		return err
	}
}

// =============================================================================
// Datasets
// =============================================================================

// AddDataset appends d to the dataset list. If indicatorCode is set the
// dataset is also linked to that indicator.
func (e *Editor) AddDataset(d Dataset, indicatorCode string) (history.Action, error) {
	d.Code = validate.SanitizeCode(d.Code)
	d.Name = validate.SanitizeName(d.Name)
	indicatorCode = validate.SanitizeCode(indicatorCode)

	if err := e.checkNew(d.Code, d.Name); err != nil {
		return history.Action{}, err
	}
	if found, _ := e.doc.Dataset(d.Code); found != nil {
		return history.Action{}, duplicate("dataset", d.Code)
	}

	var links []link
	if indicatorCode != "" {
		ind, _, _ := e.doc.Indicator(indicatorCode)
		if ind == nil {
			return history.Action{}, errors.NotFound(errors.ErrIndicatorNotFound, "indicator", indicatorCode)
		}
		links = append(links, link{indicator: ind.Code, index: len(ind.Datasets)})
	}

	index := len(e.doc.Datasets)
	item := d

	return e.perform(edit{
		kind:  model.KindAddDataset,
		label: "Add dataset " + item.Name,
		delta: model.DatasetDelta{
			Code:          item.Code,
			Name:          item.Name,
			Source:        item.Source,
			IndicatorCode: indicatorCode,
			Index:         index,
		},
		apply:   e.insertDataset(index, &item, links),
		unapply: e.removeDataset(index, item.Code, links),
	})
}

// RemoveDataset removes the dataset with code and unlinks it from every
// indicator that references it.
func (e *Editor) RemoveDataset(code string) (history.Action, error) {
	code = validate.SanitizeCode(code)
	item, index := e.doc.Dataset(code)
	if item == nil {
		return history.Action{}, errors.NotFound(errors.ErrDatasetNotFound, "dataset", code)
	}

	var links []link
	for _, ind := range e.doc.Indicators() {
		if i := indexOfString(ind.Datasets, code); i >= 0 {
			links = append(links, link{indicator: ind.Code, index: i})
		}
	}
	linked := make([]string, len(links))
	for i, l := range links {
		linked[i] = l.indicator
	}

	return e.perform(edit{
		kind:  model.KindRemoveDataset,
		label: "Remove dataset " + item.Name,
		delta: model.DatasetDelta{
			Code:             item.Code,
			Name:             item.Name,
			Source:           item.Source,
			Index:            index,
			LinkedIndicators: linked,
		},
		apply:   e.removeDataset(index, item.Code, links),
		unapply: e.insertDataset(index, item, links),
	})
}

// link is a dataset reference held by an indicator.
type link struct {
	indicator string
	index     int
}

func (e *Editor) insertDataset(index int, item *Dataset, links []link) func() error {
	return func() error {
		var err error
		e.doc.Datasets, err = insertAt(e.doc.Datasets, index, item)
		if err != nil {
			return err
		}
		for _, l := range links {
			ind, _, _ := e.doc.Indicator(l.indicator)
			if ind == nil {
				return errors.NotFound(errors.ErrIndicatorNotFound, "indicator", l.indicator)
			}
			if ind.Datasets, err = insertAt(ind.Datasets, l.index, item.Code); err != nil {
				return err
			}
		}
		return nil
	}
}

func (e *Editor) removeDataset(index int, code string, links []link) func() error {
	return func() error {
		for i := len(links) - 1; i >= 0; i-- {
			l := links[i]
			ind, _, _ := e.doc.Indicator(l.indicator)
			if ind == nil {
				return errors.NotFound(errors.ErrIndicatorNotFound, "indicator", l.indicator)
			}
			var err error
			ind.Datasets, _, err = removeAt(ind.Datasets, l.index, func(s string) bool { return s == code })
			if err != nil {
				return err
			}
		}
		var err error
		e.doc.Datasets, _, err = removeAt(e.doc.Datasets, index, func(d *Dataset) bool {
			return d.Code == code
		})
		return err
	}
}

// =============================================================================
// Attributes
// =============================================================================

// Rename changes the display name of the entity with code.
func (e *Editor) Rename(entity model.EntityType, code, name string) (history.Action, error) {
	code = validate.SanitizeCode(code)
	name = validate.SanitizeName(name)
	if err := validate.Name(name); err != nil {
		return history.Action{}, err
	}

	field, err := e.nameField(entity, code)
	if err != nil {
		return history.Action{}, err
	}
	before := *field
	if before == name {
		return history.Action{}, errors.NewUserErrorWithField("name", name,
			"Name is unchanged",
			"Provide a different name")
	}

	set := func(v string) func() error {
		return func() error {
			f, err := e.nameField(entity, code)
			if err != nil {
				return err
			}
			*f = v
			return nil
		}
	}

	return e.perform(edit{
		kind:  model.KindSetName,
		label: fmt.Sprintf("Rename %s %s to %s", entity, before, name),
		delta: model.RenameDelta{
			Entity: entity,
			Code:   code,
			Before: before,
			After:  name,
		},
		apply:   set(name),
		unapply: set(before),
	})
}

// nameField returns a pointer to the name of the entity with code.
func (e *Editor) nameField(entity model.EntityType, code string) (*string, error) {
	switch entity {
	case model.EntityPillar:
		if p, _ := e.doc.Pillar(code); p != nil {
			return &p.Name, nil
		}
		return nil, errors.NotFound(errors.ErrPillarNotFound, "pillar", code)
	case model.EntityCategory:
		if c, _, _ := e.doc.Category(code); c != nil {
			return &c.Name, nil
		}
		return nil, errors.NotFound(errors.ErrCategoryNotFound, "category", code)
	case model.EntityIndicator:
		if ind, _, _ := e.doc.Indicator(code); ind != nil {
			return &ind.Name, nil
		}
		return nil, errors.NotFound(errors.ErrIndicatorNotFound, "indicator", code)
	case model.EntityDataset:
		if d, _ := e.doc.Dataset(code); d != nil {
			return &d.Name, nil
		}
		return nil, errors.NotFound(errors.ErrDatasetNotFound, "dataset", code)
	}
	return nil, errors.NewUserErrorWithField("entity", string(entity),
		"Unknown entity type",
		"Use pillar, category, indicator, or dataset")
}

// SetWeight changes the weight of the indicator with code.
func (e *Editor) SetWeight(code string, weight float64) (history.Action, error) {
	code = validate.SanitizeCode(code)
	if err := validate.Weight(weight); err != nil {
		return history.Action{}, err
	}
	item, _, _ := e.doc.Indicator(code)
	if item == nil {
		return history.Action{}, errors.NotFound(errors.ErrIndicatorNotFound, "indicator", code)
	}
	before := item.Weight
	if before == weight {
		return history.Action{}, errors.NewUserErrorWithField("weight", fmt.Sprint(weight),
			"Weight is unchanged",
			"Provide a different weight")
	}

	set := func(v float64) func() error {
		return func() error {
			ind, _, _ := e.doc.Indicator(code)
			if ind == nil {
				return errors.NotFound(errors.ErrIndicatorNotFound, "indicator", code)
			}
			ind.Weight = v
			return nil
		}
	}

	return e.perform(edit{
		kind:  model.KindSetWeight,
		label: fmt.Sprintf("Set weight of %s to %g", item.Name, weight),
		delta: model.WeightDelta{
			Code:   code,
			Name:   item.Name,
			Before: before,
			After:  weight,
		},
		apply:   set(weight),
		unapply: set(before),
	})
}

// checkNew validates the code and name of a new entity.
func (e *Editor) checkNew(code, name string) error {
	if err := validate.Code(code); err != nil {
		return err
	}
	return validate.Name(name)
}

// claims holds the codes taken so far by a subtree being added, per entity
// type.
type claims map[string]map[string]bool

func newClaims() claims {
	return claims{"category": {}, "indicator": {}}
}

// claim fails if code is already used in the document or earlier in the
// subtree.
func (c claims) claim(entity, code string, inDoc bool) error {
	if inDoc || c[entity][code] {
		return duplicate(entity, code)
	}
	c[entity][code] = true
	return nil
}

// checkNewCategory validates a normalized category subtree against the
// document and against codes already claimed.
func (e *Editor) checkNewCategory(c *Category, claimed claims) error {
	if err := e.checkNew(c.Code, c.Name); err != nil {
		return err
	}
	found, _, _ := e.doc.Category(c.Code)
	if err := claimed.claim("category", c.Code, found != nil); err != nil {
		return err
	}
	for _, ind := range c.Indicators {
		if err := e.checkNewIndicator(ind, claimed); err != nil {
			return err
		}
	}
	return nil
}

// checkNewIndicator validates a normalized indicator, including that each
// dataset it references exists.
func (e *Editor) checkNewIndicator(ind *Indicator, claimed claims) error {
	if err := e.checkNew(ind.Code, ind.Name); err != nil {
		return err
	}
	if err := validate.Weight(ind.Weight); err != nil {
		return err
	}
	found, _, _ := e.doc.Indicator(ind.Code)
	if err := claimed.claim("indicator", ind.Code, found != nil); err != nil {
		return err
	}
	for _, ds := range ind.Datasets {
		if d, _ := e.doc.Dataset(ds); d == nil {
			return errors.NotFound(errors.ErrDatasetNotFound, "dataset", ds)
		}
	}
	return nil
}

func indicatorCode(ind *Indicator) string { return ind.Code }
func categoryCode(c *Category) string     { return c.Code }
