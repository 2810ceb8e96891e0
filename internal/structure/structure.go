// Package structure holds the indicator structure document and the editor
// that records every change to it in an edit history.
package structure

import (
	"github.com/manav03panchal/indexlog/internal/errors"
	"github.com/manav03panchal/indexlog/internal/validate"
)

// Structure is an indicator structure: pillars containing categories
// containing indicators, plus a flat list of datasets the indicators
// reference by code.
type Structure struct {
	Name     string     `json:"name" yaml:"name"`
	Pillars  []*Pillar  `json:"pillars" yaml:"pillars"`
	Datasets []*Dataset `json:"datasets,omitempty" yaml:"datasets,omitempty"`
}

// Pillar is the top level of the tree.
type Pillar struct {
	Code       string      `json:"code" yaml:"code"`
	Name       string      `json:"name" yaml:"name"`
	Categories []*Category `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// Category groups indicators within a pillar.
type Category struct {
	Code       string       `json:"code" yaml:"code"`
	Name       string       `json:"name" yaml:"name"`
	Indicators []*Indicator `json:"indicators,omitempty" yaml:"indicators,omitempty"`
}

// Indicator is a scored measure. Datasets lists dataset codes.
type Indicator struct {
	Code     string   `json:"code" yaml:"code"`
	Name     string   `json:"name" yaml:"name"`
	Weight   float64  `json:"weight,omitempty" yaml:"weight,omitempty"`
	Datasets []string `json:"datasets,omitempty" yaml:"datasets,omitempty"`
}

// Dataset is a data source indicators draw from.
type Dataset struct {
	Code   string `json:"code" yaml:"code"`
	Name   string `json:"name" yaml:"name"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Stats counts the entities in a structure.
type Stats struct {
	Pillars    int `json:"pillars"`
	Categories int `json:"categories"`
	Indicators int `json:"indicators"`
	Datasets   int `json:"datasets"`
}

// Stats counts the entities in the structure.
func (s *Structure) Stats() Stats {
	st := Stats{Pillars: len(s.Pillars), Datasets: len(s.Datasets)}
	for _, p := range s.Pillars {
		st.Categories += len(p.Categories)
		for _, c := range p.Categories {
			st.Indicators += len(c.Indicators)
		}
	}
	return st
}

// Pillar returns the pillar with code and its position, or nil and -1.
func (s *Structure) Pillar(code string) (*Pillar, int) {
	for i, p := range s.Pillars {
		if p.Code == code {
			return p, i
		}
	}
	return nil, -1
}

// Category returns the category with code, its pillar, and its position
// within the pillar, or nil, nil, -1.
func (s *Structure) Category(code string) (*Category, *Pillar, int) {
	for _, p := range s.Pillars {
		for i, c := range p.Categories {
			if c.Code == code {
				return c, p, i
			}
		}
	}
	return nil, nil, -1
}

// Indicator returns the indicator with code, its category, and its position
// within the category, or nil, nil, -1.
func (s *Structure) Indicator(code string) (*Indicator, *Category, int) {
	for _, p := range s.Pillars {
		for _, c := range p.Categories {
			for i, ind := range c.Indicators {
				if ind.Code == code {
					return ind, c, i
				}
			}
		}
	}
	return nil, nil, -1
}

// Dataset returns the dataset with code and its position, or nil and -1.
func (s *Structure) Dataset(code string) (*Dataset, int) {
	for i, d := range s.Datasets {
		if d.Code == code {
			return d, i
		}
	}
	return nil, -1
}

// Indicators returns every indicator in tree order.
func (s *Structure) Indicators() []*Indicator {
	var out []*Indicator
	for _, p := range s.Pillars {
		for _, c := range p.Categories {
			out = append(out, c.Indicators...)
		}
	}
	return out
}

// Clone returns a deep copy.
func (s *Structure) Clone() *Structure {
	out := &Structure{Name: s.Name}
	if s.Pillars != nil {
		out.Pillars = make([]*Pillar, len(s.Pillars))
		for i, p := range s.Pillars {
			out.Pillars[i] = p.clone()
		}
	}
	if s.Datasets != nil {
		out.Datasets = make([]*Dataset, len(s.Datasets))
		for i, d := range s.Datasets {
			cp := *d
			out.Datasets[i] = &cp
		}
	}
	return out
}

func (p *Pillar) clone() *Pillar {
	out := &Pillar{Code: p.Code, Name: p.Name}
	if p.Categories != nil {
		out.Categories = make([]*Category, len(p.Categories))
		for i, c := range p.Categories {
			out.Categories[i] = c.clone()
		}
	}
	return out
}

func (c *Category) clone() *Category {
	out := &Category{Code: c.Code, Name: c.Name}
	if c.Indicators != nil {
		out.Indicators = make([]*Indicator, len(c.Indicators))
		for i, ind := range c.Indicators {
			out.Indicators[i] = ind.clone()
		}
	}
	return out
}

func (ind *Indicator) clone() *Indicator {
	out := *ind
	if ind.Datasets != nil {
		out.Datasets = append([]string(nil), ind.Datasets...)
	}
	return &out
}

// Normalize trims names and upper-cases codes throughout the structure.
func (s *Structure) Normalize() {
	s.Name = validate.SanitizeName(s.Name)
	for _, p := range s.Pillars {
		p.normalize()
	}
	for _, d := range s.Datasets {
		d.Code = validate.SanitizeCode(d.Code)
		d.Name = validate.SanitizeName(d.Name)
	}
}

func (p *Pillar) normalize() {
	p.Code = validate.SanitizeCode(p.Code)
	p.Name = validate.SanitizeName(p.Name)
	for _, c := range p.Categories {
		c.normalize()
	}
}

func (c *Category) normalize() {
	c.Code = validate.SanitizeCode(c.Code)
	c.Name = validate.SanitizeName(c.Name)
	for _, ind := range c.Indicators {
		ind.normalize()
	}
}

func (ind *Indicator) normalize() {
	ind.Code = validate.SanitizeCode(ind.Code)
	ind.Name = validate.SanitizeName(ind.Name)
	for i, ds := range ind.Datasets {
		ind.Datasets[i] = validate.SanitizeCode(ds)
	}
}

// Validate checks codes, names, and weights, that codes are unique per
// entity type, and that every dataset reference resolves.
func (s *Structure) Validate() error {
	seen := map[string]map[string]bool{
		"pillar":    {},
		"category":  {},
		"indicator": {},
		"dataset":   {},
	}
	check := func(entity, code, name string) error {
		if err := validate.Code(code); err != nil {
			return err
		}
		if err := validate.Name(name); err != nil {
			return err
		}
		if seen[entity][code] {
			return duplicate(entity, code)
		}
		seen[entity][code] = true
		return nil
	}

	for _, d := range s.Datasets {
		if err := check("dataset", d.Code, d.Name); err != nil {
			return err
		}
	}
	for _, p := range s.Pillars {
		if err := check("pillar", p.Code, p.Name); err != nil {
			return err
		}
		for _, c := range p.Categories {
			if err := check("category", c.Code, c.Name); err != nil {
				return err
			}
			for _, ind := range c.Indicators {
				if err := check("indicator", ind.Code, ind.Name); err != nil {
					return err
				}
				if err := validate.Weight(ind.Weight); err != nil {
					return err
				}
				for _, ds := range ind.Datasets {
					if !seen["dataset"][ds] {
						return errors.NotFound(errors.ErrDatasetNotFound, "dataset", ds)
					}
				}
			}
		}
	}
	return nil
}

func duplicate(entity, code string) *errors.UserError {
	return &errors.UserError{
		Message:    "A " + entity + " with this code already exists",
		Suggestion: "Choose a different code",
		Field:      entity,
		Value:      code,
		Err:        errors.ErrDuplicateCode,
	}
}
