package changelog

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/manav03panchal/indexlog/internal/model"
)

// none is shown for absent values.
const none = "(none)"

// TimeLayout is the fixed display layout for change timestamps.
const TimeLayout = "2006-01-02 15:04"

// FormatKind turns a kind into a title: "add-indicator" becomes "Add Indicator".
func FormatKind(k model.Kind) string {
	words := strings.FieldsFunc(string(k), func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	if len(words) == 0 {
		return "Unknown"
	}
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// FormatRef renders an item reference. The code is required; without it
// the reference is empty.
func FormatRef(name, code string) string {
	switch {
	case code == "":
		return ""
	case name == "":
		return code
	default:
		return fmt.Sprintf("%s (%s)", name, code)
	}
}

// FormatValue renders any value for a detail line. It never panics:
// nil values and empty strings render as "(none)" and nested structures as
// compact JSON.
func FormatValue(v any) string {
	if isNil(v) {
		return none
	}
	switch x := v.(type) {
	case string:
		if x == "" {
			return none
		}
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []string:
		if len(x) == 0 {
			return none
		}
		return strings.Join(x, ", ")
	case fmt.Stringer:
		return x.String()
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	if string(data) == "null" {
		return none
	}
	return string(data)
}

// isNil reports whether v is nil or a nil pointer, map, slice, func,
// channel, or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// parentRef renders "Name (CODE)" for a parent, falling back to whichever
// half is present.
func parentRef(name, code string) string {
	if ref := FormatRef(name, code); ref != "" {
		return ref
	}
	if name != "" {
		return name
	}
	return none
}

// position renders a zero-based index as a one-based position.
func position(i int) string {
	return "#" + strconv.Itoa(i+1)
}

// details derives the detail lines for a delta.
func details(d model.Delta) []Detail {
	switch x := model.Resolve(d).(type) {
	case nil:
		return nil
	case model.IndicatorDelta:
		return []Detail{
			{"Code", FormatValue(x.Code)},
			{"Name", FormatValue(x.Name)},
			{"Category", parentRef(x.CategoryName, x.CategoryCode)},
			{"Position", position(x.Index)},
			{"Weight", FormatValue(x.Weight)},
			{"Datasets", FormatValue(x.Datasets)},
		}
	case model.CategoryDelta:
		return []Detail{
			{"Code", FormatValue(x.Code)},
			{"Name", FormatValue(x.Name)},
			{"Pillar", parentRef(x.PillarName, x.PillarCode)},
			{"Position", position(x.Index)},
			{"Indicators", FormatValue(x.Indicators)},
		}
	case model.PillarDelta:
		return []Detail{
			{"Code", FormatValue(x.Code)},
			{"Name", FormatValue(x.Name)},
			{"Position", position(x.Index)},
			{"Categories", FormatValue(x.Categories)},
		}
	case model.DatasetDelta:
		return []Detail{
			{"Code", FormatValue(x.Code)},
			{"Name", FormatValue(x.Name)},
			{"Source", FormatValue(x.Source)},
			{"Indicator", FormatValue(x.IndicatorCode)},
			{"Linked Indicators", FormatValue(x.LinkedIndicators)},
		}
	case model.MoveDelta:
		return []Detail{
			{"Entity", FormatValue(string(x.Entity))},
			{"From", parentRef(x.FromParentName, x.FromParent) + " " + position(x.FromIndex)},
			{"To", parentRef(x.ToParentName, x.ToParent) + " " + position(x.ToIndex)},
		}
	case model.RenameDelta:
		return []Detail{
			{"Entity", FormatValue(string(x.Entity))},
			{"Code", FormatValue(x.Code)},
			{"Before", FormatValue(x.Before)},
			{"After", FormatValue(x.After)},
		}
	case model.WeightDelta:
		return []Detail{
			{"Code", FormatValue(x.Code)},
			{"Before", FormatValue(x.Before)},
			{"After", FormatValue(x.After)},
		}
	case model.CompositeDelta:
		out := []Detail{{"Steps", strconv.Itoa(len(x.Steps))}}
		if x.ParentCode != "" || x.ParentName != "" {
			out = append([]Detail{{"Parent", parentRef(x.ParentName, x.ParentCode)}}, out...)
		}
		return out
	case model.RawDelta:
		return rawDetails(x)
	default:
		return opaqueDetails(d)
	}
}

// rawDetails renders an untyped delta, one line per key in sorted order.
func rawDetails(m map[string]any) []Detail {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Detail, 0, len(keys))
	for _, k := range keys {
		out = append(out, Detail{Field: k, Value: FormatValue(m[k])})
	}
	return out
}

// opaqueDetails renders a Delta implementation this package does not know
// by round-tripping it through JSON.
func opaqueDetails(d model.Delta) []Detail {
	data, err := json.Marshal(d)
	if err != nil {
		return []Detail{{Field: "Delta", Value: fmt.Sprintf("%v", d)}}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return []Detail{{Field: "Delta", Value: string(data)}}
	}
	return rawDetails(m)
}

// Candidate fields for untyped deltas, most specific first.
var (
	rawCodeFields = []string{
		"indicator_code", "indicatorCode",
		"dataset_code", "datasetCode",
		"category_code", "categoryCode",
		"pillar_code", "pillarCode",
		"code", "id",
	}
	rawNameFields = []string{
		"name",
		"indicator_name", "indicatorName",
		"new_name", "newName",
		"after", "title", "label",
		"old_name", "oldName",
	}
	rawParentFields = []string{
		"category_name", "categoryName",
		"parent_name", "parentName",
		"category_code", "categoryCode",
	}
)

// rawField returns the first candidate key holding a non-empty scalar.
func rawField(m map[string]any, keys []string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		}
	}
	return ""
}

// reference derives the "Name (CODE)" item reference for a delta.
func reference(d model.Delta) string {
	d = model.Resolve(d)
	if c, ok := d.(model.CompositeDelta); ok {
		return compositeReference(c)
	}
	return FormatRef(refParts(d))
}

// refParts picks the name and code that identify a delta's item.
func refParts(d model.Delta) (name, code string) {
	switch x := model.Resolve(d).(type) {
	case model.IndicatorDelta:
		return x.Name, x.Code
	case model.CategoryDelta:
		return x.Name, x.Code
	case model.PillarDelta:
		return x.Name, x.Code
	case model.DatasetDelta:
		return x.Name, x.Code
	case model.MoveDelta:
		return x.Name, x.Code
	case model.RenameDelta:
		name = x.After
		if name == "" {
			name = x.Before
		}
		return name, x.Code
	case model.WeightDelta:
		return x.Name, x.Code
	case model.RawDelta:
		return rawField(x, rawNameFields), rawField(x, rawCodeFields)
	}
	return "", ""
}

// compositeReference uses the first sub-edit with a code and appends the
// parent category as context, unless that sub-edit is the parent itself.
func compositeReference(c model.CompositeDelta) string {
	var name, code string
	for _, s := range c.Steps {
		if n, cd := refParts(s.Delta); cd != "" {
			name, code = n, cd
			break
		}
	}
	if code == "" {
		return FormatRef(c.ParentName, c.ParentCode)
	}

	ref := FormatRef(name, code)
	if c.ParentCode != "" && code == c.ParentCode {
		return ref
	}

	parent := c.ParentName
	if parent == "" {
		parent = c.ParentCode
	}
	if parent == "" {
		for _, s := range c.Steps {
			if raw, ok := model.Resolve(s.Delta).(model.RawDelta); ok {
				if p := rawField(raw, rawParentFields); p != "" {
					parent = p
					break
				}
			}
		}
	}
	if parent == "" {
		return ref
	}
	return ref + " in " + parent
}
