package model

// NA is the placeholder substituted for every missing, null, or empty
// display value before it reaches the presentation layer.
const NA = "N/A"

// RawData is a decoded provider response document. Providers return this
// shape regardless of where the data came from, so the processing layer only
// ever has to understand one schema.
type RawData map[string]any

// Section returns a nested object of the raw document, or nil if the key is
// missing or not an object.
func (r RawData) Section(key string) map[string]any {
	if r == nil {
		return nil
	}
	sub, _ := r[key].(map[string]any)
	return sub
}

// FieldMap is one display category: field label to value. Values are
// strings, booleans, or the NA sentinel.
type FieldMap map[string]any

// LookupResult is the normalized output of a single lookup, ready for
// display or export. It is created fresh per request and never persisted.
type LookupResult struct {
	Basic      FieldMap `json:"basic,omitempty"`
	Connection FieldMap `json:"connection,omitempty"`
	Timezone   FieldMap `json:"timezone,omitempty"`
	Security   FieldMap `json:"security,omitempty"`
	Currency   FieldMap `json:"currency,omitempty"`
	Flag       FieldMap `json:"flag,omitempty"`
}

// Category pairs a category name with its fields, preserving the fixed
// display order.
type Category struct {
	Name   string
	Fields FieldMap
}

// Categories returns the result's categories in display order. Empty
// categories are skipped.
func (r *LookupResult) Categories() []Category {
	all := []Category{
		{"basic", r.Basic},
		{"connection", r.Connection},
		{"timezone", r.Timezone},
		{"security", r.Security},
		{"currency", r.Currency},
		{"flag", r.Flag},
	}
	var out []Category
	for _, c := range all {
		if len(c.Fields) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// IsEmpty reports whether the result carries no data at all.
func (r *LookupResult) IsEmpty() bool {
	return len(r.Categories()) == 0
}
