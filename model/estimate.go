package model

import (
	"encoding/json"
)

// Document is an estimate as posted by the estimating client. Members that
// are not modeled here are kept in Extra and written back on marshal.
type Document struct {
	Categories    []Category     `json:"categories,omitempty"`
	EstimatesInfo []EstimateInfo `json:"estimatesInfo,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// EstimateInfo carries estimate-wide values.
type EstimateInfo struct {
	// SquareFootage is a json.Number, string or nil as decoded.
	SquareFootage any `json:"squareFootage,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Category groups subcategories and carries the category total.
type Category struct {
	Subcategories  []Subcategory `json:"subcategories,omitempty"`
	Total          any           `json:"total,omitempty"`
	TotalFormatted string        `json:"totalFormatted"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Subcategory groups line items.
type Subcategory struct {
	Items []Item `json:"items,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Item is a single estimate line.
type Item struct {
	LongDescription      string `json:"longDescription"`
	InternalInstructions string `json:"internalInstructions"`
	InternalNotes        string `json:"internalNotes"`
	// CatelogID is usually a catalog key (string or number); "Custom" marks
	// items authored by hand.
	CatelogID any `json:"catelogId,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Attr returns an unmodeled member, such as "name", as display text.
func (d Document) Attr(name string) string { return attr(d.Extra, name) }

// Attr returns an unmodeled member as display text.
func (e EstimateInfo) Attr(name string) string { return attr(e.Extra, name) }

// Attr returns an unmodeled member as display text.
func (c Category) Attr(name string) string { return attr(c.Extra, name) }

// Attr returns an unmodeled member as display text.
func (s Subcategory) Attr(name string) string { return attr(s.Extra, name) }

// Attr returns an unmodeled member as display text.
func (it Item) Attr(name string) string { return attr(it.Extra, name) }

func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	extra, err := decodeObject(data, (*plain)(d), "categories", "estimatesInfo")
	d.Extra = extra
	return err
}

func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	return encodeObject(plain(d), d.Extra)
}

func (e *EstimateInfo) UnmarshalJSON(data []byte) error {
	type plain EstimateInfo
	extra, err := decodeObject(data, (*plain)(e), "squareFootage")
	e.Extra = extra
	return err
}

func (e EstimateInfo) MarshalJSON() ([]byte, error) {
	type plain EstimateInfo
	return encodeObject(plain(e), e.Extra)
}

func (c *Category) UnmarshalJSON(data []byte) error {
	type plain Category
	extra, err := decodeObject(data, (*plain)(c), "subcategories", "total", "totalFormatted")
	c.Extra = extra
	return err
}

func (c Category) MarshalJSON() ([]byte, error) {
	type plain Category
	return encodeObject(plain(c), c.Extra)
}

func (s *Subcategory) UnmarshalJSON(data []byte) error {
	type plain Subcategory
	extra, err := decodeObject(data, (*plain)(s), "items")
	s.Extra = extra
	return err
}

func (s Subcategory) MarshalJSON() ([]byte, error) {
	type plain Subcategory
	return encodeObject(plain(s), s.Extra)
}

func (it *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	extra, err := decodeObject(data, (*plain)(it),
		"longDescription", "internalInstructions", "internalNotes", "catelogId")
	it.Extra = extra
	return err
}

func (it Item) MarshalJSON() ([]byte, error) {
	type plain Item
	return encodeObject(plain(it), it.Extra)
}
