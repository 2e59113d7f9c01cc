// Package evidence holds the structured record of which normalized values
// made a program rule match.
//
// Every match category has its own payload type. A Set collects at most one
// payload per category in first-insertion order, which is also the order the
// categories appear in serialized output.
package evidence

import (
	"bytes"
	"encoding/json"
)

// Category identifies what matched against what.
type Category int

const (
	CategoryAwardsToDesc Category = iota + 1
	CategoryAwardsToFundingSource
	CategoryNofosToDesc
	CategoryNofosToFundingSource
	CategoryAcronymToDesc
	CategoryAcronymToTitle
	CategoryNameToDesc
	CategoryNameToTitle
)

var categoryNames = map[Category]string{
	CategoryAwardsToDesc:          "awards_to_desc",
	CategoryAwardsToFundingSource: "awards_to_fs",
	CategoryNofosToDesc:           "nofos_to_desc",
	CategoryNofosToFundingSource:  "nofos_to_fs",
	CategoryAcronymToDesc:         "acr_to_desc",
	CategoryAcronymToTitle:        "acr_to_title",
	CategoryNameToDesc:            "name_to_desc",
	CategoryNameToTitle:           "name_to_title",
}

// String returns the serialized category key, e.g. "awards_to_desc".
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Evidence is one category's payload. The set of implementations is closed.
type Evidence interface {
	Category() Category
	evidence()
}

// AwardsToDescription lists every program award found in the dataset description.
type AwardsToDescription struct {
	Awards      []string `json:"program_awards"`
	Description string   `json:"dataset_description"`
}

// AwardFundingSource is one award found inside one funding-source token.
type AwardFundingSource struct {
	Award         string `json:"program_award"`
	FundingSource string `json:"dataset_funding_source"`
}

// AwardsToFundingSource holds award/funding-source pairs. Under last-match-wins
// accumulation it holds exactly one pair.
type AwardsToFundingSource struct {
	Matches []AwardFundingSource
}

// NofosToDescription lists every program NOFO found in the dataset description.
type NofosToDescription struct {
	NOFOs       []string `json:"nofos"`
	Description string   `json:"dataset_description"`
}

// NofoFundingSource is one NOFO found inside one funding-source token.
type NofoFundingSource struct {
	NOFO          string `json:"program_nofo"`
	FundingSource string `json:"dataset_funding_source"`
}

// NofosToFundingSource holds NOFO/funding-source pairs. Under last-match-wins
// accumulation it holds exactly one pair.
type NofosToFundingSource struct {
	Matches []NofoFundingSource
}

type AcronymToDescription struct {
	Acronym     string `json:"program_acronym"`
	Description string `json:"dataset_description"`
}

type AcronymToTitle struct {
	Acronym string `json:"program_acronym"`
	Title   string `json:"dataset_title"`
}

type NameToDescription struct {
	Name        string `json:"program_name"`
	Description string `json:"dataset_description"`
}

type NameToTitle struct {
	Name  string `json:"program_name"`
	Title string `json:"dataset_title"`
}

func (*AwardsToDescription) Category() Category   { return CategoryAwardsToDesc }
func (*AwardsToFundingSource) Category() Category { return CategoryAwardsToFundingSource }
func (*NofosToDescription) Category() Category    { return CategoryNofosToDesc }
func (*NofosToFundingSource) Category() Category  { return CategoryNofosToFundingSource }
func (*AcronymToDescription) Category() Category  { return CategoryAcronymToDesc }
func (*AcronymToTitle) Category() Category        { return CategoryAcronymToTitle }
func (*NameToDescription) Category() Category     { return CategoryNameToDesc }
func (*NameToTitle) Category() Category           { return CategoryNameToTitle }

func (*AwardsToDescription) evidence()   {}
func (*AwardsToFundingSource) evidence() {}
func (*NofosToDescription) evidence()    {}
func (*NofosToFundingSource) evidence()  {}
func (*AcronymToDescription) evidence()  {}
func (*AcronymToTitle) evidence()        {}
func (*NameToDescription) evidence()     {}
func (*NameToTitle) evidence()           {}

// MarshalJSON encodes the pairs as a bare array.
func (e *AwardsToFundingSource) MarshalJSON() ([]byte, error) {
	if e.Matches == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e.Matches)
}

// MarshalJSON encodes the pairs as a bare array.
func (e *NofosToFundingSource) MarshalJSON() ([]byte, error) {
	if e.Matches == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e.Matches)
}

// Set is an insertion-ordered collection holding one payload per category.
// The zero value is empty and ready to use.
type Set struct {
	order []Category
	items map[Category]Evidence
}

// Put stores e under its category. Replacing an existing payload keeps the
// category's original position.
func (s *Set) Put(e Evidence) {
	if s.items == nil {
		s.items = make(map[Category]Evidence)
	}
	c := e.Category()
	if _, ok := s.items[c]; !ok {
		s.order = append(s.order, c)
	}
	s.items[c] = e
}

// Get returns the payload stored for c.
func (s Set) Get(c Category) (Evidence, bool) {
	e, ok := s.items[c]
	return e, ok
}

// Has reports whether c matched.
func (s Set) Has(c Category) bool {
	_, ok := s.items[c]
	return ok
}

// Len returns the number of categories present.
func (s Set) Len() int { return len(s.order) }

// Empty reports whether no category matched.
func (s Set) Empty() bool { return len(s.order) == 0 }

// Categories returns the matched categories in insertion order.
func (s Set) Categories() []Category {
	out := make([]Category, len(s.order))
	copy(out, s.order)
	return out
}

// All returns the payloads in insertion order.
func (s Set) All() []Evidence {
	out := make([]Evidence, 0, len(s.order))
	for _, c := range s.order {
		out = append(out, s.items[c])
	}
	return out
}

// MarshalJSON encodes the set as an object keyed by category name, in
// insertion order.
func (s Set) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.String())
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.items[c])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
