// Package reconcile projects a candidate's extracted data into display fields
// with a resolved value and confidence tier for each.
package reconcile

import (
	"encoding/json"
	"math"
	"strings"

	"docintake/internal/model"
)

// NotAvailable is shown for a field with no extracted value.
const NotAvailable = "Not available"

// Field names, in display order.
const (
	FullName   = "fullName"
	Email      = "email"
	Phone      = "phone"
	Location   = "location"
	Company    = "company"
	Position   = "position"
	Experience = "experience"
	Skills     = "skills"
	Degree     = "degree"
	University = "university"
)

type fieldDef struct {
	name       string
	label      string
	confidence float64
}

// fields is the only defaulting table; Resolve and Present both read it.
var fields = []fieldDef{
	{FullName, "Full Name", 0.95},
	{Email, "Email", 0.98},
	{Phone, "Phone", 0.85},
	{Location, "Location", 0.75},
	{Company, "Current Company", 0.92},
	{Position, "Position", 0.88},
	{Experience, "Experience", 0.70},
	{Skills, "Skills", 0.82},
	{Degree, "Degree", 0.90},
	{University, "University", 0.87},
}

// Fields returns the tracked field names in display order.
func Fields() []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.name
	}
	return out
}

// DefaultConfidence returns the fallback confidence for field.
func DefaultConfidence(field string) (float64, bool) {
	for _, f := range fields {
		if f.name == field {
			return f.confidence, true
		}
	}
	return 0, false
}

// Value is either a single text or, for skills, a list.
type Value struct {
	Text string
	List []string
}

// IsList reports whether v carries a list.
func (v Value) IsList() bool { return v.List != nil }

func (v Value) String() string {
	if v.IsList() {
		return strings.Join(v.List, ", ")
	}
	return v.Text
}

// MarshalJSON emits a JSON array for lists and a string otherwise.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsList() {
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Text)
}

// Tier classifies a confidence score.
type Tier string

const (
	TierHigh   Tier = "High"
	TierMedium Tier = "Medium"
	TierLow    Tier = "Low"
)

// Classify maps score to a tier. Lower bounds are inclusive.
func Classify(score float64) Tier {
	switch {
	case score >= 0.8:
		return TierHigh
	case score >= 0.6:
		return TierMedium
	default:
		return TierLow
	}
}

// Weight is the proportional bar width for score, clamped to [0, 1].
func Weight(score float64) float64 {
	return math.Max(0, math.Min(1, score))
}

// Percent renders score as a whole percentage.
func Percent(score float64) int {
	return int(math.Round(score * 100))
}

// DisplayField is one resolved row of a DisplayModel.
type DisplayField struct {
	Name       string  `json:"name"`
	Label      string  `json:"label"`
	Value      Value   `json:"value"`
	Confidence float64 `json:"confidence"`
	Tier       Tier    `json:"tier"`
	Weight     float64 `json:"weight"`
	Percent    int     `json:"percent"`
}

// DisplayModel is the ten resolved fields of a candidate, in display order.
type DisplayModel struct {
	CandidateID model.ID       `json:"candidate_id"`
	Fields      []DisplayField `json:"fields"`
}

// Field returns the named field.
func (d DisplayModel) Field(name string) (DisplayField, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return DisplayField{}, false
}

// Present resolves every tracked field of c. It does not modify c.
func Present(c model.Candidate) DisplayModel {
	dm := DisplayModel{CandidateID: c.ID, Fields: make([]DisplayField, 0, len(fields))}
	for _, f := range fields {
		v, score := Resolve(c, f.name)
		dm.Fields = append(dm.Fields, DisplayField{
			Name:       f.name,
			Label:      f.label,
			Value:      v,
			Confidence: score,
			Tier:       Classify(score),
			Weight:     Weight(score),
			Percent:    Percent(score),
		})
	}
	return dm
}

// Resolve returns the display value and confidence for field. An absent,
// null or non-positive confidence falls back to the field default. Unknown
// fields resolve to NotAvailable with zero confidence.
func Resolve(c model.Candidate, field string) (Value, float64) {
	def, known := DefaultConfidence(field)
	if !known {
		return Value{Text: NotAvailable}, 0
	}

	var ed model.ExtractedData
	if c.ExtractedData != nil {
		ed = *c.ExtractedData
	}

	score := def
	if s, ok := ed.Confidence[field]; ok && s > 0 {
		score = s
	}

	switch field {
	case FullName:
		return text(ed.FullName, c.Name), score
	case Email:
		return text(c.Email), score
	case Company:
		return text(c.Company), score
	case Phone:
		return text(ed.Phone), score
	case Location:
		return text(ed.Location), score
	case Position:
		return text(ed.Position), score
	case Experience:
		return text(ed.Experience), score
	case Degree:
		return text(ed.Degree), score
	case University:
		return text(ed.University), score
	case Skills:
		if len(ed.Skills) == 0 {
			return Value{Text: NotAvailable}, score
		}
		return Value{List: append([]string(nil), ed.Skills...)}, score
	}
	return Value{Text: NotAvailable}, score
}

// text picks the first non-blank candidate value.
func text(vals ...string) Value {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return Value{Text: v}
		}
	}
	return Value{Text: NotAvailable}
}
