package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Listing is the structured record extracted from a posting's avisoInfo
// block. A nil field means the field's pattern did not match; it is never
// stood in for by an empty string or a zero.
type Listing struct {
	URL string `json:"url,omitempty"`

	ID              *string        `json:"id,omitempty"`
	Title           *string        `json:"title,omitempty"`
	Price           *string        `json:"price,omitempty"`
	Expenses        *string        `json:"expenses,omitempty"`
	Currency        *string        `json:"currency,omitempty"`
	Location        *string        `json:"location,omitempty"`
	PropertyType    *string        `json:"property_type,omitempty"`
	Bedrooms        *string        `json:"bedrooms,omitempty"`
	Bathrooms       *string        `json:"bathrooms,omitempty"`
	SurfaceTotal    *string        `json:"surface_total,omitempty"`
	SurfaceCovered  *string        `json:"surface_covered,omitempty"`
	Floor           *string        `json:"floor,omitempty"`
	Description     *string        `json:"description,omitempty"`
	Address         *string        `json:"address,omitempty"`
	PublisherID     *string        `json:"publisher_id,omitempty"`
	PublisherName   *string        `json:"publisher_name,omitempty"`
	WhatsApp        *string        `json:"whatsapp,omitempty"`
	GeneralFeatures *FeatureGroups `json:"general_features,omitempty"`
	MainFeatures    *FeatureSet    `json:"main_features,omitempty"`
}

// Feature is one labelled attribute of a posting, e.g. {"label":"baño","value":"2"}.
// Value is whatever the page carried: a string, a number or null.
type Feature struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// ValueString renders Value as text. ok is false for null.
func (f Feature) ValueString() (string, bool) {
	switch v := f.Value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return fmt.Sprint(v), true
	}
}

// FeatureSet maps a feature code (e.g. "CFT5") to its feature. When the raw
// object text could not be decoded, Items is nil and Raw keeps the text.
type FeatureSet struct {
	Items map[string]Feature
	Raw   string
}

// FeatureGroups maps a category (e.g. "Ambientes") to an index→feature map.
// Raw is set instead of Groups when decoding failed.
type FeatureGroups struct {
	Groups map[string]map[string]Feature
	Raw    string
}

func (s FeatureSet) MarshalJSON() ([]byte, error) {
	if s.Items == nil {
		return json.Marshal(s.Raw)
	}
	return json.Marshal(s.Items)
}

func (s *FeatureSet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &s.Raw)
	}
	return json.Unmarshal(data, &s.Items)
}

func (g FeatureGroups) MarshalJSON() ([]byte, error) {
	if g.Groups == nil {
		return json.Marshal(g.Raw)
	}
	return json.Marshal(g.Groups)
}

func (g *FeatureGroups) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &g.Raw)
	}
	return json.Unmarshal(data, &g.Groups)
}

// Labels returns every feature label in the named category, or in all
// categories when category is empty.
func (g *FeatureGroups) Labels(category string) []string {
	if g == nil {
		return nil
	}
	var labels []string
	for name, group := range g.Groups {
		if category != "" && name != category {
			continue
		}
		for _, f := range group {
			labels = append(labels, f.Label)
		}
	}
	return labels
}

// JSON returns the stable, indented serialization of the listing. Field order
// follows the struct and map keys are sorted, so equal listings produce equal
// bytes.
func (l *Listing) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return nil, fmt.Errorf("listing: encode: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

var digitRun = regexp.MustCompile(`\d+`)

// Text returns the dereferenced value of an optional field, or "" when absent.
func Text(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// FirstInt returns the first run of digits in an optional field.
func FirstInt(p *string) (int, bool) {
	if p == nil {
		return 0, false
	}
	m := digitRun.FindString(*p)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Amount parses a money string such as "USD 150.000" or "$ 90,000" into its
// numeric value. Thousands separators are dropped. A last '.' or ',' followed
// by exactly two digits is read as the decimal separator ("90000.50",
// "1.234,56").
func Amount(p *string) (float64, bool) {
	if p == nil {
		return 0, false
	}
	whole, cents := *p, ""
	if i := strings.LastIndexAny(whole, ".,"); i >= 0 && isCents(whole[i+1:]) {
		whole, cents = whole[:i], whole[i+1:i+3]
	}

	var digits strings.Builder
	for _, r := range whole {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	if cents != "" {
		digits.WriteString("." + cents)
	}
	v, err := strconv.ParseFloat(digits.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// isCents reports whether s starts with exactly two digits and holds no
// other digit.
func isCents(s string) bool {
	if len(s) < 2 || !isDigit(s[0]) || !isDigit(s[1]) {
		return false
	}
	for i := 2; i < len(s); i++ {
		if isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
