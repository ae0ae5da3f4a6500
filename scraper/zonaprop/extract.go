package zonaprop

import (
	"encoding/json"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"zonaprop-watcher/models"
)

// scalarValue matches a JSON string or number in normalized text.
const scalarValue = `("(?:[^"\\]|\\.)*"|-?\d+(?:\.\d+)?)`

var (
	nameValue        = regexp.MustCompile(`"name"\s*:\s*` + scalarValue)
	currencyValue    = regexp.MustCompile(`"currency"\s*:\s*` + scalarValue)
	descriptionField = regexp.MustCompile(`^"description"\s*:\s*([\s\S]*?)\s*,?\s*"address"\s*:`)
	literalInValue   = regexp.MustCompile(`"(null|true|false)"(\s*[,}\]])`)

	generalFeaturesKey = keyMarker("generalFeatures")
	mainFeaturesKey    = keyMarker("mainFeatures")
	descriptionKey     = keyMarker("description")
)

// fieldRule finds one field of a listing. Rules are independent of each
// other: a rule that does not match leaves only its own field unset.
type fieldRule struct {
	name string
	find func(text string) (string, bool)
	set  func(l *models.Listing, v string)
}

var fieldRules = []fieldRule{
	{"id", keyValue("idAviso"), func(l *models.Listing, v string) { l.ID = &v }},
	{"title", keyValue("postingTitle"), func(l *models.Listing, v string) { l.Title = &v }},
	{"price", keyValue("price"), func(l *models.Listing, v string) { l.Price = &v }},
	{"expenses", keyValue("expenses"), func(l *models.Listing, v string) { l.Expenses = &v }},
	{"currency", within("pricesData", currencyValue), func(l *models.Listing, v string) { l.Currency = &v }},
	{"location", within("location", nameValue), func(l *models.Listing, v string) { l.Location = &v }},
	{"property_type", within("realEstateType", nameValue), func(l *models.Listing, v string) { l.PropertyType = &v }},
	{"bedrooms", labelled("dorm."), func(l *models.Listing, v string) { l.Bedrooms = &v }},
	{"bathrooms", labelled("baño"), func(l *models.Listing, v string) { l.Bathrooms = &v }},
	{"surface_total", labelled("tot."), func(l *models.Listing, v string) { l.SurfaceTotal = &v }},
	{"surface_covered", labelled("cub."), func(l *models.Listing, v string) { l.SurfaceCovered = &v }},
	{"floor", keyValue("floor"), func(l *models.Listing, v string) { l.Floor = &v }},
	{"description", description, func(l *models.Listing, v string) { l.Description = &v }},
	{"address", firstOf(within("address", nameValue), keyValue("address")), func(l *models.Listing, v string) { l.Address = &v }},
	{"publisher_id", keyValue("publisherId"), func(l *models.Listing, v string) { l.PublisherID = &v }},
	{"publisher_name", within("publisher", nameValue), func(l *models.Listing, v string) { l.PublisherName = &v }},
	{"whatsapp", keyValue("whatsApp"), func(l *models.Listing, v string) { l.WhatsApp = &v }},
}

// Extract builds a Listing from an avisoInfo object literal. The literal may
// be raw or already normalized; it is normalized first either way, so
// extracting twice from the same text gives the same record.
func Extract(literal string) *models.Listing {
	text := NormalizeLiteral(literal)
	listing := &models.Listing{}

	for _, rule := range fieldRules {
		if v, ok := rule.find(text); ok {
			rule.set(listing, v)
		}
	}

	if raw, ok := objectOf(text, generalFeaturesKey); ok {
		groups := &models.FeatureGroups{}
		if err := json.Unmarshal([]byte(relaxLiterals(raw)), &groups.Groups); err != nil {
			groups.Groups = nil
			groups.Raw = raw
		}
		listing.GeneralFeatures = groups
	}

	if raw, ok := objectOf(text, mainFeaturesKey); ok {
		set := &models.FeatureSet{}
		if err := json.Unmarshal([]byte(relaxLiterals(raw)), &set.Items); err != nil {
			set.Items = nil
			set.Raw = raw
		}
		listing.MainFeatures = set
	}

	return listing
}

// keyValue matches `"key": <string|number>` anywhere in the text.
func keyValue(key string) func(string) (string, bool) {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*` + scalarValue)
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return decodeScalar(m[1])
	}
}

// within matches inner only inside the object or array stored under key.
func within(key string, inner *regexp.Regexp) func(string) (string, bool) {
	marker := keyMarker(key)
	return func(text string) (string, bool) {
		block, ok := valueOf(text, marker)
		if !ok {
			return "", false
		}
		m := inner.FindStringSubmatch(block)
		if m == nil {
			return "", false
		}
		return decodeScalar(m[1])
	}
}

// firstOf tries each finder in turn.
func firstOf(finders ...func(string) (string, bool)) func(string) (string, bool) {
	return func(text string) (string, bool) {
		for _, find := range finders {
			if v, ok := find(text); ok {
				return v, true
			}
		}
		return "", false
	}
}

// labelled matches the value of a {"label": label, ..., "value": v} feature.
// The label must come first and both must sit in the same object.
func labelled(label string) func(string) (string, bool) {
	re := regexp.MustCompile(`"label"\s*:\s*"` + regexp.QuoteMeta(label) + `"[^{}]*?"value"\s*:\s*` + scalarValue)
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return decodeScalar(m[1])
	}
}

// description decodes the string value of the description key. Only when
// the value is not a complete string token is the text up to the address
// key taken instead.
func description(text string) (string, bool) {
	loc := descriptionKey.FindStringIndex(text)
	if loc == nil {
		return "", false
	}

	if start := loc[1]; start < len(text) && text[start] == '"' {
		if end, ok := skipString(text, start); ok {
			v, ok := decodeScalar(text[start:end])
			if !ok {
				return "", false
			}
			return cleanDescription(v)
		}
	}

	m := descriptionField.FindStringSubmatch(text[loc[0]:])
	if m == nil {
		return "", false
	}
	raw := strings.TrimSpace(m[1])
	if raw == "" || raw == "null" {
		return "", false
	}
	return cleanDescription(strings.Trim(raw, `"`))
}

// cleanDescription drops markup tags and decodes entities such as &quot;.
// Line-breaking tags become newlines so words on either side stay apart.
func cleanDescription(s string) (string, bool) {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			out := strings.TrimSpace(b.String())
			return out, out != ""
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br", "p", "div", "li":
				b.WriteByte('\n')
			}
		}
	}
}

func keyMarker(key string) *regexp.Regexp {
	return regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*`)
}

// valueOf returns the bracketed object or array following the first key
// marker that has one.
func valueOf(text string, marker *regexp.Regexp) (string, bool) {
	for _, loc := range marker.FindAllStringIndex(text, -1) {
		if block, ok := balancedAt(text, loc[1]); ok {
			return block, true
		}
	}
	return "", false
}

// objectOf is valueOf restricted to objects.
func objectOf(text string, marker *regexp.Regexp) (string, bool) {
	block, ok := valueOf(text, marker)
	if !ok || block[0] != '{' {
		return "", false
	}
	return block, true
}

// relaxLiterals re-normalizes nested feature text and turns the quoted
// "null", "true" and "false" values the site emits into JSON literals.
func relaxLiterals(raw string) string {
	return literalInValue.ReplaceAllString(NormalizeLiteral(raw), "$1$2")
}

// decodeScalar turns a matched JSON string or number into trimmed text. An
// empty string counts as no match.
func decodeScalar(token string) (string, bool) {
	v := token
	if strings.HasPrefix(token, `"`) {
		if err := json.Unmarshal([]byte(token), &v); err != nil {
			v = strings.Trim(token, `"`)
		}
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
