package services

import (
	"regexp"
	"sort"
	"strconv"

	"zonaprop-watcher/models"
	"zonaprop-watcher/utils"
)

// ageFeatureCode is the main-feature code the site uses for the building age.
const ageFeatureCode = "CFT5"

// Matched against folded description text.
var ageInDescription = regexp.MustCompile(`(\d+)\s+anos\s+de\s+antiguedad`)

// Classify returns the age bucket of a listing and the age it was derived
// from. Age comes from the "antigüedad" main feature and, when that is
// missing or unreadable, from a "<N> años de antigüedad" phrase in the
// description. The age is nil when neither source gives a number.
func Classify(l *models.Listing) (models.Bucket, *int) {
	age, ok := ageFromFeatures(l.MainFeatures)
	if !ok {
		age, ok = ageFromDescription(l.Description)
	}
	if !ok {
		return models.BucketUnknown, nil
	}
	return BucketForAge(age), &age
}

// BucketForAge maps an age in years to its bucket.
func BucketForAge(age int) models.Bucket {
	switch {
	case age < 0:
		return models.BucketUnknown
	case age <= 20:
		return models.BucketNew
	case age <= 50:
		return models.BucketIntermediate
	default:
		return models.BucketOld
	}
}

func ageFromFeatures(set *models.FeatureSet) (int, bool) {
	if set == nil || set.Items == nil {
		return 0, false
	}

	if f, ok := set.Items[ageFeatureCode]; ok && isAgeLabel(f.Label) {
		if age, ok := ageValue(f); ok {
			return age, true
		}
	}
	codes := make([]string, 0, len(set.Items))
	for code := range set.Items {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		f := set.Items[code]
		if code == ageFeatureCode || !isAgeLabel(f.Label) {
			continue
		}
		if age, ok := ageValue(f); ok {
			return age, true
		}
	}
	return 0, false
}

func isAgeLabel(label string) bool {
	return utils.Fold(label) == "antiguedad"
}

// ageValue reads a feature value such as "10", 10 or "A estrenar" (brand new).
func ageValue(f models.Feature) (int, bool) {
	v, ok := f.ValueString()
	if !ok {
		return 0, false
	}
	if utils.ContainsAny(v, "estrenar") {
		return 0, true
	}
	return models.FirstInt(&v)
}

func ageFromDescription(desc *string) (int, bool) {
	if desc == nil {
		return 0, false
	}
	m := ageInDescription.FindStringSubmatch(utils.Fold(*desc))
	if m == nil {
		return 0, false
	}
	age, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return age, true
}
