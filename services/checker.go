package services

import (
	"fmt"
	"strings"

	"zonaprop-watcher/models"
	"zonaprop-watcher/utils"
)

const (
	// priceCurrency is the only currency prices are compared in.
	priceCurrency = "USD"
	// maxExpenses is the monthly expenses ceiling, in whatever currency the
	// posting states them.
	maxExpenses = 150000
)

const (
	minBathrooms = 2
	firstFloor   = 1
)

// avenueFragments are matched against the folded address. A match means the
// property sits on a primary avenue.
var avenueFragments = []string{
	"av.", "avenida", "av:", "del libertador", "corrientes", "córdoba",
	"santa fe", "rivadavia", "callao", "pueyrredón", "las heras",
	"coronel díaz", "cabildo", "pueyrredon", "juramento", "congreso",
	"triunvirato", "de los incas", "álvarez thomas", "forest",
	"federico lacroze", "gaona", "nazca", "san martín", "san martin", "beiró",
	"lope de vega", "juan b. justo", "acoyte", "la plata", "directorio",
	"eva perón", "san juan", "independencia", "belgrano", "entre ríos", "jujuy",
}

var (
	balconyKeywords  = []string{"balcón", "patio"}
	gasKeywords      = []string{"cocina a gas", "gas natural"}
	elevatorKeywords = []string{"ascensor"}
	luminousKeywords = []string{"luminoso", "luminosa", "mucha luz"}
)

// facts is the listing data the checks read, folded once per evaluation.
type facts struct {
	listing     *models.Listing
	description string
	hasText     bool
	features    []string
}

func newFacts(l *models.Listing) facts {
	f := facts{listing: l}
	if l.Description != nil {
		f.description = utils.Fold(*l.Description)
		f.hasText = f.description != ""
	}
	for _, label := range l.GeneralFeatures.Labels("") {
		f.features = append(f.features, utils.Fold(label))
	}
	if len(f.features) > 0 {
		f.hasText = true
	}
	return f
}

// mentions reports whether any keyword appears in a feature label or in the
// description.
func (f facts) mentions(keywords ...string) bool {
	for _, label := range f.features {
		if utils.ContainsAny(label, keywords...) {
			return true
		}
	}
	return utils.ContainsAny(f.description, keywords...)
}

type check func(f facts) models.CheckOutcome

// bucketRules is the threshold table for one age bucket.
type bucketRules struct {
	maxPrice float64
	extra    []check
}

var bucketTable = map[models.Bucket]bucketRules{
	models.BucketNew:          {maxPrice: 160000, extra: []check{checkGas, checkElevator}},
	models.BucketIntermediate: {maxPrice: 145000, extra: []check{checkNotFirstFloor, checkLuminous}},
	models.BucketOld:          {maxPrice: 130000, extra: []check{checkNotFirstFloor, checkLuminous}},
}

var commonChecks = []check{checkBathrooms, checkBalconyOrPatio, checkExpenses, checkAvenue}

// RuleEngine evaluates listings against the buyer's criteria. It holds no
// per-listing state and is safe for concurrent use.
type RuleEngine struct {
	logger *utils.Logger
}

// NewRuleEngine creates a RuleEngine with the given logger.
func NewRuleEngine(logger *utils.Logger) *RuleEngine {
	return &RuleEngine{logger: logger}
}

// EvaluateListing classifies l and evaluates it.
func (e *RuleEngine) EvaluateListing(l *models.Listing) *models.Report {
	bucket, age := Classify(l)
	return e.Evaluate(l, bucket, age)
}

// Evaluate runs the checks of bucket, then the common checks. Unknown
// buckets get the common checks only.
func (e *RuleEngine) Evaluate(l *models.Listing, bucket models.Bucket, age *int) *models.Report {
	f := newFacts(l)
	report := &models.Report{Bucket: bucket, Age: age}

	if rules, ok := bucketTable[bucket]; ok {
		report.Outcomes = append(report.Outcomes, checkPrice(f, rules.maxPrice))
		for _, c := range rules.extra {
			report.Outcomes = append(report.Outcomes, c(f))
		}
	}
	for _, c := range commonChecks {
		report.Outcomes = append(report.Outcomes, c(f))
	}

	passed, failed, unknown := report.Counts()
	e.logger.Debug("[checker] %s: bucket=%s passed=%d failed=%d unknown=%d",
		listingRef(l), bucket, passed, failed, unknown)
	return report
}

func listingRef(l *models.Listing) string {
	if l.URL != "" {
		return l.URL
	}
	if l.ID != nil {
		return *l.ID
	}
	return "listing"
}

func outcome(id models.CheckID, label string, o models.Outcome, details string) models.CheckOutcome {
	return models.CheckOutcome{ID: id, Label: label, Outcome: o, Details: details}
}

func checkPrice(f facts, maxPrice float64) models.CheckOutcome {
	label := fmt.Sprintf("Precio (Max $%.0fk)", maxPrice/1000)
	l := f.listing

	if l.Currency == nil {
		return outcome(models.CheckPrice, label, models.Unknown, "Moneda desconocida")
	}
	if *l.Currency != priceCurrency {
		return outcome(models.CheckPrice, label, models.Unknown, "Precio en "+*l.Currency)
	}
	price, ok := models.Amount(l.Price)
	if !ok {
		return outcome(models.CheckPrice, label, models.Unknown, "Sin precio")
	}
	details := fmt.Sprintf("%s %.0f", priceCurrency, price)
	if price <= maxPrice {
		return outcome(models.CheckPrice, label, models.Passed, details)
	}
	return outcome(models.CheckPrice, label, models.Failed, details)
}

func checkGas(f facts) models.CheckOutcome {
	const label = "Tiene Gas"
	if f.mentions(gasKeywords...) {
		return outcome(models.CheckGas, label, models.Passed, "Gas mencionado")
	}
	return outcome(models.CheckGas, label, models.Unknown, "No mencionado")
}

// checkElevator passes when the building has an elevator or the unit is on
// the first floor. Without any text to look for an elevator in, a known
// floor above the first is still undecided.
func checkElevator(f facts) models.CheckOutcome {
	const label = "Ascensor o 1er Piso"
	if f.mentions(elevatorKeywords...) {
		return outcome(models.CheckElevator, label, models.Passed, "Tiene ascensor")
	}

	floor, ok := models.FirstInt(f.listing.Floor)
	switch {
	case !ok:
		return outcome(models.CheckElevator, label, models.Unknown, "Piso desconocido")
	case floor == firstFloor:
		return outcome(models.CheckElevator, label, models.Passed, "1er piso")
	case !f.hasText:
		return outcome(models.CheckElevator, label, models.Unknown, fmt.Sprintf("Piso %d, ascensor desconocido", floor))
	default:
		return outcome(models.CheckElevator, label, models.Failed, fmt.Sprintf("Piso %d sin ascensor", floor))
	}
}

func checkNotFirstFloor(f facts) models.CheckOutcome {
	const label = "No es 1er Piso"
	floor, ok := models.FirstInt(f.listing.Floor)
	switch {
	case !ok:
		return outcome(models.CheckNotFirstFloor, label, models.Unknown, "Piso desconocido")
	case floor == firstFloor:
		return outcome(models.CheckNotFirstFloor, label, models.Failed, "1er piso")
	default:
		return outcome(models.CheckNotFirstFloor, label, models.Passed, fmt.Sprintf("Piso %d", floor))
	}
}

func checkLuminous(f facts) models.CheckOutcome {
	const label = "Luminoso"
	if f.mentions(luminousKeywords...) {
		return outcome(models.CheckLuminous, label, models.Passed, "Luminoso mencionado")
	}
	return outcome(models.CheckLuminous, label, models.Unknown, "No mencionado")
}

func checkBathrooms(f facts) models.CheckOutcome {
	const label = "Baños"
	n, ok := models.FirstInt(f.listing.Bathrooms)
	if !ok {
		return outcome(models.CheckBathrooms, label, models.Unknown, "Sin datos")
	}
	details := fmt.Sprintf("%d", n)
	if n >= minBathrooms {
		return outcome(models.CheckBathrooms, label, models.Passed, details)
	}
	return outcome(models.CheckBathrooms, label, models.Failed, details)
}

// checkBalconyOrPatio never fails: a posting that does not mention a balcony
// may still have one.
func checkBalconyOrPatio(f facts) models.CheckOutcome {
	const label = "Balcón o Patio"
	if f.mentions(balconyKeywords...) {
		return outcome(models.CheckBalconyOrPatio, label, models.Passed, "Mencionado")
	}
	return outcome(models.CheckBalconyOrPatio, label, models.Unknown, "No mencionado")
}

func checkExpenses(f facts) models.CheckOutcome {
	const label = "Expensas"
	amount, ok := models.Amount(f.listing.Expenses)
	if !ok {
		return outcome(models.CheckExpenses, label, models.Unknown, "Sin datos")
	}
	details := fmt.Sprintf("$%.0f", amount)
	if amount < maxExpenses {
		return outcome(models.CheckExpenses, label, models.Passed, details)
	}
	return outcome(models.CheckExpenses, label, models.Failed, details)
}

func checkAvenue(f facts) models.CheckOutcome {
	const label = "No en Avenida"
	address := strings.TrimSpace(models.Text(f.listing.Address))
	if address == "" || strings.EqualFold(address, "n/a") {
		return outcome(models.CheckAvenue, label, models.Unknown, "Dirección desconocida")
	}
	if utils.ContainsAny(address, avenueFragments...) {
		return outcome(models.CheckAvenue, label, models.Failed, address)
	}
	return outcome(models.CheckAvenue, label, models.Passed, address)
}
