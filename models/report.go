package models

import (
	"fmt"
	"strings"
	"time"
)

// Bucket is the age class of a property. The zero value is BucketUnknown.
type Bucket int

const (
	BucketUnknown Bucket = iota
	BucketNew
	BucketIntermediate
	BucketOld
)

// Label is the human-readable name used in reports.
func (b Bucket) Label() string {
	switch b {
	case BucketNew:
		return "Nuevo (0-20 años)"
	case BucketIntermediate:
		return "Intermedio (21-50 años)"
	case BucketOld:
		return "Viejo (+50 años)"
	default:
		return "Antigüedad desconocida"
	}
}

func (b Bucket) String() string {
	switch b {
	case BucketNew:
		return "new"
	case BucketIntermediate:
		return "intermediate"
	case BucketOld:
		return "old"
	default:
		return "unknown"
	}
}

// Outcome is the tri-state result of a single check. Unknown means there was
// not enough data to decide and is never a failure.
type Outcome int

const (
	Unknown Outcome = iota
	Passed
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Marker is the line prefix used for the outcome in summaries.
func (o Outcome) Marker() string {
	switch o {
	case Passed:
		return "✅"
	case Failed:
		return "❌"
	default:
		return "🟡"
	}
}

// CheckID identifies a check independently of its display label.
type CheckID string

const (
	CheckBathrooms      CheckID = "bathrooms"
	CheckBalconyOrPatio CheckID = "balcony_or_patio"
	CheckExpenses       CheckID = "expenses"
	CheckAvenue         CheckID = "not_on_avenue"
	CheckPrice          CheckID = "price"
	CheckGas            CheckID = "gas"
	CheckElevator       CheckID = "elevator_or_first_floor"
	CheckNotFirstFloor  CheckID = "not_first_floor"
	CheckLuminous       CheckID = "luminous"
)

// CheckOutcome is the result of one check on one listing.
type CheckOutcome struct {
	ID      CheckID
	Label   string
	Outcome Outcome
	Details string
}

func (c CheckOutcome) String() string {
	return fmt.Sprintf("%s %s: %s", c.Outcome.Marker(), c.Label, c.Details)
}

// Report is the ordered set of outcomes produced by one evaluation. It is
// built once and not modified afterwards.
type Report struct {
	Bucket   Bucket
	Age      *int
	Outcomes []CheckOutcome
}

// Find returns the outcome of the check with the given id.
func (r *Report) Find(id CheckID) (CheckOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.ID == id {
			return o, true
		}
	}
	return CheckOutcome{}, false
}

// Group returns the outcomes in the given state, in evaluation order.
func (r *Report) Group(state Outcome) []CheckOutcome {
	var out []CheckOutcome
	for _, o := range r.Outcomes {
		if o.Outcome == state {
			out = append(out, o)
		}
	}
	return out
}

// Counts returns how many checks passed, failed and were undecided.
func (r *Report) Counts() (passed, failed, unknown int) {
	for _, o := range r.Outcomes {
		switch o.Outcome {
		case Passed:
			passed++
		case Failed:
			failed++
		default:
			unknown++
		}
	}
	return passed, failed, unknown
}

// AvenueGate is true iff the not-on-avenue check passed.
func (r *Report) AvenueGate() bool {
	o, ok := r.Find(CheckAvenue)
	return ok && o.Outcome == Passed
}

// PriceGate is true iff the bucket price check passed. Listings of unknown
// age have no price check, so the gate is closed for them.
func (r *Report) PriceGate() bool {
	o, ok := r.Find(CheckPrice)
	return ok && o.Outcome == Passed
}

// Summary renders the report as the newline-joined message sent to the user.
func (r *Report) Summary(l *Listing) string {
	address := Text(l.Address)
	if address == "" {
		address = "No disponible"
	}

	lines := []string{
		"🏠 Tipo: " + r.Bucket.Label(),
		"📍 Dirección: " + address,
	}
	for _, state := range []Outcome{Passed, Failed, Unknown} {
		for _, o := range r.Group(state) {
			lines = append(lines, o.String())
		}
	}

	info := []struct {
		prefix string
		value  *string
	}{
		{"💰 Precio: ", l.Price},
		{"💱 Moneda: ", l.Currency},
		{"👤 Publicante: ", l.PublisherName},
		{"📱 WhatsApp: ", l.WhatsApp},
	}
	for _, i := range info {
		if i.value != nil && *i.value != "" {
			lines = append(lines, i.prefix+*i.value)
		}
	}
	if l.URL != "" {
		lines = append(lines, "🔗 "+l.URL)
	}

	return strings.Join(lines, "\n")
}

// Evaluation is one processed listing as written to the evaluation log.
type Evaluation struct {
	Listing     *Listing
	Report      *Report
	Notified    bool
	EvaluatedAt time.Time
}
