package supplier

// The supplier may report a retried booking as a failure carrying the
// original booking id. Classification happens once, here at the gateway
// boundary, so orchestration code never inspects raw error arrays.

// errCodeDuplicateBooking is the supplier's "booking already exists" code.
const errCodeDuplicateBooking = "2502"

type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	// OutcomeDuplicate means the operation already succeeded under another
	// request; BookingID holds the identifier to adopt.
	OutcomeDuplicate
	OutcomeRejected
)

type Outcome struct {
	Kind      OutcomeKind
	BookingID string
	Errors    []APIError
}

func (o Outcome) OK() bool        { return o.Kind == OutcomeOK }
func (o Outcome) Duplicate() bool { return o.Kind == OutcomeDuplicate }
func (o Outcome) Rejected() bool  { return o.Kind == OutcomeRejected }

// Classify folds an envelope into a tagged outcome.
func Classify(env Envelope) Outcome {
	if env.Status.Success {
		return Outcome{Kind: OutcomeOK}
	}
	for _, e := range env.Errors {
		if e.ErrCode == errCodeDuplicateBooking && e.Details != "" {
			return Outcome{Kind: OutcomeDuplicate, BookingID: e.Details, Errors: env.Errors}
		}
	}
	return Outcome{Kind: OutcomeRejected, Errors: env.Errors}
}
