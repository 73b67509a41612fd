package csrf

// Observer receives validation and issuance events, typically to export
// metrics. Implementations must be safe for concurrent use.
type Observer interface {
	// Validation is called once per ValidateRequest. outcome is "valid" or
	// the failure Code.
	Validation(strategy, outcome string, ageSeconds float64)
	Generated(strategy string)
}

// NoopObserver discards all events.
var NoopObserver Observer = noopObserver{}

type noopObserver struct{}

func (noopObserver) Validation(string, string, float64) {}
func (noopObserver) Generated(string)                   {}

// OutcomeValid is the Validation outcome for a request that passed.
const OutcomeValid = "valid"
