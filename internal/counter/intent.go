package counter

// Intent is a user action on the counter screen.
type Intent int

const (
	Increment Intent = iota
	Decrement
	Reset
	AsyncIncrement
	ClearLastOperation
)

// String returns the intent name used in logs and metrics.
func (i Intent) String() string {
	switch i {
	case Increment:
		return "increment"
	case Decrement:
		return "decrement"
	case Reset:
		return "reset"
	case AsyncIncrement:
		return "asyncIncrement"
	case ClearLastOperation:
		return "clearLastOperation"
	default:
		return "unknown"
	}
}
