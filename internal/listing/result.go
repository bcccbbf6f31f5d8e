package listing

// State is the fetch status shown alongside the page.
type State int

const (
	StateLoading State = iota
	StateError
	StateReady
)

func (s State) String() string {
	switch s {
	case StateError:
		return "error"
	case StateReady:
		return "ready"
	default:
		return "loading"
	}
}

// Result is the last accepted page and the state of the current fetch.
// Page survives loading and error states; Loaded tells whether any page
// has been accepted yet.
type Result struct {
	State  State
	Page   ResultPage
	Err    error
	Loaded bool
}

// Detail is the error text for StateError, empty otherwise.
func (r Result) Detail() string {
	if r.State != StateError || r.Err == nil {
		return ""
	}
	return Reason(r.Err)
}
