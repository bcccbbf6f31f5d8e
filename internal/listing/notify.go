package listing

// Severity of a notification.
type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "success"
	}
}

// Notification is a transient message about the latest outcome.
type Notification struct {
	Message  string
	Severity Severity
}

// notificationSlot holds at most one notification; the latest wins.
// seq counts puts, so a repeated identical message is still new.
type notificationSlot struct {
	current Notification
	set     bool
	seq     uint64
}

func (s *notificationSlot) put(n Notification) {
	s.current = n
	s.set = true
	s.seq++
}

func (s *notificationSlot) clear() {
	s.current = Notification{}
	s.set = false
}

func (s *notificationSlot) get() (Notification, bool) {
	return s.current, s.set
}
