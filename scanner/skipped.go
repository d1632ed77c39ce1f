package scanner

// Reason explains why a directory entry was left out of a scan.
type Reason string

const (
	ReasonIgnored    Reason = "ignored"
	ReasonBinary     Reason = "binary"
	ReasonNotRegular Reason = "not-regular"
	ReasonUnreadable Reason = "unreadable"
	ReasonExcluded   Reason = "excluded"
)

// Skipped is a directory entry the scanner did not yield.
type Skipped struct {
	Path   string
	Reason Reason
	Err    error
}

func (s Skipped) String() string {
	if s.Err != nil {
		return s.Path + " (" + string(s.Reason) + ": " + s.Err.Error() + ")"
	}
	return s.Path + " (" + string(s.Reason) + ")"
}
