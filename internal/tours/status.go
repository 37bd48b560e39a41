package tours

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusFull     Status = "full"
	StatusHidden   Status = "hidden"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusFull, StatusHidden:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsBookable reports whether new rosters may be started against the tour.
func (s Status) IsBookable() bool {
	return s == StatusActive
}
