package passengers

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
