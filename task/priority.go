package task

// Priority is a scheduling hint carried by Run nodes. Schedulers may ignore it.
type Priority int

const (
	PriorityUnspecified Priority = iota
	PriorityBackground
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityUserInitiated
)

func (p Priority) String() string {
	switch p {
	case PriorityUnspecified:
		return "unspecified"
	case PriorityBackground:
		return "background"
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityUserInitiated:
		return "user-initiated"
	default:
		return "unknown"
	}
}
