package store

// Phase is the processing state of the store.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseProcessing
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseProcessing:
		return "processing"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Status is a point-in-time snapshot of the store.
type Status struct {
	Name          string
	Phase         Phase
	Queued        int   // Events waiting to be processed.
	QueueCapacity int   // Events Dispatch accepts before it blocks.
	Running       int   // Registered Run leaves.
	Dispatched    int64 // Events accepted by Dispatch.
	Processed     int64 // Events whose task tree ran to completion.
	Aborted       int64 // Events stopped by a before hook or the reducer.
}
