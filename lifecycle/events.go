package lifecycle

import "github.com/tailored-agentic-units/store/observability"

const (
	EventTaskStart     observability.EventType = "task.start"
	EventTaskComplete  observability.EventType = "task.complete"
	EventTaskError     observability.EventType = "task.error"
	EventTaskCancel    observability.EventType = "task.cancel"
	EventTaskSupersede observability.EventType = "task.supersede"
	EventManagerClose  observability.EventType = "task.manager.close"
)
