package store

import "github.com/tailored-agentic-units/store/observability"

// Store event types emitted while processing events.
const (
	EventDispatchStart      observability.EventType = "store.dispatch.start"
	EventDispatchComplete   observability.EventType = "store.dispatch.complete"
	EventDispatchAbort      observability.EventType = "store.dispatch.abort"
	EventInterceptorFailure observability.EventType = "store.interceptor.failure"
	EventTaskUnhandled      observability.EventType = "store.task.unhandled"
	EventTaskRejected       observability.EventType = "store.task.rejected"
	EventClose              observability.EventType = "store.close"
)
