// Package lifecycle tracks running units of asynchronous work by identifier.
//
// A Manager owns a registry mapping ids to running operations. It guarantees
// at most one running entry per id: starting work under an id that is already
// running cancels and removes the previous entry before the new one is
// registered. StartQueued instead waits for the running entry to finish.
// Entries remove themselves exactly once when their operation returns, after
// the optional error handler has run.
//
// Cancellation is cooperative. Each operation receives a context that is
// cancelled when its entry is cancelled, superseded, or when the manager is
// closed. Operations that end with an error after cancellation are reported
// as *task.CancellationError so handlers can distinguish user-initiated
// cancellation from application failures:
//
//	m := lifecycle.New()
//	defer m.Close()
//
//	h, err := m.Start(lifecycle.Work{
//	    ID: "refresh",
//	    Operation: func(ctx context.Context) error {
//	        return refresh(ctx)
//	    },
//	    OnError: func(err error) {
//	        if task.IsCancellation(err) {
//	            return
//	        }
//	        log.Printf("refresh failed: %v", err)
//	    },
//	})
package lifecycle
