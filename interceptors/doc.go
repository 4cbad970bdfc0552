// Package interceptors provides ready-made store.Interceptor implementations
// for structured logging and dispatch metrics.
package interceptors
