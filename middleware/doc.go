// Package middleware provides dispatch middleware for the store: structured
// logging, OpenTelemetry tracing and OpenTelemetry metrics.
//
// Every middleware is generic over the store's state, action and effect
// types and is installed with Store.Use or Runtime.Use:
//
//	rt.Use(
//		middleware.Logging[State, Action, Effect](logger),
//		middleware.Tracing[State, Action, Effect](),
//	)
//
// Action names come from actions.Name, so actions implementing
// actions.Named control how they appear in logs, spans and metrics.
package middleware
