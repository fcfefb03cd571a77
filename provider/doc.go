// Package provider defines the RequestResponse abstraction a store backend
// implements and the middleware wrapped around it.
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[command.Command, command.Reply](log),
//	    provider.WithTracing[command.Command, command.Reply]("redis"),
//	    provider.WithMetrics[command.Command, command.Reply](metrics),
//	    provider.WithResilience[command.Command, command.Reply](cfg),
//	)(backend)
//
// Inputs implementing Operation name the log fields, spans and metric
// labels. Iterator is the pull contract implemented by scan iterators.
package provider
