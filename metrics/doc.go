// Package metrics contains observers that record what happens during a simulation.
//
// The Collector keeps the data needed to report the outcome of a run: which
// acceptors accepted each epoch, which epochs each proposer tried and what each
// proposer ended up believing. The TraceWriter writes every scheduler event to
// a log that can be read back with a TraceReader or ReadJSONTrace.
package metrics
