// Package notify turns prediction results into notification records and
// hands them to pluggable sinks. The engine publishes records on a bounded
// Queue and never waits for delivery; a worker drains the queue into the
// configured Sink.
package notify
