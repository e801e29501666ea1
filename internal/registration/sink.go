package registration

import "context"

//go:generate mockgen -source=sink.go -destination=mocks/mocks.go -package=mocks Sink

// Sink is an append-only store of registration records.
type Sink interface {
	// Append writes rec as a single row. Failures are returned as *SinkError.
	Append(ctx context.Context, rec Record) error
}
