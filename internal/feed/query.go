package feed

// Status is where a read query is in its lifecycle.
type Status int

const (
	StatusPending Status = iota
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Query is the fetch state of one read: pending, loaded with Data, or failed
// with Err. A refetch keeps the previous Data visible while it is pending.
type Query[T any] struct {
	Status Status
	Data   T
	Err    error
	// Stale is set while Data comes from a persisted snapshot or an earlier load
	// and a fresh fetch is pending.
	Stale bool
}

func (q Query[T]) Loading() bool { return q.Status == StatusPending }

// HasData reports whether Data holds a usable value (fresh or stale).
func (q Query[T]) HasData() bool { return q.Status == StatusLoaded || q.Stale }

// Refetch marks q pending while keeping whatever data it already has.
func (q Query[T]) Refetch() Query[T] {
	return Query[T]{Status: StatusPending, Data: q.Data, Stale: q.HasData()}
}

func (q Query[T]) Resolve(data T, err error) Query[T] {
	if err != nil {
		return Query[T]{Status: StatusFailed, Data: q.Data, Err: err, Stale: q.HasData()}
	}
	return Query[T]{Status: StatusLoaded, Data: data}
}

// Snapshot shows data from a persisted cache while the fetch is still pending.
func (q Query[T]) Snapshot(data T) Query[T] {
	if q.Status != StatusPending {
		return q
	}
	return Query[T]{Status: StatusPending, Data: data, Stale: true}
}
