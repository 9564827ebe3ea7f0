package agent

import (
	"context"
	"fmt"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64
	Lon float64
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lon)
}

// Zero reports whether the coordinates carry no location.
func (c Coordinates) Zero() bool {
	return c.Lat == 0 && c.Lon == 0
}

// Request describes one trip-planning invocation.
type Request struct {
	Goal   string      // what the user wants, e.g. "Weekend trip"
	Origin Coordinates // where the trip starts; zero means unknown
}

// Client issues a single invocation against a generative backend and yields
// its progress as events. The returned channel carries events in the order
// the backend produced them and closes when the call ends. Cancelling ctx
// aborts the call and releases its resources; the channel still closes.
//
// Invoke returns an error only for unusable requests (e.g. empty goal) —
// backend failures arrive on the channel as an Error event.
type Client interface {
	Invoke(ctx context.Context, req Request) (<-chan Event, error)
}
