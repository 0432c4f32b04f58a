package explore

import (
	"errors"
	"fmt"
)

// ErrNoResult is returned when the geocoder's result set is empty. An empty
// weather/listing/media batch is not an error; it is a valid empty sequence.
var ErrNoResult = errors.New("no results for query")

// UpstreamError reports a non-success response from a provider API.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Body)
}
