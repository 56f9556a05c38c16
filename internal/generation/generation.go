package generation

import (
	"errors"
	"sync/atomic"
)

// ErrStale is returned when an asynchronous completion was overtaken by a
// newer request and its result was discarded.
var ErrStale = errors.New("superseded by a newer request")

// Counter hands out monotonically increasing generation tags. Only the most
// recently issued tag is current.
type Counter struct {
	latest atomic.Uint64
}

// Next issues a new tag, invalidating every earlier one.
func (c *Counter) Next() uint64 {
	return c.latest.Add(1)
}

// IsCurrent reports whether gen is the latest issued tag.
func (c *Counter) IsCurrent(gen uint64) bool {
	return c.latest.Load() == gen
}

// Latest returns the most recently issued tag (0 if none).
func (c *Counter) Latest() uint64 {
	return c.latest.Load()
}
