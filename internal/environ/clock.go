package environ

import (
	"context"
	"time"

	"github.com/beevik/ntp"

	"codeberg.org/mikkl/hwmond/internal/errors"
)

const DefaultNTPHost = "pool.ntp.org"

// ntpClock is the production ClockSource, backed by an NTP pool.
type ntpClock struct {
	host string
}

func NewNTPClock(host string) ClockSource {
	if host == "" {
		host = DefaultNTPHost
	}

	return &ntpClock{host: host}
}

func (c *ntpClock) Now(ctx context.Context) (time.Time, error) {
	errFactory := errors.New()

	opts := ntp.QueryOptions{}
	if deadline, ok := ctx.Deadline(); ok {
		opts.Timeout = time.Until(deadline)
	}

	resp, err := ntp.QueryWithOptions(c.host, opts)
	if err != nil {
		return time.Time{}, errFactory.Wrap(ErrClockSync, err)
	}
	if err := resp.Validate(); err != nil {
		return time.Time{}, errFactory.Wrap(ErrClockSync, err)
	}

	return time.Now().Add(resp.ClockOffset), nil
}
