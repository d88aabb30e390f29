package environ

import "codeberg.org/mikkl/hwmond/internal/errors"

const (
	ErrClockSync      = errors.ErrorCode("environ_clock_sync_failed")
	ErrLocateFailed   = errors.ErrorCode("environ_locate_failed")
	ErrConditionFetch = errors.ErrorCode("environ_condition_fetch_failed")
	ErrBadResponse    = errors.ErrorCode("environ_bad_response")
)
