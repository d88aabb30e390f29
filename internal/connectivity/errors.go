package connectivity

import "codeberg.org/mikkl/hwmond/internal/errors"

const (
	ErrNoCredentials    = errors.ErrorCode("connectivity_no_credentials")
	ErrStoreAccess      = errors.ErrorCode("connectivity_store_access_failed")
	ErrAssociateFailed  = errors.ErrorCode("connectivity_associate_failed")
	ErrAccessPointStart = errors.ErrorCode("connectivity_access_point_start_failed")
)
