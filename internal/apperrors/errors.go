package apperrors

import "errors"

// Data availability errors describe upstream data that could not be obtained.
// They are expected outcomes of the estimation pipeline, not faults.
var (
	// ErrNoData indicates that no usable data exists for a fund: no holdings,
	// no feeder target and nothing left to fall back to, or an empty history.
	ErrNoData = errors.New("no data")

	// ErrUnavailable indicates a transport failure at a collaborator boundary
	// (timeout, connection error, non-success status).
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrTargetNotFound indicates that feeder resolution found no tradable target.
	ErrTargetNotFound = errors.New("feeder target not found")

	// ErrMalformedPayload indicates an upstream payload that could not be parsed at all.
	ErrMalformedPayload = errors.New("malformed upstream payload")
)

// Validation errors represent invalid caller input.
var (
	// ErrInvalidFundCode indicates a fund code that is not six digits.
	ErrInvalidFundCode = errors.New("invalid fund code")

	ErrInvalidDays = errors.New("days must be between 1 and 3650")

	ErrInvalidMode = errors.New("invalid valuation mode")

	// ErrEmptyCodes indicates a request without any fund code.
	ErrEmptyCodes = errors.New("at least one fund code is required")

	// ErrTooManyCodes indicates a request for more funds than one call may estimate.
	ErrTooManyCodes = errors.New("too many fund codes")
)

// ErrBoardNotReady indicates the board has not been refreshed since startup.
var ErrBoardNotReady = errors.New("board has not been refreshed yet")

// Operation failure errors represent system-level failures when retrieving or storing data.
var (
	ErrFailedToRetrieveModes     = errors.New("failed to retrieve valuation modes")
	ErrFailedToSaveMode          = errors.New("failed to save valuation mode")
	ErrFailedToRetrieveHistory   = errors.New("failed to retrieve fund history")
	ErrFailedToRetrieveHoldings  = errors.New("failed to retrieve fund holdings")
	ErrFailedToRetrieveIntraday  = errors.New("failed to retrieve intraday estimates")
	ErrFailedToRecordIntraday    = errors.New("failed to record intraday estimate")
	ErrFailedToRefreshBoard      = errors.New("failed to refresh board")
	ErrFailedToGetVersionInfo    = errors.New("failed to get version information")
	ErrFailedToRetrieveEstimates = errors.New("failed to retrieve estimates")
)
