package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Authentication Errors.

	// ErrNotConnected indicates no token record exists for the platform.
	ErrNotConnected = errors.New("platform not connected")

	// ErrReauthRequired indicates the stored refresh token is gone or was
	// rejected by the provider; the operator must reconnect the platform.
	ErrReauthRequired = errors.New("reauthorisation required")

	// ErrTokenRefreshFailed indicates a transient token refresh failure.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// Policy Errors.

	// ErrPolicyViolation indicates an illegal resolution choice.
	// Rejected before any network call is made.
	ErrPolicyViolation = errors.New("illegal resolution choice")

	// ErrRecreateDisabled indicates Recreate was chosen without the
	// allow_recreate capability being enabled in configuration.
	ErrRecreateDisabled = errors.New("recreate is not enabled")

	// Validation Errors.

	// ErrInvalidURL indicates a malformed operator-provided resource URL.
	ErrInvalidURL = errors.New("invalid resource URL")

	// Provisioning Errors.

	// ErrRunInFlight indicates a provisioning run is already executing.
	// Two runs for the same submission must never execute concurrently.
	ErrRunInFlight = errors.New("provisioning run already in flight")
)
