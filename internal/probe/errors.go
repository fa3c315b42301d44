package probe

import "errors"

var (
	// ErrUnhealthy is returned when the metrics endpoint does not answer 200.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrNoPlayers is returned when the service lists no players to sample.
	ErrNoPlayers = errors.New("no players to sample")
	// ErrVerification is returned when at least one response breaks an ordering rule.
	ErrVerification = errors.New("verification failed")
	// ErrStatus is returned for an unexpected HTTP status.
	ErrStatus = errors.New("unexpected status")
)
