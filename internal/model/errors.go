package model

import "errors"

// Error taxonomy for the review pipeline. Callers match with errors.Is;
// wrapped errors carry the underlying cause.
var (
	// ErrDocumentUnreadable means the claim PDF could not be opened or
	// parsed. Fatal to that document's review.
	ErrDocumentUnreadable = errors.New("document unreadable")

	// ErrImageUnreadable means one extracted image could not be read or
	// decoded for classification. Fatal to that image only.
	ErrImageUnreadable = errors.New("image unreadable")

	// ErrOracleUnavailable means a transport or model failure on an oracle
	// port. Propagated verbatim, no retry beyond the adjudicator's single
	// transient-failure retry.
	ErrOracleUnavailable = errors.New("oracle unavailable")

	// ErrOracleTimeout means the oracle did not answer within the
	// configured deadline. Kept distinct from ErrOracleUnavailable so
	// callers can tell a hung model from a broken one.
	ErrOracleTimeout = errors.New("oracle timeout")
)
