package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	domerrors "github.com/netforge-labs/topoforge/internal/domain/errors"
)

// humaError maps the domain error taxonomy onto huma's status-coded
// constructors (Error400BadRequest, Error404NotFound,
// Error503ServiceUnavailable, and so on) through one central switch
// rather than a generic 500 for everything.
func humaError(summary string, err error) error {
	var invalid *domerrors.InvalidIntentError
	if errors.As(err, &invalid) {
		return huma.Error400BadRequest(summary, err)
	}

	var unsat *domerrors.UnsatisfiableError
	if errors.As(err, &unsat) {
		return huma.Error422UnprocessableEntity(summary, err)
	}

	var exhausted *domerrors.AddressSpaceExhaustedError
	if errors.As(err, &exhausted) {
		return huma.Error422UnprocessableEntity(summary, err)
	}

	var timeout *domerrors.StageTimeoutError
	if errors.As(err, &timeout) {
		return huma.Error504GatewayTimeout(summary, err)
	}

	var cancelled *domerrors.CancelledError
	if errors.As(err, &cancelled) {
		// 499 has no generated huma helper (it's outside net/http's status
		// table), so build it through the same constructor those helpers
		// wrap.
		return huma.NewError(499, summary, err)
	}

	var persistence *domerrors.PersistenceError
	if errors.As(err, &persistence) {
		return huma.Error503ServiceUnavailable(summary, err)
	}

	return huma.Error500InternalServerError(summary, err)
}
