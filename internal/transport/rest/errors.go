package rest

import (
	"errors"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"naijayield/internal/service"
)

func logError(op string, err error) {
	zap.L().Error(op, zap.String("trace", eris.ToString(err, false)))
}

// writeServiceError maps service errors onto the envelope. Unknown errors
// are logged and hidden behind fallback.
func writeServiceError(w http.ResponseWriter, op string, err error, fallback string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		ErrorBadRequest(w, verr.Message)
	case eris.Is(err, service.ErrUnauthenticated):
		ErrorUnauthorized(w, "Unauthorized")
	case eris.Is(err, service.ErrHouseholdNotFound):
		ErrorNotFound(w, "household not found")
	case eris.Is(err, service.ErrExportNotFound):
		ErrorNotFound(w, "export not found")
	case eris.Is(err, service.ErrUnknownExportField):
		ErrorBadRequest(w, err.Error())
	case eris.Is(err, service.ErrExportsUnavailable):
		ErrorUnavailable(w, "export tracking is disabled")
	default:
		logError(op, err)
		ErrorInternal(w, fallback)
	}
}

// writeRequestError answers a request that failed to decode or validate.
func writeRequestError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		ErrorBadRequest(w, verr.Message)
		return
	}
	ErrorBadRequest(w, "invalid JSON")
}
