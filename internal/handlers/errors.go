package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"giftcircle/internal/service"
)

func respondWithError(w http.ResponseWriter, log logrus.FieldLogger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.WithError(err).Error(logMsg)
	}

	respondMessage(w, log, status, userMsg)
}

// statusFor maps a service error to its HTTP status. Errors that are not
// *service.Error map to 500.
func statusFor(err error) int {
	// Acting on your own item is a bad request rather than a permission problem
	if errors.Is(err, service.ErrSelfReservation) || errors.Is(err, service.ErrOwnItemNote) {
		return http.StatusBadRequest
	}

	switch service.KindOf(err) {
	case service.KindValidation, service.KindConflict:
		return http.StatusBadRequest
	case service.KindAuthRequired:
		return http.StatusUnauthorized
	case service.KindAuthorization:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError writes the service error's own message, or a
// generic one for infrastructure failures, which are logged.
func respondWithServiceError(w http.ResponseWriter, log logrus.FieldLogger, logMsg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		respondWithError(w, log, status, ErrInternalServerError, logMsg, err)
		return
	}

	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		respondMessage(w, log, status, svcErr.Message)
		return
	}
	respondMessage(w, log, status, http.StatusText(status))
}
