package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/teamaptiv/volunteer-hub/pkg/core/ledger"
	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
	"github.com/teamaptiv/volunteer-hub/pkg/core/services"
)

// Response is the envelope every endpoint writes
type Response struct {
	Status       int                    `json:"status"`
	Notification *services.Notification `json:"notification,omitempty"`
	Response     any                    `json:"response"`
}

func (a *API) respond(w http.ResponseWriter, status int, notification *services.Notification, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(Response{
		Status:       status,
		Notification: notification,
		Response:     data,
	})
	if err != nil {
		a.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (a *API) ok(w http.ResponseWriter, status int, notification services.Notification, data any) {
	if notification.Key == "" {
		a.respond(w, status, nil, data)
		return
	}
	a.respond(w, status, &notification, data)
}

// fail maps an operation error to a status code and its user notification
func (a *API) fail(w http.ResponseWriter, op services.Operation, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("Request failed", zap.String("operation", string(op)), zap.Error(err))
	} else {
		a.logger.Debug("Request rejected", zap.String("operation", string(op)), zap.Error(err))
	}

	n := services.NotificationFor(op, err)
	a.respond(w, status, &n, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNoSelection), errors.Is(err, model.ErrFormat):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrSlotUnavailable):
		return http.StatusConflict
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConflict),
		errors.Is(err, model.ErrAlreadyExists),
		errors.Is(err, model.ErrConcurrentUpdate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}
