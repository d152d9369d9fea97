package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hackgods/medbook/internal/account"
	"github.com/hackgods/medbook/internal/appointment"
	"github.com/hackgods/medbook/internal/auth"
	"github.com/hackgods/medbook/internal/availability"
	"github.com/hackgods/medbook/internal/validate"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

func writeInvalid(w http.ResponseWriter, fields validate.Errors) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_input",
		Details: "one or more fields are invalid",
		Fields:  fields,
	})
}

// decodeJSON reads a single JSON object, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "body must contain a single JSON object")
		return false
	}
	return true
}

// handleServiceError maps service errors to the API error body. Anything
// unrecognised is logged and reported as a 500 without internals.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fields validate.Errors
	var conflict *availability.ConflictError

	switch {
	case errors.As(err, &fields):
		writeInvalid(w, fields)

	case errors.Is(err, account.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())

	case errors.Is(err, availability.ErrForbidden),
		errors.Is(err, appointment.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())

	case errors.Is(err, account.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, account.ErrDoctorNotFound),
		errors.Is(err, availability.ErrDoctorNotFound),
		errors.Is(err, appointment.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, account.ErrPatientNotFound),
		errors.Is(err, appointment.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, availability.ErrAvailabilityNotFound):
		writeError(w, http.StatusNotFound, "availability_not_found", err.Error())
	case errors.Is(err, availability.ErrExceptionNotFound):
		writeError(w, http.StatusNotFound, "exception_not_found", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())

	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:       "availability_conflict",
			Details:     err.Error(),
			Conflicting: ptr(toAvailabilityResponse(conflict.Existing)),
		})
	case errors.Is(err, availability.ErrAvailabilityConflict):
		writeError(w, http.StatusConflict, "availability_conflict", err.Error())
	case errors.Is(err, availability.ErrAvailabilityBusy):
		writeError(w, http.StatusConflict, "availability_busy", err.Error())
	case errors.Is(err, availability.ErrExceptionExists):
		writeError(w, http.StatusConflict, "exception_exists", err.Error())
	case errors.Is(err, account.ErrLoginTaken):
		writeError(w, http.StatusConflict, "login_taken", err.Error())
	case errors.Is(err, account.ErrPasswordMismatch):
		writeError(w, http.StatusConflict, "password_mismatch", err.Error())
	case errors.Is(err, appointment.ErrSlotAlreadyBooked):
		writeError(w, http.StatusConflict, "slot_already_booked", err.Error())
	case errors.Is(err, appointment.ErrSlotBeingBooked):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")

	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func ptr[T any](v T) *T {
	return &v
}
