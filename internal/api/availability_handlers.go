package api

import (
	"net/http"

	"github.com/hackgods/medbook/internal/auth"
	"github.com/hackgods/medbook/internal/availability"
	"github.com/hackgods/medbook/internal/schedule"
)

func listAvailabilityHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		p := newFieldParser()
		doctorID := p.id("doctor_id", q.Get("doctor_id"), true)
		from := p.date("start", q.Get("start"), false)
		if err := p.err(); err != nil {
			handleServiceError(w, r, err)
			return
		}

		rows, err := svc.List(r.Context(), doctorID, from)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		resp := make([]AvailabilityResponse, 0, len(rows))
		for _, a := range rows {
			resp = append(resp, toAvailabilityResponse(a))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// availabilityInput parses a create/update body. The doctor is always the caller;
// naming someone else in doctor_id is rejected.
func availabilityInput(w http.ResponseWriter, r *http.Request) (availability.Input, bool) {
	sess, _ := auth.SessionFromContext(r.Context())

	var req AvailabilityRequest
	if !decodeJSON(w, r, &req) {
		return availability.Input{}, false
	}

	p := newFieldParser()
	if req.DoctorID != "" {
		if id := p.id("doctor_id", req.DoctorID, false); p.err() == nil && id != sess.ProfileID {
			writeError(w, http.StatusForbidden, "forbidden", "doctors can only manage their own availability")
			return availability.Input{}, false
		}
	}

	in := availability.Input{
		DoctorID:    sess.ProfileID,
		DayOfWeek:   req.DayOfWeek,
		Start:       p.timeOfDay("start_time", req.StartTime),
		End:         p.timeOfDay("end_time", req.EndTime),
		IsRecurring: req.IsRecurring,
		ValidFrom:   p.date("valid_from", req.ValidFrom, true),
	}
	if req.Recurrence != nil {
		in.Recurrence = *req.Recurrence
	}
	if req.ValidUntil != nil && *req.ValidUntil != "" {
		until := p.date("valid_until", *req.ValidUntil, true)
		in.ValidUntil = &until
	}
	if err := p.err(); err != nil {
		handleServiceError(w, r, err)
		return availability.Input{}, false
	}
	return in, true
}

func createAvailabilityHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := availabilityInput(w, r)
		if !ok {
			return
		}

		created, err := svc.Create(r.Context(), in)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAvailabilityResponse(*created))
	}
}

func updateAvailabilityHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := auth.SessionFromContext(r.Context())

		id, ok := urlUUID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_availability_id", "id must be a valid UUID")
			return
		}

		in, ok := availabilityInput(w, r)
		if !ok {
			return
		}

		updated, err := svc.Update(r.Context(), sess.ProfileID, id, in)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toAvailabilityResponse(*updated))
	}
}

func deleteAvailabilityHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := auth.SessionFromContext(r.Context())

		id, ok := urlUUID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_availability_id", "id must be a valid UUID")
			return
		}

		if err := svc.Delete(r.Context(), sess.ProfileID, id); err != nil {
			handleServiceError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func addExceptionHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := auth.SessionFromContext(r.Context())

		id, ok := urlUUID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_availability_id", "id must be a valid UUID")
			return
		}

		var req ExceptionRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		p := newFieldParser()
		in := availability.ExceptionInput{
			Date:        p.date("date", req.Date, true),
			IsCancelled: req.IsCancelled,
		}
		if !req.IsCancelled && (req.StartTime != "" || req.EndTime != "") {
			in.Override = &schedule.Interval{
				Start: p.timeOfDay("start_time", req.StartTime),
				End:   p.timeOfDay("end_time", req.EndTime),
			}
		}
		if err := p.err(); err != nil {
			handleServiceError(w, r, err)
			return
		}

		ex, err := svc.AddException(r.Context(), sess.ProfileID, id, in)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toExceptionResponse(*ex))
	}
}

func deleteExceptionHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := auth.SessionFromContext(r.Context())

		id, ok := urlUUID(r, "id")
		exceptionID, exOK := urlUUID(r, "exceptionID")
		if !ok || !exOK {
			writeError(w, http.StatusBadRequest, "invalid_id", "ids must be valid UUIDs")
			return
		}

		if err := svc.DeleteException(r.Context(), sess.ProfileID, id, exceptionID); err != nil {
			handleServiceError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
