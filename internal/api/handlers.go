package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hackgods/medbook/internal/appointment"
	"github.com/hackgods/medbook/internal/auth"
)

func createAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := auth.SessionFromContext(r.Context())

		var req CreateAppointmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		// a patient books for themselves, a doctor into their own agenda
		switch sess.Role {
		case auth.RolePatient:
			if req.PatientID == "" {
				req.PatientID = sess.ProfileID.String()
			}
		case auth.RoleDoctor:
			if req.DoctorID == "" {
				req.DoctorID = sess.ProfileID.String()
			}
		}

		p := newFieldParser()
		in := appointment.CreateInput{
			DoctorID:  p.id("doctor_id", req.DoctorID, true),
			PatientID: p.id("patient_id", req.PatientID, true),
			StartTime: p.timestamp("start_time", req.StartTime),
			EndTime:   p.timestamp("end_time", req.EndTime),
			Notes:     req.Notes,
		}
		if err := p.err(); err != nil {
			handleServiceError(w, r, err)
			return
		}

		if (sess.Role == auth.RolePatient && in.PatientID != sess.ProfileID) ||
			(sess.Role == auth.RoleDoctor && in.DoctorID != sess.ProfileID) {
			writeError(w, http.StatusForbidden, "forbidden", "cannot book on behalf of another user")
			return
		}

		appt, err := svc.CreateAppointment(r.Context(), in)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(*appt))
	}
}

func cancelAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := auth.SessionFromContext(r.Context())

		id, ok := urlUUID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		if err := svc.CancelAppointment(r.Context(), sess, id); err != nil {
			handleServiceError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// listAppointmentsHandler lists the caller's own appointments; doctor_id and
// patient_id narrow the other side.
func listAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := auth.SessionFromContext(r.Context())
		q := r.URL.Query()

		p := newFieldParser()
		f := appointment.ListFilter{IncludePast: p.flag("include_past", q.Get("include_past"))}
		doctorID := p.id("doctor_id", q.Get("doctor_id"), false)
		patientID := p.id("patient_id", q.Get("patient_id"), false)
		if err := p.err(); err != nil {
			handleServiceError(w, r, err)
			return
		}

		switch sess.Role {
		case auth.RolePatient:
			if patientID != uuid.Nil && patientID != sess.ProfileID {
				writeError(w, http.StatusForbidden, "forbidden", "cannot list another patient's appointments")
				return
			}
			patientID = sess.ProfileID
		case auth.RoleDoctor:
			if doctorID != uuid.Nil && doctorID != sess.ProfileID {
				writeError(w, http.StatusForbidden, "forbidden", "cannot list another doctor's appointments")
				return
			}
			doctorID = sess.ProfileID
		}
		if doctorID != uuid.Nil {
			f.DoctorID = &doctorID
		}
		if patientID != uuid.Nil {
			f.PatientID = &patientID
		}

		list, err := svc.ListAppointments(r.Context(), f)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		resp := make([]AppointmentResponse, 0, len(list))
		for _, d := range list {
			resp = append(resp, toAppointmentDetailResponse(d))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
