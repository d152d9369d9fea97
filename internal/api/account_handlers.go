package api

import (
	"net/http"

	"github.com/hackgods/medbook/internal/account"
	"github.com/hackgods/medbook/internal/auth"
)

func registerDoctorHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterDoctorRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		d, err := svc.RegisterDoctor(r.Context(), account.RegisterDoctorInput{
			LoginID:   req.LoginID,
			Password:  req.Password,
			Name:      req.Name,
			Email:     req.Email,
			Phone:     account.Phone{Prefix: req.Phone.Prefix, Number: req.Phone.Number},
			Gender:    account.Gender(req.Gender),
			Specialty: req.Specialty,
		})
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toDoctorResponse(*d))
	}
}

func registerPatientHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterPatientRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		p := newFieldParser()
		dob := p.date("date_of_birth", req.DateOfBirth, true)
		if err := p.err(); err != nil {
			handleServiceError(w, r, err)
			return
		}

		patient, err := svc.RegisterPatient(r.Context(), account.RegisterPatientInput{
			LoginID:     req.LoginID,
			Password:    req.Password,
			Name:        req.Name,
			Email:       req.Email,
			Phone:       account.Phone{Prefix: req.Phone.Prefix, Number: req.Phone.Number},
			Gender:      account.Gender(req.Gender),
			DateOfBirth: dob,
			Address:     req.Address,
		})
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPatientResponse(*patient))
	}
}

func loginHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := svc.Login(r.Context(), req.LoginID, req.Password)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{
			Token:     res.Token,
			Role:      string(res.Session.Role),
			UserID:    res.Session.UserID,
			ProfileID: res.Session.ProfileID,
		})
	}
}

func profileHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := auth.SessionFromContext(r.Context())

		prof, err := svc.Profile(r.Context(), sess)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toProfileResponse(prof))
	}
}

func changePasswordHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := auth.SessionFromContext(r.Context())

		var req ChangePasswordRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		if err := svc.ChangePassword(r.Context(), sess, req.OldPassword, req.NewPassword); err != nil {
			handleServiceError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func listDoctorsHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := svc.ListDoctors(r.Context(), r.URL.Query().Get("specialty"))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		resp := make([]DoctorResponse, 0, len(doctors))
		for _, d := range doctors {
			resp = append(resp, toDoctorResponse(d))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
