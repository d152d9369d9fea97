package api

import (
	"net/http"

	"github.com/hackgods/medbook/internal/timeslot"
)

// searchTimeslotsHandler accepts type as an alias of specialty.
func searchTimeslotsHandler(svc *timeslot.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		specialty := q.Get("specialty")
		if specialty == "" {
			specialty = q.Get("type")
		}

		p := newFieldParser()
		from := p.date("date", q.Get("date"), false)
		if err := p.err(); err != nil {
			handleServiceError(w, r, err)
			return
		}

		days, err := svc.Search(r.Context(), specialty, from)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toDaySlotsResponse(days))
	}
}
