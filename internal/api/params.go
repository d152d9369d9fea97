package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackgods/medbook/internal/schedule"
	"github.com/hackgods/medbook/internal/validate"
)

// fieldParser accumulates parse failures of one request into a validate.Errors.
type fieldParser struct {
	errs validate.Errors
}

func newFieldParser() *fieldParser {
	return &fieldParser{errs: validate.Errors{}}
}

func (p *fieldParser) id(field, raw string, required bool) uuid.UUID {
	if raw == "" {
		if required {
			p.errs.Add(field, "is required")
		}
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		p.errs.Add(field, "must be a valid UUID")
	}
	return id
}

// date accepts "YYYY-MM-DD" or an RFC 3339 timestamp and returns the UTC day.
func (p *fieldParser) date(field, raw string, required bool) time.Time {
	if raw == "" {
		if required {
			p.errs.Add(field, "is required")
		}
		return time.Time{}
	}
	if d, err := time.Parse(time.DateOnly, raw); err == nil {
		return d
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return schedule.DateOf(t)
	}
	p.errs.Add(field, "must be a date (YYYY-MM-DD)")
	return time.Time{}
}

func (p *fieldParser) timestamp(field, raw string) time.Time {
	if raw == "" {
		p.errs.Add(field, "is required")
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		p.errs.Add(field, "must be an RFC 3339 timestamp")
		return time.Time{}
	}
	return t.UTC()
}

// timeOfDay accepts "HH:MM" or an RFC 3339 timestamp, whose UTC hour and minute are used.
func (p *fieldParser) timeOfDay(field, raw string) schedule.TimeOfDay {
	if raw == "" {
		p.errs.Add(field, "is required")
		return schedule.TimeOfDay{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return schedule.TimeOfDayOf(t)
	}
	tod, err := schedule.ParseTimeOfDay(raw)
	if err != nil {
		p.errs.Add(field, "must be HH:MM or an RFC 3339 timestamp")
	}
	return tod
}

func (p *fieldParser) flag(field, raw string) bool {
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.errs.Add(field, "must be true or false")
	}
	return b
}

func (p *fieldParser) err() error {
	return p.errs.Err()
}

func urlUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}
