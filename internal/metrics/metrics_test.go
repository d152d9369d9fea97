package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(appointmentsBooked)
	IncAppointmentBooked()
	assert.Equal(t, before+1, testutil.ToFloat64(appointmentsBooked))

	before = testutil.ToFloat64(availabilityConflicts)
	IncAvailabilityConflict()
	assert.Equal(t, before+1, testutil.ToFloat64(availabilityConflicts))

	IncHTTPRequest("GET", "/timeslots", 200)
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/timeslots", "200")))

	ObserveSlotSearch(20 * time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(slotSearchDuration))
}
