package main

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOperationMetrics_Stats(t *testing.T) {
	var om OperationMetrics
	for i := 100; i >= 1; i-- {
		om.Record(time.Duration(i)*time.Millisecond, i%10 != 0, i%10 == 0)
	}

	st := om.Stats()
	assert.Equal(t, time.Millisecond, st.Min)
	assert.Equal(t, 100*time.Millisecond, st.Max)
	assert.Equal(t, 50500*time.Microsecond, st.Avg)
	assert.Equal(t, 51*time.Millisecond, st.P50)
	assert.Equal(t, 96*time.Millisecond, st.P95)
	assert.Equal(t, 100*time.Millisecond, st.P99)

	assert.EqualValues(t, 100, om.Total)
	assert.EqualValues(t, 90, om.Success)
	assert.EqualValues(t, 10, om.Conflict)
	assert.EqualValues(t, 0, om.Error)
}

func TestOperationMetrics_Empty(t *testing.T) {
	var om OperationMetrics
	assert.Equal(t, LatencyStats{}, om.Stats())
	assert.Empty(t, om.Report("Search"))
}

func TestOperationMetrics_ConcurrentRecord(t *testing.T) {
	var om OperationMetrics
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				om.Record(time.Millisecond, false, false)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 2000, om.Total)
	assert.EqualValues(t, 2000, om.Error)
	assert.Len(t, om.Latencies, 2000)
	assert.Contains(t, om.Report("Book"), "Errors: 2000 (100.0%)")
}
