package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInitIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}

func TestTransitionsCounter(t *testing.T) {
	before := testutil.ToFloat64(JobCardTransitions.WithLabelValues("accept", "accepted"))
	JobCardTransitions.WithLabelValues("accept", "accepted").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(JobCardTransitions.WithLabelValues("accept", "accepted")))
}
