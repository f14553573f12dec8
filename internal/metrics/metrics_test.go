package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransition(t *testing.T) {
	applied := testutil.ToFloat64(TransitionsTotal.WithLabelValues("active", "applied"))
	skipped := testutil.ToFloat64(TransitionsTotal.WithLabelValues("active", "skipped"))

	RecordTransition("active", true)
	RecordTransition("active", false)
	RecordTransition("active", false)

	assert.Equal(t, applied+1, testutil.ToFloat64(TransitionsTotal.WithLabelValues("active", "applied")))
	assert.Equal(t, skipped+2, testutil.ToFloat64(TransitionsTotal.WithLabelValues("active", "skipped")))
}

func TestRecordUpstreamFailureAndLaunch(t *testing.T) {
	before := testutil.ToFloat64(UpstreamFailuresTotal.WithLabelValues("end_call"))
	RecordUpstreamFailure("end_call")
	assert.Equal(t, before+1, testutil.ToFloat64(UpstreamFailuresTotal.WithLabelValues("end_call")))

	launches := testutil.ToFloat64(AgentLaunchTotal.WithLabelValues("failed"))
	RecordAgentLaunch("failed")
	assert.Equal(t, launches+1, testutil.ToFloat64(AgentLaunchTotal.WithLabelValues("failed")))
}
