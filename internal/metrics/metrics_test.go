package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/codex-k8s/telegram-navigator/internal/callmess"
)

func TestObserve(t *testing.T) {
	m := New()
	m.ObserveResult(callmess.Result{Outcome: callmess.OutcomeFallback, FellBack: true})
	m.ObserveResult(callmess.Result{Outcome: callmess.OutcomeRendered})
	m.ObserveTransition("goto")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("rendered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("goto")))

	var nilMetrics *Metrics
	nilMetrics.ObserveTransition("home")
}
