package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/agentforge/internal/runtime"
	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/generation"
	"github.com/aretw0/agentforge/pkg/observability"
	"github.com/aretw0/agentforge/pkg/registry"
	"github.com/aretw0/agentforge/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordWizardRun(t *testing.T) {
	m := observability.NewMetrics("test")
	require.NoError(t, m.Register(prometheus.NewRegistry()))

	eng := runtime.NewEngine(
		registry.Default([]string{"scheduled-check"}, []string{"google-sheet"}),
		schema.NewDeriver(schema.DefaultRules()),
		runtime.WithLifecycleHooks(m.Hooks()),
	)
	ctx := context.Background()

	s := eng.Start(ctx, "s1")
	s, err := eng.Advance(ctx, s, map[string]string{domain.KeyInputSource: "scheduled-check"})
	require.NoError(t, err)
	s, err = eng.Retreat(ctx, s)
	require.NoError(t, err)
	s, err = eng.Advance(ctx, s, map[string]string{domain.KeyInputSource: "scheduled-check"})
	require.NoError(t, err)
	s, err = eng.Advance(ctx, s, map[string]string{domain.KeyOutputChannel: "google-sheet"})
	require.NoError(t, err)
	_, err = eng.Advance(ctx, s, map[string]string{})
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StepVisits.WithLabelValues(registry.StepInputSource)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepRetreats.WithLabelValues(registry.StepInputSource)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues(registry.StepConfigure)))

	seq := generation.New(
		generation.WithSleeper(generation.NoSleep),
		generation.WithLifecycleHooks(m.Hooks()),
	)
	_, err = seq.Start(ctx, domain.NewDraft(map[string]string{
		domain.KeyInputSource:   "scheduled-check",
		domain.KeyOutputChannel: "google-sheet",
	}), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Configurations))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GenerationSeconds))
}

func TestMetrics_RegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, observability.NewMetrics("").Register(reg))
	assert.Error(t, observability.NewMetrics("").Register(reg))
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	hooks := observability.LogHooks(logger)
	hooks.OnPhase(context.Background(), &domain.PhaseEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventPhase, SessionID: "s1"},
		Progress:  domain.Progress{Label: "Running checks", Completed: 6, Total: 7, Percent: 600.0 / 7},
	})

	assert.Contains(t, buf.String(), `"msg":"generation_phase"`)
	assert.Contains(t, buf.String(), `"phase":"Running checks"`)
}
