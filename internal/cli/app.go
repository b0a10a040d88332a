package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/aretw0/agentforge"
	"github.com/aretw0/agentforge/internal/config"
	"github.com/aretw0/agentforge/internal/logging"
	"github.com/aretw0/agentforge/pkg/adapters/file"
	"github.com/aretw0/agentforge/pkg/adapters/memory"
	redisstore "github.com/aretw0/agentforge/pkg/adapters/redis"
	"github.com/aretw0/agentforge/pkg/catalog"
	"github.com/aretw0/agentforge/pkg/generation"
	"github.com/aretw0/agentforge/pkg/observability"
	"github.com/aretw0/agentforge/pkg/persistence/middleware"
	"github.com/aretw0/agentforge/pkg/ports"
	"github.com/aretw0/agentforge/pkg/runner"
	"github.com/aretw0/agentforge/pkg/schema"
	"github.com/aretw0/agentforge/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "agentforge"

// App bundles a Wizard with the infrastructure built from the configuration.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Wizard   *agentforge.Wizard
	Store    ports.StateStore
	Registry *prometheus.Registry

	closers []func() error
}

// NewLogger builds the application logger on w (Stderr when nil).
func NewLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	if cfg.LogFormat == "json" {
		return logging.NewJSON(w, level), nil
	}
	return logging.NewText(w, level), nil
}

// NewApp wires the wizard, its session store and its metrics.
// Extra options are applied last and may override the defaults.
func NewApp(cfg config.Config, logger *slog.Logger, opts ...agentforge.Option) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	app := &App{Config: cfg, Logger: logger}

	cat := catalog.Default()
	if cfg.Catalog != "" {
		loaded, err := catalog.Load(cfg.Catalog)
		if err != nil {
			return nil, err
		}
		cat = loaded
	}
	rules := schema.DefaultRules().Merge(cat.Rules())

	store, locker, closeStore, err := OpenStore(cfg, rules.SecretNames())
	if err != nil {
		return nil, err
	}
	app.Store = store
	if closeStore != nil {
		app.closers = append(app.closers, closeStore)
	}

	sessionOpts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(locker))
	}

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(MetricsNamespace)
	if err := metrics.Register(app.Registry); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	wizOpts := []agentforge.Option{
		agentforge.WithCatalog(cat),
		agentforge.WithLogger(logger),
		agentforge.WithLifecycleHooks(metrics.Hooks()),
		agentforge.WithLifecycleHooks(observability.LogHooks(logger)),
		agentforge.WithInputFilter(runner.Sanitize),
		agentforge.WithSequencerOptions(generation.WithPhaseDuration(cfg.PhaseDuration)),
		agentforge.WithSessionManager(session.NewManager(store, sessionOpts...)),
	}
	wiz, err := agentforge.New(append(wizOpts, opts...)...)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Wizard = wiz
	return app, nil
}

// Close releases the store connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenStore builds the configured session store.
// With an encryption key, persistent stores seal the whole state and keep
// secrets intact. Without one they mask the secret fields (secretKeys) so no
// credential reaches disk or Redis in clear; the real values then live only
// in this process. Configured redaction patterns always mask.
// The locker is non-nil only for Redis with locking enabled.
func OpenStore(cfg config.Config, secretKeys []string) (ports.StateStore, ports.DistributedLocker, func() error, error) {
	var (
		base   ports.StateStore
		locker ports.DistributedLocker
		closer func() error
	)
	switch cfg.Store.Kind {
	case "", config.StoreMemory:
		return memory.NewStore(), nil, nil, nil
	case config.StoreFile:
		base = file.New(cfg.Store.Dir)
	case config.StoreRedis:
		rc := cfg.Store.Redis
		var opts []redisstore.Option
		if rc.Prefix != "" {
			opts = append(opts, redisstore.WithPrefix(rc.Prefix))
		}
		if rc.TTL > 0 {
			opts = append(opts, redisstore.WithTTL(rc.TTL))
		}
		rs := redisstore.New(rc.Addr, rc.Password, rc.DB, opts...)
		if rc.Lock {
			locker = redisstore.NewLocker(rs.Client(), rs.Prefix())
		}
		base, closer = rs, rs.Close
	default:
		return nil, nil, nil, fmt.Errorf("unknown store kind '%s'", cfg.Store.Kind)
	}

	var (
		mws  []middleware.Middleware
		keys *middleware.Keyring
	)
	if key := strings.TrimSpace(cfg.Security.EncryptionKey); key != "" {
		var err error
		keys, err = middleware.ParseKeyring(key, cfg.Security.FallbackKeys...)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid encryption key: %w", err)
		}
	}

	patterns := cfg.Security.Redact
	if len(patterns) == 0 && keys == nil {
		patterns = middleware.ExactKeys(secretKeys...)
	}
	for _, p := range patterns {
		if _, err := regexp.Compile(p); err != nil {
			return nil, nil, nil, fmt.Errorf("invalid redact pattern '%s': %w", p, err)
		}
	}
	if len(patterns) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(patterns))
	}
	if keys != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(keys))
	}

	return middleware.Chain(base, mws...), locker, closer, nil
}
