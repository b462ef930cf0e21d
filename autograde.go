package autograde

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/autograde/internal/logging"
	loamAdapter "github.com/aretw0/autograde/pkg/adapters/loam"
	"github.com/aretw0/autograde/pkg/catalog"
	"github.com/aretw0/autograde/pkg/domain"
	"github.com/aretw0/autograde/pkg/feedback"
	"github.com/aretw0/autograde/pkg/hooks"
	"github.com/aretw0/autograde/pkg/ports"
	"github.com/aretw0/autograde/pkg/session"
	"github.com/aretw0/autograde/pkg/tracker"
	"github.com/aretw0/autograde/pkg/verify"
)

// Version is set at build time with -ldflags "-X github.com/aretw0/autograde.Version=...".
var Version = "dev"

// Tutor is the high-level entry point of the library. It binds a catalogue
// to a verifier, a renderer and a session manager.
type Tutor struct {
	catalog  *catalog.Catalog
	manager  *session.Manager
	verifier *verify.Verifier
	renderer *feedback.Renderer

	store       ports.ProgressStore
	locker      ports.DistributedLocker
	hooks       domain.LifecycleHooks
	hookTimeout time.Duration
	homeDir     string
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Tutor.
type Option func(*Tutor)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(t *Tutor) {
		t.hooks = t.hooks.Merge(h)
	}
}

// WithStore sets the session progress store.
func WithStore(store ports.ProgressStore) Option {
	return func(t *Tutor) {
		t.store = store
	}
}

// WithLocker enables distributed session locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(t *Tutor) {
		t.locker = locker
	}
}

// WithRenderer sets the message renderer. Defaults to feedback.Plain().
func WithRenderer(r *feedback.Renderer) Option {
	return func(t *Tutor) {
		t.renderer = r
	}
}

// WithHookTimeout bounds eject hook evaluation.
func WithHookTimeout(d time.Duration) Option {
	return func(t *Tutor) {
		t.hookTimeout = d
	}
}

// WithHomeDir sets the fallback home directory for "~" paths.
func WithHomeDir(dir string) Option {
	return func(t *Tutor) {
		t.homeDir = dir
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tutor) {
		t.logger = logger
	}
}

// New builds a Tutor around an already loaded catalogue.
func New(cat *catalog.Catalog, opts ...Option) *Tutor {
	t := &Tutor{
		catalog:     cat,
		hookTimeout: verify.DefaultHookTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logging.NewNop()
	}
	if t.renderer == nil {
		t.renderer = feedback.Plain()
	}

	verifyOpts := []verify.Option{
		verify.WithLogger(t.logger),
		verify.WithHookTimeout(t.hookTimeout),
		verify.WithLifecycleHooks(t.hooks),
	}
	if t.homeDir != "" {
		verifyOpts = append(verifyOpts, verify.WithHomeDir(t.homeDir))
	}
	t.verifier = verify.New(verifyOpts...)

	sessionOpts := []session.Option{
		session.WithLogger(t.logger),
		session.WithVerifier(t.verifier),
		session.WithRenderer(t.renderer),
	}
	if t.store != nil {
		sessionOpts = append(sessionOpts, session.WithStore(t.store))
	}
	if t.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(t.locker))
	}
	t.manager = session.NewManager(cat, sessionOpts...)
	return t
}

// Open loads a catalogue from path and builds a Tutor around it.
// A directory is read as a Markdown catalogue; anything else as a YAML
// (or JSON) catalogue file.
func Open(ctx context.Context, path string, hookRegistry *hooks.Registry, opts ...Option) (*Tutor, error) {
	cat, err := LoadCatalog(ctx, path, hookRegistry)
	if err != nil {
		return nil, err
	}
	return New(cat, opts...), nil
}

// LoadCatalog reads a catalogue from a file or a Markdown directory.
func LoadCatalog(ctx context.Context, path string, hookRegistry *hooks.Registry) (*catalog.Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("catalogue %s: %w", path, err)
	}
	if info.IsDir() {
		return loamAdapter.LoadDir(ctx, path, hookRegistry)
	}
	return catalog.LoadFile(path, hookRegistry)
}

// Catalog returns the loaded catalogue.
func (t *Tutor) Catalog() *catalog.Catalog {
	return t.catalog
}

// Sessions returns the multi-learner session manager.
func (t *Tutor) Sessions() *session.Manager {
	return t.manager
}

// Verifier returns the shared verification pipeline.
func (t *Tutor) Verifier() *verify.Verifier {
	return t.verifier
}

// NewTracker returns a standalone single-learner tracker with fresh progress.
// Trackers are not safe for concurrent use.
func (t *Tutor) NewTracker() (*tracker.Tracker, error) {
	reg, err := t.catalog.NewRegistry()
	if err != nil {
		return nil, err
	}
	return tracker.New(reg,
		tracker.WithMessages(tracker.Messages{Start: t.catalog.StartMessage, End: t.catalog.EndMessage}),
		tracker.WithVerifier(t.verifier),
		tracker.WithRenderer(t.renderer),
	), nil
}
