// Package notification wraps a notify.Host in permission-aware handles.
//
// A handle is returned synchronously even while permission is still being
// requested. Listeners, close requests and the auto-close delay issued
// before the host notification exists are buffered and replayed once
// permission is granted.
package notification

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/llehouerou/deskbell/internal/notify"
	"github.com/llehouerou/deskbell/internal/permission"
)

// ErrUnsupported is returned by Provider.New when the host cannot show
// notifications at all.
var ErrUnsupported = errors.New("desktop notifications are not supported in this environment")

// Provider creates notifications for one host. It holds the default
// options; providers on the same host share one permission gate.
type Provider struct {
	host  notify.Host
	gate  *permission.Gate
	clock clockwork.Clock
	log   *slog.Logger

	mu       sync.RWMutex
	defaults notify.Options
}

// Option configures a Provider.
type Option func(*Provider)

// WithDefaults sets the options merged under every notification.
func WithDefaults(defaults notify.Options) Option {
	return func(p *Provider) { p.defaults = defaults }
}

// WithClock sets the clock used for auto-close delays.
func WithClock(c clockwork.Clock) Option {
	return func(p *Provider) { p.clock = c }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Provider) { p.log = log }
}

// WithGate replaces the host's process-wide gate with g.
func WithGate(g *permission.Gate) Option {
	return func(p *Provider) { p.gate = g }
}

// NewProvider creates a Provider for host.
func NewProvider(host notify.Host, opts ...Option) *Provider {
	p := &Provider{host: host}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	if p.clock == nil {
		p.clock = clockwork.NewRealClock()
	}
	if p.gate == nil {
		p.gate = permission.For(host, p.log)
	}
	return p
}

// SetOptions replaces the default options for notifications created
// from now on.
func (p *Provider) SetOptions(defaults notify.Options) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.defaults = defaults
}

// Defaults returns the current default options.
func (p *Provider) Defaults() notify.Options {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.defaults
}

// Supported reports whether the host can show notifications at all.
func (p *Provider) Supported() bool {
	return p.host != nil && p.host.Supported()
}

// Gate returns the provider's permission gate.
func (p *Provider) Gate() *permission.Gate {
	return p.gate
}

// New returns a handle for a notification titled title. Caller options are
// merged over the defaults. The host notification is created as soon as
// permission is granted, which may be before New returns.
func (p *Provider) New(title string, opts notify.Options) (*Notification, error) {
	if !p.Supported() {
		return nil, ErrUnsupported
	}

	n := newNotification(title, notify.Merge(p.Defaults(), opts), p.clock, p.log)
	p.gate.Check(func(granted bool) {
		if granted {
			n.activate(p.host)
			return
		}
		n.deny()
	})
	return n, nil
}
