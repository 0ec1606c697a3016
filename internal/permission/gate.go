// Package permission tracks the host's notification permission and runs
// work once it is granted.
package permission

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/llehouerou/deskbell/internal/notify"
)

// Gate is the single source of truth for notification permission.
//
// The state is read from the host on first use and afterwards changes only
// when a host permission request resolves. Continuations always run
// outside the gate's lock.
type Gate struct {
	host notify.Host
	log  *slog.Logger

	mu     sync.Mutex
	state  notify.Permission
	loaded bool
}

// New creates a Gate for host. A nil logger uses slog.Default().
func New(host notify.Host, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{host: host, log: log}
}

var (
	sharedMu sync.Mutex
	shared   = make(map[notify.Host]*Gate)
)

// For returns the process-wide Gate for host, creating it on first use.
// Hosts whose dynamic type is not comparable get a fresh Gate each call.
func For(host notify.Host, log *slog.Logger) *Gate {
	if host == nil || !reflect.TypeOf(host).Comparable() {
		return New(host, log)
	}

	sharedMu.Lock()
	defer sharedMu.Unlock()
	if g, ok := shared[host]; ok {
		return g
	}
	g := New(host, log)
	shared[host] = g
	return g
}

// State returns the current permission state.
func (g *Gate) State() notify.Permission {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentLocked()
}

func (g *Gate) currentLocked() notify.Permission {
	if !g.loaded {
		g.state = g.host.Permission()
		g.loaded = true
	}
	return g.state
}

// resolve records a host permission response.
func (g *Gate) resolve(p notify.Permission) {
	g.mu.Lock()
	g.state = p
	g.loaded = true
	g.mu.Unlock()
	g.log.Debug("notification permission resolved", slog.String("permission", p.String()))
}

// Check reports the permission outcome to onResolved exactly once.
//
// Granted and Denied states report immediately, on the caller's goroutine.
// Otherwise a permission request is issued to the host and onResolved runs
// when it answers. Concurrent checks each issue their own request.
func (g *Gate) Check(onResolved func(granted bool)) {
	g.mu.Lock()
	state := g.currentLocked()
	g.mu.Unlock()

	switch state {
	case notify.PermissionGranted:
		onResolved(true)
	case notify.PermissionDenied:
		onResolved(false)
	default:
		g.log.Debug("requesting notification permission")
		g.host.RequestPermission(func(p notify.Permission) {
			g.resolve(p)
			onResolved(p == notify.PermissionGranted)
		})
	}
}

// EnsurePermission runs onGranted once permission is granted. If permission
// is denied, onGranted is dropped without being called.
func (g *Gate) EnsurePermission(onGranted func()) {
	g.Check(func(granted bool) {
		if granted {
			onGranted()
		}
	})
}

// Request asks the host for permission when the state is still Default and
// calls done with the resulting state.
func (g *Gate) Request(done func(notify.Permission)) {
	g.Check(func(bool) {
		done(g.State())
	})
}
