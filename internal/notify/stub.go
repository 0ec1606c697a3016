//go:build !linux

package notify

import (
	"sync"

	"github.com/gen2brain/beeep"
)

// beeepHost shows notifications through the platform toast APIs.
// The operating system owns the permission decision, so it always
// reports PermissionGranted.
type beeepHost struct{}

// New returns a beeep-backed Host on non-Linux platforms.
func New(appName string) (Host, error) {
	beeep.AppName = appName
	return &beeepHost{}, nil
}

func (h *beeepHost) Supported() bool { return true }

func (h *beeepHost) Permission() Permission { return PermissionGranted }

func (h *beeepHost) RequestPermission(cb func(Permission)) { cb(PermissionGranted) }

func (h *beeepHost) Show(title string, opts Options) (Native, error) {
	if err := beeep.Notify(title, opts.Body, opts.Icon); err != nil {
		return nil, err
	}
	return &beeepNotification{listeners: make(map[string][]func(Event))}, nil
}

// beeepNotification cannot be withdrawn once shown; Close only reports the
// close event to listeners.
type beeepNotification struct {
	mu        sync.Mutex
	closed    bool
	listeners map[string][]func(Event)
}

func (n *beeepNotification) ID() uint32 { return 0 }

func (n *beeepNotification) AddEventListener(name string, fn func(Event)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners[name] = append(n.listeners[name], fn)
}

func (n *beeepNotification) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	fns := n.listeners[EventClose]
	n.mu.Unlock()

	for _, fn := range fns {
		fn(Event{Name: EventClose, Reason: CloseReasonClosed})
	}
	return nil
}
