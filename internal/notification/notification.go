package notification

import (
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/llehouerou/deskbell/internal/notify"
)

// State is the lifecycle state of a Notification.
type State int

const (
	StateAwaitingPermission State = iota
	StateActive
	StateDenied
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAwaitingPermission:
		return "awaiting-permission"
	case StateActive:
		return "active"
	case StateDenied:
		return "denied"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type listener struct {
	event string
	fn    func(notify.Event)
}

// Notification is a handle on a host notification that may not exist yet.
type Notification struct {
	title   string
	options notify.Options
	clock   clockwork.Clock
	log     *slog.Logger

	mu           sync.Mutex
	state        State
	native       notify.Native
	pending      []listener
	pendingClose bool
	timer        clockwork.Timer
	done         chan struct{}
}

func newNotification(title string, opts notify.Options, c clockwork.Clock, log *slog.Logger) *Notification {
	return &Notification{
		title:   title,
		options: opts,
		clock:   c,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Title returns the notification title.
func (n *Notification) Title() string { return n.title }

// Options returns the merged options the notification is shown with.
func (n *Notification) Options() notify.Options { return n.options }

// State returns the current lifecycle state.
func (n *Notification) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Native returns the host notification, or nil if it was not created.
func (n *Notification) Native() notify.Native {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.native
}

// Done is closed when the notification is denied or closed.
func (n *Notification) Done() <-chan struct{} {
	return n.done
}

// On registers fn for events named event. Before the host notification
// exists the listener is buffered and attached later in registration order.
// Listeners on a denied notification never fire.
func (n *Notification) On(event string, fn func(notify.Event)) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.native != nil {
		n.native.AddEventListener(event, fn)
		return
	}
	if n.state == StateAwaitingPermission {
		n.pending = append(n.pending, listener{event: event, fn: fn})
	}
}

// Close closes the notification and cancels its auto-close delay.
// Closing before permission resolves closes the notification right after
// it is created. Closing again, or closing a denied notification, does
// nothing.
func (n *Notification) Close() error {
	n.mu.Lock()
	switch n.state {
	case StateAwaitingPermission:
		n.pendingClose = true
		n.mu.Unlock()
		return nil
	case StateActive:
		native := n.native
		n.terminateLocked(StateClosed)
		n.mu.Unlock()
		return native.Close()
	default:
		n.mu.Unlock()
		return nil
	}
}

// activate creates the host notification and replays buffered intents.
func (n *Notification) activate(host notify.Host) {
	n.mu.Lock()
	if n.native != nil || n.state != StateAwaitingPermission {
		n.mu.Unlock()
		return
	}
	n.mu.Unlock()

	native, err := host.Show(n.title, n.options)

	n.mu.Lock()
	if err != nil {
		pending := n.pending
		n.terminateLocked(StateClosed)
		n.mu.Unlock()

		n.log.Warn("show notification failed", slog.String("title", n.title), slog.Any("error", err))
		ev := notify.Event{Name: notify.EventError, Err: err}
		for _, l := range pending {
			if l.event == notify.EventError {
				l.fn(ev)
			}
		}
		return
	}

	n.native = native
	native.AddEventListener(notify.EventClose, n.onNativeClose)
	for _, l := range n.pending {
		native.AddEventListener(l.event, l.fn)
	}
	n.pending = nil

	if n.pendingClose {
		n.terminateLocked(StateClosed)
		n.mu.Unlock()
		if err := native.Close(); err != nil {
			n.log.Warn("close notification failed", slog.String("title", n.title), slog.Any("error", err))
		}
		return
	}

	n.state = StateActive
	if n.options.Delay > 0 {
		n.timer = n.clock.AfterFunc(n.options.Delay, n.expire)
	}
	n.mu.Unlock()

	n.log.Debug("notification shown",
		slog.String("title", n.title),
		slog.Uint64("id", uint64(native.ID())),
		slog.Duration("delay", max(n.options.Delay, 0)))
}

// deny marks the notification as permanently not shown.
func (n *Notification) deny() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != StateAwaitingPermission {
		return
	}
	n.terminateLocked(StateDenied)
	n.log.Debug("notification permission denied", slog.String("title", n.title))
}

func (n *Notification) expire() {
	if err := n.Close(); err != nil {
		n.log.Warn("auto-close notification failed", slog.String("title", n.title), slog.Any("error", err))
	}
}

// onNativeClose tracks notifications closed by the host or the user.
func (n *Notification) onNativeClose(notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == StateActive {
		n.terminateLocked(StateClosed)
	}
}

// terminateLocked moves to a terminal state. Callers hold n.mu.
func (n *Notification) terminateLocked(s State) {
	n.state = s
	n.pending = nil
	n.pendingClose = false
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	close(n.done)
}
