//go:build linux

package notify

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	dbusNotifyDest      = "org.freedesktop.Notifications"
	dbusNotifyPath      = "/org/freedesktop/Notifications"
	dbusNotifyInterface = "org.freedesktop.Notifications"

	signalClosed        = dbusNotifyInterface + ".NotificationClosed"
	signalActionInvoked = dbusNotifyInterface + ".ActionInvoked"

	// defaultAction is the action key servers report when the body is clicked.
	defaultAction = "default"

	signalBufferSize = 32

	// maxEarlyCloses bounds how many close signals for not yet registered
	// ids are remembered. The bus broadcasts closes for every application.
	maxEarlyCloses = 64
)

// dbusHost shows notifications via the freedesktop D-Bus service.
type dbusHost struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	appName string
	signals chan *dbus.Signal

	mu          sync.Mutex
	permission  Permission
	active      map[uint32]*dbusNotification
	earlyCloses []Event
}

// New creates a Host backed by the D-Bus session bus.
// Returns an unsupported host if D-Bus is unavailable.
func New(appName string) (Host, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		// D-Bus not available: callers see Supported() == false
		return NewUnsupported(), nil //nolint:nilerr // graceful fallback when D-Bus unavailable
	}

	h := newDBusHost(conn.Object(dbusNotifyDest, dbusNotifyPath), appName)
	h.conn = conn

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(dbusNotifyPath),
		dbus.WithMatchInterface(dbusNotifyInterface),
	); err != nil {
		return nil, fmt.Errorf("subscribe to notification signals: %w", err)
	}
	conn.Signal(h.signals)
	go h.dispatch()

	return h, nil
}

func newDBusHost(obj dbus.BusObject, appName string) *dbusHost {
	return &dbusHost{
		obj:     obj,
		appName: appName,
		signals: make(chan *dbus.Signal, signalBufferSize),
		active:  make(map[uint32]*dbusNotification),
	}
}

func (h *dbusHost) Supported() bool { return true }

func (h *dbusHost) Permission() Permission {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.permission
}

// RequestPermission grants permission when a notification server answers
// on the bus, and denies it otherwise.
func (h *dbusHost) RequestPermission(cb func(Permission)) {
	go func() {
		p := PermissionDenied
		if call := h.obj.Call(dbusNotifyInterface+".GetServerInformation", 0); call.Err == nil {
			p = PermissionGranted
		}

		h.mu.Lock()
		h.permission = p
		h.mu.Unlock()

		cb(p)
	}()
}

// Show sends a notification via D-Bus.
func (h *dbusHost) Show(title string, opts Options) (Native, error) {
	hints := make(map[string]dbus.Variant, len(opts.Hints)+2)
	for k, v := range opts.Hints {
		hints[k] = hintVariant(v)
	}
	// computed hints keep their D-Bus types
	hints["urgency"] = dbus.MakeVariant(opts.Urgency.Level())
	hints["desktop-entry"] = dbus.MakeVariant(h.appName)

	// Always register the default action so clicks are reported.
	actions := []string{defaultAction, ""}
	for _, key := range slices.Sorted(maps.Keys(opts.Actions)) {
		if key == defaultAction {
			actions[1] = opts.Actions[key]
			continue
		}
		actions = append(actions, key, opts.Actions[key])
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = -1
	}

	// Notify(app_name, replaces_id, icon, summary, body, actions, hints, timeout) -> id
	call := h.obj.Call(
		dbusNotifyInterface+".Notify",
		0,
		h.appName,
		opts.ReplacesID,
		opts.Icon,
		title,
		opts.Body,
		actions,
		hints,
		timeout,
	)
	if call.Err != nil {
		return nil, call.Err
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return nil, err
	}

	n := &dbusNotification{host: h, id: id, listeners: make(map[string][]func(Event))}

	h.mu.Lock()
	defer h.mu.Unlock()
	// the server may have closed it before the Notify reply was processed
	if i := slices.IndexFunc(h.earlyCloses, func(ev Event) bool { return ev.ID == id }); i >= 0 {
		ev := h.earlyCloses[i]
		h.earlyCloses = slices.Delete(h.earlyCloses, i, i+1)
		n.closed = &ev
		return n, nil
	}
	h.active[id] = n
	return n, nil
}

// hintVariant wraps a pass-through hint. Integers become int32, the type
// the freedesktop spec uses for integer hints (x, y, ...); config files
// decode them as int64.
func hintVariant(v any) dbus.Variant {
	switch i := v.(type) {
	case int:
		if i >= math.MinInt32 && i <= math.MaxInt32 {
			return dbus.MakeVariant(int32(i))
		}
	case int64:
		if i >= math.MinInt32 && i <= math.MaxInt32 {
			return dbus.MakeVariant(int32(i))
		}
	}
	return dbus.MakeVariant(v)
}

// dispatch routes notification signals to the notification they target.
// It returns when the signal channel is closed.
func (h *dbusHost) dispatch() {
	for sig := range h.signals {
		if len(sig.Body) < 2 {
			continue
		}
		id, ok := sig.Body[0].(uint32)
		if !ok {
			continue
		}

		switch sig.Name {
		case signalClosed:
			reason, _ := sig.Body[1].(uint32)
			h.deliver(Event{Name: EventClose, ID: id, Reason: CloseReason(reason)})
		case signalActionInvoked:
			key, _ := sig.Body[1].(string)
			name := EventAction
			if key == defaultAction {
				name = EventClick
			}
			h.deliver(Event{Name: name, ID: id, Action: key})
		}
	}
}

func (h *dbusHost) deliver(ev Event) {
	h.mu.Lock()
	n := h.active[ev.ID]
	if ev.Name == EventClose {
		if n == nil {
			h.rememberCloseLocked(ev)
		}
		delete(h.active, ev.ID)
	}
	h.mu.Unlock()

	if n != nil {
		n.emit(ev)
	}
}

func (h *dbusHost) rememberCloseLocked(ev Event) {
	if len(h.earlyCloses) >= maxEarlyCloses {
		h.earlyCloses = slices.Delete(h.earlyCloses, 0, 1)
	}
	h.earlyCloses = append(h.earlyCloses, ev)
}

// dbusNotification is a notification shown through the D-Bus server.
type dbusNotification struct {
	host *dbusHost
	id   uint32

	mu        sync.Mutex
	listeners map[string][]func(Event)
	closed    *Event
}

func (n *dbusNotification) ID() uint32 { return n.id }

// AddEventListener attaches fn. A close listener added after the server
// closed the notification is called right away on its own goroutine.
func (n *dbusNotification) AddEventListener(name string, fn func(Event)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if name == EventClose && n.closed != nil {
		go fn(*n.closed)
		return
	}
	n.listeners[name] = append(n.listeners[name], fn)
}

// Close closes the notification by ID. The server answers with a
// NotificationClosed signal, which is delivered as a close event.
func (n *dbusNotification) Close() error {
	call := n.host.obj.Call(dbusNotifyInterface+".CloseNotification", 0, n.id)
	return call.Err
}

func (n *dbusNotification) emit(ev Event) {
	n.mu.Lock()
	if ev.Name == EventClose {
		n.closed = &ev
	}
	fns := slices.Clone(n.listeners[ev.Name])
	n.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
