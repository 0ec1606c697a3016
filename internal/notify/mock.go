package notify

import (
	"slices"
	"sync"
)

// ShowCall records one Mock.Show invocation.
type ShowCall struct {
	Title   string
	Options Options
}

// Mock is a test double for Host.
type Mock struct {
	mu          sync.Mutex
	unsupported bool
	permission  Permission
	pending     []func(Permission)
	requests    int
	shows       []ShowCall
	natives     []*MockNative
	showErr     error
}

// NewMock creates a mock host with the given starting permission.
func NewMock(p Permission) *Mock {
	return &Mock{permission: p}
}

// SetSupported toggles the capability probe.
func (m *Mock) SetSupported(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unsupported = !ok
}

// SetPermission changes the host permission without resolving requests.
func (m *Mock) SetPermission(p Permission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.permission = p
}

// FailShow makes subsequent Show calls return err.
func (m *Mock) FailShow(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.showErr = err
}

func (m *Mock) Supported() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.unsupported
}

func (m *Mock) Permission() Permission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.permission
}

// RequestPermission queues cb until RespondPermission is called.
func (m *Mock) RequestPermission(cb func(Permission)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	m.pending = append(m.pending, cb)
}

// RespondPermission sets the host permission and resolves every
// outstanding request with it.
func (m *Mock) RespondPermission(p Permission) {
	m.mu.Lock()
	m.permission = p
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, cb := range pending {
		cb(p)
	}
}

// Requests returns how many permission requests were issued.
func (m *Mock) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

func (m *Mock) Show(title string, opts Options) (Native, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shows = append(m.shows, ShowCall{Title: title, Options: opts})
	if m.showErr != nil {
		return nil, m.showErr
	}
	n := &MockNative{id: uint32(len(m.shows)), listeners: make(map[string][]func(Event))}
	m.natives = append(m.natives, n)
	return n, nil
}

// Shows returns every Show call so far.
func (m *Mock) Shows() []ShowCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.shows)
}

// Natives returns every notification created so far.
func (m *Mock) Natives() []*MockNative {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.natives)
}

// MockNative is a test double for Native.
type MockNative struct {
	id uint32

	mu        sync.Mutex
	listeners map[string][]func(Event)
	attached  []string
	closes    int
}

func (n *MockNative) ID() uint32 { return n.id }

func (n *MockNative) AddEventListener(name string, fn func(Event)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners[name] = append(n.listeners[name], fn)
	n.attached = append(n.attached, name)
}

func (n *MockNative) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closes++
	return nil
}

// Attached returns event names in attachment order.
func (n *MockNative) Attached() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.attached)
}

// Closes returns how many times Close was called.
func (n *MockNative) Closes() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closes
}

// Fire delivers ev to listeners registered for ev.Name.
func (n *MockNative) Fire(ev Event) {
	n.mu.Lock()
	fns := slices.Clone(n.listeners[ev.Name])
	n.mu.Unlock()

	ev.ID = n.id
	for _, fn := range fns {
		fn(ev)
	}
}
