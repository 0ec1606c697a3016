// Package notify defines the host notification contract and its platform
// implementations (D-Bus on Linux, beeep elsewhere).
package notify

import (
	"maps"
	"time"
)

// Urgency represents notification priority levels. The zero value means
// "unset" so that caller options can override a default of any level.
type Urgency byte

const (
	UrgencyUnset Urgency = iota
	UrgencyLow
	UrgencyNormal
	UrgencyCritical
)

// Level returns the freedesktop urgency byte (0 low, 1 normal, 2 critical).
// Unset maps to normal.
func (u Urgency) Level() byte {
	if u == UrgencyUnset || u > UrgencyCritical {
		return 1
	}
	return byte(u) - 1
}

// ParseUrgency maps "low", "normal" and "critical" to an Urgency.
// Anything else is UrgencyUnset.
func ParseUrgency(s string) Urgency {
	switch s {
	case "low":
		return UrgencyLow
	case "normal":
		return UrgencyNormal
	case "critical":
		return UrgencyCritical
	default:
		return UrgencyUnset
	}
}

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyNormal:
		return "normal"
	case UrgencyCritical:
		return "critical"
	default:
		return "unset"
	}
}

// Permission is the host's notification permission value.
type Permission int

const (
	PermissionDefault Permission = iota
	PermissionDenied
	PermissionGranted
)

// ParsePermission converts a host permission string. Unknown or empty
// values are treated as PermissionDefault.
func ParsePermission(s string) Permission {
	switch s {
	case "granted":
		return PermissionGranted
	case "denied":
		return PermissionDenied
	default:
		return PermissionDefault
	}
}

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "default"
	}
}

// Options configures a notification. Zero values mean "unset".
type Options struct {
	Body       string            // Body text (optional, supports basic markup)
	Icon       string            // Path to image file or icon name (optional)
	Urgency    Urgency           // Low, Normal, Critical
	Timeout    int32             // ms, -1 = server default, 0 = unset
	ReplacesID uint32            // 0 = new notification, >0 = replace existing
	Actions    map[string]string // action key -> label
	// Delay closes the notification this long after it is shown.
	// Negative disables a delay inherited from defaults.
	Delay time.Duration
	// Hints are passed through to the host untouched.
	Hints map[string]any
}

// Merge returns defaults overlaid with every non-zero field of caller.
// Actions and Hints are merged per key; caller keys win.
func Merge(defaults, caller Options) Options {
	out := defaults
	if caller.Body != "" {
		out.Body = caller.Body
	}
	if caller.Icon != "" {
		out.Icon = caller.Icon
	}
	if caller.Urgency != UrgencyUnset {
		out.Urgency = caller.Urgency
	}
	if caller.Timeout != 0 {
		out.Timeout = caller.Timeout
	}
	if caller.ReplacesID != 0 {
		out.ReplacesID = caller.ReplacesID
	}
	if caller.Delay != 0 {
		out.Delay = caller.Delay
	}
	out.Actions = mergeMap(defaults.Actions, caller.Actions)
	out.Hints = mergeMap(defaults.Hints, caller.Hints)
	return out
}

func mergeMap[V any](base, over map[string]V) map[string]V {
	if len(base) == 0 && len(over) == 0 {
		return nil
	}
	out := make(map[string]V, len(base)+len(over))
	maps.Copy(out, base)
	maps.Copy(out, over)
	return out
}

// Event names delivered to listeners.
const (
	EventClick  = "click"
	EventClose  = "close"
	EventAction = "action"
	EventError  = "error"
)

// CloseReason is the reason code of a NotificationClosed signal.
type CloseReason uint32

const (
	CloseReasonUnknown   CloseReason = 0
	CloseReasonExpired   CloseReason = 1
	CloseReasonDismissed CloseReason = 2
	CloseReasonClosed    CloseReason = 3
	CloseReasonUndefined CloseReason = 4
)

// Event is delivered to listeners registered on a Native notification.
type Event struct {
	Name   string
	ID     uint32
	Reason CloseReason // set for EventClose
	Action string      // set for EventClick and EventAction
	Err    error       // set for EventError
}

// Native is a notification object owned by the host.
type Native interface {
	// ID returns the host-assigned identifier (0 if the host has none).
	ID() uint32
	// AddEventListener attaches fn for events named name.
	AddEventListener(name string, fn func(Event))
	// Close removes the notification from screen.
	Close() error
}

// Host is the platform notification capability.
type Host interface {
	// Supported reports whether notifications can be shown at all.
	Supported() bool
	// Permission returns the host's current permission value.
	Permission() Permission
	// RequestPermission asks the host for permission. cb is invoked once
	// with the result, possibly from another goroutine.
	RequestPermission(cb func(Permission))
	// Show constructs and displays a notification.
	Show(title string, opts Options) (Native, error)
}

// unsupportedHost is used when no notification service is reachable.
type unsupportedHost struct{}

// NewUnsupported returns a Host whose Supported method reports false.
func NewUnsupported() Host {
	return unsupportedHost{}
}

func (unsupportedHost) Supported() bool { return false }

func (unsupportedHost) Permission() Permission { return PermissionDenied }

func (unsupportedHost) RequestPermission(cb func(Permission)) { cb(PermissionDenied) }

func (unsupportedHost) Show(_ string, _ Options) (Native, error) {
	return nil, ErrUnavailable
}
