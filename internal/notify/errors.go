package notify

import "errors"

// ErrUnavailable is returned by Show when the host cannot display notifications.
var ErrUnavailable = errors.New("notification service unavailable")
