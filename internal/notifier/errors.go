package notifier

import "errors"

// DeliveryError classifies a failed send. Permanent means the recipient is
// unreachable for good (bot blocked, chat deleted) and should be
// deactivated; anything else is transient and left alone.
type DeliveryError struct {
	Permanent bool
	Err       error
}

func (e *DeliveryError) Error() string {
	if e.Permanent {
		return "permanent delivery failure: " + e.Err.Error()
	}
	return "transient delivery failure: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// IsPermanent reports whether err marks the recipient as unreachable.
func IsPermanent(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de) && de.Permanent
}
