package attendance

import "errors"

var (
	ErrClassNotFound  = errors.New("class not found")
	ErrRecordNotFound = errors.New("no attendance record")
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already registered")

	ErrInvalidStatus    = errors.New("invalid status")
	ErrUnknownStudent   = errors.New("student not on roster")
	ErrDuplicateStudent = errors.New("student listed more than once")
	ErrIncompleteRoll   = errors.New("roster member without status")
	ErrInvalidDate      = errors.New("invalid date")
	ErrMissingClass     = errors.New("class id required")

	// ErrStorage wraps failures of the underlying persistence layer.
	ErrStorage = errors.New("storage unavailable")
)

// IsNotFound reports whether err means the requested class or record is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClassNotFound) || errors.Is(err, ErrRecordNotFound) || errors.Is(err, ErrUserNotFound)
}

// IsInvalidInput reports whether err was caused by a malformed submission.
func IsInvalidInput(err error) bool {
	for _, target := range []error{ErrInvalidStatus, ErrUnknownStudent, ErrDuplicateStudent, ErrIncompleteRoll, ErrInvalidDate, ErrMissingClass} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
