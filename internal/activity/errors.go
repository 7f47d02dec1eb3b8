package activity

import "errors"

var (
	// ErrNotFound is returned when no session matches the owner and selector.
	ErrNotFound = errors.New("session not found")
	// ErrAlreadyEnded is returned when ending a session that has an ended_at.
	ErrAlreadyEnded = errors.New("session already ended")
	// ErrConflict is returned when another open session holds the same key.
	ErrConflict = errors.New("conflicting open session")
	// ErrInvalidInput wraps every validation failure.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInternal marks store failures outside the domain errors.
	ErrInternal = errors.New("internal error")
	// ErrNilStore is the panic value of NewService(nil).
	ErrNilStore = errors.New("activity: store is required")
	// ErrLabelTooLong is joined with ErrInvalidInput for oversized labels.
	ErrLabelTooLong = errors.New("label exceeds maximum length")
	// ErrInvalidWindow is joined with ErrInvalidInput for bad stats windows.
	ErrInvalidWindow = errors.New("window must be between 1 and 365 days")
)

// internal attaches ErrInternal to store failures that are not part of the
// domain taxonomy.
func internal(err error) error {
	switch {
	case err == nil,
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAlreadyEnded),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInternal):
		return err
	}
	return errors.Join(ErrInternal, err)
}
