package storage

// NewDatabaseError wraps an error of the underlying key value store.
func NewDatabaseError(cause error) *DatabaseError {
	return &DatabaseError{Inner: cause}
}

type DatabaseError struct {
	Inner error
}

func (e DatabaseError) Cause() error {
	return e.Inner
}

func (e DatabaseError) Unwrap() error {
	return e.Inner
}

func (e DatabaseError) Error() string {
	return "database error: " + e.Inner.Error()
}
