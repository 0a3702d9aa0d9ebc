package errors

import "fmt"

var (
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrNothingStored    = fmt.Errorf("nothing stored under this key")
	ErrEmptyMessage     = fmt.Errorf("message body is empty")
	ErrEmptyCart        = fmt.Errorf("cart is empty")
	ErrInvalidForm      = fmt.Errorf("delivery form is invalid")
	ErrWorkerPanic      = fmt.Errorf("worker panic")
)
