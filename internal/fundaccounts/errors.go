package fundaccounts

import "fmt"

// WrongSizeError is returned when a decoded account buffer does not match
// the expected fixed size for its record type. It is the only decode-time
// failure mode in this package; every field extraction beyond the size
// check is bounds-safe and total.
type WrongSizeError struct {
	What     string
	Expected int
	Got      int
}

func (e *WrongSizeError) Error() string {
	return fmt.Sprintf("%s: wrong account size, expected %d bytes, got %d", e.What, e.Expected, e.Got)
}

func wrongSize(what string, expected, got int) error {
	return &WrongSizeError{What: what, Expected: expected, Got: got}
}
