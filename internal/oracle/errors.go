package oracle

import "fmt"

// WrongSizeError mirrors fundaccounts.WrongSizeError for oracle accounts:
// the only decode-time failure is an unexpected buffer length for the
// account's oracle type.
type WrongSizeError struct {
	Expected int
	Got      int
}

func (e *WrongSizeError) Error() string {
	return fmt.Sprintf("oracle account: wrong size, expected %d bytes, got %d", e.Expected, e.Got)
}
