package common

import "errors"

var (
	// ErrorNotFound is returned by local repositories when a key is absent.
	ErrorNotFound = errors.New("not found")

	// ErrorIncorrectInput reports malformed user input at the CLI boundary.
	ErrorIncorrectInput = errors.New("incorrect input")
)

// WipeByteArray zeroes b in place. Used for passwords read from the terminal.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
