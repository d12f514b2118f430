package fusion

import "errors"

var (
	errNonFiniteReading = errors.New("reading is not a finite number")
)
