package usage

import "errors"

// ErrLimitReached indicates the user exceeded their credit limit.
var ErrLimitReached = errors.New("credit limit reached")
