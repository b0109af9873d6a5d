package memory

import "errors"

var errKPositive = errors.New("k must be positive")
