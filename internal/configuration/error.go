package configuration

import "errors"

// ErrInvalidValue occurs when a configuration setting is present but holds a
// value outside its permitted range.
var ErrInvalidValue = errors.New("invalid configuration value")
