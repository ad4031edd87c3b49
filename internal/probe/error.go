package probe

import "errors"

// ErrNotATerminal occurs when a terminal request is issued against a
// descriptor that is not a terminal.
var ErrNotATerminal = errors.New("descriptor is not a terminal")
