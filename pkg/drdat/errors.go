package drdat

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter   = errors.New("drdat: invalid parameter")
	ErrFormat             = errors.New("drdat: malformed data")
	ErrArithmeticOverflow = errors.New("drdat: arithmetic overflow")
)

// Refinements of ErrFormat. errors.Is matches both the refinement and ErrFormat.
var (
	ErrBadMagic     = fmt.Errorf("%w: bad magic", ErrFormat)
	ErrTruncated    = fmt.Errorf("%w: truncated", ErrFormat)
	ErrTrailingData = fmt.Errorf("%w: trailing data after last variable", ErrFormat)
)
