package feed

import (
	"bytes"
	"strconv"
)

// Classification is the timing class of a shot's release relative to the
// jump apex. Late is the zero value: absent, null or malformed input
// classifies as Late.
type Classification int

const (
	Late Classification = iota
	Early
	Perfect
)

// Wire codes. Any other code decodes as Late.
const (
	codeEarly   = 0
	codePerfect = 1
	codeLate    = 2
)

// ClassificationFromCode maps a numeric wire code to a Classification.
// 1 is Perfect, 0 is Early, everything else is Late.
func ClassificationFromCode(code float64) Classification {
	switch {
	case code == codePerfect:
		return Perfect
	case code == codeEarly:
		return Early
	default:
		return Late
	}
}

// Code returns the numeric wire code
func (c Classification) Code() int {
	switch c {
	case Perfect:
		return codePerfect
	case Early:
		return codeEarly
	default:
		return codeLate
	}
}

// Tag is the row-level style tag
func (c Classification) Tag() string {
	switch c {
	case Perfect:
		return "perfect"
	case Early:
		return "early"
	default:
		return "late"
	}
}

// Label is the human readable cell text
func (c Classification) Label() string {
	switch c {
	case Perfect:
		return "Perfect"
	case Early:
		return "Early"
	default:
		return "Late"
	}
}

func (c Classification) String() string {
	return c.Label()
}

// UnmarshalJSON never fails. Only a JSON number equal to 1 or 0 selects
// Perfect or Early; strings, booleans, null, objects and other numbers are Late.
func (c *Classification) UnmarshalJSON(data []byte) error {
	*c = Late
	data = bytes.TrimSpace(data)
	if len(data) == 0 || !isNumberStart(data[0]) {
		return nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return nil
	}
	*c = ClassificationFromCode(n)
	return nil
}

func (c Classification) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, int64(c.Code()), 10), nil
}

func isNumberStart(b byte) bool {
	return b == '-' || (b >= '0' && b <= '9')
}
