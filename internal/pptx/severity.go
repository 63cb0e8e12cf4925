package pptx

import (
	"errors"
	"fmt"
)

// Severity grades the worst failure seen while processing a file.
// Larger is worse; severities are combined with Max, never added.
type Severity int

const (
	SeverityOK               Severity = 0
	SeverityUnsupportedInput Severity = 1
	SeverityDescriptorRead   Severity = 2
	SeverityDescriptorFormat Severity = 3
	SeverityArchiveOpen      Severity = 4
	SeverityExtractWrite     Severity = 5
)

var (
	ErrUnsupportedInput = errors.New("unsupported input file")
	ErrLegacyInput      = fmt.Errorf("legacy presentation format: %w", ErrUnsupportedInput)
	ErrArchiveOpen      = errors.New("cannot open archive")
	ErrDescriptorRead   = errors.New("cannot read relationship descriptor")
	ErrDescriptorFormat = errors.New("malformed relationship descriptor")
	ErrExtractWrite     = errors.New("cannot write extracted file")
)

// Max returns the worse of s and o.
func (s Severity) Max(o Severity) Severity {
	if o > s {
		return o
	}
	return s
}

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityUnsupportedInput:
		return "unsupported-input"
	case SeverityDescriptorRead:
		return "descriptor-read"
	case SeverityDescriptorFormat:
		return "descriptor-format"
	case SeverityArchiveOpen:
		return "archive-open"
	case SeverityExtractWrite:
		return "extract-write"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// SeverityOf maps an error to its severity. A nil error is SeverityOK;
// errors outside the known categories are treated as archive failures.
func SeverityOf(err error) Severity {
	switch {
	case err == nil:
		return SeverityOK
	case errors.Is(err, ErrExtractWrite):
		return SeverityExtractWrite
	case errors.Is(err, ErrArchiveOpen):
		return SeverityArchiveOpen
	case errors.Is(err, ErrDescriptorFormat):
		return SeverityDescriptorFormat
	case errors.Is(err, ErrDescriptorRead):
		return SeverityDescriptorRead
	case errors.Is(err, ErrUnsupportedInput):
		return SeverityUnsupportedInput
	default:
		return SeverityArchiveOpen
	}
}

// Problem is one recorded failure. The file's severity is the max over its problems.
type Problem struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Entry    string   `json:"entry,omitempty" yaml:"entry,omitempty"`
	Message  string   `json:"message" yaml:"message"`
	Err      error    `json:"-" yaml:"-"`
}
