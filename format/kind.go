package format

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a format name is not one of the supported kinds.
var ErrUnknownKind = errors.New("format: unknown format kind")

// Kind selects a formatting strategy. The set is closed; an unrecognized name
// is rejected when the mapping config is decoded instead of silently falling
// back to plain text.
type Kind uint8

const (
	KindText Kind = iota
	KindCurrency
	KindDateCover
	KindDatePlan
	KindInitials
)

var kindNames = [...]string{
	KindText:      "text",
	KindCurrency:  "currency",
	KindDateCover: "date_cover",
	KindDatePlan:  "date_plan",
	KindInitials:  "initials",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind maps a config name to a Kind. The empty name means text.
func ParseKind(name string) (Kind, error) {
	if name == "" {
		return KindText, nil
	}
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return KindText, fmt.Errorf("%w %q", ErrUnknownKind, name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, fmt.Errorf("%w %d", ErrUnknownKind, k)
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
