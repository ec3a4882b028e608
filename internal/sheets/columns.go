package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Column binds one persisted column to a field of T.
type Column[T Row] struct {
	Name   string
	Encode func(T) string
	Decode func(T, string) error
}

// String maps a plain text field. The empty string is valid input and is
// written as-is; a stored Unset decodes to "".
func String[T Row](name string, field func(T) *string) Column[T] {
	return Column[T]{
		Name:   name,
		Encode: func(r T) string { return *field(r) },
		Decode: func(r T, s string) error {
			if s == Unset {
				s = ""
			}
			*field(r) = s
			return nil
		},
	}
}

// OptionalString maps a text field whose empty value is stored as Unset.
func OptionalString[T Row](name string, field func(T) *string) Column[T] {
	return Column[T]{
		Name: name,
		Encode: func(r T) string {
			if v := *field(r); v != "" {
				return v
			}
			return Unset
		},
		Decode: func(r T, s string) error {
			if s == Unset {
				s = ""
			}
			*field(r) = s
			return nil
		},
	}
}

func Bool[T Row](name string, field func(T) *bool) Column[T] {
	return Column[T]{
		Name: name,
		Encode: func(r T) string {
			if *field(r) {
				return "TRUE"
			}
			return "FALSE"
		},
		Decode: func(r T, s string) error {
			b, err := ParseBool(s)
			if err != nil {
				return err
			}
			*field(r) = b
			return nil
		},
	}
}

func Int[T Row](name string, field func(T) *int) Column[T] {
	return Column[T]{
		Name:   name,
		Encode: func(r T) string { return strconv.Itoa(*field(r)) },
		Decode: func(r T, s string) error {
			s = strings.TrimSpace(s)
			if s == "" || s == Unset {
				*field(r) = 0
				return nil
			}
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("not an integer")
			}
			*field(r) = n
			return nil
		},
	}
}

// Time maps a date column. The zero time is stored as Unset.
func Time[T Row](name string, field func(T) *time.Time) Column[T] {
	return Column[T]{
		Name: name,
		Encode: func(r T) string {
			t := *field(r)
			if t.IsZero() {
				return Unset
			}
			return t.Format(DateLayout)
		},
		Decode: func(r T, s string) error {
			t, err := ParseTime(s)
			if err != nil {
				return err
			}
			*field(r) = t
			return nil
		},
	}
}

// List maps an ordered list of strings joined by ListDelimiter. An empty
// list is stored as Unset.
func List[T Row](name string, field func(T) *[]string) Column[T] {
	return Column[T]{
		Name: name,
		Encode: func(r T) string {
			if v := *field(r); len(v) > 0 {
				return strings.Join(v, ListDelimiter)
			}
			return Unset
		},
		Decode: func(r T, s string) error {
			*field(r) = SplitList(s)
			return nil
		},
	}
}

// ParseBool accepts the spellings people actually type into a sheet.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "да":
		return true, nil
	case "false", "no", "n", "0", "нет", "", Unset:
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean")
	}
}

func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == Unset {
		return time.Time{}, nil
	}
	for _, layout := range []string{DateLayout, time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not a date")
}

func SplitList(s string) []string {
	if s == "" || s == Unset {
		return nil
	}
	parts := strings.Split(s, ListDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
