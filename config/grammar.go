package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFormat is returned for values that do not follow
// [true/false] or [key1=value1,key2=value2...].
var ErrInvalidFormat = errors.New("config: invalid value format")

// FormatError reports a malformed multi-parameter value.
type FormatError struct {
	Name  string
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("Invalid configuration value '%s' for %s. The format is [true/false] or [key1=value1,key2=value2...]", e.Value, e.Name)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

// ContainsMultipleParameters reports whether value uses the key=value form.
func ContainsMultipleParameters(value string) bool {
	return strings.Contains(value, "=")
}

// ParseMapValue parses "key1=value1,key2=value2" into a map. name is the
// parameter the value belongs to and only appears in errors.
func ParseMapValue(name, value string) (map[string]string, error) {
	result := map[string]string{}
	for part := range strings.SplitSeq(value, ",") {
		tokens := strings.Split(part, "=")
		if len(tokens) != 2 {
			return nil, &FormatError{Name: name, Value: value}
		}
		key := strings.TrimSpace(tokens[0])
		if key == "" {
			return nil, &FormatError{Name: name, Value: value}
		}
		result[key] = strings.TrimSpace(tokens[1])
	}
	return result, nil
}
