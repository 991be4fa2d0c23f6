package labor

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// ActiveFlag is the authoritative "shift is open" marker on an employee record.
// It persists as the strings "true" and "false".
type ActiveFlag bool

const (
	flagTrue  = "true"
	flagFalse = "false"
)

// ParseActiveFlag reads the persisted form. Anything other than "true" is false.
func ParseActiveFlag(s string) ActiveFlag {
	return ActiveFlag(strings.EqualFold(strings.TrimSpace(s), flagTrue))
}

func (f ActiveFlag) String() string {
	if f {
		return flagTrue
	}
	return flagFalse
}

func (f ActiveFlag) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON accepts both the string form and a bare boolean.
func (f *ActiveFlag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = ParseActiveFlag(s)
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = ActiveFlag(b)
		return nil
	}
	*f = false
	return nil
}

func (f ActiveFlag) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}

func (f *ActiveFlag) UnmarshalYAML(node *yaml.Node) error {
	*f = ParseActiveFlag(node.Value)
	return nil
}
