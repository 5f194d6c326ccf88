package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FieldRef references a response column either by name or by zero-based
// position in the header. It only exists in RawConfig; Resolve turns every
// FieldRef into a plain name.
type FieldRef struct {
	name    string
	index   int
	isIndex bool
}

// ByName returns a reference to the column called name.
func ByName(name string) FieldRef {
	return FieldRef{name: name}
}

// ByIndex returns a reference to the column at position i.
func ByIndex(i int) FieldRef {
	return FieldRef{index: i, isIndex: true}
}

// Index returns the position and true for a positional reference.
func (r FieldRef) Index() (int, bool) {
	return r.index, r.isIndex
}

// Name returns the column name of a by-name reference.
func (r FieldRef) Name() string {
	return r.name
}

func (r FieldRef) String() string {
	if r.isIndex {
		return "#" + strconv.Itoa(r.index)
	}
	return r.name
}

// UnmarshalJSON accepts a JSON string or a JSON integer.
func (r *FieldRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*r = ByName(name)
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var num json.Number
	if err := dec.Decode(&num); err != nil {
		return fmt.Errorf("field reference must be a string or an integer: %s", data)
	}
	i, err := strconv.Atoi(num.String())
	if err != nil {
		return fmt.Errorf("field reference must be a string or an integer: %s", data)
	}
	*r = ByIndex(i)
	return nil
}

// UnmarshalYAML accepts a string scalar or an integer scalar.
func (r *FieldRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: field reference must be a scalar", node.Line)
	}

	switch node.Tag {
	case "!!int":
		var i int
		if err := node.Decode(&i); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*r = ByIndex(i)
	case "!!str":
		*r = ByName(node.Value)
	default:
		return fmt.Errorf("line %d: field reference must be a string or an integer, got %s", node.Line, node.Tag)
	}
	return nil
}
