// Package config reads actor definitions from YAML. The property names are the
// same ones the definitions have always used (e.g. LeftWalkLimbPath, MThruster)
// so existing data files can be converted mechanically.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/adammck/crab/math2d"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "config",
})

// Vec is a vector in a definition. It can be written as a mapping ({X: 1, Y: 2})
// or as a pair ([1, 2]).
type Vec struct {
	X float64 `yaml:"X"`
	Y float64 `yaml:"Y"`
}

func (v Vec) Vector() math2d.Vector {
	return math2d.Vector{X: v.X, Y: v.Y}
}

func (v *Vec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.SequenceNode {
		var xy []float64
		if err := n.Decode(&xy); err != nil {
			return err
		}
		if len(xy) != 2 {
			return fmt.Errorf("line %d: vector needs two values, got %d", n.Line, len(xy))
		}
		v.X, v.Y = xy[0], xy[1]
		return nil
	}

	type plain Vec
	return n.Decode((*plain)(v))
}

func (v Vec) MarshalYAML() (interface{}, error) {
	f := func(x float64) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(x, 'g', -1, 64)}
	}

	return &yaml.Node{
		Kind:    yaml.SequenceNode,
		Style:   yaml.FlowStyle,
		Content: []*yaml.Node{f(v.X), f(v.Y)},
	}, nil
}

// decode reads a single YAML document into def, which should already hold the
// defaults. Unknown properties are an error.
func decode(r io.Reader, def interface{}) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	err := dec.Decode(def)
	if err == io.EOF {
		return fmt.Errorf("empty definition")
	}
	return err
}

func load(path string, def interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = decode(f, def)
	if err != nil {
		return fmt.Errorf("%w (while loading %s)", err, path)
	}

	log.Debugf("loaded %s", path)
	return nil
}

// readProperty sets a single property of def, as if it had been read from a
// file. The value is parsed as YAML, so it can be a scalar or a whole nested
// definition.
func readProperty(def interface{}, name, value string) error {
	var doc yaml.Node
	err := yaml.Unmarshal([]byte(value), &doc)
	if err != nil {
		return fmt.Errorf("%w (while reading %s)", err, name)
	}

	v := &yaml.Node{Kind: yaml.ScalarNode, Value: "null"}
	if len(doc.Content) > 0 {
		v = doc.Content[0]
	}

	m := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: name},
			v,
		},
	}

	b, err := yaml.Marshal(m)
	if err != nil {
		return err
	}

	err = decode(bytes.NewReader(b), def)
	if err != nil {
		return fmt.Errorf("%w (while reading %s)", err, name)
	}

	return nil
}

func save(w io.Writer, def interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(def)
	if err != nil {
		return err
	}

	return enc.Close()
}
