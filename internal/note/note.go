// Package note parses vault files into notes: front-matter metadata plus a
// body whose wiki-links have been rewritten as inline markdown links.
package note

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Per-file failure classes. A loader drops any file whose parse returns one
// of these; they are never fatal to a batch.
var (
	ErrRead          = errors.New("read note")
	ErrMissingHeader = errors.New("no front-matter header")
	ErrDecode        = errors.New("decode front-matter")
	ErrMissingName   = errors.New("file has no name")
)

// Kind classifies a note. Serialized as lowercase ("main", "source").
type Kind int

const (
	KindMain Kind = iota
	KindSource
)

var kindNames = map[Kind]string{
	KindMain:   "main",
	KindSource: "source",
}

// ParseKind maps the serialized spelling to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if s == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown note type %q (want main or source)", s)
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler so JSON output uses the
// serialized spelling.
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("invalid note kind %d", int(k))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// UnmarshalYAML accepts only a scalar holding a known spelling.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: type must be a scalar", value.Line)
	}
	parsed, err := ParseKind(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*k = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// Metadata holds the front-matter fields of a note.
type Metadata struct {
	Source   *string `yaml:"source,omitempty" json:"source,omitempty"`
	Scope    string  `yaml:"scope" json:"scope"`
	Kind     Kind    `yaml:"type" json:"type"`
	Created  string  `yaml:"created" json:"created"`
	Modified string  `yaml:"modified" json:"modified"`
}

// Note is one successfully parsed vault file.
type Note struct {
	Name     string   `json:"name"`
	Metadata Metadata `json:"metadata"`
	Body     string   `json:"body"`
	Links    []Link   `json:"links,omitempty"` // wiki-links of the body before normalization
}

// Parse builds a Note from a file name and its full text.
func Parse(name, content string) (Note, error) {
	if name == "" {
		return Note{}, ErrMissingName
	}

	header, body, err := Split(content)
	if err != nil {
		return Note{}, err
	}

	var meta Metadata
	if err := header.Decode(&meta); err != nil {
		return Note{}, err
	}

	return Note{
		Name:     name,
		Metadata: meta,
		Body:     NormalizeLinks(body),
		Links:    ExtractLinks(body),
	}, nil
}

// Find returns the first note whose name matches exactly.
func Find(notes []Note, name string) (Note, bool) {
	for _, n := range notes {
		if n.Name == name {
			return n, true
		}
	}
	return Note{}, false
}

// Classify names the failure class of a per-file parse error.
// Returns "other" for errors outside the note taxonomy.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingName):
		return "missing_name"
	case errors.Is(err, ErrMissingHeader):
		return "missing_header"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrRead):
		return "read"
	default:
		return "other"
	}
}

// SourceOrEmpty returns the source field, or "" for original notes.
func (m Metadata) SourceOrEmpty() string {
	if m.Source == nil {
		return ""
	}
	return strings.TrimSpace(*m.Source)
}
