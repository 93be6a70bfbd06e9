package note

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// yamlFormat is the only header convention recognized in a vault:
// a "---" line, YAML, and a closing "---" line.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Header is the undecoded front-matter block of a file.
type Header struct {
	node *yaml.Node
}

// Empty reports whether the header carries no YAML content.
func (h Header) Empty() bool {
	return h.node == nil || h.node.Kind == 0
}

// Split separates a file's front-matter header from its body.
// With no header, it returns ErrMissingHeader and the whole content as body.
func Split(content string) (Header, string, error) {
	var doc yaml.Node
	body, err := frontmatter.MustParse(strings.NewReader(content), &doc, yamlFormat)
	if err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return Header{}, content, ErrMissingHeader
		}
		return Header{}, content, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return Header{node: &doc}, string(body), nil
}

// rawMetadata mirrors Metadata with pointers so absent keys are detectable.
type rawMetadata struct {
	Source   *strictString `yaml:"source"`
	Scope    *strictString `yaml:"scope"`
	Kind     *Kind         `yaml:"type"`
	Created  *strictString `yaml:"created"`
	Modified *strictString `yaml:"modified"`
}

// strictString accepts only string scalars. Date-looking values resolve to
// !!timestamp in YAML and are kept verbatim as text; numbers and booleans
// are rejected.
type strictString string

func (s *strictString) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a string", value.Line)
	}
	switch value.ShortTag() {
	case "!!str", "!!timestamp":
		*s = strictString(value.Value)
		return nil
	default:
		return fmt.Errorf("line %d: expected a string, got %s %q", value.Line, value.ShortTag(), value.Value)
	}
}

func (s *strictString) ptr() *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

// Decode converts the header into Metadata. Missing required keys, values
// of the wrong type and unknown note types all fail with ErrDecode.
func (h Header) Decode(meta *Metadata) error {
	if h.Empty() {
		return fmt.Errorf("%w: empty header", ErrDecode)
	}

	node := h.node
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return fmt.Errorf("%w: empty header", ErrDecode)
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: header is not a key/value mapping", ErrDecode)
	}

	var raw rawMetadata
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}

	var missing []string
	if raw.Scope == nil {
		missing = append(missing, "scope")
	}
	if raw.Kind == nil {
		missing = append(missing, "type")
	}
	if raw.Created == nil {
		missing = append(missing, "created")
	}
	if raw.Modified == nil {
		missing = append(missing, "modified")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required field(s): %s", ErrDecode, strings.Join(missing, ", "))
	}

	*meta = Metadata{
		Source:   raw.Source.ptr(),
		Scope:    string(*raw.Scope),
		Kind:     *raw.Kind,
		Created:  string(*raw.Created),
		Modified: string(*raw.Modified),
	}
	return nil
}
