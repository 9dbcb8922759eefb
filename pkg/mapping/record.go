package mapping

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind describes what a source entry is and how it is handled.
type Kind int

const (
	KindFile Kind = iota
	KindDir
	// KindSkip entries are never matched or cloned.
	KindSkip
	// KindNested entries are folders of folders; their children are the
	// units that get matched and cloned.
	KindNested
)

var kindNames = map[Kind]string{
	KindFile:   "file",
	KindDir:    "dir",
	KindSkip:   "skip",
	KindNested: "nested",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind accepts the names produced by String plus "other", the legacy
// name of skip.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file":
		return KindFile, nil
	case "dir", "directory":
		return KindDir, nil
	case "skip", "other":
		return KindSkip, nil
	case "nested", "nesting":
		return KindNested, nil
	default:
		return 0, fmt.Errorf("unknown kind: %q", s)
	}
}

func (k Kind) MarshalYAML() (interface{}, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("marshal kind: unknown kind %d", int(k))
	}
	return k.String(), nil
}

func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("decode kind: %w", err)
	}

	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}

	*k = parsed
	return nil
}

// Record maps one source entry to its library target.
type Record struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
	// Active is cleared once the record was cloned, or to exclude it.
	Active   bool     `yaml:"active"`
	Kind     Kind     `yaml:"kind"`
	Children []Record `yaml:"children,omitempty"`
}

func NewRecord(source string, kind Kind) Record {
	return Record{
		Source: source,
		Active: true,
		Kind:   kind,
	}
}

// IsActive reports whether the record takes part in matching and cloning.
func (r *Record) IsActive() bool {
	return r.Active && r.Kind != KindSkip
}

func (r *Record) IsNested() bool {
	return r.Kind == KindNested
}

// ChildTargets returns the distinct targets of the active children of a
// nested record, in child order. Display only.
func (r *Record) ChildTargets() []string {
	var targets []string
	seen := make(map[string]struct{})

	for i := range r.Children {
		child := &r.Children[i]
		if !child.IsActive() || child.Target == "" {
			continue
		}
		if _, ok := seen[child.Target]; ok {
			continue
		}
		seen[child.Target] = struct{}{}
		targets = append(targets, child.Target)
	}

	return targets
}
