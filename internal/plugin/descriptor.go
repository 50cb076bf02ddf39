package plugin

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Ext is the plugin source file extension. Files in the plugin directory
// with any other extension are not plugin candidates and are skipped.
const Ext = ".lua"

// identifierPattern is the shape of a valid plugin identifier:
// lower_snake_case, starting with a letter.
var identifierPattern = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

// Descriptor is the static identity and metadata of one plugin.
type Descriptor struct {
	// Identifier is the lower_snake_case unique key, the source file's
	// base name for script plugins.
	Identifier string

	// ClassName is the PascalCase derivation of Identifier; the script
	// must define a global table of exactly this name.
	ClassName string

	// Path is the absolute source path. Empty for built-in plugins.
	Path string

	// Builtin marks plugins provided by a registered constructor instead
	// of a source file. Built-ins never vanish on rescans.
	Builtin bool

	// Free-form metadata declared by the plugin. No uniqueness
	// constraints beyond Identifier.
	DisplayName string
	Description string
	Version     string
	Author      string

	// Hooks lists the lifecycle hook names the plugin defines.
	Hooks []string
}

// ValidIdentifier reports whether id is a well-formed plugin identifier.
func ValidIdentifier(id string) bool {
	return identifierPattern.MatchString(id)
}

// DeriveClassName maps a plugin identifier to the table name its script
// must define: each underscore-separated segment is capitalized and the
// segments are joined. The derivation is deterministic; foo_bar always
// yields FooBar.
func DeriveClassName(identifier string) string {
	parts := strings.Split(identifier, "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		r := []rune(part)
		b.WriteRune(unicode.ToUpper(r[0]))
		b.WriteString(string(r[1:]))
	}
	return b.String()
}

// ClassToIdentifier is the display-side inverse of DeriveClassName: an
// underscore before each interior uppercase rune, then lowercased.
func ClassToIdentifier(className string) string {
	var b strings.Builder
	for i, r := range className {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteRune('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// NewDescriptor builds a descriptor for a script plugin, validating the
// identifier shape.
func NewDescriptor(identifier, path string) (Descriptor, error) {
	if !ValidIdentifier(identifier) {
		return Descriptor{}, fmt.Errorf("%w: %q is not lower_snake_case", ErrInvalidIdentifier, identifier)
	}
	return Descriptor{
		Identifier: identifier,
		ClassName:  DeriveClassName(identifier),
		Path:       path,
	}, nil
}

// Title returns the name to show users: the declared display name when
// present, otherwise the class name.
func (d Descriptor) Title() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.ClassName
}

// Clone returns a copy with its own hooks slice.
func (d Descriptor) Clone() Descriptor {
	out := d
	if d.Hooks != nil {
		out.Hooks = append([]string(nil), d.Hooks...)
	}
	return out
}
