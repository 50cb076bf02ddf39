package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dshills/keel/internal/plugin/api"
	glua "github.com/dshills/keel/internal/plugin/lua"
)

// Candidate is one file considered by a scan. Either Descriptor is
// populated or Err explains why the file failed the plugin convention.
type Candidate struct {
	Identifier string
	Path       string
	Descriptor Descriptor
	Err        *DiscoveryError
}

// Scanner finds script plugins in a single directory. Scans are not
// recursive; files without the plugin extension and dot files are ignored
// without comment.
type Scanner struct {
	dir string
	log zerolog.Logger
}

// NewScanner creates a scanner over dir. The directory does not need to
// exist; a missing directory scans as empty.
func NewScanner(dir string, log zerolog.Logger) *Scanner {
	return &Scanner{dir: dir, log: log}
}

// Dir returns the scanned directory.
func (s *Scanner) Dir() string { return s.dir }

// Scan reads the directory once and returns every candidate in identifier
// order. claimed holds identifiers already owned by another source; a file
// whose name maps onto one is reported as a collision, not adopted.
//
// A bad file never stops the scan. Each failure is captured on its own
// candidate so the caller can surface it next to the healthy plugins.
func (s *Scanner) Scan(claimed map[string]bool) []Candidate {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug().Str("dir", s.dir).Msg("plugin directory absent, nothing to scan")
		} else {
			s.log.Warn().Err(err).Str("dir", s.dir).Msg("plugin directory unreadable")
		}
		return nil
	}

	var out []Candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, Ext) || strings.HasPrefix(name, ".") {
			continue
		}

		stem := strings.TrimSuffix(name, Ext)
		cand := Candidate{Identifier: stem, Path: filepath.Join(s.dir, name)}

		switch {
		case !ValidIdentifier(stem):
			cand.Err = &DiscoveryError{
				Path:       cand.Path,
				Identifier: stem,
				Err:        fmt.Errorf("%w: file name %q is not lower_snake_case", ErrInvalidIdentifier, name),
			}
		case claimed[stem]:
			cand.Err = &DiscoveryError{
				Path:       cand.Path,
				Identifier: stem,
				Err:        fmt.Errorf("%w: %q belongs to a built-in plugin", ErrIdentifierTaken, stem),
			}
		default:
			cand.Descriptor, cand.Err = s.inspect(stem, cand.Path)
		}

		if cand.Err != nil {
			s.log.Warn().Err(cand.Err).Str("path", cand.Path).Msg("plugin file rejected")
		}
		out = append(out, cand)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}

// inspect executes the script in a throwaway interpreter and validates the
// plugin table named after the file.
func (s *Scanner) inspect(identifier, path string) (Descriptor, *DiscoveryError) {
	desc, err := NewDescriptor(identifier, path)
	if err != nil {
		return Descriptor{}, &DiscoveryError{Path: path, Identifier: identifier, Err: err}
	}

	meta, err := glua.Inspect(path, desc.ClassName, api.InstallInspection)
	if err != nil {
		return Descriptor{}, &DiscoveryError{Path: path, Identifier: identifier, Err: err}
	}

	desc.DisplayName = meta.DisplayName
	desc.Description = meta.Description
	desc.Version = meta.Version
	desc.Author = meta.Author
	desc.Hooks = append([]string(nil), meta.Hooks...)
	return desc, nil
}
