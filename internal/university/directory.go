// Package university holds the reference table of universities and their email domains.
package university

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dtroode/campusmarket-server/internal/model"
)

//go:embed data/universities.json
var defaultData []byte

// Entry is one university of the reference table.
type Entry struct {
	Name    string   `json:"name"`
	Domains []string `json:"domains"`
}

// Directory is an immutable university name to domain set map.
type Directory struct {
	domains map[string]map[string]struct{}
	names   []string
}

var _ model.DomainValidator = (*Directory)(nil)

// NewDirectory builds a Directory from entries. Domains are lowercased.
func NewDirectory(entries []Entry) (*Directory, error) {
	d := &Directory{domains: make(map[string]map[string]struct{}, len(entries))}

	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("university entry without name")
		}
		set, ok := d.domains[name]
		if !ok {
			set = make(map[string]struct{}, len(e.Domains))
			d.domains[name] = set
			d.names = append(d.names, name)
		}
		for _, domain := range e.Domains {
			domain = strings.ToLower(strings.TrimSpace(domain))
			if domain != "" {
				set[domain] = struct{}{}
			}
		}
	}
	sort.Strings(d.names)

	return d, nil
}

// Load parses a JSON array of entries.
func Load(r io.Reader) (*Directory, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode universities: %w", err)
	}
	return NewDirectory(entries)
}

// LoadFile reads the directory from path, or the embedded data set if path is empty.
func LoadFile(path string) (*Directory, error) {
	if path == "" {
		return Load(strings.NewReader(string(defaultData)))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open universities file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// IsAllowed reports whether emailDomain is registered for university.
// Unknown universities have no valid domains.
func (d *Directory) IsAllowed(university, emailDomain string) bool {
	set, ok := d.domains[university]
	if !ok {
		return false
	}
	_, ok = set[emailDomain]
	return ok
}

// Universities returns the sorted university names.
func (d *Directory) Universities() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}
