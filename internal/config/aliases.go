package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ItemAliases maps raw item labels, as they appear in input files, to the
// canonical item name mined in their place. Loaded from {Dir()}/aliases with
// one "label=Canonical" pair per line.
type ItemAliases struct {
	Aliases map[string]string
}

// Resolve returns the canonical name for label, or label itself when it has
// no alias.
func (a *ItemAliases) Resolve(label string) string {
	if a == nil {
		return label
	}
	if canonical, ok := a.Aliases[label]; ok {
		return canonical
	}
	return label
}

// Len returns the number of aliases.
func (a *ItemAliases) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Aliases)
}

// LoadAliases reads the aliases file at {dir}/aliases. If the file does not
// exist, an empty set is returned without an error. Malformed lines are
// skipped.
func LoadAliases(dir string) (*ItemAliases, error) {
	a := &ItemAliases{
		Aliases: make(map[string]string),
	}

	f, err := os.Open(filepath.Join(dir, "aliases"))
	if err != nil {
		if os.IsNotExist(err) {
			return a, nil
		}
		return a, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Split on the last "=" so labels may contain one.
		idx := strings.LastIndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		label := strings.TrimSpace(line[:idx])
		canonical := strings.TrimSpace(line[idx+1:])
		if label == "" || canonical == "" {
			continue
		}

		a.Aliases[label] = canonical
	}

	if err := scanner.Err(); err != nil {
		return a, err
	}
	return a, nil
}
