// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package identify

import (
	"bufio"
	"os"
	"strings"

	"grimm.is/glasswing/internal/errors"
	"grimm.is/glasswing/internal/logging"
)

// AppFamilies canonicalizes process names: many build variants map to
// one reported family name. Loaded once at startup, never mutated.
type AppFamilies struct {
	byAlias map[string]string
}

// LoadAppFamilies reads a flat comma-separated mapping file. Each line
// lists a canonical family name followed by its aliases. An empty path
// yields an empty table.
func LoadAppFamilies(path string, logger *logging.Logger) (*AppFamilies, error) {
	families := &AppFamilies{byAlias: make(map[string]string)}
	if path == "" {
		return families, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindUnavailable, "opening app families file %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens := strings.Split(line, ",")
		for i := 1; i < len(tokens); i++ {
			families.byAlias[tokens[i]] = tokens[0]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.KindValidation, "reading app families file %s", path)
	}

	if logger != nil {
		logger.Info("App family table loaded", "path", path, "aliases", len(families.byAlias))
	}
	return families, nil
}

// Canonical returns the family name for a process, or the process name
// itself when no alias applies.
func (a *AppFamilies) Canonical(process string) string {
	if family, ok := a.byAlias[process]; ok {
		return family
	}
	return process
}
