package patchset

import (
	"encoding/json"
	"fmt"
	"strings"
)

// LoadSimpleFormat replaces the patch set's mutations with those parsed
// from the line-oriented form, one mutation per line:
//
//	path:kind:start:end[:text]
//
// Blank lines and lines starting with '#' are skipped.
func (ps *PatchSet) LoadSimpleFormat(content string) error {
	ps.Mutations = nil
	for i, raw := range strings.Split(strings.TrimSpace(content), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m, err := parseSimple(line)
		if err != nil {
			return fmt.Errorf("patchset: line %d: %w", i+1, err)
		}
		ps.Mutations = append(ps.Mutations, m)
	}
	return nil
}

// LoadJSON replaces the patch set's mutations with those parsed from a
// JSON array of objects with required keys file_path, operation_kind,
// start_line, end_line and optional text, description.
func (ps *PatchSet) LoadJSON(content string) error {
	ps.Mutations = nil

	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return fmt.Errorf("patchset: invalid JSON: %w", err)
	}

	for i, item := range items {
		for _, key := range []string{"file_path", "operation_kind", "start_line", "end_line"} {
			if _, ok := item[key]; !ok {
				return fmt.Errorf("patchset: item %d missing required field %q", i, key)
			}
		}
		var m FileMutation
		raw, _ := json.Marshal(item)
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("patchset: item %d: %w", i, err)
		}
		ps.Mutations = append(ps.Mutations, m)
	}
	return nil
}
