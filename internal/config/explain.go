package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Explain returns the effective value at a YAML path and where it came from.
//
// Paths use the file's keys joined by dots, with sequence indexes in
// brackets:
//
//	settings.window_padding
//	keybinds[3].command
//	exports.EDITOR
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

// Annotate attaches the file position of a ValidationError's path, when the
// value came from the loaded file.
func (r *LoadResult) Annotate(err error) error {
	if r == nil {
		return err
	}
	return attachSourceContext(err, r.Sources)
}

// lookupValue walks the YAML form of cfg so paths match the file exactly.
func lookupValue(cfg *Config, path string) (any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	var cur any
	if err := yaml.Unmarshal(data, &cur); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	for _, seg := range splitPath(path) {
		key, index, hasIndex, err := parseSegment(seg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if key != "" {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s: %q is not a mapping key", path, key)
			}
			if cur, ok = m[key]; !ok {
				return nil, fmt.Errorf("%s: unknown key %q", path, key)
			}
		}
		if hasIndex {
			list, ok := cur.([]any)
			if !ok {
				return nil, fmt.Errorf("%s: %q is not a list", path, seg)
			}
			if index < 0 || index >= len(list) {
				return nil, fmt.Errorf("%s: index %d out of range (len %d)", path, index, len(list))
			}
			cur = list[index]
		}
	}
	return cur, nil
}

func splitPath(path string) []string {
	return strings.Split(path, ".")
}

// parseSegment splits "keybinds[3]" into ("keybinds", 3, true).
func parseSegment(seg string) (key string, index int, hasIndex bool, err error) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, 0, false, nil
	}
	if !strings.HasSuffix(seg, "]") {
		return "", 0, false, fmt.Errorf("malformed segment %q", seg)
	}
	n, err := strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil {
		return "", 0, false, fmt.Errorf("malformed index in %q", seg)
	}
	return seg[:open], n, true, nil
}
