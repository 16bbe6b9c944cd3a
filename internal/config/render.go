package config

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// optionGroup is one TOML table of options; table is "" for top-level keys.
type optionGroup struct {
	table string
	opts  []ConfigOption
}

// groupOptions splits dotted keys into tables, keeping first-seen order.
// Keys inside a group are stored without the table prefix.
func groupOptions(opts []ConfigOption) []optionGroup {
	groups := []optionGroup{{}}
	index := map[string]int{"": 0}
	for _, o := range opts {
		table, leaf := splitKey(o.Key)
		i, ok := index[table]
		if !ok {
			i = len(groups)
			index[table] = i
			groups = append(groups, optionGroup{table: table})
		}
		groups[i].opts = append(groups[i].opts, ConfigOption{Key: leaf, Default: o.Default, Comment: o.Comment})
	}
	return groups
}

func splitKey(key string) (table, leaf string) {
	if i := strings.Index(key, "."); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}

// RenderDefaultTOML renders a commented TOML config holding every default.
func RenderDefaultTOML() string {
	lines := []string{"# homepage configuration (TOML)", ""}
	for _, g := range groupOptions(GetConfigOptions()) {
		if len(g.opts) == 0 {
			continue
		}
		if g.table != "" {
			lines = append(lines, "["+g.table+"]")
		}
		for _, o := range g.opts {
			lines = append(lines, optionLines(o)...)
		}
	}
	return strings.Join(lines, "\n")
}

// UpdateTOML adds missing options to an existing config and comments out
// keys that are no longer part of the schema. Missing keys of a table that
// already exists go at the end of that table; new tables are appended. It
// reports whether anything changed.
func UpdateTOML(existing string) (string, bool) {
	known := make(map[string]bool)
	for _, o := range GetConfigOptions() {
		known[o.Key] = true
	}

	present := make(map[string]bool)
	// tableEnd is the insertion point after the last non-blank line of each table.
	tableEnd := map[string]int{"": 0}
	var out []string
	table := ""
	changed := false
	for _, line := range strings.Split(existing, "\n") {
		trim := strings.TrimSpace(line)
		switch {
		case trim == "":
			out = append(out, line)
			continue
		case strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]"):
			table = strings.TrimSpace(strings.Trim(trim, "[]"))
		case strings.HasPrefix(trim, "#"):
		default:
			key, ok := lineKey(trim)
			if !ok {
				break
			}
			full := key
			if table != "" {
				full = table + "." + key
			}
			if !known[full] {
				indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
				out = append(out, indent+"# OUTDATED: option removed from config schema", indent+"# "+trim)
				tableEnd[table] = len(out)
				changed = true
				continue
			}
			present[full] = true
		}
		out = append(out, line)
		tableEnd[table] = len(out)
	}

	var missing []ConfigOption
	for _, o := range GetConfigOptions() {
		if !present[o.Key] {
			missing = append(missing, o)
		}
	}
	if len(missing) == 0 {
		return strings.Join(out, "\n"), changed
	}

	type insertion struct {
		at    int
		lines []string
	}
	var inserts []insertion
	var tail []string
	for _, g := range groupOptions(missing) {
		if len(g.opts) == 0 {
			continue
		}
		lines := []string{"# Added by config update"}
		for _, o := range g.opts {
			lines = append(lines, optionLines(o)...)
		}
		if at, ok := tableEnd[g.table]; ok {
			inserts = append(inserts, insertion{at: at, lines: lines})
			continue
		}
		tail = append(tail, "", "["+g.table+"]")
		tail = append(tail, lines...)
	}
	// Insert back to front so earlier positions stay valid.
	sort.SliceStable(inserts, func(i, j int) bool { return inserts[i].at > inserts[j].at })
	for _, ins := range inserts {
		out = slices.Insert(out, ins.at, ins.lines...)
	}
	out = append(out, tail...)
	return strings.Join(out, "\n"), true
}

// lineKey returns the bare key of a "key = value" line.
func lineKey(line string) (string, bool) {
	key, _, ok := strings.Cut(line, "=")
	if !ok {
		return "", false
	}
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, `"'[`) {
		return "", false
	}
	return key, true
}

func optionLines(o ConfigOption) []string {
	var lines []string
	if o.Comment != "" {
		lines = append(lines, "# "+o.Comment)
	}
	return append(lines, encodeValue(o.Key, o.Default), "")
}

// encodeValue renders one "key = value" line with go-toml's value encoding.
func encodeValue(key string, value any) string {
	b, err := toml.Marshal(map[string]any{key: value})
	if err != nil {
		return fmt.Sprintf("%s = %q", key, fmt.Sprint(value))
	}
	return strings.TrimRight(string(b), "\n")
}
