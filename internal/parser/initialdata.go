// Package parser extracts normalized video and channel records from the
// loosely-typed ytInitialData document embedded in YouTube HTML pages.
// There is no published schema: the same "a video was watched" fact appears
// in one of three structurally different node shapes depending on which UI
// generation rendered the page, so every lookup here is fallible and
// degrades to a per-field default instead of aborting.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

var (
	// Primary pattern plus a looser fallback for minor syntactic variance
	// across page generations.
	initialDataRe      = regexp.MustCompile(`(?s)var ytInitialData\s*=\s*(\{.*?\});`)
	initialDataLooseRe = regexp.MustCompile(`(?s)ytInitialData\s*=\s*(\{.*?\});`)
)

// ErrInitialDataNotFound is returned when neither pattern locates the
// embedded document. Callers treat this as "zero records this cycle".
var ErrInitialDataNotFound = errors.New("ytInitialData not found in page")

// ExtractInitialData locates and parses the ytInitialData assignment in a
// raw HTML page.
func ExtractInitialData(html string) (map[string]any, error) {
	m := initialDataRe.FindStringSubmatch(html)
	if m == nil {
		m = initialDataLooseRe.FindStringSubmatch(html)
	}
	if m == nil {
		return nil, ErrInitialDataNotFound
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(m[1]), &data); err != nil {
		return nil, fmt.Errorf("parse ytInitialData: %w", err)
	}
	return data, nil
}

// childMap follows a key path through nested objects, returning nil on any
// structural mismatch.
func childMap(m map[string]any, keys ...string) map[string]any {
	cur := m
	for _, k := range keys {
		next, ok := cur[k].(map[string]any)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// childList follows a key path whose final element is an array.
func childList(m map[string]any, keys ...string) []any {
	if len(keys) == 0 {
		return nil
	}
	parent := m
	if len(keys) > 1 {
		parent = childMap(m, keys[:len(keys)-1]...)
	}
	if parent == nil {
		return nil
	}
	list, _ := parent[keys[len(keys)-1]].([]any)
	return list
}

// childString follows a key path whose final element is a string.
func childString(m map[string]any, keys ...string) string {
	if len(keys) == 0 {
		return ""
	}
	parent := m
	if len(keys) > 1 {
		parent = childMap(m, keys[:len(keys)-1]...)
	}
	if parent == nil {
		return ""
	}
	s, _ := parent[keys[len(keys)-1]].(string)
	return s
}

// itemMap returns the i-th element of a list when it is an object.
func itemMap(list []any, i int) map[string]any {
	if i < 0 || i >= len(list) {
		return nil
	}
	m, _ := list[i].(map[string]any)
	return m
}
