package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/wgergely/repoman/internal/blocks"
)

// managedKey is the reserved top-level key holding managed regions in
// JSON documents, as a map from block uuid to the rendered content.
const managedKey = "_repo_managed"

// jsonHandler manages blocks inside JSON documents. User keys are decoded
// as raw messages and re-emitted verbatim in their original order; only
// the reserved key is ever rewritten. If the document root is not an
// object the handler returns the content unchanged — documented policy,
// not an error — and the engine reports the pair instead of rewriting
// the file.
type jsonHandler struct{}

func (jsonHandler) Kind() Kind { return JSON }

// jsonEntry is one top-level key with its value bytes kept verbatim.
type jsonEntry struct {
	key string
	raw json.RawMessage
}

// decodeTopLevel splits a JSON document into its ordered top-level
// entries. Empty or whitespace-only content decodes as an empty object.
func decodeTopLevel(content string) (entries []jsonEntry, isObject bool, err error) {
	if strings.TrimSpace(content) == "" {
		return nil, true, nil
	}

	dec := json.NewDecoder(strings.NewReader(content))
	tok, err := dec.Token()
	if err != nil {
		return nil, false, fmt.Errorf("parsing JSON: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, false, nil
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, true, fmt.Errorf("parsing JSON key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, true, fmt.Errorf("parsing JSON: unexpected token %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, true, fmt.Errorf("parsing JSON value for %q: %w", key, err)
		}
		entries = append(entries, jsonEntry{key: key, raw: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, true, fmt.Errorf("parsing JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, true, fmt.Errorf("parsing JSON: trailing data after document")
	}
	return entries, true, nil
}

// encodeTopLevel re-emits the document with user values verbatim.
func encodeTopLevel(entries []jsonEntry) string {
	if len(entries) == 0 {
		return "{}\n"
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	for i, e := range entries {
		keyJSON, _ := json.Marshal(e.key)
		sb.WriteString("  ")
		sb.Write(keyJSON)
		sb.WriteString(": ")
		sb.Write(e.raw)
		if i < len(entries)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}

// managedMap decodes the reserved key's object, if present.
func managedMap(entries []jsonEntry) (map[string]json.RawMessage, bool, error) {
	for _, e := range entries {
		if e.key != managedKey {
			continue
		}
		m := make(map[string]json.RawMessage)
		if err := json.Unmarshal(e.raw, &m); err != nil {
			return nil, true, fmt.Errorf("parsing %s: %w", managedKey, err)
		}
		return m, true, nil
	}
	return nil, false, nil
}

// encodeManaged renders the managed map with sorted uuids for
// deterministic output.
func encodeManaged(m map[string]json.RawMessage) json.RawMessage {
	uuids := make([]string, 0, len(m))
	for id := range m {
		uuids = append(uuids, id)
	}
	sort.Strings(uuids)

	var sb strings.Builder
	sb.WriteString("{\n")
	for i, id := range uuids {
		keyJSON, _ := json.Marshal(id)
		sb.WriteString("    ")
		sb.Write(keyJSON)
		sb.WriteString(": ")
		sb.Write(m[id])
		if i < len(uuids)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("  }")
	return json.RawMessage(sb.String())
}

func setManaged(entries []jsonEntry, m map[string]json.RawMessage) []jsonEntry {
	raw := encodeManaged(m)
	for i, e := range entries {
		if e.key == managedKey {
			if len(m) == 0 {
				return append(entries[:i], entries[i+1:]...)
			}
			entries[i].raw = raw
			return entries
		}
	}
	if len(m) == 0 {
		return entries
	}
	return append(entries, jsonEntry{key: managedKey, raw: raw})
}

func (jsonHandler) ParseBlocks(content string) ([]blocks.Block, error) {
	entries, isObject, err := decodeTopLevel(content)
	if err != nil {
		return nil, err
	}
	if !isObject {
		return nil, nil
	}
	m, _, err := managedMap(entries)
	if err != nil {
		return nil, err
	}

	uuids := make([]string, 0, len(m))
	for id := range m {
		uuids = append(uuids, id)
	}
	sort.Strings(uuids)

	var out []blocks.Block
	for _, id := range uuids {
		var s string
		if err := json.Unmarshal(m[id], &s); err != nil {
			// Non-string value: expose its raw text.
			s = string(m[id])
		}
		out = append(out, blocks.Block{UUID: id, Content: s})
	}
	return out, nil
}

func (jsonHandler) UpsertBlock(content, uuid, newContent string) (string, error) {
	entries, isObject, err := decodeTopLevel(content)
	if err != nil {
		return "", err
	}
	if !isObject {
		return content, nil
	}

	m, _, err := managedMap(entries)
	if err != nil {
		return "", err
	}
	if m == nil {
		m = make(map[string]json.RawMessage)
	}

	// Content is always stored as a JSON string so parse/upsert round
	// trips are byte-stable regardless of what the text looks like.
	val, err := json.Marshal(newContent)
	if err != nil {
		return "", fmt.Errorf("encoding block content: %w", err)
	}
	m[uuid] = val

	return encodeTopLevel(setManaged(entries, m)), nil
}

func (jsonHandler) RemoveBlock(content, uuid string) (string, error) {
	entries, isObject, err := decodeTopLevel(content)
	if err != nil {
		return "", err
	}
	if !isObject {
		return content, nil
	}

	m, found, err := managedMap(entries)
	if err != nil {
		return "", err
	}
	if !found {
		return content, nil
	}
	if _, ok := m[uuid]; !ok {
		return content, nil
	}
	delete(m, uuid)

	return encodeTopLevel(setManaged(entries, m)), nil
}
