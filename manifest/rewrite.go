package manifest

import (
	"bytes"
	"fmt"
)

// rewriteTableValue replaces the double-quoted value of the first `key =`
// entry inside the named TOML table, preserving every other byte of the
// document. The caller re-validates the result with a structural parse, so
// this scan only has to locate the edit, not understand full TOML.
func rewriteTableValue(raw []byte, table, key, newValue string) ([]byte, error) {
	lines := splitKeepEnds(raw)

	inTable := table == ""
	for i, line := range lines {
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			inTable = string(bytes.Trim(trimmed, "[]")) == table
			continue
		}
		if !inTable {
			continue
		}
		if !lineHasKey(trimmed, key) {
			continue
		}

		replaced, err := replaceQuoted(line, newValue)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrEditRejected, table, key, err)
		}
		out := make([]byte, 0, len(raw)+len(newValue))
		for j, l := range lines {
			if j == i {
				out = append(out, replaced...)
			} else {
				out = append(out, l...)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: no %s.%s entry", ErrFieldMissing, table, key)
}

// splitKeepEnds splits raw into lines, each retaining its trailing newline.
func splitKeepEnds(raw []byte) [][]byte {
	var lines [][]byte
	for len(raw) > 0 {
		i := bytes.IndexByte(raw, '\n')
		if i < 0 {
			lines = append(lines, raw)
			break
		}
		lines = append(lines, raw[:i+1])
		raw = raw[i+1:]
	}
	return lines
}

// lineHasKey reports whether a trimmed line assigns the given bare key.
func lineHasKey(trimmed []byte, key string) bool {
	if !bytes.HasPrefix(trimmed, []byte(key)) {
		return false
	}
	rest := bytes.TrimSpace(trimmed[len(key):])
	return len(rest) > 0 && rest[0] == '='
}

// replaceQuoted swaps the content of the first double-quoted string on the
// line for newValue, keeping everything around the quotes intact.
func replaceQuoted(line []byte, newValue string) ([]byte, error) {
	open := bytes.IndexByte(line, '"')
	if open < 0 {
		return nil, fmt.Errorf("no quoted value")
	}
	end := bytes.IndexByte(line[open+1:], '"')
	if end < 0 {
		return nil, fmt.Errorf("unterminated quoted value")
	}
	end += open + 1

	out := make([]byte, 0, len(line)+len(newValue))
	out = append(out, line[:open+1]...)
	out = append(out, newValue...)
	out = append(out, line[end:]...)
	return out, nil
}
