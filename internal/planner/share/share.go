// Package share implements the share-string codec (spec.md §6): a
// header-tagged, deflate-compressed, Base64-encoded JSON document
// suitable for round-tripping a project page through the clipboard.
package share

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/foundryworks/production-planner/pkg/planner"
)

const (
	magicLine = "YAFC"
	pageLine  = "ProjectPage"

	// CurrentVersion is the version this package writes and the
	// baseline readers compare an incoming share string against.
	CurrentVersion = "2.0"
)

// Encode serializes payload to JSON and wraps it in the share-string
// header (spec.md §6): magic, page kind, version, two reserved lines,
// and a blank separator line, all deflate-compressed then
// Base64-encoded.
func Encode(payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("share: marshal payload: %w", err)
	}

	var plain bytes.Buffer
	plain.WriteString(magicLine + "\n")
	plain.WriteString(pageLine + "\n")
	plain.WriteString(CurrentVersion + "\n")
	plain.WriteString("\n") // reserved1
	plain.WriteString("\n") // reserved2, must stay empty (spec.md §9 open question)
	plain.WriteString("\n") // blank separator before the JSON document
	plain.Write(body)

	var compressed bytes.Buffer
	fw, err := flate.NewWriter(&compressed, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("share: init compressor: %w", err)
	}
	if _, err := fw.Write(plain.Bytes()); err != nil {
		return "", fmt.Errorf("share: compress: %w", err)
	}
	if err := fw.Close(); err != nil {
		return "", fmt.Errorf("share: flush compressor: %w", err)
	}

	return base64.StdEncoding.EncodeToString(compressed.Bytes()), nil
}

// Decode reverses Encode, unmarshaling the embedded JSON document into
// target. A non-empty warning means the string decoded successfully
// but came from a newer minor version or an older major version; any
// error is (or wraps) planner.ErrShareStringInvalid.
func Decode(encoded string, target any) (warning string, err error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", fmt.Errorf("%w: not valid base64: %v", planner.ErrShareStringInvalid, err)
	}

	fr := flate.NewReader(bytes.NewReader(raw))
	defer fr.Close()
	data, err := io.ReadAll(fr)
	if err != nil {
		return "", fmt.Errorf("%w: not valid deflate data: %v", planner.ErrShareStringInvalid, err)
	}

	const headerLines = 6 // magic, page, version, reserved1, reserved2, blank separator
	parts := bytes.SplitN(data, []byte("\n"), headerLines+1)
	if len(parts) != headerLines+1 {
		return "", fmt.Errorf("%w: truncated header", planner.ErrShareStringInvalid)
	}

	if string(parts[0]) != magicLine || string(parts[1]) != pageLine {
		return "", fmt.Errorf("%w: header mismatch", planner.ErrShareStringInvalid)
	}
	if string(parts[4]) != "" {
		// Open question (spec.md §9): reserved2 is hard-rejected
		// whenever non-empty until a future version defines its use.
		return "", fmt.Errorf("%w: reserved2 field is not empty", planner.ErrShareStringInvalid)
	}
	if string(parts[5]) != "" {
		return "", fmt.Errorf("%w: missing blank separator line", planner.ErrShareStringInvalid)
	}

	major, minor, ok := parseVersion(string(parts[2]))
	if !ok {
		return "", fmt.Errorf("%w: unparseable version %q", planner.ErrShareStringInvalid, parts[2])
	}
	curMajor, curMinor, _ := parseVersion(CurrentVersion)

	switch {
	case major > curMajor:
		return "", fmt.Errorf("%w: future major version %s", planner.ErrShareStringInvalid, parts[2])
	case major < curMajor:
		warning = fmt.Sprintf("share string is from an older major version (%s)", parts[2])
	case minor > curMinor:
		warning = fmt.Sprintf("share string is from a newer version (%s); some data may be ignored", parts[2])
	}

	if err := json.Unmarshal(parts[headerLines], target); err != nil {
		return "", fmt.Errorf("%w: invalid JSON document: %v", planner.ErrShareStringInvalid, err)
	}
	return warning, nil
}

func parseVersion(v string) (major, minor int, ok bool) {
	before, after, found := strings.Cut(v, ".")
	if !found {
		return 0, 0, false
	}
	major, err1 := strconv.Atoi(before)
	minor, err2 := strconv.Atoi(after)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return major, minor, true
}
