// Package hook reads the tool-invocation envelope a host sends on stdin before
// running a shell command: {"tool_name": "...", "tool_input": {"command": "..."}}.
package hook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/buger/jsonparser"
)

// MaxInputSize bounds how much of stdin Read will consume.
const MaxInputSize = 16 << 20

// ErrMalformedInput marks an envelope that could not be understood. It is an
// input-contract failure, not a rule finding.
var ErrMalformedInput = errors.New("malformed hook input")

// Request is the part of the envelope the validator cares about.
// Only Command feeds evaluation; the rest is carried into logs.
type Request struct {
	Command   string
	ToolName  string
	SessionID string
	CWD       string
}

// Read consumes r and parses it as an envelope. Input larger than
// MaxInputSize is rejected as malformed.
func Read(r io.Reader) (Request, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInputSize+1))
	if err != nil {
		return Request{}, fmt.Errorf("reading hook input: %w", err)
	}
	if len(data) > MaxInputSize {
		return Request{}, fmt.Errorf("%w: input exceeds %d bytes", ErrMalformedInput, MaxInputSize)
	}
	return Parse(data)
}

// Parse extracts the request from a JSON envelope. A command that is missing,
// null or otherwise empty (false, 0, [], {}) yields an empty Command and no
// error. When a key repeats, its last occurrence wins.
func Parse(data []byte) (Request, error) {
	if !utf8.Valid(data) {
		return Request{}, fmt.Errorf("%w: input is not valid UTF-8", ErrMalformedInput)
	}
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return Request{}, fmt.Errorf("%w: expected a JSON object", ErrMalformedInput)
	}

	command, err := extractCommand(data)
	if err != nil {
		return Request{}, err
	}

	return Request{
		Command:   command,
		ToolName:  optionalString(data, "tool_name"),
		SessionID: optionalString(data, "session_id"),
		CWD:       optionalString(data, "cwd"),
	}, nil
}

func extractCommand(data []byte) (string, error) {
	input, typ, err := lastValue(data, "tool_input")
	switch {
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrMalformedInput, err)
	case typ == jsonparser.NotExist:
		return "", nil
	case typ != jsonparser.Object:
		return "", fmt.Errorf("%w: tool_input must be an object, got %s", ErrMalformedInput, typ)
	}

	value, typ, err := lastValue(input, "command")
	switch {
	case err != nil:
		return "", fmt.Errorf("%w: tool_input: %v", ErrMalformedInput, err)
	case typ == jsonparser.NotExist, empty(value, typ):
		return "", nil
	case typ != jsonparser.String:
		return "", fmt.Errorf("%w: tool_input.command must be a string, got %s", ErrMalformedInput, typ)
	}

	command, err := jsonparser.ParseString(value)
	if err != nil {
		return "", fmt.Errorf("%w: tool_input.command: %v", ErrMalformedInput, err)
	}
	return command, nil
}

// lastValue returns the last value stored under key in the object data.
// NotExist is reported when key is absent.
func lastValue(data []byte, key string) ([]byte, jsonparser.ValueType, error) {
	var (
		value []byte
		typ   = jsonparser.NotExist
	)
	err := jsonparser.ObjectEach(data, func(k, v []byte, t jsonparser.ValueType, _ int) error {
		if string(k) == key {
			value, typ = v, t
		}
		return nil
	})
	if err != nil {
		return nil, jsonparser.NotExist, err
	}
	return value, typ, nil
}

// empty reports whether a value counts as "nothing to validate": null, false,
// zero, or an empty array or object.
func empty(value []byte, typ jsonparser.ValueType) bool {
	switch typ {
	case jsonparser.Null:
		return true
	case jsonparser.Boolean:
		return string(value) == "false"
	case jsonparser.Number:
		f, err := strconv.ParseFloat(string(value), 64)
		return err == nil && f == 0
	case jsonparser.Array, jsonparser.Object:
		return len(bytes.TrimSpace(value[1:len(value)-1])) == 0
	}
	return false
}

// optionalString returns the string under key, or "" if it is absent or not a
// string. The last occurrence of a repeated key wins.
func optionalString(data []byte, key string) string {
	value, typ, err := lastValue(data, key)
	if err != nil || typ != jsonparser.String {
		return ""
	}
	s, err := jsonparser.ParseString(value)
	if err != nil {
		return ""
	}
	return s
}
