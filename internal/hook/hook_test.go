package hook

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Request
	}{
		{
			name:  "command only",
			input: `{"tool_input": {"command": "DROP TABLE users"}}`,
			want:  Request{Command: "DROP TABLE users"},
		},
		{
			name: "full envelope",
			input: `{"session_id": "abc", "cwd": "/repo", "tool_name": "Bash",
				"tool_input": {"command": "psql -c \"TRUNCATE TABLE t\"", "description": "x"}}`,
			want: Request{Command: `psql -c "TRUNCATE TABLE t"`, ToolName: "Bash", SessionID: "abc", CWD: "/repo"},
		},
		{
			name:  "escaped newline",
			input: `{"tool_input": {"command": "ALTER TABLE t\nDROP COLUMN c"}}`,
			want:  Request{Command: "ALTER TABLE t\nDROP COLUMN c"},
		},
		{
			name:  "missing tool_input",
			input: `{"tool_name": "Bash"}`,
			want:  Request{ToolName: "Bash"},
		},
		{
			name:  "missing command",
			input: `{"tool_input": {}}`,
			want:  Request{},
		},
		{
			name:  "null command",
			input: `{"tool_input": {"command": null}}`,
			want:  Request{},
		},
		{
			name:  "empty command",
			input: `{"tool_input": {"command": ""}}`,
			want:  Request{},
		},
		{
			name:  "repeated command keeps the last",
			input: `{"tool_input": {"command": "BEGIN; SELECT 1; COMMIT;", "command": "TRUNCATE TABLE x"}}`,
			want:  Request{Command: "TRUNCATE TABLE x"},
		},
		{
			name:  "repeated tool_input keeps the last",
			input: `{"tool_input": {"command": "SELECT 1"}, "tool_name": "Bash", "tool_input": {"command": "DROP TABLE x"}, "tool_name": "Shell"}`,
			want:  Request{Command: "DROP TABLE x", ToolName: "Shell"},
		},
		{
			name:  "later null command replaces earlier",
			input: `{"tool_input": {"command": "TRUNCATE TABLE x", "command": null}}`,
			want:  Request{},
		},
		{
			name:  "escaped key",
			input: `{"tool_input": {"comm\u0061nd": "TRUNCATE TABLE x"}}`,
			want:  Request{Command: "TRUNCATE TABLE x"},
		},
		{"false command", `{"tool_input": {"command": false}}`, Request{}},
		{"zero command", `{"tool_input": {"command": 0}}`, Request{}},
		{"zero float command", `{"tool_input": {"command": -0.0}}`, Request{}},
		{"empty array command", `{"tool_input": {"command": [ ]}}`, Request{}},
		{"empty object command", `{"tool_input": {"command": {}}}`, Request{}},
		{
			name:  "non-string tool_name ignored",
			input: `{"tool_name": 3, "tool_input": {"command": "ls"}}`,
			want:  Request{Command: "ls"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"empty input", ``, "malformed hook input"},
		{"truncated", `{"tool_input": {"command": "DROP`, "malformed hook input"},
		{"trailing garbage", `{"tool_input": {}} x`, "malformed hook input"},
		{"array", `[1, 2]`, "expected a JSON object"},
		{"string", `"DROP TABLE x"`, "expected a JSON object"},
		{"tool_input string", `{"tool_input": "DROP TABLE x"}`, "tool_input must be an object"},
		{"tool_input null", `{"tool_input": null}`, "tool_input must be an object"},
		{"command number", `{"tool_input": {"command": 42}}`, "command must be a string"},
		{"command array", `{"tool_input": {"command": ["DROP TABLE x"]}}`, "command must be a string"},
		{"command true", `{"tool_input": {"command": true}}`, "command must be a string"},
		{"command non-zero number", `{"tool_input": {"command": 1}}`, "command must be a string"},
		{"command object", `{"tool_input": {"command": {"sql": "DROP TABLE x"}}}`, "command must be a string"},
		{"invalid UTF-8 in command", "{\"tool_input\": {\"command\": \"BEGIN; SELECT \xff\xfe; COMMIT;\"}}", "not valid UTF-8"},
		{"invalid UTF-8 with blocking rule", "{\"tool_input\": {\"command\": \"TRUNCATE TABLE \xff\"}}", "not valid UTF-8"},
		{"latin-1 input", "{\"tool_input\": {\"command\": \"caf\xe9\"}}", "not valid UTF-8"},
		{"invalid UTF-8 outside command", "{\"cwd\": \"\xc3\", \"tool_input\": {}}", "not valid UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedInput), "want ErrMalformedInput, got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestRead(t *testing.T) {
	req, err := Read(strings.NewReader(`{"tool_input": {"command": "BEGIN; SELECT 1; COMMIT;"}}`))
	require.NoError(t, err)
	assert.Equal(t, "BEGIN; SELECT 1; COMMIT;", req.Command)

	_, err = Read(failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading hook input")
	assert.False(t, errors.Is(err, ErrMalformedInput))
}

func TestReadTooLarge(t *testing.T) {
	_, err := Read(strings.NewReader(strings.Repeat(" ", MaxInputSize+1)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedInput), "want ErrMalformedInput, got %v", err)
	assert.Contains(t, err.Error(), "exceeds")
}
