package task

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/randalmurphal/gantt/internal/errors"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{"valid", Task{Name: "a", StartDate: "2025-07-01", EndDate: "2025-07-05"}, false},
		{"single day", Task{Name: "a", StartDate: "2025-07-01", EndDate: "2025-07-01"}, false},
		{"missing name", Task{StartDate: "2025-07-01", EndDate: "2025-07-05"}, true},
		{"blank name", Task{Name: "  ", StartDate: "2025-07-01", EndDate: "2025-07-05"}, true},
		{"missing start", Task{Name: "a", EndDate: "2025-07-05"}, true},
		{"missing end", Task{Name: "a", StartDate: "2025-07-01"}, true},
		{"bad start", Task{Name: "a", StartDate: "07/01/2025", EndDate: "2025-07-05"}, true},
		{"impossible date", Task{Name: "a", StartDate: "2025-02-30", EndDate: "2025-03-05"}, true},
		{"start after end", Task{Name: "a", StartDate: "2025-07-06", EndDate: "2025-07-05"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.task)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, gerrors.HasCode(err, gerrors.CodeValidation))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseCellKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		taskID    string
		composite string
		want      CellKey
		ok        bool
	}{
		{"known id", "task-1", "task-1-2025-07-01", CellKey{"task-1", "2025-07-01"}, true},
		{"id with uuid dashes", "task-0190a1b2-c3d4", "task-0190a1b2-c3d4-2025-07-01", CellKey{"task-0190a1b2-c3d4", "2025-07-01"}, true},
		{"foreign id falls back to suffix", "task-9", "task-1-2025-07-01", CellKey{"task-1", "2025-07-01"}, true},
		{"unknown id", "", "imported-task-3-2025-12-31", CellKey{"imported-task-3", "2025-12-31"}, true},
		{"no date", "task-1", "task-1-notes", CellKey{}, false},
		{"bare date", "", "2025-07-01", CellKey{}, false},
		{"invalid suffix", "", "x-2025-13-01", CellKey{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCellKey(tt.taskID, tt.composite)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	k := CellKey{TaskID: "task-1", Date: "2025-07-01"}
	back, ok := ParseCellKey(k.TaskID, k.String())
	require.True(t, ok)
	assert.Equal(t, k, back)
}

func TestTaskJSON(t *testing.T) {
	t.Parallel()

	orig := Task{
		ID:             "task-1",
		Name:           "企画書作成",
		StartDate:      "2025-07-01",
		EndDate:        "2025-07-05",
		FirstProofDate: "2025-07-03",
		Color:          "#FF5733",
		Cells: map[string]CellOverride{
			"2025-07-01": {Text: "企画", Color: "#FF5733"},
			"2025-07-02": {Text: "作成"},
			"2025-08-30": {Color: "#000000"},
		},
	}

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	texts := raw["cellTexts"].(map[string]any)
	colors := raw["cellColors"].(map[string]any)
	assert.Equal(t, "企画", texts["task-1-2025-07-01"])
	assert.Equal(t, "#000000", colors["task-1-2025-08-30"])
	assert.NotContains(t, texts, "task-1-2025-08-30")
	assert.Equal(t, "", raw["finalProofDate"])

	var back Task
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, orig, back)
}

func TestTaskJSON_KeepsUnrecognizedKeys(t *testing.T) {
	t.Parallel()

	data := []byte(`{"id":"a","name":"n","startDate":"2025-07-01","endDate":"2025-07-02",
		"cellTexts":{"a-2025-07-01":"x","weird":"y"},"cellColors":{}}`)
	var got Task
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "x", got.Cells["2025-07-01"].Text)
	assert.Equal(t, "y", got.Cells["weird"].Text)

	again, err := json.Marshal(got)
	require.NoError(t, err)
	var back Task
	require.NoError(t, json.Unmarshal(again, &back))
	assert.Equal(t, got, back, "verbatim keys are stable across cycles")
}

func TestUnmarshalSnapshot(t *testing.T) {
	t.Parallel()

	good, err := MarshalSnapshot(DefaultTasks())
	require.NoError(t, err)
	tasks, err := UnmarshalSnapshot(good)
	require.NoError(t, err)
	assert.Equal(t, DefaultTasks(), tasks)

	bad := []string{
		`not json`,
		`null`,
		`{"id":"x"}`,
		`[{"id":"x","name":"n","startDate":"2025-07-01"}]`,
		`[{"id":"","name":"n","startDate":"2025-07-01","endDate":"2025-07-02"}]`,
	}
	for _, in := range bad {
		_, err := UnmarshalSnapshot([]byte(in))
		assert.Truef(t, gerrors.HasCode(err, gerrors.CodeParse), "input %s: %v", in, err)
	}

	empty, err := UnmarshalSnapshot([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNewID(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewTaskID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		assert.Regexp(t, `^task-[0-9a-f-]{36}$`, id)
	}
	assert.Regexp(t, `^imported-task-`, NewImportedID())
}

func TestDefaultTasksAreValid(t *testing.T) {
	t.Parallel()

	for _, tk := range DefaultTasks() {
		assert.NoError(t, Validate(tk), tk.ID)
		assert.True(t, tk.HasRequiredFields())
	}
}
