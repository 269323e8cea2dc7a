package tasks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// StorageKey is the fixed key the collection is persisted under.
const StorageKey = "focusflow_tasks_v1"

var (
	ErrNotArray     = errors.New("import file must contain a JSON array of tasks")
	ErrInvalidTasks = errors.New("import file contains records that are not tasks")
)

// Encode serializes the collection as a compact JSON array.
func Encode(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	return json.Marshal(tasks)
}

// Decode parses persisted state. Anything that is not a JSON array of
// tasks yields an empty collection and the reason.
func Decode(b []byte) ([]Task, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return []Task{}, nil
	}
	var out []Task
	if err := json.Unmarshal(b, &out); err != nil {
		return []Task{}, fmt.Errorf("decode tasks: %w", err)
	}
	if out == nil {
		return []Task{}, nil
	}
	return out, nil
}

// Export renders the pretty-printed download format.
func Export(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	return json.MarshalIndent(tasks, "", "  ")
}

// ExportFileName names the export file after the day it was taken.
func ExportFileName(d Date) string {
	return fmt.Sprintf("focusflow-tasks-%s.json", d)
}

// ParseImport validates an import file as a whole: either every record is
// returned or none is.
func ParseImport(b []byte) ([]Task, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}
	var out []Task
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTasks, err)
	}
	return out, nil
}
