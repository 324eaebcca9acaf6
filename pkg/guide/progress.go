package guide

import (
	"encoding/json"
	"fmt"
	"os"
)

// ProgressRecord is the flat per-group record handed to the persistence
// collaborator. The schema of whatever store it lands in is the
// collaborator's concern.
type ProgressRecord struct {
	GroupID          string `json:"group_id"`
	State            string `json:"state"`
	CurrentItemIndex int    `json:"current_item_index"`
}

// SnapshotProgress captures one record per registered group, in
// registration order.
func (m *Manager) SnapshotProgress() []ProgressRecord {
	groups := m.Groups()
	out := make([]ProgressRecord, 0, len(groups))
	for _, g := range groups {
		out = append(out, ProgressRecord{
			GroupID:          g.ID(),
			State:            g.State().String(),
			CurrentItemIndex: g.CurrentIndex(),
		})
	}
	return out
}

// RestoreProgress is the load-time extension point. Resume semantics are
// deliberately undecided (whether a mid-item record restarts the item from
// Waiting or fast-forwards over completed items), so the default
// implementation only validates the target and records the request.
func (m *Manager) RestoreProgress(groupID string, rec ProgressRecord) error {
	if _, exists := m.groups[groupID]; !exists {
		return fmt.Errorf("restore progress: group %q not registered", groupID)
	}
	m.env.Log.Info("restore progress requested (not applied)",
		"group", groupID, "state", rec.State, "index", rec.CurrentItemIndex)
	return nil
}

// SaveProgress persists the snapshot to a JSON file.
func SaveProgress(records []ProgressRecord, path string) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	return nil
}

// LoadProgress reads a snapshot from a JSON file.
func LoadProgress(path string) ([]ProgressRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}
	var records []ProgressRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal progress: %w", err)
	}
	return records, nil
}
