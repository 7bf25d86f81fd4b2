package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SyncState tracks whether an entry has a counterpart in the health store.
// The zero value is Unsynced. A Synced state only records a belief: the
// health store is authoritative and may have dropped the record since.
type SyncState struct {
	externalID string
}

// Unsynced is the state of an entry that was never pushed to the health store.
func Unsynced() SyncState {
	return SyncState{}
}

// Synced is the state of an entry believed to exist remotely under externalID.
// An empty id yields Unsynced.
func Synced(externalID string) SyncState {
	return SyncState{externalID: externalID}
}

// ExternalID returns the remote record id and whether one is set.
func (s SyncState) ExternalID() (string, bool) {
	return s.externalID, s.externalID != ""
}

// IsSynced reports whether an external id is attached.
func (s SyncState) IsSynced() bool {
	return s.externalID != ""
}

func (s SyncState) String() string {
	if !s.IsSynced() {
		return "unsynced"
	}
	return "synced(" + s.externalID + ")"
}

// Value implements the driver.Valuer interface
func (s SyncState) Value() (driver.Value, error) {
	if !s.IsSynced() {
		return nil, nil
	}
	return s.externalID, nil
}

// Scan implements the sql.Scanner interface
func (s *SyncState) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = Unsynced()
	case string:
		*s = Synced(v)
	case []byte:
		*s = Synced(string(v))
	default:
		return fmt.Errorf("cannot scan %T into SyncState", value)
	}
	return nil
}

func (s SyncState) MarshalJSON() ([]byte, error) {
	if !s.IsSynced() {
		return []byte("null"), nil
	}
	return json.Marshal(s.externalID)
}

func (s *SyncState) UnmarshalJSON(data []byte) error {
	var id *string
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	if id == nil {
		*s = Unsynced()
		return nil
	}
	*s = Synced(*id)
	return nil
}
