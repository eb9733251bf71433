package bracket

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type SlotKind int

const (
	SlotUnassigned SlotKind = iota
	SlotBye
	SlotAssigned
)

const (
	unassignedValue = "unassigned"
	byeValue        = "bye"
)

// Slot is one side of a match. The zero value is Unassigned.
type Slot struct {
	Kind          SlotKind
	ParticipantID uuid.UUID
}

func Unassigned() Slot {
	return Slot{Kind: SlotUnassigned}
}

func ByeSlot() Slot {
	return Slot{Kind: SlotBye}
}

func Assigned(participantID uuid.UUID) Slot {
	return Slot{Kind: SlotAssigned, ParticipantID: participantID}
}

func (s Slot) IsAssigned() bool {
	return s.Kind == SlotAssigned
}

func (s Slot) IsBye() bool {
	return s.Kind == SlotBye
}

// Participant returns the occupant of the slot, if any.
func (s Slot) Participant() (uuid.UUID, bool) {
	if s.Kind != SlotAssigned {
		return uuid.Nil, false
	}
	return s.ParticipantID, true
}

func (s Slot) Holds(participantID uuid.UUID) bool {
	return s.Kind == SlotAssigned && s.ParticipantID == participantID
}

func (s Slot) String() string {
	switch s.Kind {
	case SlotBye:
		return byeValue
	case SlotAssigned:
		return s.ParticipantID.String()
	default:
		return unassignedValue
	}
}

// Value stores the slot as a single text column.
func (s Slot) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *Slot) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = Unassigned()
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Slot", src)
	}
}

func (s Slot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Slot) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return s.parse(raw)
}

func (s *Slot) parse(raw string) error {
	switch raw {
	case "", unassignedValue:
		*s = Unassigned()
	case byeValue:
		*s = ByeSlot()
	default:
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid slot value %q: %w", raw, err)
		}
		*s = Assigned(id)
	}
	return nil
}
