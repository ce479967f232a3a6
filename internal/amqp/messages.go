package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// SlotChangeMessage announces that a storage slot was rewritten. Receivers
// reload the slot from the shared store; Value is informational.
type SlotChangeMessage struct {
	Key       string          `json:"key"`
	Origin    string          `json:"origin"`
	Value     json.RawMessage `json:"value,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewSlotChangeMessage creates a message stamped with the current time.
func NewSlotChangeMessage(key, origin string, value []byte) *SlotChangeMessage {
	msg := &SlotChangeMessage{
		Key:       key,
		Origin:    origin,
		Timestamp: time.Now(),
	}
	if json.Valid(value) {
		msg.Value = json.RawMessage(value)
	}
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *SlotChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SlotChangeMessageFromJSON parses a message and requires a key.
func SlotChangeMessageFromJSON(data []byte) (*SlotChangeMessage, error) {
	var msg SlotChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Key == "" {
		return nil, fmt.Errorf("slot change message without key")
	}
	return &msg, nil
}
