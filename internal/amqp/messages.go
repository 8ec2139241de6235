package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"finanzapp/internal/notify"
)

// AlertMessage is the envelope published for every spending alert.
type AlertMessage struct {
	ID        string       `json:"id"`
	Alert     notify.Alert `json:"alert"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewAlertMessage wraps an alert with a fresh message ID.
func NewAlertMessage(alert notify.Alert) *AlertMessage {
	return &AlertMessage{
		ID:        uuid.NewString(),
		Alert:     alert,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertMessageFromJSON creates a message from JSON bytes
func AlertMessageFromJSON(data []byte) (*AlertMessage, error) {
	var msg AlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
