package amqp

import (
	"encoding/json"
	"time"
)

// ReceiptSavedMessage announces that a receipt was persisted. Consumers that
// need the line items fetch them by id; the event itself stays small.
type ReceiptSavedMessage struct {
	ReceiptID   int64     `json:"receipt_id"`
	ItemCount   int       `json:"item_count"`
	TotalAmount float64   `json:"total_amount"`
	Currency    string    `json:"currency"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewReceiptSavedMessage(receiptID int64, itemCount int, totalAmount float64, currency string) *ReceiptSavedMessage {
	return &ReceiptSavedMessage{
		ReceiptID:   receiptID,
		ItemCount:   itemCount,
		TotalAmount: totalAmount,
		Currency:    currency,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ReceiptSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReceiptSavedMessageFromJSON creates a message from JSON bytes.
func ReceiptSavedMessageFromJSON(data []byte) (*ReceiptSavedMessage, error) {
	var msg ReceiptSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
