package models

import "time"

type Message struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
