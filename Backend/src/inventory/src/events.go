package main

import (
	"time"

	"github.com/google/uuid"
)

// Eventos publicados por el inventario
const (
	RKBookCreated = "inventory.book.created"
	RKBookUpdated = "inventory.book.updated"
	RKBookDeleted = "inventory.book.deleted"
)

type BookEvent struct {
	EventID    string `json:"event_id"`
	OccurredAt int64  `json:"occurred_at"`
	BookID     int64  `json:"book_id"`
	Title      string `json:"title,omitempty"`
	Author     string `json:"author,omitempty"`
	Qty        int64  `json:"qty"`
	Field      Field  `json:"field,omitempty"`
}

func newBookEvent(b Book) BookEvent {
	return BookEvent{
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().Unix(),
		BookID:     b.ID,
		Title:      b.Title,
		Author:     b.Author,
		Qty:        b.Qty,
	}
}
