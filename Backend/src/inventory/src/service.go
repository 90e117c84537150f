package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

type Events interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

// Store is the part of the repository the service needs.
type Store interface {
	Add(ctx context.Context, title, author string, qty int64) (Book, error)
	Update(ctx context.Context, id int64, field Field, value string) (Book, error)
	Delete(ctx context.Context, id int64) (Book, error)
	FindByID(ctx context.Context, id int64) (Book, error)
	SearchText(ctx context.Context, term string) ([]Book, error)
	SearchQuantity(ctx context.Context, low, high int64) ([]Book, error)
	List(ctx context.Context) ([]Book, error)
}

// Service turns storage outcomes into Results and emits domain events after
// successful writes.
type Service struct {
	store  Store
	events Events
}

func NewService(store Store, events Events) *Service {
	return &Service{store: store, events: events}
}

const publishTimeout = 5 * time.Second

func (s *Service) publish(ctx context.Context, key string, ev BookEvent) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.events.PublishJSON(ctx, key, ev); err != nil {
		log.Warn().Err(err).Str("rk", key).Int64("book", ev.BookID).Msg("publish event failed")
	}
}

func (s *Service) Add(ctx context.Context, title, author string, qty int64) (Result, error) {
	b, err := s.store.Add(ctx, title, author, qty)
	if err != nil {
		return classify(err)
	}
	s.publish(ctx, RKBookCreated, newBookEvent(b))
	log.Info().Int64("id", b.ID).Msg("book added")
	return Result{
		Kind:    ResultOK,
		Message: fmt.Sprintf("New book added: \nID: %d \n %s by %s \n Qty: %d", b.ID, b.Title, b.Author, b.Qty),
		Books:   []Book{b},
	}, nil
}

func (s *Service) Update(ctx context.Context, id int64, field Field, value string) (Result, error) {
	b, err := s.store.Update(ctx, id, field, value)
	if err != nil {
		return classify(err)
	}
	ev := newBookEvent(b)
	ev.Field = field
	s.publish(ctx, RKBookUpdated, ev)
	log.Info().Int64("id", id).Str("field", string(field)).Msg("book updated")
	return Result{Kind: ResultOK, Message: updatedMessage(field), Books: []Book{b}}, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (Result, error) {
	b, err := s.store.Delete(ctx, id)
	if err != nil {
		return classify(err)
	}
	s.publish(ctx, RKBookDeleted, newBookEvent(b))
	log.Info().Int64("id", id).Msg("book deleted")
	return Result{Kind: ResultOK, Message: fmt.Sprintf("\n%d has been deleted from the table\n", id)}, nil
}

func (s *Service) Find(ctx context.Context, id int64) (Result, error) {
	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		return classify(err)
	}
	return Result{Kind: ResultOK, Books: []Book{b}}, nil
}

func (s *Service) SearchText(ctx context.Context, term string) (Result, error) {
	return rows(s.store.SearchText(ctx, term))
}

func (s *Service) SearchQuantity(ctx context.Context, low, high int64) (Result, error) {
	return rows(s.store.SearchQuantity(ctx, low, high))
}

func (s *Service) List(ctx context.Context) (Result, error) {
	return rows(s.store.List(ctx))
}

func rows(books []Book, err error) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: ResultOK, Books: books}, nil
}

// classify maps the recoverable storage errors to a Result; anything else is
// returned as is and ends the session.
func classify(err error) (Result, error) {
	switch {
	case errors.Is(err, ErrNotFound):
		return Result{Kind: ResultNotFound, Message: msgNotFound}, nil
	case errors.Is(err, ErrDuplicate):
		return Result{Kind: ResultDuplicate, Message: msgDuplicate}, nil
	case errors.Is(err, ErrInvalidNumber):
		return Result{Kind: ResultInvalid, Message: msgInvalidNumber}, nil
	case errors.Is(err, ErrInvalidField):
		return Result{Kind: ResultInvalid, Message: msgUnrecognised}, nil
	}
	return Result{}, err
}

func updatedMessage(f Field) string {
	switch f {
	case FieldTitle:
		return "Title has been updated.\n"
	case FieldAuthor:
		return "Author has been updated.\n"
	}
	return "Quantity has been updated.\n"
}
