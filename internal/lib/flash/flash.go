// Package flash keeps admin notices and rejected form data in Redis for
// the next request of the same admin session.
package flash

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Type is the severity of a Message.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeNotice  Type = "notice"
)

// Message is one notice shown after a redirect.
type Message struct {
	Type Type   `json:"type"`
	Text string `json:"text"`
}

// Store reads and writes flash data. Keys expire after ttl so abandoned
// sessions do not accumulate.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns a Store backed by client.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func messagesKey(session string) string {
	return fmt.Sprintf("flash:%s:messages", session)
}

func formKey(session string) string {
	return fmt.Sprintf("flash:%s:form", session)
}

// Add appends a message to the session.
func (s *Store) Add(ctx context.Context, session string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encode flash message")
	}

	key := messagesKey(session)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "store flash message")
	}
	return nil
}

// Pop returns the session's messages in the order they were added and
// clears them.
func (s *Store) Pop(ctx context.Context, session string) ([]Message, error) {
	key := messagesKey(session)

	pipe := s.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "pop flash messages")
	}

	raw := rangeCmd.Val()
	messages := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, errors.Wrap(err, "decode flash message")
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// SetFormData keeps data so the form can be filled in again.
func (s *Store) SetFormData(ctx context.Context, session string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "encode form data")
	}
	if err := s.client.Set(ctx, formKey(session), payload, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "store form data")
	}
	return nil
}

// FormData returns the saved form data, or nil when there is none. With
// clear set the data is removed as it is read.
func (s *Store) FormData(ctx context.Context, session string, clear bool) (map[string]any, error) {
	key := formKey(session)

	var getCmd *redis.StringCmd
	if clear {
		pipe := s.client.TxPipeline()
		getCmd = pipe.Get(ctx, key)
		pipe.Del(ctx, key)
		if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
			return nil, errors.Wrap(err, "read form data")
		}
	} else {
		getCmd = s.client.Get(ctx, key)
	}

	payload, err := getCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read form data")
	}

	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, errors.Wrap(err, "decode form data")
	}
	return data, nil
}

// Session binds the store to one admin session and remembers the messages
// added through it, so an action can echo them in its response.
type Session struct {
	store *Store
	id    string
	added []Message
}

// Session returns a handle for id.
func (s *Store) Session(id string) *Session {
	return &Session{store: s, id: id}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// AddSuccess flashes a success notice.
func (s *Session) AddSuccess(ctx context.Context, text string) error {
	return s.add(ctx, Message{Type: TypeSuccess, Text: text})
}

// AddError flashes an error notice.
func (s *Session) AddError(ctx context.Context, text string) error {
	return s.add(ctx, Message{Type: TypeError, Text: text})
}

// AddNotice flashes an informational notice.
func (s *Session) AddNotice(ctx context.Context, text string) error {
	return s.add(ctx, Message{Type: TypeNotice, Text: text})
}

func (s *Session) add(ctx context.Context, msg Message) error {
	if err := s.store.Add(ctx, s.id, msg); err != nil {
		return err
	}
	s.added = append(s.added, msg)
	return nil
}

// SetFormData keeps data for the session.
func (s *Session) SetFormData(ctx context.Context, data map[string]any) error {
	return s.store.SetFormData(ctx, s.id, data)
}

// FormData reads the session's saved form data.
func (s *Session) FormData(ctx context.Context, clear bool) (map[string]any, error) {
	return s.store.FormData(ctx, s.id, clear)
}

// Added returns the messages added through this handle.
func (s *Session) Added() []Message {
	return s.added
}

// Redirect is the JSON body of an admin action: where the client should go
// next and the notices the action produced.
type Redirect struct {
	Redirect string    `json:"redirect"`
	Messages []Message `json:"messages"`
}

// Redirect builds the response for path.
func (s *Session) Redirect(path string) *Redirect {
	messages := s.added
	if messages == nil {
		messages = []Message{}
	}
	return &Redirect{Redirect: path, Messages: messages}
}
