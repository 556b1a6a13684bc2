package service

import (
	"context"

	"github.com/deppfellow/go-commerce/internal/lib/flash"
)

type MessageService struct {
	flash *flash.Store
}

func NewMessageService(store *flash.Store) *MessageService {
	return &MessageService{flash: store}
}

// Pop returns and clears the session's pending messages.
func (s *MessageService) Pop(ctx context.Context, session string) ([]flash.Message, error) {
	messages, err := s.flash.Pop(ctx, session)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []flash.Message{}
	}
	return messages, nil
}
