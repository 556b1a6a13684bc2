package handler

import (
	"github.com/deppfellow/go-commerce/internal/lib/flash"
	"github.com/deppfellow/go-commerce/internal/middleware"
	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/deppfellow/go-commerce/internal/service"
	"github.com/labstack/echo/v4"
)

type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error {
	return nil
}

type MessagesHandler struct {
	Handler
	messages *service.MessageService
}

func NewMessagesHandler(s *server.Server, messages *service.MessageService) *MessagesHandler {
	return &MessagesHandler{Handler: NewHandler(s), messages: messages}
}

// Pop returns and clears the admin session's pending messages.
func (h *MessagesHandler) Pop(c echo.Context, _ *EmptyRequest) ([]flash.Message, error) {
	return h.messages.Pop(c.Request().Context(), middleware.GetSessionID(c))
}
