package bot

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"MarketClose/internal/service/telegram"
	"MarketClose/pkg/logger"
)

// WebhookHandler receives updates pushed by Telegram.
type WebhookHandler struct {
	bot  *Bot
	path string
}

func NewWebhookHandler(b *Bot, path string) *WebhookHandler {
	return &WebhookHandler{bot: b, path: path}
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST(h.path, h.Receive)
}

// Receive always acknowledges with 200 so Telegram does not redeliver.
func (h *WebhookHandler) Receive(c echo.Context) error {
	var u telegram.Update
	if err := c.Bind(&u); err != nil {
		h.bot.logger.Warn("bad webhook payload", logger.Error(err))
		return c.NoContent(http.StatusOK)
	}
	h.bot.HandleUpdate(c.Request().Context(), u)
	return c.NoContent(http.StatusOK)
}
