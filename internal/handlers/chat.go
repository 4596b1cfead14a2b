package handlers

import (
	"github.com/gofiber/fiber/v2"

	"socialhub/internal/services"
)

// ChatHistoryHandler serves GET /chat/history/:userId?page&limit.
func ChatHistoryHandler(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		peerID, err := c.ParamsInt("userId")
		if err != nil || peerID <= 0 {
			return c.Status(400).JSON(fiber.Map{"error": "invalid user id"})
		}
		page := c.QueryInt("page", 1)
		limit := c.QueryInt("limit", 50)

		history, err := chatService.History(c.Context(), currentUserID(c), peerID, page, limit)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to load history"})
		}
		return c.JSON(history)
	}
}

// MarkChatReadHandler serves PATCH /chat/read/:userId.
func MarkChatReadHandler(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		peerID, err := c.ParamsInt("userId")
		if err != nil || peerID <= 0 {
			return c.Status(400).JSON(fiber.Map{"error": "invalid user id"})
		}
		updated, err := chatService.MarkRead(c.Context(), currentUserID(c), peerID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to mark as read"})
		}
		return c.JSON(fiber.Map{"updated": updated})
	}
}

// ConversationsHandler serves GET /chat/conversations.
func ConversationsHandler(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		convs, err := chatService.Conversations(c.Context(), currentUserID(c))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to load conversations"})
		}
		return c.JSON(convs)
	}
}
