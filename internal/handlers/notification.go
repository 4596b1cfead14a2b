package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"socialhub/internal/services"
	"socialhub/internal/store"
	"socialhub/wire"
)

// NotificationsHandler serves GET /notifications?page&items_per_page.
func NotificationsHandler(notificationService *services.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := notificationService.List(c.Context(), currentUserID(c),
			c.QueryInt("page", 1), c.QueryInt("items_per_page", 20))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to load notifications"})
		}
		return c.JSON(list)
	}
}

// UnreadNotificationCountHandler serves GET /notifications/unread-count.
func UnreadNotificationCountHandler(notificationService *services.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, err := notificationService.UnreadCount(c.Context(), currentUserID(c))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to count notifications"})
		}
		return c.JSON(wire.UnreadCount{UnreadCount: count})
	}
}

// MarkNotificationReadHandler serves PATCH /notifications/:id/read.
func MarkNotificationReadHandler(notificationService *services.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return c.Status(400).JSON(fiber.Map{"error": "invalid notification id"})
		}
		if err := notificationService.MarkRead(c.Context(), currentUserID(c), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.Status(404).JSON(fiber.Map{"error": "notification not found"})
			}
			return c.Status(500).JSON(fiber.Map{"error": "failed to mark notification"})
		}
		return c.JSON(fiber.Map{"message": "marked as read"})
	}
}

// MarkAllNotificationsReadHandler serves PATCH /notifications/read-all.
func MarkAllNotificationsReadHandler(notificationService *services.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := notificationService.MarkAllRead(c.Context(), currentUserID(c)); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to mark notifications"})
		}
		return c.JSON(fiber.Map{"message": "all marked as read"})
	}
}

// CreatePostHandler serves POST /posts.
func CreatePostHandler(notificationService *services.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req wire.CreatePostRequest
		if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Title) == "" {
			return c.Status(400).JSON(fiber.Map{"error": "title is required"})
		}
		post, err := notificationService.CreatePost(c.Context(), currentUserID(c), req.Title)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to create post"})
		}
		return c.Status(201).JSON(fiber.Map{"id": post.ID, "title": post.Title})
	}
}

// LikePostHandler serves POST /posts/:id/like. The post owner gets a
// newNotification push.
func LikePostHandler(notificationService *services.NotificationService) fiber.Handler {
	return postActivityHandler(notificationService, wire.NotificationLike)
}

// CommentPostHandler serves POST /posts/:id/comment.
func CommentPostHandler(notificationService *services.NotificationService) fiber.Handler {
	return postActivityHandler(notificationService, wire.NotificationComment)
}

func postActivityHandler(notificationService *services.NotificationService, typ string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		postID, err := c.ParamsInt("id")
		if err != nil || postID <= 0 {
			return c.Status(400).JSON(fiber.Map{"error": "invalid post id"})
		}

		notification, recipientID, err := notificationService.NotifyPostActivity(c.Context(), currentUserID(c), postID, typ)
		if err != nil {
			if errors.Is(err, services.ErrPostNotFound) {
				return c.Status(404).JSON(fiber.Map{"error": "post not found"})
			}
			return c.Status(500).JSON(fiber.Map{"error": "failed to record activity"})
		}

		if notification != nil {
			Manager.SendToUser(recipientID, wire.NewEnvelope(wire.EventNewNotification, wire.NotificationPush{
				Type: "new_notification",
				Data: *notification,
			}))
		}
		return c.Status(201).JSON(fiber.Map{"message": typ + " recorded"})
	}
}
