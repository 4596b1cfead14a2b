package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"socialhub/internal/services"
	"socialhub/internal/store"
	"socialhub/wire"
)

func friendErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrSelfRequest),
		errors.Is(err, services.ErrRequestExists),
		errors.Is(err, services.ErrAlreadyFriends),
		errors.Is(err, services.ErrBadAction):
		return 400
	case errors.Is(err, services.ErrBlocked),
		errors.Is(err, services.ErrNotAddressee):
		return 403
	case errors.Is(err, services.ErrNotPending):
		return 409
	case errors.Is(err, services.ErrFriendshipGone),
		errors.Is(err, services.ErrNotFriends),
		errors.Is(err, store.ErrNotFound):
		return 404
	default:
		return 500
	}
}

// SendFriendRequestHandler serves POST /friend/request and pushes
// friendRequestReceived to the addressee.
func SendFriendRequestHandler(friendService *services.FriendService, userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req wire.SendFriendRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}

		userID := currentUserID(c)
		f, err := friendService.SendRequest(c.Context(), userID, req.AddresseeID)
		if err != nil {
			return c.Status(friendErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}

		if requester, err := userService.GetUser(c.Context(), userID); err == nil {
			Manager.SendToUser(req.AddresseeID, wire.NewEnvelope(wire.EventFriendRequestReceived,
				wire.FriendRequestReceivedPush{
					FriendshipID: f.ID,
					From:         requester.Summary(),
				}))
		}

		return c.Status(201).JSON(fiber.Map{"friendshipId": f.ID, "status": f.Status})
	}
}

// RespondFriendRequestHandler serves POST /friend/respond and pushes
// friendRequestAccepted or friendRequestRejected to the requester.
func RespondFriendRequestHandler(friendService *services.FriendService, userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req wire.RespondFriendRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}

		userID := currentUserID(c)
		f, err := friendService.Respond(c.Context(), userID, req.FriendshipID, req.Action)
		if err != nil {
			return c.Status(friendErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}

		if f.Status == wire.FriendshipAccepted {
			if responder, err := userService.GetUser(c.Context(), userID); err == nil {
				Manager.SendToUser(f.RequesterID, wire.NewEnvelope(wire.EventFriendRequestAccepted,
					wire.FriendRequestAcceptedPush{
						FriendshipID: f.ID,
						Friend:       responder.Summary(),
					}))
			}
		} else {
			Manager.SendToUser(f.RequesterID, wire.NewEnvelope(wire.EventFriendRequestRejected,
				wire.FriendRequestRejectedPush{
					FriendshipID: f.ID,
					UserID:       userID,
				}))
		}

		return c.JSON(fiber.Map{"friendshipId": f.ID, "status": f.Status})
	}
}

// PendingRequestsHandler serves GET /friend/pending.
func PendingRequestsHandler(friendService *services.FriendService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pending, err := friendService.Pending(c.Context(), currentUserID(c))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to load pending requests"})
		}
		return c.JSON(pending)
	}
}

// FriendListHandler serves GET /friend/list?page&limit&search.
func FriendListHandler(friendService *services.FriendService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := friendService.List(c.Context(), currentUserID(c),
			c.QueryInt("page", 1), c.QueryInt("limit", 10), c.Query("search"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to load friends"})
		}
		return c.JSON(list)
	}
}

// FriendsOfUserHandler serves GET /friend/user/:userId.
func FriendsOfUserHandler(friendService *services.FriendService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := c.ParamsInt("userId")
		if err != nil || userID <= 0 {
			return c.Status(400).JSON(fiber.Map{"error": "invalid user id"})
		}
		list, err := friendService.List(c.Context(), userID,
			c.QueryInt("page", 1), c.QueryInt("limit", 10), c.Query("search"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to load friends"})
		}
		return c.JSON(list)
	}
}

// FriendshipStatusHandler serves GET /friend/status/:userId.
func FriendshipStatusHandler(friendService *services.FriendService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		otherID, err := c.ParamsInt("userId")
		if err != nil || otherID <= 0 {
			return c.Status(400).JSON(fiber.Map{"error": "invalid user id"})
		}
		status, err := friendService.Status(c.Context(), currentUserID(c), otherID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to load status"})
		}
		return c.JSON(status)
	}
}

// UnfriendHandler serves DELETE /friend/:friendId and pushes unfriended to
// the removed friend.
func UnfriendHandler(friendService *services.FriendService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		friendID, err := c.ParamsInt("friendId")
		if err != nil || friendID <= 0 {
			return c.Status(400).JSON(fiber.Map{"error": "invalid friend id"})
		}

		userID := currentUserID(c)
		f, err := friendService.Unfriend(c.Context(), userID, friendID)
		if err != nil {
			return c.Status(friendErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}

		Manager.SendToUser(f.Other(userID), wire.NewEnvelope(wire.EventUnfriended, wire.UnfriendedPush{
			UserID:  userID,
			Message: "friendship removed",
		}))
		return c.JSON(fiber.Map{"message": "unfriended"})
	}
}

// BlockHandler serves POST /friend/block/:userId and pushes blocked to the
// target.
func BlockHandler(friendService *services.FriendService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		targetID, err := c.ParamsInt("userId")
		if err != nil || targetID <= 0 {
			return c.Status(400).JSON(fiber.Map{"error": "invalid user id"})
		}

		userID := currentUserID(c)
		if _, err := friendService.Block(c.Context(), userID, targetID); err != nil {
			return c.Status(friendErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}

		Manager.SendToUser(targetID, wire.NewEnvelope(wire.EventBlocked, wire.BlockedPush{
			UserID:  userID,
			Message: "you have been blocked",
		}))
		return c.JSON(fiber.Map{"message": "blocked"})
	}
}

// SuggestedFriendsHandler serves GET /friend/suggested.
func SuggestedFriendsHandler(friendService *services.FriendService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := friendService.Suggested(c.Context(), currentUserID(c))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to load suggestions"})
		}
		return c.JSON(users)
	}
}
