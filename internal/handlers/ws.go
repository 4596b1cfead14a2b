package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"socialhub/internal/services"
	"socialhub/internal/utils"
	"socialhub/wire"
)

// WSUpgradeMiddleware rejects plain HTTP requests on the socket route.
func WSUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebSocketHandler runs the per-connection read loop. The connection is
// parameterized by a userId query value at handshake time; no further
// handshake happens over the socket itself.
func WebSocketHandler(chatService *services.ChatService) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		userID, err := strconv.Atoi(c.Query("userId"))
		if err != nil || userID <= 0 {
			log.Printf("ws: rejected connection with bad userId %q", c.Query("userId"))
			c.Close()
			return
		}

		connID := uuid.New().String()
		Manager.Register(connID, userID, c)

		defer func() {
			// Say goodbye to any rooms this connection was still in.
			for _, room := range Manager.RoomsOf(connID) {
				Manager.BroadcastRoom(room, wire.NewEnvelope(wire.EventRoomInfo, wire.RoomInfo{
					Room:    room,
					Message: fmt.Sprintf("user %d left %s", userID, room),
				}), connID)
			}
			Manager.Unregister(connID)
			c.Close()
		}()

		for {
			var env wire.Envelope
			if err := c.ReadJSON(&env); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("ws: read error: %v", err)
				}
				return
			}
			handleEvent(chatService, userID, connID, env)
		}
	})
}

func handleEvent(chatService *services.ChatService, userID int, connID string, env wire.Envelope) {
	switch env.Event {
	case wire.EventPrivateMessage:
		handlePrivateMessage(chatService, userID, env)
	case wire.EventJoinRoom:
		handleJoinRoom(userID, connID, env)
	case wire.EventLeaveRoom:
		handleLeaveRoom(userID, connID, env)
	case wire.EventGroupMessage:
		handleGroupMessage(chatService, userID, connID, env)
	case wire.EventBroadcast:
		// Fan the payload out to everyone as-is.
		Manager.BroadcastAll(env)
	default:
		log.Printf("ws: unknown event %q from user %d", env.Event, userID)
	}
}

func handlePrivateMessage(chatService *services.ChatService, userID int, env wire.Envelope) {
	var payload wire.PrivateMessageSend
	if err := utils.SafeJSONParse(env.Data, &payload); err != nil {
		utils.LogError(err, "privateMessage parse")
		return
	}

	// The sender identity comes from the connection, not the payload.
	msg, err := chatService.SaveDirect(context.Background(), userID, payload.ToUserID, payload.Message, payload.ImageURL)
	if err != nil {
		utils.LogError(err, "privateMessage save")
		return
	}

	push := wire.NewEnvelope(wire.EventPrivateMessage, wire.PrivateMessagePush{
		From:      userID,
		Message:   msg.Content,
		ID:        msg.ID,
		Timestamp: msg.CreatedAt.UnixMilli(),
		ImageURL:  msg.ImageURL,
		Nonce:     payload.Nonce,
	})
	Manager.SendToUser(payload.ToUserID, push)
	// Echo to the sender so its optimistic entry can adopt the server ID.
	Manager.SendToUser(userID, push)
}

func handleJoinRoom(userID int, connID string, env wire.Envelope) {
	var room string
	if err := utils.SafeJSONParse(env.Data, &room); err != nil || room == "" {
		return
	}
	Manager.JoinRoom(room, connID)
	Manager.BroadcastRoom(room, wire.NewEnvelope(wire.EventRoomInfo, wire.RoomInfo{
		Room:    room,
		Message: fmt.Sprintf("user %d joined %s", userID, room),
	}), "")
}

func handleLeaveRoom(userID int, connID string, env wire.Envelope) {
	var room string
	if err := utils.SafeJSONParse(env.Data, &room); err != nil || room == "" {
		return
	}
	Manager.LeaveRoom(room, connID)
	Manager.BroadcastRoom(room, wire.NewEnvelope(wire.EventRoomInfo, wire.RoomInfo{
		Room:    room,
		Message: fmt.Sprintf("user %d left %s", userID, room),
	}), "")
}

func handleGroupMessage(chatService *services.ChatService, userID int, connID string, env wire.Envelope) {
	var payload wire.GroupMessageSend
	if err := utils.SafeJSONParse(env.Data, &payload); err != nil {
		utils.LogError(err, "groupMessage parse")
		return
	}
	if payload.Room == "" {
		return
	}

	msg, err := chatService.SaveRoom(context.Background(), payload.Room, userID, payload.Message)
	if err != nil {
		utils.LogError(err, "groupMessage save")
		return
	}

	// Everyone in the room gets it, sender included: the nonce lets the
	// sender resolve its optimistic echo.
	Manager.BroadcastRoom(payload.Room, wire.NewEnvelope(wire.EventGroupMessage, wire.GroupMessagePush{
		From:      userID,
		Room:      payload.Room,
		Message:   msg.Content,
		ID:        msg.ID,
		Timestamp: msg.CreatedAt.UnixMilli(),
		Nonce:     payload.Nonce,
	}), "")
}
