package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"socialhub/internal/handlers"
	"socialhub/internal/services"
	"socialhub/internal/store"
	"socialhub/internal/store/pgstore"
	"socialhub/internal/store/sqlstore"
	"socialhub/internal/utils"
	"socialhub/wire"
)

// New builds the fiber application with every route mounted on the given
// store. Tests use this directly with an in-memory store; Run wires it to a
// real database and a listener.
func New(st store.Store) *fiber.App {
	userService := services.NewUserService(st)
	chatService := services.NewChatService(st)
	friendService := services.NewFriendService(st)
	notificationService := services.NewNotificationService(st)

	app := fiber.New()

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// Public Routes
	auth := app.Group("/auth")

	auth.Post("/register", func(c *fiber.Ctx) error {
		var req wire.RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}
		if req.Email == "" || req.Password == "" {
			return c.Status(400).JSON(fiber.Map{"error": "email and password required"})
		}
		user, err := userService.Register(c.Context(), req)
		if err != nil {
			if errors.Is(err, services.ErrUserExists) {
				return c.Status(400).JSON(fiber.Map{"error": "email already registered"})
			}
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(user.Summary())
	})

	auth.Post("/login", func(c *fiber.Ctx) error {
		var req wire.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}
		res, err := userService.Login(c.Context(), req)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(res)
	})

	auth.Post("/refresh-token", func(c *fiber.Ctx) error {
		var req wire.RefreshRequest
		if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
			return c.Status(400).JSON(fiber.Map{"error": "refresh_token required"})
		}
		res, err := userService.Refresh(c.Context(), req.RefreshToken)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "invalid refresh token"})
		}
		return c.JSON(res)
	})

	// Protected Routes
	chat := app.Group("/chat", handlers.AuthMiddleware)
	chat.Get("/history/:userId", handlers.ChatHistoryHandler(chatService))
	chat.Patch("/read/:userId", handlers.MarkChatReadHandler(chatService))
	chat.Get("/conversations", handlers.ConversationsHandler(chatService))

	friend := app.Group("/friend", handlers.AuthMiddleware)
	friend.Post("/request", handlers.SendFriendRequestHandler(friendService, userService))
	friend.Post("/respond", handlers.RespondFriendRequestHandler(friendService, userService))
	friend.Get("/pending", handlers.PendingRequestsHandler(friendService))
	friend.Get("/list", handlers.FriendListHandler(friendService))
	friend.Get("/suggested", handlers.SuggestedFriendsHandler(friendService))
	friend.Get("/status/:userId", handlers.FriendshipStatusHandler(friendService))
	friend.Get("/user/:userId", handlers.FriendsOfUserHandler(friendService))
	friend.Post("/block/:userId", handlers.BlockHandler(friendService))
	friend.Delete("/:friendId", handlers.UnfriendHandler(friendService))

	notifications := app.Group("/notifications", handlers.AuthMiddleware)
	notifications.Get("/", handlers.NotificationsHandler(notificationService))
	notifications.Get("/unread-count", handlers.UnreadNotificationCountHandler(notificationService))
	notifications.Patch("/read-all", handlers.MarkAllNotificationsReadHandler(notificationService))
	notifications.Patch("/:id/read", handlers.MarkNotificationReadHandler(notificationService))

	posts := app.Group("/posts", handlers.AuthMiddleware)
	posts.Post("/", handlers.CreatePostHandler(notificationService))
	posts.Post("/:id/like", handlers.LikePostHandler(notificationService))
	posts.Post("/:id/comment", handlers.CommentPostHandler(notificationService))

	// Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// WebSocket Route. The socket identifies itself with ?userId= at
	// handshake time; no further auth happens on the socket.
	app.Use("/ws", handlers.WSUpgradeMiddleware)
	app.Get("/ws", handlers.WebSocketHandler(chatService))

	return app
}

// openStore picks the storage backend from DB_DRIVER: "postgres" (default)
// or "sqlite".
func openStore(ctx context.Context) (store.Store, error) {
	if utils.GetEnv("DB_DRIVER", "postgres") == "sqlite" {
		return sqlstore.New(utils.GetEnv("SQLITE_PATH", "socialhub.db"))
	}

	connString := utils.GetEnv("DATABASE_URL", "")
	if connString == "" {
		// Fallback to individual vars
		connString = "postgres://" + utils.GetEnv("POSTGRES_USER", "postgres") + ":" +
			utils.GetEnv("POSTGRES_PASSWORD", "postgres") + "@" +
			utils.GetEnv("POSTGRES_HOST", "localhost") + ":" +
			utils.GetEnv("POSTGRES_PORT", "5432") + "/" +
			utils.GetEnv("POSTGRES_DB", "socialhub") + "?sslmode=disable"
	}

	st, err := pgstore.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func Run() {
	if err := utils.LoadEnv(); err != nil {
		log.Println("Warning: .env file not found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := openStore(ctx)
	cancel()
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	app := New(st)

	port := utils.GetEnvInt("PORT", 3001)
	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
			log.Panic(err)
		}
	}()

	// Graceful Shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	log.Println("Gracefully shutting down...")
	_ = app.Shutdown()
	log.Println("Server shutdown complete")
}
