package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Ivan2330/english-platform-deploy/internal/api/handler"
	"github.com/Ivan2330/english-platform-deploy/internal/api/middleware"
	"github.com/Ivan2330/english-platform-deploy/internal/auth"
	"github.com/Ivan2330/english-platform-deploy/internal/cache"
	"github.com/Ivan2330/english-platform-deploy/internal/config"
	"github.com/Ivan2330/english-platform-deploy/internal/models"
	"github.com/Ivan2330/english-platform-deploy/internal/realtime"
	"github.com/Ivan2330/english-platform-deploy/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Classroom{},
		&models.Lesson{},
		&models.Call{},
		&models.CallParticipant{},
		&models.Chat{},
		&models.ChatMessage{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func setupRouter(cfg *config.Config, h *handler.Handler, store storage.Storage, tokens *auth.TokenService) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.POST("/auth/login", h.Login)

	// Token rides in the query string on these, not in a header.
	r.GET("/ws/calls/:call_id", h.CallWS)
	r.GET("/ws/chats/:chat_id", h.ChatWS)

	api := r.Group("/", middleware.JWTAuth(tokens, store))
	{
		api.GET("/users/me", h.Me)

		admin := api.Group("/users", middleware.AdminOnly())
		{
			admin.POST("", h.CreateUser)
			admin.GET("", h.ListUsers)
			admin.GET("/:user_id", h.GetUser)
			admin.PATCH("/:user_id", h.UpdateUser)
			admin.DELETE("/:user_id", h.DeleteUser)
		}

		api.GET("/classrooms", h.ListClassrooms)
		api.GET("/classrooms/:classroom_id", h.GetClassroom)
		api.GET("/lessons", h.ListLessons)
		api.GET("/lessons/:lesson_id", h.GetLesson)

		api.GET("/calls", h.ListCalls)
		api.GET("/calls/:call_id", h.GetCall)
		api.POST("/calls/:call_id/join", h.JoinCall)
		api.POST("/calls/:call_id/leave", h.LeaveCall)
		api.GET("/calls/:call_id/participants", h.ListCallParticipants)

		api.GET("/chats", h.ListChats)
		api.GET("/chats/:chat_id", h.GetChat)
		api.GET("/chats/:chat_id/messages", h.ListChatMessages)
		api.PATCH("/chats/:chat_id/messages/:message_id", h.MarkMessageRead)

		staff := api.Group("/", middleware.StaffOnly())
		{
			staff.POST("/classrooms", h.CreateClassroom)
			staff.PATCH("/classrooms/:classroom_id", h.UpdateClassroom)
			staff.DELETE("/classrooms/:classroom_id", h.DeleteClassroom)

			staff.POST("/lessons", h.CreateLesson)
			staff.PATCH("/lessons/:lesson_id", h.UpdateLesson)
			staff.DELETE("/lessons/:lesson_id", h.DeleteLesson)

			staff.POST("/calls", h.CreateCall)
			staff.PATCH("/calls/:call_id", h.UpdateCall)
			staff.DELETE("/calls/:call_id", h.DeleteCall)

			staff.POST("/chats", h.CreateChat)
			staff.PATCH("/chats/:chat_id", h.UpdateChat)
			staff.DELETE("/chats/:chat_id", h.DeleteChat)
			staff.DELETE("/chats/:chat_id/messages/:message_id", h.DeleteChatMessage)
		}
	}

	return r
}

func main() {
	log.Println("Starting English Platform Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)
	cacheStore := cache.NewRedisStore(rdb)
	tokens := auth.NewTokenService(cfg.SecretKey, cfg.TokenLifetime)

	calls := realtime.NewRegistry("calls")
	chats := realtime.NewRegistry("chats")

	h := handler.NewHandler(s, cacheStore, tokens, calls, chats)
	r := setupRouter(cfg, h, s, tokens)

	server := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
