package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"drawchat/controller"
	"drawchat/model"
	"drawchat/platform"
	"drawchat/service"

	_uuid "github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CORSMiddleware ...
// CORS (Cross-Origin Resource Sharing)
func CORSMiddleware() gin.HandlerFunc {
	allowOrigin := os.Getenv("CORS_ALLOW_ORIGIN")
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, UPDATE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Origin, Authorization, Accept, Client-Security-Token, Accept-Encoding, x-access-token")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, X-Conversation-Id")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
		} else {
			c.Next()
		}
	}
}

// RequestIDMiddleware ...
// Generate a unique ID and attach it to each request for future reference or use
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := _uuid.New()
		c.Writer.Header().Set("X-Request-Id", uuid.String())
		c.Set("requestId", uuid.String())
		c.Next()
	}
}

func LogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery
		if raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method
		userAgent := c.Request.UserAgent()
		requestId := c.GetString("requestId")

		logrus.Infof(
			" [%s] %d | %v | %s | %s | %s | %s ",
			requestId,
			status,
			latency,
			clientIP,
			method,
			path,
			userAgent,
		)
	}
}

func main() {
	fmt.Println("Server started...")

	//Load the .env file
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("failed to load the env file")
	}

	platform.InitFile("./log", "gin")

	//init database
	db, err := platform.InitDB()
	if err != nil {
		platform.Logger.Fatalf("init database error: %s", err)
	}
	model.InstallDB(db)

	llm := platform.InitLLMClient()
	llmModel := os.Getenv("LLM_MODEL")
	if llmModel == "" {
		llmModel = "deepseek-chat"
	}

	tokenService := &service.TokenService{}
	userService := &service.UserService{DB: db, Tokens: tokenService}
	conversationService := &service.ConversationService{DB: db}
	chatService := &service.ChatService{
		DB:                  db,
		LLM:                 llm,
		Model:               llmModel,
		Conversations:       conversationService,
		PersistOnDisconnect: os.Getenv("CHAT_PERSIST_ON_DISCONNECT") != "false",
	}
	imageService := &service.ImageService{
		DB:      db,
		BaseURL: os.Getenv("IMAGE_API_URL"),
		Client:  &http.Client{},
	}
	reportService := &service.ReportService{DB: db}

	auth := controller.NewAuthController(db, tokenService)
	user := controller.NewUserController(userService, tokenService)
	chat := controller.NewChatController(chatService)
	image := controller.NewImageController(imageService)
	conversation := controller.NewConversationController(conversationService)

	r := gin.Default()
	r.Use(CORSMiddleware())
	r.Use(RequestIDMiddleware())
	r.Use(LogMiddleware())
	r.Use(auth.SoftAuth())

	r.POST("/register", user.Register)
	r.POST("/login", user.Login)
	r.GET("/logout", user.Logout)
	r.POST("/token/refresh", auth.Refresh)

	r.POST("/chat", chat.Chat)
	r.POST("/image", image.Image)
	r.POST("/remove_think", chat.RemoveThink)

	api := r.Group("/api")
	{
		api.GET("/conversations", conversation.List)
		api.GET("/conversations/:id/messages", conversation.Messages)
		api.POST("/conversations", conversation.Create)
		api.PUT("/conversations/:id", conversation.Rename)
		api.DELETE("/conversations/:id", conversation.Delete)
		api.GET("/search", conversation.Search)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	c := cron.New()
	c.AddFunc("0 4 * * *", func() {
		_ = conversationService.PurgeEmpty(24 * time.Hour)
	})
	c.AddFunc("0 8 * * *", func() {
		_ = reportService.SendDailyReport()
	})
	c.Start()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
