package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"drawchat/model"
	"drawchat/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int64

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	t.Setenv("ACCESS_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:controllertest%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	model.InstallDB(db)

	tokens := &service.TokenService{}
	users := &service.UserService{DB: db, Tokens: tokens}
	conversations := &service.ConversationService{DB: db}

	auth := NewAuthController(db, tokens)
	user := NewUserController(users, tokens)
	conversation := NewConversationController(conversations)

	r := gin.New()
	r.Use(auth.SoftAuth())
	r.POST("/register", user.Register)
	r.POST("/login", user.Login)
	r.GET("/logout", user.Logout)
	r.POST("/token/refresh", auth.Refresh)
	api := r.Group("/api")
	{
		api.GET("/conversations", conversation.List)
		api.GET("/conversations/:id/messages", conversation.Messages)
		api.POST("/conversations", conversation.Create)
		api.PUT("/conversations/:id", conversation.Rename)
		api.DELETE("/conversations/:id", conversation.Delete)
		api.GET("/search", conversation.Search)
	}
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}
