package controller

import (
	"net/http"

	"drawchat/model"
	"drawchat/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthController ...
type AuthController struct {
	DB     *gorm.DB
	Tokens *service.TokenService
}

func NewAuthController(db *gorm.DB, tokens *service.TokenService) *AuthController {
	return &AuthController{DB: db, Tokens: tokens}
}

// SoftAuth 带 Authorization 头的请求必须通过校验，匿名请求放行。
// 路由本身仍以请求里的显式 user_id 做归属判断。
func (a *AuthController) SoftAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := a.Tokens.ExtractToken(c.Request)
		if token == "" {
			c.Next()
			return
		}
		if model.IsTokenBlacklisted(a.DB, token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("Please login first"))
			return
		}
		tokenAuth, err := a.Tokens.ExtractTokenMetadata(c.Request)
		if err != nil {
			//Token either expired or not valid
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("Please login first"))
			return
		}
		c.Set("UserId", tokenAuth.UserID)
		c.Set("UserName", tokenAuth.UserName)
		c.Next()
	}
}

// Refresh 用仍然有效的令牌换取新令牌
func (a *AuthController) Refresh(c *gin.Context) {
	token := a.Tokens.ExtractToken(c.Request)
	if token == "" || model.IsTokenBlacklisted(a.DB, token) {
		c.JSON(http.StatusUnauthorized, errorBody("Invalid authorization, please login again"))
		return
	}

	tokenAuth, err := a.Tokens.ExtractTokenMetadata(c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorBody("Invalid authorization, please login again"))
		return
	}

	ts, err := a.Tokens.CreateToken(uint(tokenAuth.UserID), tokenAuth.UserName)
	if err != nil {
		c.JSON(http.StatusForbidden, errorBody("Invalid authorization, please login again"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "token": ts.AccessToken})
}
