package controller

import (
	"errors"
	"net/http"

	"drawchat/platform"
	"drawchat/service"

	"github.com/gin-gonic/gin"
)

var logger = platform.Logger

func errorBody(message string) gin.H {
	return gin.H{"status": "error", "message": message}
}

// UserController ...
type UserController struct {
	Users  *service.UserService
	Tokens *service.TokenService
}

func NewUserController(users *service.UserService, tokens *service.TokenService) *UserController {
	return &UserController{Users: users, Tokens: tokens}
}

func (ctrl *UserController) Register(c *gin.Context) {
	logger.Infof("[%s] Handling user registration request", c.GetString("requestId"))

	var input struct {
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warnf("[%s] Invalid input, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, errorBody("Invalid input"))
		return
	}

	err := ctrl.Users.Register(&service.RegisterInput{
		Username:        input.Username,
		Email:           input.Email,
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
	})
	if err != nil {
		var fieldErrors service.ValidationErrors
		if errors.As(err, &fieldErrors) {
			logger.Warnf("[%s] Registration validation failed for %s", c.GetString("requestId"), input.Username)
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "errors": fieldErrors})
			return
		}
		logger.Warnf("[%s] Failed to register user %s: %s", c.GetString("requestId"), input.Username, err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to register user"))
		return
	}

	logger.Infof("[%s] User %s registered successfully", c.GetString("requestId"), input.Username)
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "User registered successfully"})
}

func (ctrl *UserController) Login(c *gin.Context) {
	logger.Infof("[%s] Handling user login request", c.GetString("requestId"))

	var loginRequest struct {
		Identifier string `json:"identifier" binding:"required"`
		Password   string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&loginRequest); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid request data"))
		return
	}

	user, token, err := ctrl.Users.Login(loginRequest.Identifier, loginRequest.Password)
	if err != nil {
		logger.Warnf("[%s] User %s failed to login: %s", c.GetString("requestId"), loginRequest.Identifier, err)
		c.JSON(http.StatusUnauthorized, errorBody("invalid credentials"))
		return
	}

	logger.Infof("[%s] User %s login successfully", c.GetString("requestId"), user.Username)
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
		"user":   gin.H{"id": user.ID, "username": user.Username},
	})
}

func (ctrl *UserController) Logout(c *gin.Context) {
	token := ctrl.Tokens.ExtractToken(c.Request)
	if token == "" {
		c.JSON(http.StatusUnauthorized, errorBody("missing authorization token"))
		return
	}
	if err := ctrl.Users.Logout(token); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, errorBody("invalid token"))
			return
		}
		logger.Warnf("[%s] Failed to logout: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to logout"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Logged out successfully"})
}
