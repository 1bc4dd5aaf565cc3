package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Debasish241/RealTime-Chatapp/internal/auth"
	"github.com/Debasish241/RealTime-Chatapp/internal/otp"
	"github.com/Debasish241/RealTime-Chatapp/internal/service"
)

type UserHandler interface {
	Login(c *gin.Context)
	Verify(c *gin.Context)
	Profile(c *gin.Context)
	UpdateName(c *gin.Context)
	GetAllUsers(c *gin.Context)
	GetUser(c *gin.Context)
}

type userHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) UserHandler {
	return &userHandler{
		service: service,
	}
}

type loginRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type updateNameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *userHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email is required"})
		return
	}

	if err := h.service.Login(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, otp.ErrRateLimited) {
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "Otp is sent, Please wait before requesting new otp"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send otp"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to your email"})
}

func (h *userHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and OTP are required"})
		return
	}

	user, token, err := h.service.Verify(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		if errors.Is(err, otp.ErrInvalidOrExpired) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired OTP"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to verify"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Verified successfully",
		"user":    user,
		"token":   token,
	})
}

func (h *userHandler) Profile(c *gin.Context) {
	user, err := h.service.Profile(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *userHandler) UpdateName(c *gin.Context) {
	var req updateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name is required"})
		return
	}

	user, token, err := h.service.UpdateName(c.Request.Context(), auth.UserID(c), req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update name"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Name updated successfully",
		"user":    user,
		"token":   token,
	})
}

func (h *userHandler) GetAllUsers(c *gin.Context) {
	users, err := h.service.GetAllUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *userHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
