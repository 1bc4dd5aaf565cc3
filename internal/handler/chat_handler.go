package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Debasish241/RealTime-Chatapp/internal/auth"
	"github.com/Debasish241/RealTime-Chatapp/internal/repo"
	"github.com/Debasish241/RealTime-Chatapp/internal/service"
)

type ChatHandler interface {
	CreateChat(c *gin.Context)
	GetAllChats(c *gin.Context)
	SendMessage(c *gin.Context)
	GetMessages(c *gin.Context)
}

type chatHandler struct {
	service service.ChatService
}

func NewChatHandler(service service.ChatService) ChatHandler {
	return &chatHandler{
		service: service,
	}
}

type createChatRequest struct {
	OtherUserID string `json:"otherUserId" binding:"required"`
}

type sendMessageRequest struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

func (h *chatHandler) CreateChat(c *gin.Context) {
	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Other userId is required"})
		return
	}

	chatID, err := h.service.CreateChat(c.Request.Context(), auth.UserID(c), req.OtherUserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfChat):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot chat with yourself"})
		case errors.Is(err, repo.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create chat"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"chatId": chatID})
}

func (h *chatHandler) GetAllChats(c *gin.Context) {
	chats, err := h.service.ListChats(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get chats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

func (h *chatHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid message body"})
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), auth.UserID(c), c.Param("chatId"), req.Text, req.ImageURL)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Chat not found"})
		case errors.Is(err, service.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"message": "You are not part of this chat"})
		case errors.Is(err, service.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Text or image is required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send message"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (h *chatHandler) GetMessages(c *gin.Context) {
	messages, other, err := h.service.GetMessages(c.Request.Context(), auth.UserID(c), c.Param("chatId"))
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Chat not found"})
		case errors.Is(err, service.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"message": "You are not part of this chat"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get messages"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"user":     other,
	})
}
