package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mockchat/internal/app"
	"mockchat/internal/transport/http/middleware"
	"mockchat/internal/transport/http/response"
)

type ConversationHandler struct {
	conversationService *app.ConversationService
}

type CreateConversationRequest struct {
	AssociateName string `json:"associate_name" binding:"required,min=2,max=64"`
}

type AgentLoginRequest struct {
	ConvKey string `json:"conv_key" binding:"required,max=16"`
	Name    string `json:"name" binding:"max=64"`
}

func NewConversationHandler(conversationService *app.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// Create opens a conversation owned by the calling trainer. The trainer side
// of the pair comes from the token, never the body.
func (h *ConversationHandler) Create(c *gin.Context) {
	trainerName := c.GetString(middleware.ContextUsernameKey)
	if trainerName == "" {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	conversation, err := h.conversationService.Create(app.CreateConversationInput{
		TrainerName:   trainerName,
		AssociateName: req.AssociateName,
		CreatedBy:     trainerName,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create conversation failed")
		}
		return
	}

	response.OK(c, gin.H{
		"conv_key":     conversation.ConvKey,
		"conversation": conversation,
	})
}

func (h *ConversationHandler) Get(c *gin.Context) {
	conversation, err := h.conversationService.Get(c.Param("key"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get conversation failed")
		}
		return
	}

	response.OK(c, conversation)
}

func (h *ConversationHandler) List(c *gin.Context) {
	conversations, err := h.conversationService.List(c.Query("state"), c.Query("created_by"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list conversations failed")
		return
	}

	response.OK(c, conversations)
}

func (h *ConversationHandler) End(c *gin.Context) {
	if err := h.conversationService.End(c.Param("key")); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "end conversation failed")
		}
		return
	}

	response.OK(c, gin.H{"conv_key": c.Param("key"), "ended": true})
}

// AgentLogin joins a live conversation by key alone; no account needed.
func (h *ConversationHandler) AgentLogin(c *gin.Context) {
	var req AgentLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.conversationService.Join(app.JoinInput{
		ConvKey: req.ConvKey,
		Name:    req.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		case errors.Is(err, app.ErrConversationEnded):
			response.Error(c, http.StatusGone, response.CodeConversationEnded, err.Error())
		case errors.Is(err, app.ErrNotParticipant):
			response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "agent login failed")
		}
		return
	}

	response.OK(c, result)
}
