package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mockchat/internal/app"
	"mockchat/internal/transport/http/response"
)

type MessageHandler struct {
	messageService *app.MessageService
}

type SendMessageRequest struct {
	ConvKey    string `json:"conv_key" binding:"required,max=16"`
	SenderName string `json:"sender_name" binding:"required,max=64"`
	SenderRole string `json:"sender_role" binding:"required,max=16"`
	Body       string `json:"body" binding:"required"`
	Attachment string `json:"attachment" binding:"max=512"`
}

type MarkReadRequest struct {
	ConvKey  string `json:"conv_key" binding:"required,max=16"`
	UserName string `json:"user_name" binding:"required,max=64"`
}

func NewMessageHandler(messageService *app.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send accepts a message and enqueues it for persistence. The returned message
// carries no id; the client sees the stored row through its stream session.
func (h *MessageHandler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), app.SendMessageInput{
		ConvKey:    req.ConvKey,
		SenderName: req.SenderName,
		SenderRole: req.SenderRole,
		Body:       req.Body,
		Attachment: req.Attachment,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrMessageEmpty):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		case errors.Is(err, app.ErrConversationEnded):
			response.Error(c, http.StatusGone, response.CodeConversationEnded, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "send message failed")
		}
		return
	}

	response.OK(c, message)
}

func (h *MessageHandler) List(c *gin.Context) {
	messages, err := h.messageService.Transcript(c.Request.Context(), c.Query("conv_key"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list messages failed")
		}
		return
	}

	response.OK(c, messages)
}

// MarkRead records receipts for every message the user has not read yet.
// Calling it again with nothing new to mark is fine and reports zero.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	marked, err := h.messageService.MarkRead(req.ConvKey, req.UserName)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "mark read failed")
		}
		return
	}

	response.OK(c, gin.H{"marked": marked})
}

func (h *MessageHandler) ListReads(c *gin.Context) {
	reads, err := h.messageService.ListReads(c.Query("conv_key"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list reads failed")
		}
		return
	}

	response.OK(c, reads)
}
