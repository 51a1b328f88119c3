package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mockchat/internal/model"
	"mockchat/internal/presence"
	"mockchat/internal/transport/http/response"
)

type TypingHandler struct {
	typingStore *presence.TypingStore
}

type TypingRequest struct {
	ConvKey  string `json:"conv_key" binding:"required,max=16"`
	UserName string `json:"user_name" binding:"required,max=64"`
	Role     string `json:"role" binding:"required,max=16"`
	Typing   *bool  `json:"typing" binding:"required"`
}

func NewTypingHandler(typingStore *presence.TypingStore) *TypingHandler {
	return &TypingHandler{typingStore: typingStore}
}

// Update refreshes or clears one typing signal. Signals age out on their own;
// an explicit typing=false just removes them sooner.
func (h *TypingHandler) Update(c *gin.Context) {
	var req TypingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	if !model.ValidRole(req.Role) {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "unknown role")
		return
	}

	var err error
	if *req.Typing {
		err = h.typingStore.Upsert(c.Request.Context(), req.ConvKey, req.UserName, req.Role)
	} else {
		err = h.typingStore.Clear(c.Request.Context(), req.ConvKey, req.UserName)
	}
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update typing state failed")
		return
	}

	response.OK(c, gin.H{"conv_key": req.ConvKey, "typing": *req.Typing})
}
