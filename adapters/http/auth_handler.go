package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/program-catalog/internal/application/usecase/auth"
)

type AuthHandler struct {
	loginUseCase   *auth.LoginUseCase
	refreshUseCase *auth.RefreshUseCase
}

func NewAuthHandler(loginUC *auth.LoginUseCase, refreshUC *auth.RefreshUseCase) *AuthHandler {
	return &AuthHandler{
		loginUseCase:   loginUC,
		refreshUseCase: refreshUC,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	output, err := h.loginUseCase.Execute(c.Request.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "logged in", output)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	output, err := h.refreshUseCase.Execute(c.Request.Context(), req.Token)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "token refreshed", output)
}
