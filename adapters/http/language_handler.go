package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	languageUC "github.com/khoahotran/program-catalog/internal/application/usecase/language"
)

type LanguageHandler struct {
	languageUseCase *languageUC.LanguageUseCase
}

func NewLanguageHandler(uc *languageUC.LanguageUseCase) *LanguageHandler {
	return &LanguageHandler{languageUseCase: uc}
}

func (h *LanguageHandler) ListLanguages(c *gin.Context) {
	h.list(c, false)
}

func (h *LanguageHandler) ListActiveLanguages(c *gin.Context) {
	h.list(c, true)
}

func (h *LanguageHandler) list(c *gin.Context, activeOnly bool) {
	items, err := h.languageUseCase.ListLanguages(c.Request.Context(), activeOnly)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondOK(c, items)
}

func (h *LanguageHandler) GetLanguage(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	item, err := h.languageUseCase.GetLanguage(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondOK(c, item)
}

func (h *LanguageHandler) CreateLanguage(c *gin.Context) {
	var req CreateLanguageRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	item, err := h.languageUseCase.CreateLanguage(c.Request.Context(), languageUC.CreateLanguageInput{
		Caller:    GetCallerFromGinContext(c),
		Name:      req.Name,
		Code:      req.Code,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "language created", item)
}

func (h *LanguageHandler) UpdateLanguage(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req UpdateLanguageRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	item, err := h.languageUseCase.UpdateLanguage(c.Request.Context(), languageUC.UpdateLanguageInput{
		Caller: GetCallerFromGinContext(c),
		ID:     id,
		Patch:  req.ToPatch(),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "language updated", item)
}

func (h *LanguageHandler) DeleteLanguage(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.languageUseCase.DeleteLanguage(c.Request.Context(), GetCallerFromGinContext(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "language deleted", nil)
}
