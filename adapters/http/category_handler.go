package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	categoryUC "github.com/khoahotran/program-catalog/internal/application/usecase/category"
)

type CategoryHandler struct {
	categoryUseCase *categoryUC.CategoryUseCase
}

func NewCategoryHandler(uc *categoryUC.CategoryUseCase) *CategoryHandler {
	return &CategoryHandler{categoryUseCase: uc}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	h.list(c, false)
}

func (h *CategoryHandler) ListActiveCategories(c *gin.Context) {
	h.list(c, true)
}

func (h *CategoryHandler) list(c *gin.Context, activeOnly bool) {
	items, err := h.categoryUseCase.ListCategories(c.Request.Context(), activeOnly)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondOK(c, items)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	item, err := h.categoryUseCase.GetCategory(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondOK(c, item)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	item, err := h.categoryUseCase.CreateCategory(c.Request.Context(), categoryUC.CreateCategoryInput{
		Caller:      GetCallerFromGinContext(c),
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "category created", item)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req UpdateCategoryRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	item, err := h.categoryUseCase.UpdateCategory(c.Request.Context(), categoryUC.UpdateCategoryInput{
		Caller: GetCallerFromGinContext(c),
		ID:     id,
		Patch:  req.ToPatch(),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "category updated", item)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.categoryUseCase.DeleteCategory(c.Request.Context(), GetCallerFromGinContext(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "category deleted", nil)
}
