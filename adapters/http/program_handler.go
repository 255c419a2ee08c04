package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	programUC "github.com/khoahotran/program-catalog/internal/application/usecase/program"
	"github.com/khoahotran/program-catalog/internal/domain/program"
)

type ProgramHandler struct {
	listProgramsUseCase   *programUC.ListProgramsUseCase
	searchProgramsUseCase *programUC.SearchProgramsUseCase
	getProgramUseCase     *programUC.GetProgramUseCase
	createProgramUseCase  *programUC.CreateProgramUseCase
	updateProgramUseCase  *programUC.UpdateProgramUseCase
	deleteProgramUseCase  *programUC.DeleteProgramUseCase
	incrementViewUseCase  *programUC.IncrementCounterUseCase
	incrementLikeUseCase  *programUC.IncrementCounterUseCase
}

// NewProgramHandler builds every program use case from the shared deps.
func NewProgramHandler(d programUC.Deps) *ProgramHandler {
	return &ProgramHandler{
		listProgramsUseCase:   programUC.NewListProgramsUseCase(d),
		searchProgramsUseCase: programUC.NewSearchProgramsUseCase(d),
		getProgramUseCase:     programUC.NewGetProgramUseCase(d),
		createProgramUseCase:  programUC.NewCreateProgramUseCase(d),
		updateProgramUseCase:  programUC.NewUpdateProgramUseCase(d),
		deleteProgramUseCase:  programUC.NewDeleteProgramUseCase(d),
		incrementViewUseCase:  programUC.NewIncrementViewUseCase(d),
		incrementLikeUseCase:  programUC.NewIncrementLikeUseCase(d),
	}
}

func respondPage(c *gin.Context, out *programUC.ListProgramsOutput) {
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Data:       out.Items,
		Pagination: &out.Pagination,
		Source:     string(out.Source),
	})
}

func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	filter, err := queryFilter(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	page, err := queryPage(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	out, err := h.listProgramsUseCase.Execute(c.Request.Context(), programUC.ListProgramsInput{
		Caller: GetCallerFromGinContext(c),
		Filter: filter,
		Sort:   program.NewSort(c.Query("sortBy"), c.Query("sortOrder")),
		Page:   page,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondPage(c, out)
}

func (h *ProgramHandler) SearchPrograms(c *gin.Context) {
	page, err := queryPage(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	out, err := h.searchProgramsUseCase.Execute(c.Request.Context(), programUC.SearchProgramsInput{
		Caller: GetCallerFromGinContext(c),
		Term:   c.Query("search"),
		Page:   page,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondPage(c, out)
}

func (h *ProgramHandler) GetProgram(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	out, err := h.getProgramUseCase.Execute(c.Request.Context(), programUC.GetProgramInput{
		Caller: GetCallerFromGinContext(c),
		ID:     id,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: out.Program, Source: string(out.Source)})
}

func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req ProgramRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		_ = c.Error(err)
		return
	}

	view, err := h.createProgramUseCase.Execute(c.Request.Context(), programUC.CreateProgramInput{
		Caller: GetCallerFromGinContext(c),
		Fields: patch,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "program created", view)
}

func (h *ProgramHandler) UpdateProgram(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req ProgramRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		_ = c.Error(err)
		return
	}

	view, err := h.updateProgramUseCase.Execute(c.Request.Context(), programUC.UpdateProgramInput{
		Caller: GetCallerFromGinContext(c),
		ID:     id,
		Patch:  patch,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "program updated", view)
}

func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	err = h.deleteProgramUseCase.Execute(c.Request.Context(), programUC.DeleteProgramInput{
		Caller: GetCallerFromGinContext(c),
		ID:     id,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "program deleted", nil)
}

func (h *ProgramHandler) IncrementView(c *gin.Context) {
	h.increment(c, h.incrementViewUseCase, "view counted")
}

func (h *ProgramHandler) Like(c *gin.Context) {
	h.increment(c, h.incrementLikeUseCase, "like counted")
}

func (h *ProgramHandler) increment(c *gin.Context, uc *programUC.IncrementCounterUseCase, msg string) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := uc.Execute(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, msg, nil)
}
