package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/program-catalog/internal/domain/category"
	"github.com/khoahotran/program-catalog/internal/domain/language"
	"github.com/khoahotran/program-catalog/internal/domain/program"
	"github.com/khoahotran/program-catalog/pkg/apperror"
)

// Response is the envelope every successful call is wrapped in.
type Response struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message,omitempty"`
	Data       any                 `json:"data,omitempty"`
	Pagination *program.Pagination `json:"pagination,omitempty"`
	Source     string              `json:"source,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondOK(c *gin.Context, data any) {
	respond(c, http.StatusOK, "", data)
}

func parseID(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewInvalidInput("id must be a positive integer, got '"+raw+"'", err)
	}
	return id, nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.NewInvalidInput(key+" must be an integer", err)
	}
	return n, nil
}

func queryID(c *gin.Context, key string) (*int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperror.NewInvalidInput(key+" must be an integer", err)
	}
	return &n, nil
}

func queryPage(c *gin.Context) (program.Page, error) {
	number, err := queryInt(c, "page")
	if err != nil {
		return program.Page{}, err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return program.Page{}, err
	}
	return program.NewPage(number, limit), nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperror.NewInvalidInput(err.Error(), err)
	}
	return nil
}

// Program DTOs

// ProgramRequest is used for both create and patch. Absent fields are nil.
type ProgramRequest struct {
	Title            *string  `json:"title"`
	Description      *string  `json:"description"`
	Duration         *int     `json:"duration"`
	PublishDate      *string  `json:"publishDate"`
	Status           *string  `json:"status"`
	ContentType      *string  `json:"contentType"`
	VideoSource      *string  `json:"videoSource"`
	VideoType        *string  `json:"videoType"`
	ThumbnailURL     *string  `json:"thumbnailUrl"`
	VideoURL         *string  `json:"videoUrl"`
	AudioURL         *string  `json:"audioUrl"`
	YouTubeURL       *string  `json:"youtubeUrl"`
	YouTubeVideoID   *string  `json:"youtubeVideoId"`
	YouTubeThumbnail *string  `json:"youtubeThumbnail"`
	UploadedVideoURL *string  `json:"uploadedVideoUrl"`
	FileSize         *int64   `json:"fileSize"`
	FileName         *string  `json:"fileName"`
	Tags             []string `json:"tags"`
	IsActive         *bool    `json:"isActive"`
	CategoryID       *int64   `json:"categoryId"`
	LanguageID       *int64   `json:"languageId"`
}

func parseEnum[T any](raw *string, parse func(string) (T, error)) (*T, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := parse(*raw)
	if err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}
	return &v, nil
}

func (r *ProgramRequest) ToPatch() (program.Patch, error) {
	status, err := parseEnum(r.Status, program.ParseStatus)
	if err != nil {
		return program.Patch{}, err
	}
	contentType, err := parseEnum(r.ContentType, program.ParseContentType)
	if err != nil {
		return program.Patch{}, err
	}
	videoSource, err := parseEnum(r.VideoSource, program.ParseVideoSource)
	if err != nil {
		return program.Patch{}, err
	}
	videoType, err := parseEnum(r.VideoType, program.ParseVideoType)
	if err != nil {
		return program.Patch{}, err
	}
	return program.Patch{
		Title:            r.Title,
		Description:      r.Description,
		Duration:         r.Duration,
		PublishDate:      r.PublishDate,
		Status:           status,
		ContentType:      contentType,
		VideoSource:      videoSource,
		VideoType:        videoType,
		ThumbnailURL:     r.ThumbnailURL,
		VideoURL:         r.VideoURL,
		AudioURL:         r.AudioURL,
		YouTubeURL:       r.YouTubeURL,
		YouTubeVideoID:   r.YouTubeVideoID,
		YouTubeThumbnail: r.YouTubeThumbnail,
		UploadedVideoURL: r.UploadedVideoURL,
		FileSize:         r.FileSize,
		FileName:         r.FileName,
		Tags:             r.Tags,
		IsActive:         r.IsActive,
		CategoryID:       r.CategoryID,
		LanguageID:       r.LanguageID,
	}, nil
}

// queryFilter reads the optional list filters. Unknown enum values are
// rejected, not ignored.
func queryFilter(c *gin.Context) (program.Filter, error) {
	var f program.Filter
	var err error

	if s := c.Query("status"); s != "" {
		if f.Status, err = parseEnum(&s, program.ParseStatus); err != nil {
			return f, err
		}
	}
	if s := c.Query("contentType"); s != "" {
		if f.ContentType, err = parseEnum(&s, program.ParseContentType); err != nil {
			return f, err
		}
	}
	if s := c.Query("videoSource"); s != "" {
		if f.VideoSource, err = parseEnum(&s, program.ParseVideoSource); err != nil {
			return f, err
		}
	}
	if f.CategoryID, err = queryID(c, "categoryId"); err != nil {
		return f, err
	}
	if f.LanguageID, err = queryID(c, "languageId"); err != nil {
		return f, err
	}
	return f, nil
}

// Category DTOs

type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	SortOrder   int     `json:"sortOrder" binding:"min=0"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
	SortOrder   *int    `json:"sortOrder"`
}

func (r *UpdateCategoryRequest) ToPatch() category.Patch {
	return category.Patch{Name: r.Name, Description: r.Description, IsActive: r.IsActive, SortOrder: r.SortOrder}
}

// Language DTOs

type CreateLanguageRequest struct {
	Name      string `json:"name" binding:"required"`
	Code      string `json:"code" binding:"required"`
	SortOrder int    `json:"sortOrder" binding:"min=0"`
}

type UpdateLanguageRequest struct {
	Name      *string `json:"name"`
	Code      *string `json:"code"`
	IsActive  *bool   `json:"isActive"`
	SortOrder *int    `json:"sortOrder"`
}

func (r *UpdateLanguageRequest) ToPatch() language.Patch {
	return language.Patch{Name: r.Name, Code: r.Code, IsActive: r.IsActive, SortOrder: r.SortOrder}
}

// Auth DTOs

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}
