package program

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

type ContentType string

const (
	ContentTypeVideo   ContentType = "video"
	ContentTypePodcast ContentType = "podcast"
)

type VideoSource string

const (
	VideoSourceYouTube  VideoSource = "youtube"
	VideoSourceUpload   VideoSource = "upload"
	VideoSourceExternal VideoSource = "external"
)

type VideoType string

const (
	VideoTypePodcast     VideoType = "podcast"
	VideoTypeDocumentary VideoType = "documentary"
	VideoTypeLecture     VideoType = "lecture"
	VideoTypeOther       VideoType = "other"
)

var (
	ErrInvalidStatus      = errors.New("invalid program status")
	ErrInvalidContentType = errors.New("invalid content type")
	ErrInvalidVideoSource = errors.New("invalid video source")
	ErrInvalidVideoType   = errors.New("invalid video type")
	ErrTitleRequired      = errors.New("title is required")
	ErrNegativeDuration   = errors.New("duration must not be negative")
	ErrProgramNotFound    = errors.New("program not found")
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusDraft, StatusPublished, StatusArchived:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func ParseContentType(s string) (ContentType, error) {
	switch ct := ContentType(s); ct {
	case ContentTypeVideo, ContentTypePodcast:
		return ct, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidContentType, s)
}

func ParseVideoSource(s string) (VideoSource, error) {
	switch vs := VideoSource(s); vs {
	case VideoSourceYouTube, VideoSourceUpload, VideoSourceExternal:
		return vs, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVideoSource, s)
}

func ParseVideoType(s string) (VideoType, error) {
	switch vt := VideoType(s); vt {
	case VideoTypePodcast, VideoTypeDocumentary, VideoTypeLecture, VideoTypeOther:
		return vt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVideoType, s)
}

type Program struct {
	ID               int64       `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Duration         int         `json:"duration"`
	PublishDate      *string     `json:"publishDate,omitempty"`
	Status           Status      `json:"status"`
	ContentType      ContentType `json:"contentType"`
	VideoSource      VideoSource `json:"videoSource"`
	VideoType        VideoType   `json:"videoType"`
	ThumbnailURL     *string     `json:"thumbnailUrl,omitempty"`
	VideoURL         *string     `json:"videoUrl,omitempty"`
	AudioURL         *string     `json:"audioUrl,omitempty"`
	YouTubeURL       *string     `json:"youtubeUrl,omitempty"`
	YouTubeVideoID   *string     `json:"youtubeVideoId,omitempty"`
	YouTubeThumbnail *string     `json:"youtubeThumbnail,omitempty"`
	UploadedVideoURL *string     `json:"uploadedVideoUrl,omitempty"`
	FileSize         *int64      `json:"fileSize,omitempty"`
	FileName         *string     `json:"fileName,omitempty"`
	Tags             []string    `json:"tags"`
	ViewCount        int64       `json:"viewCount"`
	LikeCount        int64       `json:"likeCount"`
	IsActive         bool        `json:"isActive"`
	CategoryID       *int64      `json:"categoryId,omitempty"`
	LanguageID       *int64      `json:"languageId,omitempty"`
	CreatedBy        uuid.UUID   `json:"createdBy"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

func (p *Program) Validate() error {
	if p.Title == "" {
		return ErrTitleRequired
	}
	if p.Duration < 0 {
		return ErrNegativeDuration
	}
	if _, err := ParseStatus(string(p.Status)); err != nil {
		return err
	}
	if _, err := ParseContentType(string(p.ContentType)); err != nil {
		return err
	}
	if _, err := ParseVideoSource(string(p.VideoSource)); err != nil {
		return err
	}
	if _, err := ParseVideoType(string(p.VideoType)); err != nil {
		return err
	}
	return nil
}

// Patch carries a partial update. Nil fields are left untouched. The
// identity, owner and counters are not patchable.
type Patch struct {
	Title            *string
	Description      *string
	Duration         *int
	PublishDate      *string
	Status           *Status
	ContentType      *ContentType
	VideoSource      *VideoSource
	VideoType        *VideoType
	ThumbnailURL     *string
	VideoURL         *string
	AudioURL         *string
	YouTubeURL       *string
	YouTubeVideoID   *string
	YouTubeThumbnail *string
	UploadedVideoURL *string
	FileSize         *int64
	FileName         *string
	Tags             []string
	IsActive         *bool
	CategoryID       *int64
	LanguageID       *int64
}

// Apply merges the patch into p. Status changes are not restricted: any
// status may move to any other.
func (p *Program) Apply(patch Patch, now time.Time) {
	setIf(&p.Title, patch.Title)
	setIf(&p.Description, patch.Description)
	setIf(&p.Duration, patch.Duration)
	setIf(&p.Status, patch.Status)
	setIf(&p.ContentType, patch.ContentType)
	setIf(&p.VideoSource, patch.VideoSource)
	setIf(&p.VideoType, patch.VideoType)
	setIf(&p.IsActive, patch.IsActive)
	setPtrIf(&p.PublishDate, patch.PublishDate)
	setPtrIf(&p.ThumbnailURL, patch.ThumbnailURL)
	setPtrIf(&p.VideoURL, patch.VideoURL)
	setPtrIf(&p.AudioURL, patch.AudioURL)
	setPtrIf(&p.YouTubeURL, patch.YouTubeURL)
	setPtrIf(&p.YouTubeVideoID, patch.YouTubeVideoID)
	setPtrIf(&p.YouTubeThumbnail, patch.YouTubeThumbnail)
	setPtrIf(&p.UploadedVideoURL, patch.UploadedVideoURL)
	setPtrIf(&p.FileSize, patch.FileSize)
	setPtrIf(&p.FileName, patch.FileName)
	setPtrIf(&p.CategoryID, patch.CategoryID)
	setPtrIf(&p.LanguageID, patch.LanguageID)
	if patch.Tags != nil {
		p.Tags = append([]string(nil), patch.Tags...)
	}
	p.UpdatedAt = now
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setPtrIf[T any](dst **T, v *T) {
	if v != nil {
		cp := *v
		*dst = &cp
	}
}

// Metadata is a free-form key/value pair attached to a program.
type Metadata struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Repository interface {
	Save(ctx context.Context, p *Program) error
	Update(ctx context.Context, p *Program) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Program, error)
	Find(ctx context.Context, q Query) ([]*Program, int, error)
	IncrementViewCount(ctx context.Context, id int64) error
	IncrementLikeCount(ctx context.Context, id int64) error
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
	CountByLanguage(ctx context.Context, languageID int64) (int, error)
}

type MetadataRepository interface {
	ListByProgram(ctx context.Context, programID int64) ([]Metadata, error)
}
