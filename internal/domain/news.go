package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type NewsType string

const (
	NewsNotice     NewsType = "noticia"
	NewsAdvisory   NewsType = "aviso"
	NewsCommunique NewsType = "comunicado"
)

func (t NewsType) IsValid() bool {
	switch t {
	case NewsNotice, NewsAdvisory, NewsCommunique:
		return true
	default:
		return false
	}
}

// DirectorOnly reports whether the director's approval alone publishes the item.
func (t NewsType) DirectorOnly() bool {
	return t == NewsAdvisory || t == NewsCommunique
}

type NewsStatus string

const (
	NewsDraft                    NewsStatus = "draft"
	NewsPendingDirectorApproval  NewsStatus = "pending_director_approval"
	NewsPendingPresidentApproval NewsStatus = "pending_president_approval"
	NewsPublished                NewsStatus = "published"
)

func (s NewsStatus) IsValid() bool {
	switch s {
	case NewsDraft, NewsPendingDirectorApproval, NewsPendingPresidentApproval, NewsPublished:
		return true
	default:
		return false
	}
}

type News struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	Title               string     `json:"title" db:"title"`
	Subtitle            *string    `json:"subtitle,omitempty" db:"subtitle"`
	Slug                string     `json:"slug" db:"slug"`
	Content             string     `json:"content" db:"content"`
	Type                NewsType   `json:"type" db:"type"`
	Status              NewsStatus `json:"status" db:"status"`
	AuthorID            uuid.UUID  `json:"author_id" db:"author_id"`
	ApprovedByDirector  *uuid.UUID `json:"approved_by_director,omitempty" db:"approved_by_director"`
	ApprovedByPresident *uuid.UUID `json:"approved_by_president,omitempty" db:"approved_by_president"`
	ImageURL            *string    `json:"image_url,omitempty" db:"image_url"`
	ImageKey            *string    `json:"-" db:"image_key"`
	PublishedAt         *time.Time `json:"published_at,omitempty" db:"published_at"`
	Version             int        `json:"version" db:"version"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`

	AuthorName *string `json:"author_name,omitempty" db:"author_name"`
}

type CreateNewsInput struct {
	Title    string   `json:"title"`
	Subtitle *string  `json:"subtitle,omitempty"`
	Content  string   `json:"content"`
	Type     NewsType `json:"type"`
}

func (in CreateNewsInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ValidationFailed("title is required")
	}
	if len(in.Title) > 255 {
		return ValidationFailed("title must be at most 255 characters")
	}
	if strings.TrimSpace(in.Content) == "" {
		return ValidationFailed("content is required")
	}
	if !in.Type.IsValid() {
		return ValidationFailed("type must be one of noticia, aviso, comunicado")
	}
	return nil
}

type UpdateNewsInput struct {
	Title       *string   `json:"title,omitempty"`
	Subtitle    *string   `json:"subtitle,omitempty"`
	Content     *string   `json:"content,omitempty"`
	Type        *NewsType `json:"type,omitempty"`
	RemoveImage bool      `json:"remove_image,omitempty"`
}

func (in UpdateNewsInput) Validate() error {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return ValidationFailed("title cannot be empty")
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		return ValidationFailed("content cannot be empty")
	}
	if in.Type != nil && !in.Type.IsValid() {
		return ValidationFailed("type must be one of noticia, aviso, comunicado")
	}
	return nil
}

type NewsFilter struct {
	Search        string
	Type          *NewsType
	Status        *NewsStatus
	AuthorID      *uuid.UUID
	PublishedOnly bool
}

type NewsStats struct {
	Total              int64                `json:"total"`
	ByStatus           map[NewsStatus]int64 `json:"by_status"`
	ByType             map[NewsType]int64   `json:"by_type"`
	PublishedThisMonth int64                `json:"published_this_month"`
}
