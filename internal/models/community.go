package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	Nickname         string    `json:"nickname"`
	Avatar           *string   `json:"avatar"`
	Category         string    `json:"category"`
	Content          string    `json:"content"`
	ImageURL         *string   `json:"image_url"`
	ModerationStatus string    `json:"moderation_status"`
	LikeCount        int       `json:"like_count"`
	CreatedAt        time.Time `json:"created_at"`
}

type Comment struct {
	ID               uuid.UUID `json:"id"`
	PostID           uuid.UUID `json:"post_id"`
	UserID           uuid.UUID `json:"user_id"`
	Nickname         string    `json:"nickname"`
	Avatar           *string   `json:"avatar"`
	Content          string    `json:"content"`
	ModerationStatus string    `json:"moderation_status"`
	CreatedAt        time.Time `json:"created_at"`
}

type CreatePostRequest struct {
	Category string  `json:"category"`
	Content  string  `json:"content"`
	ImageURL *string `json:"image_url"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}

type ReportRequest struct {
	Reason string `json:"reason"`
}

type Report struct {
	ID         uuid.UUID  `json:"id"`
	PostID     *uuid.UUID `json:"post_id"`
	CommentID  *uuid.UUID `json:"comment_id"`
	ReporterID uuid.UUID  `json:"reporter_id"`
	Reason     string     `json:"reason"`
	CreatedAt  time.Time  `json:"created_at"`
}

type BanRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Days   int       `json:"days"`
	Reason string    `json:"reason"`
}

type UserBan struct {
	UserID      uuid.UUID  `json:"user_id"`
	Status      string     `json:"status"`
	Reason      string     `json:"reason"`
	BannedUntil *time.Time `json:"banned_until"`
	CreatedAt   time.Time  `json:"created_at"`
}
