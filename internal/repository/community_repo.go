package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"seoulmate-backend/internal/models"
)

type CommunityRepo struct {
	pool *pgxpool.Pool
}

func NewCommunityRepo(pool *pgxpool.Pool) *CommunityRepo {
	return &CommunityRepo{pool: pool}
}

func (r *CommunityRepo) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = uuid.New()
	if post.ModerationStatus == "" {
		post.ModerationStatus = "visible"
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO posts (id, user_id, nickname, avatar, category, content, image_url, moderation_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		post.ID, post.UserID, post.Nickname, post.Avatar, post.Category,
		post.Content, post.ImageURL, post.ModerationStatus,
	).Scan(&post.CreatedAt)
}

func (r *CommunityRepo) ListPosts(ctx context.Context, category string, limit, offset int) ([]*models.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.nickname, p.avatar, p.category, p.content,
			p.image_url, p.moderation_status, p.created_at,
			(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id) AS like_count
		FROM posts p
		WHERE p.moderation_status = 'visible' AND ($1 = '' OR p.category = $1)
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, category, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		p := &models.Post{}
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Nickname, &p.Avatar, &p.Category, &p.Content,
			&p.ImageURL, &p.ModerationStatus, &p.CreatedAt, &p.LikeCount,
		); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *CommunityRepo) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p := &models.Post{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, nickname, avatar, category, content, image_url, moderation_status, created_at
		FROM posts WHERE id = $1`, id,
	).Scan(&p.ID, &p.UserID, &p.Nickname, &p.Avatar, &p.Category, &p.Content,
		&p.ImageURL, &p.ModerationStatus, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *CommunityRepo) DeletePost(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", id)
	return err
}

func (r *CommunityRepo) SetPostModeration(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, "UPDATE posts SET moderation_status = $1 WHERE id = $2", status, id)
	return err
}

func (r *CommunityRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = uuid.New()
	if comment.ModerationStatus == "" {
		comment.ModerationStatus = "visible"
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO comments (id, post_id, user_id, nickname, avatar, content, moderation_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		comment.ID, comment.PostID, comment.UserID, comment.Nickname,
		comment.Avatar, comment.Content, comment.ModerationStatus,
	).Scan(&comment.CreatedAt)
}

func (r *CommunityRepo) ListComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, post_id, user_id, nickname, avatar, content, moderation_status, created_at
		FROM comments
		WHERE post_id = $1 AND moderation_status = 'visible'
		ORDER BY created_at ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Nickname, &c.Avatar,
			&c.Content, &c.ModerationStatus, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ToggleLike flips the user's like on a post and reports the new state.
func (r *CommunityRepo) ToggleLike(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2", postID, userID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = r.pool.Exec(ctx,
		"INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		postID, userID)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *CommunityRepo) ReportPost(ctx context.Context, postID, reporterID uuid.UUID, reason string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO post_reports (id, post_id, reporter_id, reason)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (post_id, reporter_id) DO NOTHING`,
		uuid.New(), postID, reporterID, reason)
	return err
}

func (r *CommunityRepo) ReportComment(ctx context.Context, commentID, reporterID uuid.UUID, reason string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO comment_reports (id, comment_id, reporter_id, reason)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (comment_id, reporter_id) DO NOTHING`,
		uuid.New(), commentID, reporterID, reason)
	return err
}

func (r *CommunityRepo) ListPostReports(ctx context.Context, limit int) ([]*models.Report, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, post_id, reporter_id, reason, created_at
		FROM post_reports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		rep := &models.Report{}
		if err := rows.Scan(&rep.ID, &rep.PostID, &rep.ReporterID, &rep.Reason, &rep.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (r *CommunityRepo) ResolvePostReports(ctx context.Context, postID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM post_reports WHERE post_id = $1", postID)
	return err
}

// IsBanned reports whether the user has an active ban. Expired bans are
// treated as lifted without being deleted, so the history survives.
func (r *CommunityRepo) IsBanned(ctx context.Context, userID uuid.UUID) (bool, error) {
	var status string
	var bannedUntil *time.Time
	err := r.pool.QueryRow(ctx,
		"SELECT status, banned_until FROM user_bans WHERE user_id = $1", userID,
	).Scan(&status, &bannedUntil)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, err
	}

	if status != "active" {
		return false, nil
	}
	if bannedUntil != nil && bannedUntil.Before(time.Now()) {
		return false, nil
	}
	return true, nil
}

func (r *CommunityRepo) BanUser(ctx context.Context, ban *models.UserBan) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_bans (user_id, status, reason, banned_until, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET status = $2, reason = $3, banned_until = $4, created_at = NOW()`,
		ban.UserID, ban.Status, ban.Reason, ban.BannedUntil)
	return err
}

func (r *CommunityRepo) UnbanUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE user_bans SET status = 'lifted' WHERE user_id = $1", userID)
	return err
}
