package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"seoulmate-backend/internal/middleware"
	"seoulmate-backend/internal/models"
	"seoulmate-backend/internal/repository"
)

const maxPostContentChars = 2000

type CommunityHandler struct {
	community *repository.CommunityRepo
	users     *repository.UserRepo
}

func NewCommunityHandler(community *repository.CommunityRepo, users *repository.UserRepo) *CommunityHandler {
	return &CommunityHandler{community: community, users: users}
}

func (h *CommunityHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	posts, err := h.community.ListPosts(r.Context(), category, limit, offset)
	if err != nil {
		log.Printf("list posts failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not load posts."))
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *CommunityHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body."))
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Post content is required."))
		return
	}
	if len(req.Content) > maxPostContentChars {
		writeJSON(w, http.StatusBadRequest, errorResp("Post content is too long."))
		return
	}

	banned, err := h.community.IsBanned(r.Context(), userID)
	if err != nil {
		log.Printf("ban check failed for %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not create post."))
		return
	}
	if banned {
		writeJSON(w, http.StatusForbidden, errorResp("Your account is suspended from posting."))
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		log.Printf("user lookup failed for %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not create post."))
		return
	}

	post := &models.Post{
		UserID:   userID,
		Nickname: user.Nickname,
		Avatar:   user.AvatarURL,
		Category: req.Category,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	}
	if err := h.community.CreatePost(r.Context(), post); err != nil {
		log.Printf("create post failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not create post."))
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *CommunityHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid post id."))
		return
	}

	post, err := h.community.GetPost(r.Context(), postID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("Post not found."))
			return
		}
		log.Printf("get post failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not delete post."))
		return
	}

	// Owner-only delete; moderators go through the admin routes.
	if post.UserID != userID {
		writeJSON(w, http.StatusForbidden, errorResp("You can only delete your own posts."))
		return
	}

	if err := h.community.DeletePost(r.Context(), postID); err != nil {
		log.Printf("delete post failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not delete post."))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *CommunityHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid post id."))
		return
	}

	comments, err := h.community.ListComments(r.Context(), postID)
	if err != nil {
		log.Printf("list comments failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not load comments."))
		return
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *CommunityHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid post id."))
		return
	}

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body."))
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Comment content is required."))
		return
	}

	banned, err := h.community.IsBanned(r.Context(), userID)
	if err != nil {
		log.Printf("ban check failed for %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not create comment."))
		return
	}
	if banned {
		writeJSON(w, http.StatusForbidden, errorResp("Your account is suspended from posting."))
		return
	}

	if _, err := h.community.GetPost(r.Context(), postID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("Post not found."))
			return
		}
		log.Printf("get post failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not create comment."))
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		log.Printf("user lookup failed for %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not create comment."))
		return
	}

	comment := &models.Comment{
		PostID:   postID,
		UserID:   userID,
		Nickname: user.Nickname,
		Avatar:   user.AvatarURL,
		Content:  req.Content,
	}
	if err := h.community.CreateComment(r.Context(), comment); err != nil {
		log.Printf("create comment failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not create comment."))
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *CommunityHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid post id."))
		return
	}

	liked, err := h.community.ToggleLike(r.Context(), postID, userID)
	if err != nil {
		log.Printf("toggle like failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not update like."))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

func (h *CommunityHandler) ReportPost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid post id."))
		return
	}

	var req models.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body."))
		return
	}

	if err := h.community.ReportPost(r.Context(), postID, userID, strings.TrimSpace(req.Reason)); err != nil {
		log.Printf("report post failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not submit report."))
		return
	}
	// Duplicate reports are silently absorbed by the unique constraint.
	writeJSON(w, http.StatusOK, map[string]bool{"reported": true})
}

func (h *CommunityHandler) ReportComment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	commentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid comment id."))
		return
	}

	var req models.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body."))
		return
	}

	if err := h.community.ReportComment(r.Context(), commentID, userID, strings.TrimSpace(req.Reason)); err != nil {
		log.Printf("report comment failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not submit report."))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"reported": true})
}
