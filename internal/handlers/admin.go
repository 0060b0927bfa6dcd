package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"seoulmate-backend/internal/middleware"
	"seoulmate-backend/internal/models"
	"seoulmate-backend/internal/repository"
)

// AdminHandler covers the moderation surface. Every method re-checks the
// caller's role; route grouping alone is not trusted.
type AdminHandler struct {
	community *repository.CommunityRepo
	users     *repository.UserRepo
}

func NewAdminHandler(community *repository.CommunityRepo, users *repository.UserRepo) *AdminHandler {
	return &AdminHandler{community: community, users: users}
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	userID := middleware.GetUserID(r.Context())
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil || user.Role != "admin" {
		writeJSON(w, http.StatusForbidden, errorResp("Admin access required."))
		return false
	}
	return true
}

func (h *AdminHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	reports, err := h.community.ListPostReports(r.Context(), 100)
	if err != nil {
		log.Printf("list reports failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not load reports."))
		return
	}
	if reports == nil {
		reports = []*models.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// HidePost takes a reported post out of the public feed and clears its
// report backlog in one action.
func (h *AdminHandler) HidePost(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid post id."))
		return
	}

	if err := h.community.SetPostModeration(r.Context(), postID, "hidden"); err != nil {
		log.Printf("hide post failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not hide post."))
		return
	}
	if err := h.community.ResolvePostReports(r.Context(), postID); err != nil {
		log.Printf("resolve reports failed: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"hidden": true})
}

func (h *AdminHandler) DismissReports(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid post id."))
		return
	}

	if err := h.community.ResolvePostReports(r.Context(), postID); err != nil {
		log.Printf("dismiss reports failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not dismiss reports."))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"dismissed": true})
}

func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req models.BanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body."))
		return
	}
	if req.UserID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, errorResp("user_id is required."))
		return
	}

	ban := &models.UserBan{
		UserID: req.UserID,
		Status: "active",
		Reason: req.Reason,
	}
	// days <= 0 means a permanent ban, left with no expiry.
	if req.Days > 0 {
		until := time.Now().Add(time.Duration(req.Days) * 24 * time.Hour)
		ban.BannedUntil = &until
	}

	if err := h.community.BanUser(r.Context(), ban); err != nil {
		log.Printf("ban user failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not ban user."))
		return
	}
	writeJSON(w, http.StatusOK, ban)
}

func (h *AdminHandler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid user id."))
		return
	}

	if err := h.community.UnbanUser(r.Context(), userID); err != nil {
		log.Printf("unban user failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Could not unban user."))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"unbanned": true})
}
