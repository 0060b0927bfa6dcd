package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"seoulmate-backend/internal/middleware"
	"seoulmate-backend/internal/models"
	"seoulmate-backend/internal/services"
	"seoulmate-backend/internal/youtube"
)

// minTranscriptChars is the floor below which a transcript cannot produce
// useful insights; rejecting early avoids burning a model call.
const minTranscriptChars = 200

type transcriptProvider interface {
	FetchTranscript(ctx context.Context, rawURL string) youtube.TranscriptResult
	FetchOEmbed(ctx context.Context, videoID string) *youtube.OEmbedInfo
	FetchDescription(ctx context.Context, videoID string) string
}

type insightsGenerator interface {
	GenerateInsights(ctx context.Context, prompt, content string) (models.SummaryInsights, error)
}

type quotaGate interface {
	Check(ctx context.Context, userID uuid.UUID) (models.QuotaStatus, error)
	Consume(ctx context.Context, userID uuid.UUID) (int, error)
}

type SummarizeHandler struct {
	videos        transcriptProvider
	gemini        insightsGenerator
	quota         quotaGate
	maxInputChars int
}

func NewSummarizeHandler(videos transcriptProvider, gemini insightsGenerator, quota quotaGate, maxInputChars int) *SummarizeHandler {
	return &SummarizeHandler{
		videos:        videos,
		gemini:        gemini,
		quota:         quota,
		maxInputChars: maxInputChars,
	}
}

// Summarize is the whole pipeline behind POST /api/summarize: quota check,
// transcript acquisition with fallback, size guard, model cascade, insight
// normalization, then quota consumption strictly after success.
func (h *SummarizeHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == uuid.Nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("Please sign in first."))
		return
	}

	var req models.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body."))
		return
	}

	rawURL := strings.TrimSpace(req.URL)
	pastedTranscript := strings.TrimSpace(req.Transcript)
	if rawURL == "" && pastedTranscript == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Provide a YouTube URL (or paste transcript text)."))
		return
	}

	// Quota check before any paid or slow work. Exhaustion and a broken
	// quota system are different failures with different status codes.
	status, err := h.quota.Check(ctx, userID)
	if err != nil {
		log.Printf("quota check failed for %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorRespDetails("Quota system error", err.Error()))
		return
	}
	if status.Remaining <= 0 {
		writeJSON(w, http.StatusPaymentRequired, errorResp(fmt.Sprintf("Free limit reached (%d videos).", status.Limit)))
		return
	}

	// Transcript acquisition. Pasted text wins; otherwise run the fetch
	// cascade. Acquisition failure never fails the request: it degrades
	// to metadata-only mode and the reason rides along in the response.
	safeURL := ""
	if rawURL != "" {
		safeURL = youtube.NormalizeWatchURL(rawURL)
	}

	transcriptText := pastedTranscript
	transcriptSource := ""
	transcriptError := ""

	if transcriptText != "" {
		transcriptSource = "manual"
	} else if safeURL != "" {
		fetched := h.videos.FetchTranscript(ctx, safeURL)
		transcriptText = fetched.Text
		transcriptSource = fetched.Source
		transcriptError = fetched.Error
	}

	fallbackMode := false
	metadataText := ""
	var chapterMoments []models.KeyMoment

	if transcriptText == "" {
		fallbackMode = true
		videoID := youtube.ExtractVideoID(safeURL)
		if videoID == "" {
			videoID = youtube.ExtractVideoID(rawURL)
		}

		var metaLines []string
		if meta := h.videos.FetchOEmbed(ctx, videoID); meta != nil {
			if meta.Title != "" {
				metaLines = append(metaLines, "Title: "+meta.Title)
			}
			if meta.AuthorName != "" {
				metaLines = append(metaLines, "Author: "+meta.AuthorName)
			}
		}
		if safeURL != "" {
			metaLines = append(metaLines, "Video URL: "+safeURL)
		}
		metadataText = strings.Join(metaLines, "\n")

		// Chapters substitute for key moments only when the failure was an
		// empty result; HTTP or parse errors mean the description is just
		// as unreachable.
		if strings.Contains(strings.ToLower(transcriptError), "empty") {
			desc := h.videos.FetchDescription(ctx, videoID)
			chapterMoments = youtube.ExtractChapters(desc)
		}
	}

	// Cost guard: cap the model input. The cut backs off to a rune
	// boundary so a multi-byte character straddling the limit is dropped
	// whole instead of leaving invalid UTF-8.
	wasTruncated := false
	if len(transcriptText) > h.maxInputChars {
		cut := h.maxInputChars
		for cut > 0 && !utf8.RuneStart(transcriptText[cut]) {
			cut--
		}
		transcriptText = transcriptText[:cut] + "\n\n[TRUNCATED]"
		wasTruncated = true
	}

	if !fallbackMode && len(transcriptText) < minTranscriptChars {
		writeJSON(w, http.StatusBadRequest, errorResp("Transcript is too short to summarize."))
		return
	}

	prompt := services.BuildInsightsPrompt(safeURL, fallbackMode)
	var content string
	if fallbackMode {
		if metadataText == "" {
			metadataText = "No metadata available."
		}
		content = "Metadata:\n" + metadataText
	} else {
		content = "Transcript:\n" + transcriptText
	}

	insights, err := h.gemini.GenerateInsights(ctx, prompt, content)
	if err != nil {
		log.Printf("summarization failed for %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError,
			errorRespDetails("Summarization failed.", services.FriendlyModelMessage(err)))
		return
	}

	// With no transcript there is nothing to anchor model timestamps to,
	// so key moments come from the chapter list or not at all.
	if fallbackMode {
		if len(chapterMoments) > 0 {
			insights.KeyMoments = chapterMoments
		} else {
			insights.KeyMoments = []models.KeyMoment{}
		}
	}

	// Consume only after success, so a failed summarization never costs a
	// use. A failure here is still reported even though insights exist:
	// under-charging is preferred over charging for nothing.
	remaining, err := h.quota.Consume(ctx, userID)
	if err != nil {
		log.Printf("quota consume failed for %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorRespDetails("Quota system error", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, models.SummarizeResponse{
		Summary:             strings.TrimSpace(insights.Summary),
		Insights:            insights,
		Transcript:          transcriptText,
		TranscriptTruncated: wasTruncated,
		Remaining:           remaining,
		TranscriptSource:    transcriptSource,
		TranscriptError:     transcriptError,
	})
}
