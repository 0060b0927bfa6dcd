package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"

	"seoulmate-backend/internal/middleware"
	"seoulmate-backend/internal/models"
	"seoulmate-backend/internal/youtube"
)

type fakeVideos struct {
	transcript  youtube.TranscriptResult
	oembed      *youtube.OEmbedInfo
	description string

	transcriptCalls  int
	descriptionCalls int
}

func (f *fakeVideos) FetchTranscript(ctx context.Context, rawURL string) youtube.TranscriptResult {
	f.transcriptCalls++
	return f.transcript
}

func (f *fakeVideos) FetchOEmbed(ctx context.Context, videoID string) *youtube.OEmbedInfo {
	return f.oembed
}

func (f *fakeVideos) FetchDescription(ctx context.Context, videoID string) string {
	f.descriptionCalls++
	return f.description
}

type fakeGemini struct {
	insights models.SummaryInsights
	err      error

	calls   int
	prompt  string
	content string
}

func (f *fakeGemini) GenerateInsights(ctx context.Context, prompt, content string) (models.SummaryInsights, error) {
	f.calls++
	f.prompt = prompt
	f.content = content
	return f.insights, f.err
}

type fakeQuota struct {
	status   models.QuotaStatus
	checkErr error

	remaining  int
	consumeErr error

	consumeCalls int
}

func (f *fakeQuota) Check(ctx context.Context, userID uuid.UUID) (models.QuotaStatus, error) {
	return f.status, f.checkErr
}

func (f *fakeQuota) Consume(ctx context.Context, userID uuid.UUID) (int, error) {
	f.consumeCalls++
	return f.remaining, f.consumeErr
}

func doSummarize(t *testing.T, h *SummarizeHandler, body models.SummarizeRequest, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest("POST", "/api/summarize", bytes.NewReader(buf))
	if authed {
		ctx := context.WithValue(req.Context(), middleware.UserIDKey, uuid.New())
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	h.Summarize(rec, req)
	return rec
}

func longTranscript(n int) string {
	return strings.Repeat("a", n)
}

func TestSummarize_RequiresAuth(t *testing.T) {
	h := NewSummarizeHandler(&fakeVideos{}, &fakeGemini{}, &fakeQuota{}, 25000)

	rec := doSummarize(t, h, models.SummarizeRequest{URL: "https://youtu.be/abc"}, false)

	if rec.Code != 401 {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSummarize_MissingInput(t *testing.T) {
	quota := &fakeQuota{status: models.QuotaStatus{Remaining: 3, Limit: 3}}
	h := NewSummarizeHandler(&fakeVideos{}, &fakeGemini{}, quota, 25000)

	rec := doSummarize(t, h, models.SummarizeRequest{}, true)

	if rec.Code != 400 {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "Provide a YouTube URL (or paste transcript text)." {
		t.Fatalf("unexpected error message: %q", body.Error)
	}
}

func TestSummarize_QuotaExhausted(t *testing.T) {
	videos := &fakeVideos{}
	gemini := &fakeGemini{}
	quota := &fakeQuota{status: models.QuotaStatus{Remaining: 0, Limit: 3}}
	h := NewSummarizeHandler(videos, gemini, quota, 25000)

	rec := doSummarize(t, h, models.SummarizeRequest{URL: "https://youtu.be/abc123def45"}, true)

	if rec.Code != 402 {
		t.Fatalf("expected 402, got %d", rec.Code)
	}
	var body models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "Free limit reached (3 videos)." {
		t.Fatalf("unexpected error message: %q", body.Error)
	}
	if videos.transcriptCalls != 0 || gemini.calls != 0 {
		t.Fatalf("exhausted quota must short-circuit, got %d transcript and %d model calls",
			videos.transcriptCalls, gemini.calls)
	}
}

func TestSummarize_PastedTranscript(t *testing.T) {
	videos := &fakeVideos{}
	gemini := &fakeGemini{insights: models.SummaryInsights{Summary: "A trip through Seoul."}}
	quota := &fakeQuota{status: models.QuotaStatus{Remaining: 3, Limit: 3}, remaining: 2}
	h := NewSummarizeHandler(videos, gemini, quota, 25000)

	rec := doSummarize(t, h, models.SummarizeRequest{Transcript: longTranscript(300)}, true)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp models.SummarizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.TranscriptSource != "manual" {
		t.Errorf("expected source manual, got %q", resp.TranscriptSource)
	}
	if resp.Remaining != 2 {
		t.Errorf("expected 2 remaining, got %d", resp.Remaining)
	}
	if videos.transcriptCalls != 0 {
		t.Errorf("pasted transcript must skip fetching, got %d calls", videos.transcriptCalls)
	}
	if !strings.HasPrefix(gemini.content, "Transcript:\n") {
		t.Errorf("model content should carry the transcript, got %q", gemini.content[:20])
	}
}

func TestSummarize_TooShort(t *testing.T) {
	quota := &fakeQuota{status: models.QuotaStatus{Remaining: 3, Limit: 3}}
	gemini := &fakeGemini{}
	h := NewSummarizeHandler(&fakeVideos{}, gemini, quota, 25000)

	rec := doSummarize(t, h, models.SummarizeRequest{Transcript: longTranscript(199)}, true)

	if rec.Code != 400 {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if gemini.calls != 0 {
		t.Fatalf("short transcript must not reach the model")
	}
}

func TestSummarize_Truncation(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		truncated bool
	}{
		{"at limit", 25000, false},
		{"over limit", 25001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gemini := &fakeGemini{insights: models.SummaryInsights{Summary: "ok"}}
			quota := &fakeQuota{status: models.QuotaStatus{Remaining: 1, Limit: 3}}
			h := NewSummarizeHandler(&fakeVideos{}, gemini, quota, 25000)

			rec := doSummarize(t, h, models.SummarizeRequest{Transcript: longTranscript(tt.length)}, true)

			if rec.Code != 200 {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			var resp models.SummarizeResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if resp.TranscriptTruncated != tt.truncated {
				t.Errorf("truncated = %v, want %v", resp.TranscriptTruncated, tt.truncated)
			}
			if tt.truncated {
				if !strings.HasSuffix(resp.Transcript, "\n\n[TRUNCATED]") {
					t.Errorf("truncated transcript must carry the marker")
				}
				if len(resp.Transcript) != 25000+len("\n\n[TRUNCATED]") {
					t.Errorf("unexpected truncated length %d", len(resp.Transcript))
				}
			}
		})
	}
}

func TestSummarize_TruncationKeepsValidUTF8(t *testing.T) {
	gemini := &fakeGemini{insights: models.SummaryInsights{Summary: "ok"}}
	quota := &fakeQuota{status: models.QuotaStatus{Remaining: 1, Limit: 3}}
	h := NewSummarizeHandler(&fakeVideos{}, gemini, quota, 25000)

	// A three-byte rune straddles the byte limit; the cut must back off
	// to its start instead of splitting it.
	transcript := longTranscript(24999) + "한"

	rec := doSummarize(t, h, models.SummarizeRequest{Transcript: transcript}, true)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp models.SummarizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !resp.TranscriptTruncated {
		t.Fatal("expected truncation")
	}
	if !utf8.ValidString(resp.Transcript) {
		t.Error("truncated transcript is not valid UTF-8")
	}
	if strings.ContainsRune(resp.Transcript, utf8.RuneError) {
		t.Error("truncated transcript contains a replacement rune")
	}
	if len(resp.Transcript) != 24999+len("\n\n[TRUNCATED]") {
		t.Errorf("unexpected truncated length %d", len(resp.Transcript))
	}
}

func TestSummarize_FallbackUsesChapters(t *testing.T) {
	videos := &fakeVideos{
		transcript: youtube.TranscriptResult{Error: "timedtext empty"},
		oembed:     &youtube.OEmbedInfo{Title: "Seoul Street Food Tour", AuthorName: "Korea Eats"},
		description: "Best eats in Seoul!\n" +
			"0:00 Intro\n" +
			"1:30 Gwangjang Market\n" +
			"12:05 Myeongdong at night\n",
	}
	gemini := &fakeGemini{insights: models.SummaryInsights{
		Summary:    "Metadata only.",
		KeyMoments: []models.KeyMoment{{Time: "99:99", Title: "made up"}},
	}}
	quota := &fakeQuota{status: models.QuotaStatus{Remaining: 1, Limit: 3}}
	h := NewSummarizeHandler(videos, gemini, quota, 25000)

	rec := doSummarize(t, h, models.SummarizeRequest{URL: "https://www.youtube.com/watch?v=abc123def45"}, true)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp models.SummarizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.TranscriptError != "timedtext empty" {
		t.Errorf("transcript error should surface, got %q", resp.TranscriptError)
	}
	// Hallucinated model timestamps are replaced with chapter markers,
	// minus the zero-second line.
	if len(resp.Insights.KeyMoments) != 2 {
		t.Fatalf("expected 2 chapter moments, got %d", len(resp.Insights.KeyMoments))
	}
	if resp.Insights.KeyMoments[0].Title != "Gwangjang Market" || resp.Insights.KeyMoments[0].Why != "Chapter" {
		t.Errorf("unexpected first moment: %+v", resp.Insights.KeyMoments[0])
	}
	if !strings.Contains(gemini.content, "Title: Seoul Street Food Tour") {
		t.Errorf("metadata should reach the model, got %q", gemini.content)
	}
	if !strings.HasPrefix(gemini.content, "Metadata:\n") {
		t.Errorf("fallback content must be metadata, got %q", gemini.content)
	}
}

func TestSummarize_FallbackWithoutChapters(t *testing.T) {
	videos := &fakeVideos{
		transcript: youtube.TranscriptResult{Error: "timedtext HTTP 403"},
	}
	gemini := &fakeGemini{insights: models.SummaryInsights{
		Summary:    "Metadata only.",
		KeyMoments: []models.KeyMoment{{Time: "05:00", Title: "made up"}},
	}}
	quota := &fakeQuota{status: models.QuotaStatus{Remaining: 1, Limit: 3}}
	h := NewSummarizeHandler(videos, gemini, quota, 25000)

	rec := doSummarize(t, h, models.SummarizeRequest{URL: "https://youtu.be/abc123def45"}, true)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp models.SummarizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(resp.Insights.KeyMoments) != 0 {
		t.Errorf("no chapters means no key moments, got %d", len(resp.Insights.KeyMoments))
	}
	// An HTTP-level failure means the watch page is unreachable, so the
	// description is not even attempted.
	if videos.descriptionCalls != 0 {
		t.Errorf("description should not be fetched after an HTTP failure")
	}
}

func TestSummarize_ConsumeAfterSuccess(t *testing.T) {
	gemini := &fakeGemini{err: context.DeadlineExceeded}
	quota := &fakeQuota{status: models.QuotaStatus{Remaining: 2, Limit: 3}}
	h := NewSummarizeHandler(&fakeVideos{}, gemini, quota, 25000)

	rec := doSummarize(t, h, models.SummarizeRequest{Transcript: longTranscript(300)}, true)

	if rec.Code != 500 {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if quota.consumeCalls != 0 {
		t.Fatalf("failed summarization must not consume quota")
	}
	var body models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "Summarization failed." {
		t.Errorf("unexpected error message: %q", body.Error)
	}
}

func TestSummarize_QuotaSystemError(t *testing.T) {
	quota := &fakeQuota{checkErr: context.DeadlineExceeded}
	h := NewSummarizeHandler(&fakeVideos{}, &fakeGemini{}, quota, 25000)

	rec := doSummarize(t, h, models.SummarizeRequest{Transcript: longTranscript(300)}, true)

	if rec.Code != 500 {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "Quota system error" {
		t.Errorf("unexpected error message: %q", body.Error)
	}
	if body.Details == "" {
		t.Errorf("quota system errors should carry details")
	}
}
