package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	ytapi "github.com/hightemp/youtube-transcript-api-go/api"
	yt "github.com/kkdai/youtube/v2"
)

// Servers reject Go's default agent, so watch-page fetches present a
// desktop browser.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

type Client struct {
	httpClient  *http.Client
	transcripts transcriptFetcher
	ytClient    *yt.Client
}

func NewClient() *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		transcripts: &libraryFetcher{api: ytapi.NewYouTubeTranscriptApi()},
		ytClient:    &yt.Client{},
	}
}

// ExtractVideoID pulls the video id out of any of the URL shapes the
// frontend sends: youtu.be short links, watch?v= links, and /shorts/ paths.
// Unparseable input yields "".
func ExtractVideoID(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}

	if strings.Contains(u.Hostname(), "youtu.be") {
		return strings.Trim(u.Path, "/")
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	if idx := strings.Index(u.Path, "/shorts/"); idx >= 0 {
		rest := u.Path[idx+len("/shorts/"):]
		if cut := strings.IndexByte(rest, '/'); cut >= 0 {
			rest = rest[:cut]
		}
		return rest
	}
	return ""
}

// NormalizeWatchURL rewrites any recognized YouTube URL to the canonical
// watch?v= form. Unrecognized input passes through unchanged.
func NormalizeWatchURL(rawURL string) string {
	if id := ExtractVideoID(rawURL); id != "" {
		return "https://www.youtube.com/watch?v=" + id
	}
	return rawURL
}

type OEmbedInfo struct {
	Title      string
	AuthorName string
}

// FetchOEmbed looks up public title/author metadata. Failures return nil:
// metadata is best-effort context, never a reason to fail a request.
func (c *Client) FetchOEmbed(ctx context.Context, videoID string) *OEmbedInfo {
	if videoID == "" {
		return nil
	}

	oembedURL := "https://www.youtube.com/oembed?url=" +
		url.QueryEscape("https://www.youtube.com/watch?v="+videoID) +
		"&format=json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, oembedURL, nil)
	if err != nil {
		return nil
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var data struct {
		Title      string `json:"title"`
		AuthorName string `json:"author_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil
	}

	return &OEmbedInfo{
		Title:      strings.TrimSpace(data.Title),
		AuthorName: strings.TrimSpace(data.AuthorName),
	}
}

// FetchDescription returns the video description, preferring the innertube
// metadata client and falling back to scraping the watch page.
func (c *Client) FetchDescription(ctx context.Context, videoID string) string {
	if videoID == "" {
		return ""
	}

	if video, err := c.ytClient.GetVideoContext(ctx, videoID); err == nil && video.Description != "" {
		return video.Description
	}

	html, err := c.fetchWatchHTML(ctx, videoID)
	if err != nil {
		return ""
	}
	raw := extractPlayerResponse(html)
	if raw == "" {
		return ""
	}

	var parsed struct {
		VideoDetails struct {
			ShortDescription string `json:"shortDescription"`
		} `json:"videoDetails"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return ""
	}
	return parsed.VideoDetails.ShortDescription
}

func (c *Client) fetchWatchHTML(ctx context.Context, videoID string) (string, error) {
	watchURL := "https://www.youtube.com/watch?v=" + url.QueryEscape(videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch watch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("watch page HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read watch page: %w", err)
	}
	return string(body), nil
}
