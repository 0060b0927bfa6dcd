package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// CaptionTrack is one caption stream advertised by the watch page.
// Kind is "asr" for auto-generated tracks, "" for manual ones.
type CaptionTrack struct {
	LanguageCode string
	Kind         string
	BaseURL      string
	Name         string
}

var (
	errNoPlayerResponse = errors.New("no_player_response")
	errParseFailed      = errors.New("parse_failed")
	errNoCaptionsBlock  = errors.New("no_captions_block")
)

// The player response is embedded in the page in one of two forms: a
// script assignment statement, or an inline key whose object ends right
// before the sibling "videoDetails" key. Both are matched lazily up to
// the first closing boundary, which is where YouTube's own serializer
// stops.
var (
	playerAssignRe = regexp.MustCompile(`(?s)ytInitialPlayerResponse\s*=\s*(\{.*?\});`)
	playerInlineRe = regexp.MustCompile(`(?s)"ytInitialPlayerResponse"\s*:\s*(\{.*?\})\s*,\s*"videoDetails"`)
)

func extractPlayerResponse(html string) string {
	if m := playerAssignRe.FindStringSubmatch(html); len(m) > 1 {
		return m[1]
	}
	if m := playerInlineRe.FindStringSubmatch(html); len(m) > 1 {
		return m[1]
	}
	return ""
}

type playerResponse struct {
	Captions struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []struct {
				BaseURL      string `json:"baseUrl"`
				LanguageCode string `json:"languageCode"`
				Kind         string `json:"kind"`
				Name         struct {
					SimpleText string `json:"simpleText"`
				} `json:"name"`
			} `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

func parseCaptionTracks(html string) ([]CaptionTrack, error) {
	raw := extractPlayerResponse(html)
	if raw == "" {
		return nil, errNoPlayerResponse
	}

	var parsed playerResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, errParseFailed
	}

	tracks := parsed.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, errNoCaptionsBlock
	}

	out := make([]CaptionTrack, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, CaptionTrack{
			LanguageCode: t.LanguageCode,
			Kind:         t.Kind,
			BaseURL:      t.BaseURL,
			Name:         t.Name.SimpleText,
		})
	}
	return out, nil
}

// FetchCaptionTracks enumerates the caption tracks for a video. It fails
// softly: callers get an empty list plus the reason.
func (c *Client) FetchCaptionTracks(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	html, err := c.fetchWatchHTML(ctx, videoID)
	if err != nil {
		return nil, errNoPlayerResponse
	}
	return parseCaptionTracks(html)
}

// pickBestCaptionTrack applies the quality tie-break: manual English, then
// any manual track, then auto-generated English, then whatever is first.
func pickBestCaptionTrack(tracks []CaptionTrack) *CaptionTrack {
	if len(tracks) == 0 {
		return nil
	}

	isEnglish := func(t CaptionTrack) bool {
		return strings.HasPrefix(strings.ToLower(t.LanguageCode), "en")
	}

	var manual, auto, manualEnglish, autoEnglish []CaptionTrack
	for _, t := range tracks {
		if t.Kind == "asr" {
			auto = append(auto, t)
			if isEnglish(t) {
				autoEnglish = append(autoEnglish, t)
			}
		} else {
			manual = append(manual, t)
			if isEnglish(t) {
				manualEnglish = append(manualEnglish, t)
			}
		}
	}

	for _, group := range [][]CaptionTrack{manualEnglish, manual, autoEnglish, tracks} {
		if len(group) > 0 {
			return &group[0]
		}
	}
	return nil
}

// stripTranslationParam drops the tlang query parameter so the server does
// not auto-translate the captions out from under us.
func stripTranslationParam(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Del("tlang")
	u.RawQuery = q.Encode()
	return u.String()
}

// fetchTimedTextFromTracks picks the best track and walks the caption URL
// format variants: as served, then fmt=vtt, then fmt=srv3. Different
// videos expose different default formats. A non-2xx status is terminal;
// an empty 200 body moves on to the next variant.
func (c *Client) fetchTimedTextFromTracks(ctx context.Context, tracks []CaptionTrack) TranscriptResult {
	track := pickBestCaptionTrack(tracks)
	if track == nil || track.BaseURL == "" {
		return TranscriptResult{Source: "none", Error: errNoCaptionsBlock.Error()}
	}

	baseURL := stripTranslationParam(track.BaseURL)
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	variants := []struct {
		url string
		err string
	}{
		{baseURL, "timedtext empty"},
		{baseURL + sep + "fmt=vtt", "fmt=vtt empty"},
		{baseURL + sep + "fmt=srv3", "fmt=srv3 empty"},
	}

	source := "timedtext-manual"
	if track.Kind == "asr" {
		source = "timedtext-auto"
	}

	lastEmptyErr := "Timedtext empty."
	for _, variant := range variants {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, variant.url, nil)
		if err != nil {
			return TranscriptResult{Source: "none", Error: err.Error()}
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return TranscriptResult{Source: "none", Error: err.Error()}
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return TranscriptResult{Source: "none", Error: fmt.Sprintf("timedtext HTTP %d", resp.StatusCode)}
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return TranscriptResult{Source: "none", Error: err.Error()}
		}

		if text := parseTimedTextXML(string(body)); text != "" {
			return TranscriptResult{Text: text, Source: source}
		}
		lastEmptyErr = variant.err
	}

	return TranscriptResult{Source: "none", Error: lastEmptyErr}
}

// fetchTimedText is the hard fallback: it bypasses the transcript library
// entirely and pulls the caption file straight from the watch page tracks.
func (c *Client) fetchTimedText(ctx context.Context, videoID string) TranscriptResult {
	if videoID == "" {
		return TranscriptResult{Source: "none", Error: "Missing video id."}
	}
	tracks, err := c.FetchCaptionTracks(ctx, videoID)
	if err != nil {
		return TranscriptResult{Source: "none", Error: err.Error()}
	}
	return c.fetchTimedTextFromTracks(ctx, tracks)
}

var (
	timedTextRe  = regexp.MustCompile(`(?s)<text\b[^>]*>(.*?)</text>`)
	decimalRefRe = regexp.MustCompile(`&#(\d+);`)
	hexRefRe     = regexp.MustCompile(`&#x([0-9a-fA-F]+);`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// parseTimedTextXML extracts the caption cue bodies from a timedtext
// document and decodes entities. Variants that return non-XML payloads
// simply produce no cues, which the caller treats as an empty result.
func parseTimedTextXML(doc string) string {
	var lines []string
	for _, m := range timedTextRe.FindAllStringSubmatch(doc, -1) {
		text := whitespaceRe.ReplaceAllString(decodeXMLEntities(m[1]), " ")
		text = strings.TrimSpace(text)
		if text != "" {
			lines = append(lines, text)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func decodeXMLEntities(s string) string {
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = decimalRefRe.ReplaceAllStringFunc(s, func(ref string) string {
		n, err := strconv.Atoi(ref[2 : len(ref)-1])
		if err != nil {
			return ref
		}
		return string(rune(n))
	})
	s = hexRefRe.ReplaceAllStringFunc(s, func(ref string) string {
		n, err := strconv.ParseInt(ref[3:len(ref)-1], 16, 32)
		if err != nil {
			return ref
		}
		return string(rune(n))
	})
	return s
}
