package youtube

import (
	"context"
	"fmt"
	"strings"

	ytapi "github.com/hightemp/youtube-transcript-api-go/api"
)

// TranscriptResult is the single contract every retrieval strategy
// conforms to. Text non-empty implies Error empty and Source != "none".
type TranscriptResult struct {
	Text   string
	Source string
	Error  string
}

// TranscriptItem is one raw caption cue. Offset units are ambiguous
// across sources (seconds or milliseconds); itemsToLines resolves that.
type TranscriptItem struct {
	Text   string
	Offset float64
}

// transcriptFetcher is the narrow seam over the transcript library so the
// cascade can be exercised with fakes.
type transcriptFetcher interface {
	Fetch(videoID string, languages []string) ([]TranscriptItem, error)
}

type libraryFetcher struct {
	api *ytapi.YouTubeTranscriptApi
}

func (f *libraryFetcher) Fetch(videoID string, languages []string) ([]TranscriptItem, error) {
	transcript, err := f.api.GetTranscript(videoID, languages)
	if err != nil {
		return nil, err
	}
	items := make([]TranscriptItem, 0, len(transcript.Entries))
	for _, entry := range transcript.Entries {
		items = append(items, TranscriptItem{Text: entry.Text, Offset: entry.Start})
	}
	return items, nil
}

var preferredLanguages = []string{"ko", "en", "en-US", "en-GB", "auto"}

// FetchTranscript runs the retrieval strategies in priority order and
// stops at the first one producing text. It never returns an error value:
// total failure comes back as a result with Source "none" and the last
// observed error string.
func (c *Client) FetchTranscript(ctx context.Context, rawURL string) TranscriptResult {
	videoID := ExtractVideoID(rawURL)
	if videoID == "" {
		return TranscriptResult{Source: "none", Error: "Missing video id."}
	}

	var lastErr string
	var discovered []string

	// attemptLanguages runs the library fetch for each concrete language
	// hint in order. "auto" and "" are skipped here; the final no-hint
	// pass owns auto-selection, and results found there are labeled
	// "auto" rather than "manual". Errors are captured as data; if the
	// library reports the server's available-language list, that list
	// feeds the discovered-language pass.
	attemptLanguages := func(langs []string, source string) *TranscriptResult {
		for _, lang := range langs {
			if lang == "" || lang == "auto" {
				continue
			}
			items, err := c.transcripts.Fetch(videoID, []string{lang})
			if err != nil {
				lastErr = err.Error()
				if parsed := parseAvailableLanguages(lastErr); len(parsed) > 0 {
					discovered = parsed
				}
				continue
			}
			if text := itemsToLines(items); text != "" {
				return &TranscriptResult{Text: text, Source: source}
			}
		}
		return nil
	}

	strategies := []func(context.Context) *TranscriptResult{
		// Preferred-language pass: Korean first (the content domain), then
		// English variants. The list's trailing "auto" entry defers to the
		// no-hint pass below.
		func(context.Context) *TranscriptResult {
			return attemptLanguages(preferredLanguages, "manual")
		},
		// Discovered-language pass: retry with the server-reported list in
		// the order the server gave it.
		func(context.Context) *TranscriptResult {
			if len(discovered) == 0 {
				return nil
			}
			return attemptLanguages(discovered, "manual")
		},
		// Direct caption-file pass, bypassing the library entirely.
		func(ctx context.Context) *TranscriptResult {
			timed := c.fetchTimedText(ctx, videoID)
			if timed.Text != "" {
				return &timed
			}
			if timed.Error != "" {
				lastErr = timed.Error
			}
			return nil
		},
		// No-hint pass: let the library pick whatever it can find.
		func(context.Context) *TranscriptResult {
			items, err := c.transcripts.Fetch(videoID, nil)
			if err != nil {
				lastErr = err.Error()
				return nil
			}
			if text := itemsToLines(items); text != "" {
				return &TranscriptResult{Text: text, Source: "auto"}
			}
			return nil
		},
	}

	for _, strategy := range strategies {
		if result := strategy(ctx); result != nil {
			return *result
		}
	}

	if lastErr == "" {
		lastErr = "Transcript unavailable."
	}
	return TranscriptResult{Source: "none", Error: lastErr}
}

// parseAvailableLanguages recovers the language codes from a library error
// like "... Available languages: ko, en". Best effort: a phrasing change
// upstream only disables the discovered-language retry.
func parseAvailableLanguages(errMsg string) []string {
	const marker = "Available languages:"
	idx := strings.Index(errMsg, marker)
	if idx == -1 {
		return nil
	}
	raw := strings.TrimSpace(errMsg[idx+len(marker):])
	if raw == "" {
		return nil
	}

	var langs []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	}) {
		if part = strings.TrimSpace(part); part != "" {
			langs = append(langs, part)
		}
	}
	return langs
}

// itemsToLines renders cues as "[MM:SS] text" lines. Offsets above 10,000
// are treated as milliseconds; this is a heuristic carried over from
// observed library output, not a guarantee of the upstream format.
func itemsToLines(items []TranscriptItem) string {
	var lines []string
	for _, item := range items {
		text := strings.TrimSpace(whitespaceRe.ReplaceAllString(item.Text, " "))
		if text == "" {
			continue
		}

		sec := item.Offset
		if sec > 10000 {
			sec = sec / 1000
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", FormatTimestamp(int(sec)), text))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// FormatTimestamp renders seconds as MM:SS, or HH:MM:SS past one hour.
func FormatTimestamp(totalSec int) string {
	if totalSec < 0 {
		totalSec = 0
	}
	h := totalSec / 3600
	m := (totalSec % 3600) / 60
	s := totalSec % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
