package youtube

import (
	"regexp"
	"strconv"
	"strings"

	"seoulmate-backend/internal/models"
)

const maxChapters = 12

var chapterLineRe = regexp.MustCompile(`^\s*(\d{1,2}:\d{2}(?::\d{2})?)\s+(.+)$`)

// ExtractChapters parses timestamp-prefixed lines out of a video
// description, the way creators write chapter lists. Used as a key-moments
// substitute when no transcript exists; entries are tagged "Chapter" so
// they are distinguishable from model-generated moments.
func ExtractChapters(description string) []models.KeyMoment {
	var chapters []models.KeyMoment
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSuffix(line, "\r")
		m := chapterLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		sec := parseTimestampSeconds(m[1])
		title := strings.TrimSpace(m[2])
		if sec == 0 || title == "" {
			continue
		}

		chapters = append(chapters, models.KeyMoment{
			Time:  FormatTimestamp(sec),
			Title: title,
			Why:   "Chapter",
		})
		if len(chapters) == maxChapters {
			break
		}
	}
	return chapters
}

// parseTimestampSeconds handles MM:SS and HH:MM:SS. Any non-numeric part
// invalidates the whole timestamp.
func parseTimestampSeconds(ts string) int {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0
		}
		nums[i] = n
	}

	var sec int
	switch len(nums) {
	case 2:
		sec = nums[0]*60 + nums[1]
	case 3:
		sec = nums[0]*3600 + nums[1]*60 + nums[2]
	default:
		return 0
	}
	if sec < 0 {
		return 0
	}
	return sec
}
