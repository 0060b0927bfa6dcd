package youtube

import (
	"fmt"
	"strings"
	"testing"
)

func TestExtractChapters(t *testing.T) {
	description := strings.Join([]string{
		"Epic trip to Seoul!",
		"0:30 Arriving at Incheon",
		"  2:05 Airport railroad to the city",
		"12:45 Gwangjang market food tour",
		"1:02:10 Night views from Namsan",
		"not a chapter line",
		"99:99x broken timestamp",
		"3:00", // timestamp with no title
	}, "\n")

	chapters := ExtractChapters(description)
	if len(chapters) != 4 {
		t.Fatalf("Expected 4 chapters, got %d: %+v", len(chapters), chapters)
	}

	if chapters[0].Time != "00:30" || chapters[0].Title != "Arriving at Incheon" {
		t.Errorf("First chapter wrong: %+v", chapters[0])
	}
	if chapters[1].Time != "02:05" {
		t.Errorf("Leading whitespace should be accepted, got %+v", chapters[1])
	}
	if chapters[3].Time != "01:02:10" {
		t.Errorf("Expected HH:MM:SS formatting, got %+v", chapters[3])
	}
	for _, c := range chapters {
		if c.Why != "Chapter" {
			t.Errorf("Chapter moments must be tagged, got %+v", c)
		}
	}
}

func TestExtractChapters_ZeroTimestampDropped(t *testing.T) {
	// 0:00 openings are dropped with the zero-second filter; creators'
	// chapter lists effectively start from the first non-zero mark.
	chapters := ExtractChapters("0:00 Intro\n0:45 First stop")
	if len(chapters) != 1 || chapters[0].Title != "First stop" {
		t.Errorf("Expected only the non-zero chapter, got %+v", chapters)
	}
}

func TestExtractChapters_CapsAtTwelve(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 20; i++ {
		fmt.Fprintf(&b, "%d:00 Chapter number %d\n", i, i)
	}

	chapters := ExtractChapters(b.String())
	if len(chapters) != 12 {
		t.Errorf("Expected cap of 12 chapters, got %d", len(chapters))
	}
}

func TestExtractChapters_Empty(t *testing.T) {
	if got := ExtractChapters(""); len(got) != 0 {
		t.Errorf("Expected no chapters, got %+v", got)
	}
	if got := ExtractChapters("just\nplain\ntext"); len(got) != 0 {
		t.Errorf("Expected no chapters, got %+v", got)
	}
}
