// internal/extractor/selector_test.go
package extractor

import (
	"reflect"
	"testing"

	"github.com/valpere/MediaScrapexter/internal/media"
)

func mustSelector(t *testing.T, patterns []string) *Selector {
	t.Helper()
	s, err := NewSelector(patterns, nil)
	if err != nil {
		t.Fatalf("failed to create selector: %v", err)
	}
	return s
}

func imageCandidate(url string, d media.ResolvedDescriptor, elem int) media.Candidate {
	return media.Candidate{
		URL:          url,
		Kind:         media.KindImage,
		Origin:       media.OriginImgSrcset,
		Descriptor:   d,
		ElementIndex: elem,
	}
}

func TestSelectLargestWidthWins(t *testing.T) {
	s := mustSelector(t, nil)

	winners := s.Select([]media.Candidate{
		imageCandidate("https://e.com/a-1920w.jpg", media.Width(1920), 0),
		imageCandidate("https://e.com/a-2560w.jpg", media.Width(2560), 0),
		imageCandidate("https://e.com/a-800w.jpg", media.Width(800), 0),
	})

	if len(winners) != 1 {
		t.Fatalf("expected 1 winner, got %d", len(winners))
	}
	if winners[0].Descriptor.Width != 2560 {
		t.Errorf("expected 2560w to win, got %s", winners[0].Descriptor)
	}
}

func TestSelectWidthBeatsDensityAndResolution(t *testing.T) {
	s := mustSelector(t, nil)

	winners := s.Select([]media.Candidate{
		imageCandidate("https://e.com/a@3x.jpg", media.Density(3), 0),
		imageCandidate("https://e.com/a-640w.jpg", media.Width(640), 0),
	})
	if winners[0].Descriptor.Kind != media.DescriptorWidth {
		t.Errorf("width should beat density, winner was %s", winners[0].Descriptor)
	}
}

func TestSelectHighestDensityWins(t *testing.T) {
	s := mustSelector(t, nil)

	winners := s.Select([]media.Candidate{
		imageCandidate("https://e.com/a@2x.jpg", media.Density(2), 0),
		imageCandidate("https://e.com/a@3x.jpg", media.Density(3), 0),
	})
	if winners[0].Descriptor.Density != 3 {
		t.Errorf("expected 3x to win, got %s", winners[0].Descriptor)
	}
}

func TestSelectResolutionLadder(t *testing.T) {
	s := mustSelector(t, nil)

	video := func(url, label string) media.Candidate {
		return media.Candidate{
			URL:          url,
			Kind:         media.KindVideo,
			Origin:       media.OriginVideoTag,
			Descriptor:   media.Resolution(label),
			ElementIndex: 0,
		}
	}

	winners := s.Select([]media.Candidate{
		video("https://e.com/v-720p.mp4", "720p"),
		video("https://e.com/v-1080p.mp4", "1080p"),
		video("https://e.com/v-potato.mp4", "potato"),
	})
	if winners[0].Descriptor.Label != "1080p" {
		t.Errorf("expected 1080p to win, got %s", winners[0].Descriptor)
	}
}

func TestSelectUnknownTieKeepsFirstSeen(t *testing.T) {
	s := mustSelector(t, nil)

	input := []media.Candidate{
		imageCandidate("https://e.com/first.jpg", media.Unknown(), 0),
		imageCandidate("https://e.com/second.jpg", media.Unknown(), 0),
	}

	first := s.Select(input)
	second := s.Select(input)

	if first[0].URL != "https://e.com/first.jpg" {
		t.Errorf("tie should keep first-seen, got %s", first[0].URL)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("selection must be deterministic across runs")
	}
}

func TestSelectSeparateGroups(t *testing.T) {
	s := mustSelector(t, nil)

	winners := s.Select([]media.Candidate{
		imageCandidate("https://e.com/a-800w.jpg", media.Width(800), 0),
		imageCandidate("https://e.com/a-2560w.jpg", media.Width(2560), 0),
		imageCandidate("https://e.com/b.png", media.Unknown(), 1),
	})

	if len(winners) != 2 {
		t.Fatalf("expected 2 winners (one per group), got %d", len(winners))
	}
	if winners[0].URL != "https://e.com/a-2560w.jpg" {
		t.Errorf("group 0: expected a-2560w.jpg, got %s", winners[0].URL)
	}
	if winners[1].URL != "https://e.com/b.png" {
		t.Errorf("group 1: expected b.png, got %s", winners[1].URL)
	}
}

func TestSelectIgnorePatternExcludesSoleCandidate(t *testing.T) {
	s := mustSelector(t, DefaultIgnorePatterns())

	winners := s.Select([]media.Candidate{
		imageCandidate("https://e.com/image-150x150.jpg", media.Unknown(), 0),
	})
	if len(winners) != 0 {
		t.Fatalf("thumbnail-only group must yield nothing, got %d winners", len(winners))
	}
}

func TestSelectIgnorePatternNeverOutranks(t *testing.T) {
	s := mustSelector(t, DefaultIgnorePatterns())

	winners := s.Select([]media.Candidate{
		imageCandidate("https://e.com/photo-thumb.jpg", media.Width(4000), 0),
		imageCandidate("https://e.com/photo.jpg", media.Width(1200), 0),
	})
	if len(winners) != 1 || winners[0].URL != "https://e.com/photo.jpg" {
		t.Fatalf("ignored candidate must not win its group: %+v", winners)
	}
}

func TestSelectVideoContainerTieBreak(t *testing.T) {
	s := mustSelector(t, nil)

	webm := media.Candidate{
		URL: "https://e.com/clip.webm", Kind: media.KindVideo,
		Origin: media.OriginVideoTag, Descriptor: media.Unknown(), ElementIndex: 0,
	}
	mp4 := media.Candidate{
		URL: "https://e.com/clip.mp4", Kind: media.KindVideo,
		Origin: media.OriginVideoTag, Descriptor: media.Unknown(), ElementIndex: 0,
	}

	winners := s.Select([]media.Candidate{webm, mp4})
	if winners[0].URL != mp4.URL {
		t.Errorf("mp4 should be preferred on descriptor ties, got %s", winners[0].URL)
	}
}

func TestCompareDescriptorsDensityVsResolutionIsTie(t *testing.T) {
	if cmp := compareDescriptors(media.Density(2), media.Resolution("1080p")); cmp != 0 {
		t.Errorf("density vs resolution should tie, got %d", cmp)
	}
}
