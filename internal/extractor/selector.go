// internal/extractor/selector.go
package extractor

import (
	"regexp"

	"github.com/valpere/MediaScrapexter/internal/media"
	"github.com/valpere/MediaScrapexter/internal/utils"
)

// resolutionLadder ranks conventional resolution labels; higher is better.
// Labels outside the ladder rank below every recognized one.
var resolutionLadder = map[string]int{
	"2160p": 6,
	"1440p": 5,
	"1080p": 4,
	"720p":  3,
	"480p":  2,
	"360p":  1,
}

// Selector picks the single best candidate of each logical group using a
// deterministic, pure ranking; identical input always yields identical
// output. Ties fall to the first-extracted candidate.
type Selector struct {
	ignore []*regexp.Regexp
	logger utils.Logger
}

// NewSelector compiles the configured ignore patterns
func NewSelector(ignorePatterns []string, logger utils.Logger) (*Selector, error) {
	compiled, err := compileIgnorePatterns(ignorePatterns)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Selector{ignore: compiled, logger: logger}, nil
}

// Select filters ignored candidates, groups the remainder by logical asset,
// and returns one winner per group in first-seen group order. A group whose
// candidates are all ignored yields nothing, even when it had only one
// member.
func (s *Selector) Select(candidates []media.Candidate) []media.Candidate {
	groups := make(map[string][]media.Candidate)
	var order []string

	for _, c := range candidates {
		if s.ignored(c) {
			continue
		}
		key := c.GroupKey()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c)
	}

	winners := make([]media.Candidate, 0, len(order))
	for _, key := range order {
		winners = append(winners, s.pick(groups[key]))
	}
	return winners
}

// ignored reports whether the candidate matches an ignore pattern by URL or
// descriptor
func (s *Selector) ignored(c media.Candidate) bool {
	for _, re := range s.ignore {
		if re.MatchString(c.URL) || re.MatchString(c.Descriptor.String()) {
			s.logger.Debugf("ignoring candidate (matches %q): %s", re.String(), c.URL)
			return true
		}
	}
	return false
}

// pick returns the best candidate of a non-empty group
func (s *Selector) pick(group []media.Candidate) media.Candidate {
	best := group[0]
	for _, challenger := range group[1:] {
		if better(challenger, best) {
			s.logger.Debugf("selected by %s: %s (%s) over %s (%s)",
				selectionReason(challenger, best),
				challenger.URL, challenger.Descriptor,
				best.URL, best.Descriptor)
			best = challenger
		}
	}

	s.logger.Infof("selected %s (%s) from group of %d", best.URL, best.Descriptor, len(group))
	return best
}

// better reports whether a strictly outranks b. Returning false on ties keeps
// the first-extracted candidate.
func better(a, b media.Candidate) bool {
	if cmp := compareDescriptors(a.Descriptor, b.Descriptor); cmp != 0 {
		return cmp > 0
	}
	// descriptors tie; for video candidates prefer the more portable
	// container (MP4 over WebM over the rest)
	if a.Kind == media.KindVideo && b.Kind == media.KindVideo {
		return videoFormatPriority(a) > videoFormatPriority(b)
	}
	return false
}

// selectionReason names the rule that decided a comparison, for the log
func selectionReason(winner, loser media.Candidate) string {
	if compareDescriptors(winner.Descriptor, loser.Descriptor) != 0 {
		switch winner.Descriptor.Kind {
		case media.DescriptorWidth:
			return "width"
		case media.DescriptorDensity:
			return "density"
		case media.DescriptorResolution:
			return "resolution"
		}
	}
	return "container format"
}

// compareDescriptors applies the ranking rules top to bottom: width beats
// everything and larger widths win; density beats unknown and larger
// densities win; recognized resolutions beat unknown and rank by the
// conventional ladder. Anything not decided by a rule is a tie.
func compareDescriptors(a, b media.ResolvedDescriptor) int {
	// rule 1: width
	aw, bw := a.Kind == media.DescriptorWidth, b.Kind == media.DescriptorWidth
	switch {
	case aw && bw:
		return a.Width - b.Width
	case aw:
		return 1
	case bw:
		return -1
	}

	// rule 2: density
	ad, bd := a.Kind == media.DescriptorDensity, b.Kind == media.DescriptorDensity
	switch {
	case ad && bd:
		switch {
		case a.Density > b.Density:
			return 1
		case a.Density < b.Density:
			return -1
		default:
			return 0
		}
	case ad && b.Kind == media.DescriptorUnknown:
		return 1
	case bd && a.Kind == media.DescriptorUnknown:
		return -1
	}

	// rule 3: resolution ladder
	ar, br := a.Kind == media.DescriptorResolution, b.Kind == media.DescriptorResolution
	switch {
	case ar && br:
		return resolutionLadder[a.Label] - resolutionLadder[b.Label]
	case ar && b.Kind == media.DescriptorUnknown:
		return 1
	case br && a.Kind == media.DescriptorUnknown:
		return -1
	}

	// rule 4: unknown vs unknown, or kinds no rule orders
	return 0
}
