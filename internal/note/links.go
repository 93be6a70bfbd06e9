package note

import (
	"regexp"
	"strings"
)

// reWikiLink matches [[target]] and [[target|label]]. Both captures are
// non-greedy so adjacent links stay separate; group 2 includes the pipe.
var reWikiLink = regexp.MustCompile(`\[\[(.+?)(\|.+?)?\]\]`)

// Link is one wiki-link span found in a body.
type Link struct {
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// Text returns the visible text of the link: the label, or the target when
// there is none.
func (l Link) Text() string {
	if l.Label != "" {
		return l.Label
	}
	return l.Target
}

// NormalizeLinks rewrites every wiki-link in body as an inline markdown
// link. Text outside matched spans, including malformed spans, is copied
// through unchanged.
func NormalizeLinks(body string) string {
	matches := reWikiLink.FindAllStringSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return body
	}

	var b strings.Builder
	b.Grow(len(body))
	last := 0
	for _, m := range matches {
		link := linkFromMatch(body, m)
		b.WriteString(body[last:m[0]])
		b.WriteString("[")
		b.WriteString(link.Text())
		b.WriteString("](")
		b.WriteString(link.Target)
		b.WriteString(")")
		last = m[1]
	}
	b.WriteString(body[last:])
	return b.String()
}

// ExtractLinks returns the wiki-links in body, in order of appearance.
func ExtractLinks(body string) []Link {
	matches := reWikiLink.FindAllStringSubmatchIndex(body, -1)
	links := make([]Link, 0, len(matches))
	for _, m := range matches {
		links = append(links, linkFromMatch(body, m))
	}
	return links
}

func linkFromMatch(s string, m []int) Link {
	link := Link{Target: s[m[2]:m[3]]}
	if m[4] >= 0 {
		// skip the leading '|'
		link.Label = s[m[4]+1 : m[5]]
	}
	return link
}
