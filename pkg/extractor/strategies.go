package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/video-analitics/catalog/pkg/classifier"
)

const maxContextLength = 300

var (
	linkKeywords = []string{
		"download",
		"دانلود",
		"subtitle",
		"زیرنویس",
		"torrent",
		"magnet:",
		"mirror",
	}
	fileSuffixes = []string{".mkv", ".mp4", ".avi", ".mov", ".srt", ".zip", ".rar", ".torrent"}

	scopeSelectors = strings.Join([]string{
		".download",
		".downloads",
		".download-links",
		".download-box",
		".dl-box",
		"#download",
		"#downloads",
		".subtitle",
		".subtitles",
		"#subtitles",
		".mirrors",
		".links",
	}, ", ")

	contextSelectors = "li, tr, p, .item, .download-item, .link-item, div"

	dataURLAttrs = []string{"data-url", "data-href", "data-link", "data-download", "data-file"}
)

// AnchorStrategy scans every anchor and keeps the ones whose text, class
// or target looks like a download, or whose surrounding block mentions one.
type AnchorStrategy struct{}

func NewAnchorStrategy() *AnchorStrategy {
	return &AnchorStrategy{}
}

func (s *AnchorStrategy) Name() string {
	return "anchor"
}

func (s *AnchorStrategy) Priority() int {
	return 90
}

func (s *AnchorStrategy) Candidates(doc *goquery.Document) []Candidate {
	var out []Candidate
	doc.Find("a[href]").Each(func(i int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		class, _ := a.Attr("class")
		text := anchorText(a)
		ctx := contextOf(a)
		contextual := false
		if !looksLikeLink(href, text+" "+class) {
			if !hasLinkKeyword(ctx) {
				return
			}
			contextual = true
		}
		out = append(out, Candidate{
			URL:        href,
			Text:       text,
			Context:    ctx,
			Source:     s.Name(),
			Contextual: contextual,
		})
	})
	return out
}

// ScopedStrategy takes every anchor inside a known download or
// subtitle container, whatever its text.
type ScopedStrategy struct{}

func NewScopedStrategy() *ScopedStrategy {
	return &ScopedStrategy{}
}

func (s *ScopedStrategy) Name() string {
	return "scoped"
}

func (s *ScopedStrategy) Priority() int {
	return 100
}

func (s *ScopedStrategy) Candidates(doc *goquery.Document) []Candidate {
	var out []Candidate
	doc.Find(scopeSelectors).Find("a[href]").Each(func(i int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		out = append(out, Candidate{
			URL:     href,
			Text:    anchorText(a),
			Context: contextOf(a),
			Source:  s.Name(),
		})
	})
	return out
}

type DataAttrStrategy struct{}

func NewDataAttrStrategy() *DataAttrStrategy {
	return &DataAttrStrategy{}
}

func (s *DataAttrStrategy) Name() string {
	return "data_attr"
}

func (s *DataAttrStrategy) Priority() int {
	return 80
}

func (s *DataAttrStrategy) Candidates(doc *goquery.Document) []Candidate {
	var out []Candidate
	sel := "[" + strings.Join(dataURLAttrs, "], [") + "]"
	doc.Find(sel).Each(func(i int, el *goquery.Selection) {
		for _, attr := range dataURLAttrs {
			if val, exists := el.Attr(attr); exists && strings.TrimSpace(val) != "" {
				out = append(out, Candidate{
					URL:     val,
					Text:    anchorText(el),
					Context: contextOf(el),
					Source:  s.Name(),
				})
				return
			}
		}
	})
	return out
}

// FormStrategy picks up download buttons implemented as forms.
type FormStrategy struct{}

func NewFormStrategy() *FormStrategy {
	return &FormStrategy{}
}

func (s *FormStrategy) Name() string {
	return "form"
}

func (s *FormStrategy) Priority() int {
	return 70
}

func (s *FormStrategy) Candidates(doc *goquery.Document) []Candidate {
	var out []Candidate
	doc.Find("form[action]").Each(func(i int, f *goquery.Selection) {
		action, _ := f.Attr("action")
		text := ""
		f.Find(`button, input[type="submit"]`).EachWithBreak(func(i int, b *goquery.Selection) bool {
			text = cleanText(b.Text())
			if text == "" {
				text, _ = b.Attr("value")
			}
			return text == ""
		})
		if text == "" {
			text = cleanText(f.Text())
		}
		if !looksLikeLink(action, text) {
			return
		}
		out = append(out, Candidate{
			URL:     action,
			Text:    text,
			Context: contextOf(f),
			Source:  s.Name(),
		})
	})
	return out
}

type MagnetStrategy struct{}

func NewMagnetStrategy() *MagnetStrategy {
	return &MagnetStrategy{}
}

func (s *MagnetStrategy) Name() string {
	return "magnet"
}

func (s *MagnetStrategy) Priority() int {
	return 60
}

func (s *MagnetStrategy) Candidates(doc *goquery.Document) []Candidate {
	var out []Candidate
	doc.Find(`a[href^="magnet:"], a[href^="MAGNET:"]`).Each(func(i int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		out = append(out, Candidate{
			URL:     href,
			Text:    anchorText(a),
			Context: contextOf(a),
			Source:  s.Name(),
		})
	})
	return out
}

func looksLikeLink(href, text string) bool {
	if hasLinkKeyword(href + " " + text) {
		return true
	}
	if _, ok := classifier.Service(href); ok {
		return true
	}
	p := strings.ToLower(href)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	for _, suf := range fileSuffixes {
		if strings.HasSuffix(p, suf) {
			return true
		}
	}
	return false
}

func anchorText(s *goquery.Selection) string {
	if text := cleanText(s.Text()); text != "" {
		return text
	}
	if title, ok := s.Attr("title"); ok {
		if text := cleanText(title); text != "" {
			return text
		}
	}
	if alt, ok := s.Find("img").Attr("alt"); ok {
		return cleanText(alt)
	}
	return ""
}

func hasLinkKeyword(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range linkKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// contextOf returns the text of the closest block around s, without the
// text of any link in it. Sibling links describe other files.
func contextOf(s *goquery.Selection) string {
	parent := s.ParentsFiltered(contextSelectors).First()
	if parent.Length() == 0 {
		return ""
	}
	block := parent.Clone()
	block.Find("a, script, style, button").Remove()
	return truncate(cleanText(block.Text()), maxContextLength)
}
