package classifier

import (
	"net/url"
	"strings"

	"github.com/video-analitics/catalog/pkg/models"
)

// DefaultRedirectMarker is the path segment the site uses for its
// intermediate countdown pages.
const DefaultRedirectMarker = "/redirect/"

var (
	HostedSteps = []string{
		"Visit link",
		"Wait for countdown (usually 5-15 seconds)",
		"Click download button",
		"Download starts",
	}
	DirectSteps   = []string{"Click to download directly"}
	RedirectSteps = []string{
		"Opens intermediate page",
		"Countdown timer (usually 15 seconds)",
		"Download button appears",
		"Click to download",
	}
)

var hostedServices = []string{
	"pixeldrain",
	"mediafire",
	"mega.nz",
	"drive.google",
	"dropbox",
	"uploadrar",
	"uptobox",
	"rapidgator",
	"zippyshare",
	"sendspace",
	"file-upload",
	"clicknupload",
	"gofile",
	"anonfiles",
	"bayfiles",
	"mixdrop",
	"doodstream",
	"streamtape",
	"racaty",
	"gdtot",
}

var directExtensions = []string{"mkv", "mp4", "avi", "mov", "srt", "zip", "rar"}

// Analysis describes how a user gets from a link to the file.
type Analysis struct {
	DeliveryMethod      models.DeliveryMethod
	Service             string
	RequiresInteraction bool
	Steps               []string
}

type input struct {
	path     string
	combined string
}

// rule inspects a link and, when it matches, rewrites the analysis.
type rule struct {
	Name  string
	Apply func(in input, a *Analysis) bool
}

type Classifier struct {
	rules []rule
}

func New(redirectMarker string) *Classifier {
	if redirectMarker == "" {
		redirectMarker = DefaultRedirectMarker
	}
	marker := strings.ToLower(redirectMarker)

	return &Classifier{
		rules: []rule{
			{Name: "hosted", Apply: hostedRule},
			{Name: "direct", Apply: directRule},
			{Name: "redirect", Apply: func(in input, a *Analysis) bool {
				if !strings.Contains(in.combined, marker) {
					return false
				}
				a.DeliveryMethod = models.DeliveryRedirect
				a.RequiresInteraction = true
				a.Steps = copySteps(RedirectSteps)
				return true
			}},
		},
	}
}

// Rules returns the rule names in evaluation order.
func (c *Classifier) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

// Analyze runs every rule in order; a later match overrides an earlier one.
func (c *Classifier) Analyze(rawURL, text string) Analysis {
	a := Analysis{
		DeliveryMethod:      models.DeliveryIndirect,
		Service:             "unknown",
		RequiresInteraction: true,
		Steps:               []string{},
	}

	in := input{
		path:     urlPath(rawURL),
		combined: strings.ToLower(rawURL + " " + text),
	}
	for _, r := range c.rules {
		r.Apply(in, &a)
	}
	return a
}

func hostedRule(in input, a *Analysis) bool {
	svc, ok := matchService(in.combined)
	if !ok {
		return false
	}
	a.DeliveryMethod = models.DeliveryHosted
	a.Service = svc
	a.RequiresInteraction = true
	a.Steps = copySteps(HostedSteps)
	return true
}

// Service reports the file-hosting service rawURL points at.
func Service(rawURL string) (string, bool) {
	return matchService(strings.ToLower(rawURL))
}

func matchService(lower string) (string, bool) {
	for _, svc := range hostedServices {
		if strings.Contains(lower, svc) {
			return strings.ReplaceAll(svc, ".", ""), true
		}
	}
	return "", false
}

func directRule(in input, a *Analysis) bool {
	p := strings.ToLower(in.path)
	for _, ext := range directExtensions {
		if strings.HasSuffix(p, "."+ext) {
			a.DeliveryMethod = models.DeliveryDirect
			a.Service = "direct"
			a.RequiresInteraction = false
			a.Steps = copySteps(DirectSteps)
			return true
		}
	}
	return false
}

func urlPath(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		if i := strings.IndexAny(raw, "?#"); i >= 0 {
			return raw[:i]
		}
		return raw
	}
	return u.Path
}

func copySteps(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

var defaultClassifier = New(DefaultRedirectMarker)

// Analyze classifies a link with the default redirect marker.
func Analyze(rawURL, text string) Analysis {
	return defaultClassifier.Analyze(rawURL, text)
}
