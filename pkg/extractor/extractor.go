// Package extractor turns catalog pages into structured records. It only
// reads the documents it is given and never performs I/O.
package extractor

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/video-analitics/catalog/pkg/classifier"
	"github.com/video-analitics/catalog/pkg/models"
)

type Extractor struct {
	base    string
	scanner *Scanner
}

// New creates an extractor resolving relative URLs against base.
func New(base string, c *classifier.Classifier) *Extractor {
	return &Extractor{
		base:    base,
		scanner: NewScanner(base, c, DefaultRegistry()),
	}
}

func (e *Extractor) Links(doc *goquery.Document) models.Links {
	return e.scanner.Scan(doc)
}
