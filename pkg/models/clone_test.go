package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceDetail_Clone(t *testing.T) {
	d := ResourceDetail{
		Meta:        map[string]string{"Genre": "Drama"},
		ExternalIDs: &ExternalIDs{IMDBID: "tt0499549"},
		Seasons:     []SeasonSummary{{Label: "Season 1"}},
		Downloads:   []LinkRecord{{URL: "https://a", Steps: []string{"Visit link"}}},
		Subtitles:   []LinkRecord{},
	}

	c := d.Clone()
	c.Meta["Genre"] = "Comedy"
	c.ExternalIDs.IMDBID = "tt0000001"
	c.Seasons[0].Label = "Season 2"
	c.Downloads[0].Steps[0] = "changed"

	assert.Equal(t, "Drama", d.Meta["Genre"])
	assert.Equal(t, "tt0499549", d.ExternalIDs.IMDBID)
	assert.Equal(t, "Season 1", d.Seasons[0].Label)
	assert.Equal(t, "Visit link", d.Downloads[0].Steps[0])
	assert.NotNil(t, c.Subtitles, "empty lists stay empty, not null")
	assert.Nil(t, c.Episodes)
}

func TestCatalogPage_Clone(t *testing.T) {
	p := CatalogPage{Page: 1, Items: []CatalogItem{{Title: "Avatar"}}}
	c := p.Clone()
	c.Items[0].Title = "Other"
	assert.Equal(t, "Avatar", p.Items[0].Title)
	assert.Equal(t, 1, c.Page)
}
