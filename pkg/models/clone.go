package models

import (
	"maps"
	"slices"
)

// Clone returns a copy that shares no slices with p.
func (p CatalogPage) Clone() CatalogPage {
	p.Items = slices.Clone(p.Items)
	return p
}

// Clone returns a copy that shares no maps or slices with d.
func (d ResourceDetail) Clone() ResourceDetail {
	d.Meta = maps.Clone(d.Meta)
	if d.ExternalIDs != nil {
		ids := *d.ExternalIDs
		d.ExternalIDs = &ids
	}
	d.Seasons = slices.Clone(d.Seasons)
	d.Episodes = slices.Clone(d.Episodes)
	d.Downloads = cloneLinks(d.Downloads)
	d.Subtitles = cloneLinks(d.Subtitles)
	return d
}

func (l EpisodeList) Clone() EpisodeList {
	l.Episodes = slices.Clone(l.Episodes)
	return l
}

func (r LinkRecord) Clone() LinkRecord {
	r.Steps = slices.Clone(r.Steps)
	return r
}

func cloneLinks(links []LinkRecord) []LinkRecord {
	if links == nil {
		return nil
	}
	out := make([]LinkRecord, len(links))
	for i, l := range links {
		out[i] = l.Clone()
	}
	return out
}
