package models

type ExternalIDs struct {
	IMDBID string `json:"imdb,omitempty"`
	TMDBID string `json:"tmdb,omitempty"`
}

func (e ExternalIDs) IsEmpty() bool {
	return e.IMDBID == "" && e.TMDBID == ""
}

// ResourceDetail describes a movie, series or episode page.
type ResourceDetail struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	URL         string            `json:"url"`
	Image       string            `json:"image,omitempty"`
	Description string            `json:"description,omitempty"`
	Year        int               `json:"year,omitempty"`
	Quality     string            `json:"quality"`
	Meta        map[string]string `json:"meta"`
	ExternalIDs *ExternalIDs      `json:"externalIds,omitempty"`
	Season      int               `json:"season,omitempty"`
	Episode     int               `json:"episode,omitempty"`
	Seasons     []SeasonSummary   `json:"seasons,omitempty"`
	Episodes    []EpisodeSummary  `json:"episodes,omitempty"`
	Downloads   []LinkRecord      `json:"downloads"`
	Subtitles   []LinkRecord      `json:"subtitles"`
}

type SeasonSummary struct {
	Label  string `json:"season"`
	Title  string `json:"title"`
	URL    string `json:"url,omitempty"`
	ID     string `json:"id,omitempty"`
	Number int    `json:"number,omitempty"`
}

type EpisodeSummary struct {
	Label  string `json:"episode"`
	Title  string `json:"title"`
	URL    string `json:"url,omitempty"`
	ID     string `json:"id,omitempty"`
	Season int    `json:"seasonNumber,omitempty"`
	Number int    `json:"number,omitempty"`
}

type EpisodeList struct {
	URL      string           `json:"url"`
	Title    string           `json:"title"`
	Count    int              `json:"count"`
	Episodes []EpisodeSummary `json:"episodes"`
}
