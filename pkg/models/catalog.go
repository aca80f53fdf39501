package models

type MediaType string

const (
	TypeMovie  MediaType = "movie"
	TypeSeries MediaType = "series"
)

func ParseMediaType(s string) (MediaType, bool) {
	switch MediaType(s) {
	case TypeMovie, TypeSeries:
		return MediaType(s), true
	}
	return "", false
}

type CatalogItem struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	URL     string    `json:"url"`
	Image   string    `json:"image,omitempty"`
	Year    int       `json:"year,omitempty"`
	Quality string    `json:"quality"`
	Type    MediaType `json:"type"`
}

type CatalogPage struct {
	Page     int           `json:"page"`
	Count    int           `json:"count"`
	HasNext  bool          `json:"hasNext"`
	NextPage string        `json:"nextPage,omitempty"`
	Items    []CatalogItem `json:"items"`
}
