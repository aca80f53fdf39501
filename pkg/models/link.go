package models

type Purpose string

const (
	PurposeSubtitle Purpose = "subtitle"
	PurposeStream   Purpose = "stream"
	PurposeTorrent  Purpose = "torrent"
	PurposeDownload Purpose = "download"
)

type DeliveryMethod string

const (
	DeliveryDirect   DeliveryMethod = "direct"
	DeliveryHosted   DeliveryMethod = "hosted"
	DeliveryRedirect DeliveryMethod = "redirect"
	DeliveryIndirect DeliveryMethod = "indirect"
)

// LinkRecord is one distinct link discovered on a resource page.
type LinkRecord struct {
	Name                string         `json:"name"`
	URL                 string         `json:"url"`
	Quality             string         `json:"quality"`
	Format              string         `json:"format"`
	Size                string         `json:"size"`
	Purpose             Purpose        `json:"purpose"`
	DeliveryMethod      DeliveryMethod `json:"deliveryMethod"`
	Service             string         `json:"service"`
	RequiresInteraction bool           `json:"requiresInteraction"`
	Steps               []string       `json:"steps"`
	InfoHash            string         `json:"infoHash,omitempty"`
}

// Links is the partitioned result of one extraction pass.
type Links struct {
	Downloads []LinkRecord `json:"downloads"`
	Subtitles []LinkRecord `json:"subtitles"`
}

func (l Links) Len() int {
	return len(l.Downloads) + len(l.Subtitles)
}
