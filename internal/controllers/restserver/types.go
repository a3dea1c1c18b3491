package restserver

import (
	"github.com/chrissnell/aeronetwx/internal/aeronet"
	"github.com/chrissnell/aeronetwx/internal/analysis"
)

// DatasetInfo describes the loaded snapshot.
type DatasetInfo struct {
	Source        string           `json:"source"`
	Preamble      aeronet.Preamble `json:"preamble"`
	Fields        []string         `json:"fields"`
	DateField     string           `json:"date_field,omitempty"`
	TimeField     string           `json:"time_field,omitempty"`
	Records       int              `json:"records"`
	RaggedRecords int              `json:"ragged_records"`
	Site          *analysis.Site   `json:"site,omitempty"`
}

// FieldList is the response of the fields endpoint.
type FieldList struct {
	Fields []string `json:"fields"`
}

// ReloadRequest is the optional body of a reload. An empty file reloads the
// current source.
type ReloadRequest struct {
	File string `json:"file"`
}

func datasetInfo(ds *aeronet.Dataset) DatasetInfo {
	info := DatasetInfo{
		Source:        ds.Source,
		Preamble:      ds.Preamble,
		Fields:        ds.Header.Fields,
		DateField:     ds.Header.DateField,
		TimeField:     ds.Header.TimeField,
		Records:       ds.Len(),
		RaggedRecords: ds.RaggedRecords(),
	}
	if lat, lon, ok := ds.SiteCoordinates(); ok {
		info.Site = &analysis.Site{Latitude: lat, Longitude: lon}
	}
	return info
}
