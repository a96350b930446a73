package render

import (
	"strconv"

	"github.com/noah-isme/peerconnect-portal/internal/service"
	"github.com/noah-isme/peerconnect-portal/pkg/export"
)

// Export column headers.
const (
	ColTitle     = "Title"
	ColType      = "Type"
	ColModule    = "Module"
	ColYear      = "Year"
	ColUploader  = "Uploaded by"
	ColDate      = "Date"
	ColDownloads = "Downloads"
	ColFileType  = "File type"
)

// MaterialsDataset tabulates the metadata of the listing page in snap. Links
// and file locations are never part of an export.
func MaterialsDataset(snap service.Snapshot) export.Dataset {
	cards := NewMaterialCards(snap)
	data := export.Dataset{
		Headers: []string{ColTitle, ColType, ColModule, ColYear, ColUploader, ColDate, ColDownloads, ColFileType},
		Rows:    make([]map[string]string, 0, len(cards)),
	}
	for _, card := range cards {
		data.Rows = append(data.Rows, map[string]string{
			ColTitle:     card.Title,
			ColType:      card.Type,
			ColModule:    card.Module,
			ColYear:      card.Year,
			ColUploader:  card.Uploader,
			ColDate:      card.Date,
			ColDownloads: strconv.Itoa(card.Downloads),
			ColFileType:  card.FileType,
		})
	}
	return data
}
