package render

import (
	"path"
	"strings"

	"github.com/noah-isme/peerconnect-portal/internal/models"
)

// NoTargetLabel is shown when a material has nothing to open.
const NoTargetLabel = "—"

var friendlyExtensions = map[string]string{
	"pdf":  "PDF",
	"doc":  "DOC",
	"docx": "DOCX",
	"ppt":  "PPT",
	"pptx": "PPTX",
	"xls":  "XLS",
	"xlsx": "XLSX",
	"zip":  "ZIP",
	"txt":  "TXT",
}

// FileTypeLabel classifies a material target: LINK for http(s) targets, a
// friendly name for common extensions, otherwise the upper-cased extension.
func FileTypeLabel(target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return NoTargetLabel
	}
	if target == "LINK" || models.IsExternalURL(target) {
		return "LINK"
	}
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(target), "."))
	if ext == "" {
		// No dot: the whole last segment stands in for the extension.
		ext = strings.ToLower(path.Base(target))
	}
	if label, ok := friendlyExtensions[ext]; ok {
		return label
	}
	return strings.ToUpper(ext)
}

// materialTarget picks the value FileTypeLabel classifies for m.
func materialTarget(m models.Material) string {
	switch {
	case m.HasExternal():
		return "LINK"
	case m.HasLocalFile():
		return m.FileURL
	default:
		return ""
	}
}
