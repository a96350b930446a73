package render

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/noah-isme/peerconnect-portal/internal/models"
	"github.com/noah-isme/peerconnect-portal/internal/service"
)

// DateLayout is the display format of upload dates.
const DateLayout = "02 Jan 2006"

// ActionKind is the affordance shown on a material card.
type ActionKind int

const (
	// ActionNone renders the "No file available" hint.
	ActionNone ActionKind = iota
	// ActionDownload links to the gated download route.
	ActionDownload
	// ActionLocked opens the access-required dialog and never links to content.
	ActionLocked
)

var actionKindNames = [...]string{ActionNone: "none", ActionDownload: "download", ActionLocked: "locked"}

func (k ActionKind) String() string {
	if k >= 0 && int(k) < len(actionKindNames) {
		return actionKindNames[k]
	}
	return "none"
}

// MarshalText implements encoding.TextMarshaler.
func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names map to ActionNone.
func (k *ActionKind) UnmarshalText(text []byte) error {
	*k = ActionNone
	for i, name := range actionKindNames {
		if name == string(text) {
			*k = ActionKind(i)
		}
	}
	return nil
}

// Action is the card's call to action.
type Action struct {
	Kind  ActionKind `json:"kind"`
	Href  string     `json:"href,omitempty"`
	Label string     `json:"label"`
	Title string     `json:"title,omitempty"`
}

// None reports whether the card shows the hint instead of a control.
func (a Action) None() bool { return a.Kind == ActionNone }

// Download reports whether the card links to the download.
func (a Action) Download() bool { return a.Kind == ActionDownload }

// Locked reports whether the card shows the locked control.
func (a Action) Locked() bool { return a.Kind == ActionLocked }

// MaterialCard is the display model of one material.
type MaterialCard struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Type          string `json:"type"`
	TypeIcon      string `json:"type_icon"`
	Module        string `json:"module"`
	Year          string `json:"year"`
	Date          string `json:"date"`
	Uploader      string `json:"uploader"`
	AvatarInitial string `json:"avatar_initial"`
	Downloads     int    `json:"downloads"`
	FileType      string `json:"file_type"`
	Action        Action `json:"action"`
}

// NewMaterialCard derives the card for m as shown on the listing described by
// state. Both the download and the locked control carry that listing along.
func NewMaterialCard(m models.Material, canDownload bool, state service.QueryState) MaterialCard {
	uploader := strings.TrimSpace(m.UploaderName)
	if uploader == "" {
		uploader = "Unknown"
	}
	title := strings.TrimSpace(m.Title)
	if title == "" {
		title = "Untitled"
	}
	return MaterialCard{
		ID:            m.ID.String(),
		Title:         title,
		Description:   m.Description,
		Type:          m.Type,
		TypeIcon:      TypeIcon(m.Type),
		Module:        m.Module,
		Year:          m.Year.String(),
		Date:          FormatDate(m.UploadedAt),
		Uploader:      uploader,
		AvatarInitial: initial(uploader),
		Downloads:     m.Downloads,
		FileType:      FileTypeLabel(materialTarget(m)),
		Action:        actionFor(m, canDownload, state),
	}
}

func actionFor(m models.Material, canDownload bool, state service.QueryState) Action {
	switch {
	case !m.HasTarget():
		return Action{Kind: ActionNone, Label: "No file available"}
	case canDownload:
		return Action{Kind: ActionDownload, Href: DownloadURL(m.ID.String(), state), Label: "View / Download"}
	default:
		return Action{
			Kind:  ActionLocked,
			Href:  ListingURL(state, ModalAccess),
			Label: "Access Locked",
			Title: "Upload at least one material to unlock access",
		}
	}
}

// NewMaterialCards derives cards for a whole page.
func NewMaterialCards(snap service.Snapshot) []MaterialCard {
	cards := make([]MaterialCard, 0, len(snap.Result.Materials))
	for _, m := range snap.Result.Materials {
		cards = append(cards, NewMaterialCard(m, snap.CanDownload, snap.State))
	}
	return cards
}

// FormatDate renders t with DateLayout, or "" when unknown.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}
