package render

import (
	"fmt"

	"github.com/noah-isme/peerconnect-portal/internal/service"
)

// PaginationView is the prev/next control under the listing.
type PaginationView struct {
	Page         int
	TotalPages   int
	Label        string
	PrevDisabled bool
	NextDisabled bool
	PrevURL      string
	NextURL      string
}

// NewPagination returns nil when there is at most one page. Links keep every
// filter of state and change only the page.
func NewPagination(state service.QueryState, page, totalPages int) *PaginationView {
	if totalPages <= 1 {
		return nil
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	view := &PaginationView{
		Page:         page,
		TotalPages:   totalPages,
		Label:        fmt.Sprintf("Page %d of %d", page, totalPages),
		PrevDisabled: page == 1,
		NextDisabled: page == totalPages,
	}
	if !view.PrevDisabled {
		prev := state
		prev.Page = page - 1
		view.PrevURL = ListingURL(prev, ModalNone)
	}
	if !view.NextDisabled {
		next := state
		next.Page = page + 1
		view.NextURL = ListingURL(next, ModalNone)
	}
	return view
}
