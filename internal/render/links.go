package render

import (
	"net/url"
	"strconv"

	"github.com/noah-isme/peerconnect-portal/internal/service"
)

// MaterialsPath is the listing page route.
const MaterialsPath = "/materials"

// ListingValues encodes a query state as URL parameters. Empty filters and
// page 1 are omitted.
func ListingValues(state service.QueryState) url.Values {
	v := url.Values{}
	setNonEmpty(v, "search", state.Search)
	setNonEmpty(v, "module", state.Module)
	setNonEmpty(v, "year", state.Year)
	setNonEmpty(v, "type", state.Type)
	if state.Sort != "" && state.Sort != service.DefaultSort {
		v.Set("sort", state.Sort)
	}
	if state.Page > 1 {
		v.Set("page", strconv.Itoa(state.Page))
	}
	return v
}

// ListingURL links to the listing for state, optionally with a dialog open.
func ListingURL(state service.QueryState, modal Modal) string {
	v := ListingValues(state)
	if modal != ModalNone {
		v.Set("modal", string(modal))
	}
	if len(v) == 0 {
		return MaterialsPath
	}
	return MaterialsPath + "?" + v.Encode()
}

// QueryStateFrom parses listing parameters back into a state.
func QueryStateFrom(v url.Values) service.QueryState {
	state := service.DefaultQueryState()
	state.Search = v.Get("search")
	state.Module = v.Get("module")
	state.Year = v.Get("year")
	state.Type = v.Get("type")
	if sort := v.Get("sort"); sort != "" {
		state.Sort = sort
	}
	if page, err := strconv.Atoi(v.Get("page")); err == nil {
		state.Page = page
	}
	return state.Normalize()
}

// DownloadURL is the portal route that proxies the gated download. The
// listing parameters ride along so a refusal can reopen the same listing.
func DownloadURL(id string, state service.QueryState) string {
	path := MaterialsPath + "/" + url.PathEscape(id) + "/download"
	if v := ListingValues(state); len(v) > 0 {
		return path + "?" + v.Encode()
	}
	return path
}

func setNonEmpty(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
