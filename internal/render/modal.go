package render

import "strings"

// Modal names a dialog surface. Modal state travels in the "modal" query
// parameter; a link without it closes every surface.
type Modal string

const (
	ModalNone     Modal = ""
	ModalUpload   Modal = "upload"
	ModalAccess   Modal = "access"
	ModalForgot   Modal = "forgot"
	ModalActivate Modal = "activate"
)

// ParseModal accepts a query value and returns a known surface or ModalNone.
func ParseModal(raw string) Modal {
	switch m := Modal(strings.ToLower(strings.TrimSpace(raw))); m {
	case ModalUpload, ModalAccess, ModalForgot, ModalActivate:
		return m
	default:
		return ModalNone
	}
}

// Modals tracks which surfaces of a page are open. Each surface is either
// open or closed; surfaces are independent except that opening upload closes
// access.
type Modals struct {
	open map[Modal]bool
}

// NewModals returns a set with the given surfaces open.
func NewModals(open ...Modal) Modals {
	m := Modals{open: map[Modal]bool{}}
	for _, s := range open {
		m = m.Open(s)
	}
	return m
}

// Open returns a copy with s open.
func (m Modals) Open(s Modal) Modals {
	if s == ModalNone {
		return m
	}
	next := m.clone()
	if s == ModalUpload {
		delete(next.open, ModalAccess)
	}
	next.open[s] = true
	return next
}

// Close returns a copy with s closed.
func (m Modals) Close(s Modal) Modals {
	next := m.clone()
	delete(next.open, s)
	return next
}

// IsOpen reports whether s is open.
func (m Modals) IsOpen(s Modal) bool {
	return m.open[s]
}

// Upload reports whether the upload dialog is open.
func (m Modals) Upload() bool { return m.IsOpen(ModalUpload) }

// Access reports whether the access-required dialog is open.
func (m Modals) Access() bool { return m.IsOpen(ModalAccess) }

// Forgot reports whether the password reset dialog is open.
func (m Modals) Forgot() bool { return m.IsOpen(ModalForgot) }

// Activate reports whether the account activation dialog is open.
func (m Modals) Activate() bool { return m.IsOpen(ModalActivate) }

// Any reports whether some surface is open.
func (m Modals) Any() bool {
	return len(m.open) > 0
}

func (m Modals) clone() Modals {
	next := Modals{open: make(map[Modal]bool, len(m.open)+1)}
	for k, v := range m.open {
		next.open[k] = v
	}
	return next
}
