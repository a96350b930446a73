package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/peerconnect-portal/internal/models"
	appErrors "github.com/noah-isme/peerconnect-portal/pkg/errors"
)

// DefaultSort is the listing order used on first load and after a filter reset.
const DefaultSort = "recent"

type materialsLister interface {
	ListMaterials(ctx context.Context, q models.MaterialQuery) (*models.MaterialList, error)
}

// QueryState is the search, filter, sort and page selection of one listing.
type QueryState struct {
	Search string
	Module string
	Year   string
	Type   string
	Sort   string
	Page   int
}

// DefaultQueryState returns the state of a freshly opened listing.
func DefaultQueryState() QueryState {
	return QueryState{Sort: DefaultSort, Page: 1}
}

// Normalize trims inputs and clamps the page to at least 1.
func (q QueryState) Normalize() QueryState {
	q.Search = strings.TrimSpace(q.Search)
	q.Module = strings.TrimSpace(q.Module)
	q.Year = strings.TrimSpace(q.Year)
	q.Type = strings.TrimSpace(q.Type)
	q.Sort = strings.TrimSpace(q.Sort)
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}

// Filtered reports whether any narrowing filter or search is active.
func (q QueryState) Filtered() bool {
	return q.Search != "" || q.Module != "" || q.Year != "" || q.Type != ""
}

// PageResult is one page of the listing. Failed marks a degraded result
// produced after the API call failed.
type PageResult struct {
	Materials  []models.Material
	Page       int
	TotalPages int
	Failed     bool
}

// Empty reports whether there is nothing to show.
func (r PageResult) Empty() bool {
	return len(r.Materials) == 0
}

// Snapshot is an immutable copy of the controller state handed to renderers.
type Snapshot struct {
	State       QueryState
	Result      PageResult
	CanDownload bool
}

// Controller owns the listing state of one materials view: the query
// selection, the last applied page and the gate flag. Query and RefreshGate
// may run concurrently; each carries a generation number so a superseded
// response is never applied over a newer one.
type Controller struct {
	mu sync.Mutex

	lister   materialsLister
	gate     *GateService
	pageSize int
	logger   *zap.Logger

	state       QueryState
	result      PageResult
	canDownload bool

	queryIssued uint64
	gateIssued  uint64
	gateApplied uint64
}

// NewController constructs a controller starting from state.
func NewController(lister materialsLister, gate *GateService, pageSize int, state QueryState, logger *zap.Logger) *Controller {
	if pageSize <= 0 {
		pageSize = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	state = state.Normalize()
	return &Controller{
		lister:   lister,
		gate:     gate,
		pageSize: pageSize,
		logger:   logger,
		state:    state,
		result:   PageResult{Page: state.Page},
	}
}

// PageSize returns the fixed number of materials requested per page.
func (c *Controller) PageSize() int {
	return c.pageSize
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	materials := make([]models.Material, len(c.result.Materials))
	copy(materials, c.result.Materials)
	result := c.result
	result.Materials = materials
	return Snapshot{State: c.state, Result: result, CanDownload: c.canDownload}
}

// SetSearch updates the free-text search and resets the page.
func (c *Controller) SetSearch(v string) { c.update(func(s *QueryState) { s.Search = v }) }

// SetModule updates the module filter and resets the page.
func (c *Controller) SetModule(v string) { c.update(func(s *QueryState) { s.Module = v }) }

// SetYear updates the year filter and resets the page.
func (c *Controller) SetYear(v string) { c.update(func(s *QueryState) { s.Year = v }) }

// SetType updates the type filter and resets the page.
func (c *Controller) SetType(v string) { c.update(func(s *QueryState) { s.Type = v }) }

// SetSort updates the sort key and resets the page.
func (c *Controller) SetSort(v string) { c.update(func(s *QueryState) { s.Sort = v }) }

// ResetFilters clears every filter and restores the default sort.
func (c *Controller) ResetFilters() {
	c.update(func(s *QueryState) { *s = DefaultQueryState() })
}

func (c *Controller) update(fn func(*QueryState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.state)
	c.state.Page = 1
	c.state = c.state.Normalize()
}

// Query fetches page with the current filters. Failures other than session
// expiry produce a degraded empty result instead of an error. A response that
// arrives after a newer Query was issued is discarded and the current result
// returned.
func (c *Controller) Query(ctx context.Context, page int) (PageResult, error) {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	c.state.Page = page
	c.queryIssued++
	gen := c.queryIssued
	q := models.MaterialQuery{
		Search: c.state.Search,
		Module: c.state.Module,
		Year:   c.state.Year,
		Type:   c.state.Type,
		Sort:   c.state.Sort,
		Page:   page,
		Limit:  c.pageSize,
	}
	c.mu.Unlock()

	list, err := c.lister.ListMaterials(ctx, q)
	if err != nil && appErrors.IsSessionExpired(err) {
		return PageResult{}, err
	}

	var result PageResult
	if err != nil {
		c.logger.Warn("materials query failed", zap.Int("page", page), zap.Error(err))
		result = PageResult{Page: page, Failed: true}
	} else {
		result = normalizePage(list, page)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.queryIssued {
		c.logger.Debug("discarding stale materials page", zap.Uint64("generation", gen), zap.Uint64("latest", c.queryIssued))
		return c.snapshotLocked().Result, nil
	}
	c.result = result
	c.state.Page = result.Page
	return c.snapshotLocked().Result, nil
}

// normalizePage clamps the server's paging metadata so that
// 1 <= page <= totalPages, or totalPages == 0 with no materials.
func normalizePage(list *models.MaterialList, requested int) PageResult {
	if list == nil {
		return PageResult{Page: requested}
	}
	result := PageResult{Materials: list.Materials, Page: list.Page, TotalPages: list.TotalPages}
	if result.Page < 1 {
		result.Page = requested
	}
	if result.TotalPages < 0 {
		result.TotalPages = 0
	}
	if result.TotalPages == 0 && len(result.Materials) > 0 {
		result.TotalPages = 1
	}
	if result.TotalPages == 0 {
		result.Materials = nil
		result.Page = 1
		return result
	}
	if result.Page > result.TotalPages {
		result.Page = result.TotalPages
	}
	return result
}

// RefreshGate re-reads the download permission. Any failure other than
// session expiry closes the gate. A result is applied only when no newer
// refresh has already been applied.
func (c *Controller) RefreshGate(ctx context.Context) error {
	c.mu.Lock()
	c.gateIssued++
	gen := c.gateIssued
	c.mu.Unlock()

	open, err := c.gate.CanDownload(ctx)
	if err != nil && appErrors.IsSessionExpired(err) {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen < c.gateApplied {
		return nil
	}
	c.gateApplied = gen
	c.canDownload = open
	return nil
}

// Load refreshes the gate and queries the current page concurrently.
func (c *Controller) Load(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	page := c.state.Page
	c.mu.Unlock()

	var (
		wg      sync.WaitGroup
		gateErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		gateErr = c.RefreshGate(ctx)
	}()
	_, queryErr := c.Query(ctx, page)
	wg.Wait()

	if queryErr != nil {
		return Snapshot{}, queryErr
	}
	if gateErr != nil {
		return Snapshot{}, gateErr
	}
	return c.Snapshot(), nil
}

// Materials builds controllers for incoming requests.
type Materials struct {
	lister   materialsLister
	gate     *GateService
	pageSize int
	logger   *zap.Logger
}

// NewMaterials constructs a controller factory.
func NewMaterials(lister materialsLister, gate *GateService, pageSize int, logger *zap.Logger) *Materials {
	return &Materials{lister: lister, gate: gate, pageSize: pageSize, logger: logger}
}

// Controller returns a controller seeded with state.
func (m *Materials) Controller(state QueryState) *Controller {
	return NewController(m.lister, m.gate, m.pageSize, state, m.logger)
}

// PageSize returns the configured listing page size.
func (m *Materials) PageSize() int {
	if m.pageSize <= 0 {
		return 10
	}
	return m.pageSize
}
