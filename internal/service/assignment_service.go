package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skolaris/skolaris-api/internal/models"
	appErrors "github.com/skolaris/skolaris-api/pkg/errors"
)

type linkStore interface {
	FindPair(ctx context.Context, parentID, childID int64) (*models.ModuleCourse, error)
	Create(ctx context.Context, parentID, childID int64, volume, coefficient *float64) (*models.ModuleCourse, error)
	Resurrect(ctx context.Context, linkID, parentID int64, volume, coefficient *float64) (*models.ModuleCourse, error)
	Unlink(ctx context.Context, parentID, childID int64) error
	Deactivate(ctx context.Context, parentID, childID int64) error
	BatchApply(ctx context.Context, parentID int64, add, remove []int64) error
	ReplaceAll(ctx context.Context, parentID int64, orderedChildIDs []int64) error
}

type boardReader interface {
	ListAssigned(ctx context.Context, companyID, parentID int64) ([]models.AssignedItem, error)
	ListUnassigned(ctx context.Context, companyID, parentID int64) ([]models.CatalogItem, error)
}

type refReader interface {
	FindRef(ctx context.Context, id int64) (*models.OwnedRef, error)
	FilterOwned(ctx context.Context, companyID int64, ids []int64) ([]int64, error)
}

type boardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheMetrics interface {
	ObserveCacheHit()
	ObserveCacheMiss()
}

// LinkRequest attaches one child with optional descriptive attributes.
type LinkRequest struct {
	ChildID     int64    `json:"child_id" validate:"required"`
	Volume      *float64 `json:"volume" validate:"omitempty,gte=0"`
	Coefficient *float64 `json:"coefficient" validate:"omitempty,gte=0"`
}

// BatchAssignRequest adds and removes children in one atomic operation.
type BatchAssignRequest struct {
	Add    []int64 `json:"add"`
	Remove []int64 `json:"remove"`
}

// ReplaceAssignmentsRequest carries the full desired ordered child list.
type ReplaceAssignmentsRequest struct {
	ChildIDs []int64 `json:"child_ids"`
}

// AssignmentService is the ordered assignment engine for one direction of the
// module↔course relation. Two instances run in production, one per direction.
type AssignmentService struct {
	parentKind string
	childKind  string
	links      linkStore
	boards     boardReader
	parents    refReader
	children   refReader
	cache      boardCache
	cacheTTL   time.Duration
	metrics    cacheMetrics
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAssignmentService creates an engine instance for one direction.
// parentKind/childKind name the entities in error messages and cache keys
// (e.g. "module", "course").
func NewAssignmentService(
	parentKind, childKind string,
	links linkStore,
	boards boardReader,
	parents refReader,
	children refReader,
	cache boardCache,
	cacheTTL time.Duration,
	metrics cacheMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		parentKind: parentKind,
		childKind:  childKind,
		links:      links,
		boards:     boards,
		parents:    parents,
		children:   children,
		cache:      cache,
		cacheTTL:   cacheTTL,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
	}
}

// AddSingle links one child to the parent. A duplicate active link fails with
// ALREADY_LINKED; a soft-deleted pair is reactivated instead of duplicated.
func (s *AssignmentService) AddSingle(ctx context.Context, companyID, parentID int64, req LinkRequest) (*models.ModuleCourse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid link payload")
	}
	if err := s.checkOwned(ctx, s.parents, s.parentKind, companyID, parentID); err != nil {
		return nil, err
	}
	if err := s.checkOwned(ctx, s.children, s.childKind, companyID, req.ChildID); err != nil {
		return nil, err
	}

	existing, err := s.links.FindPair(ctx, parentID, req.ChildID)
	switch {
	case err == nil && existing.Status != models.StatusDeleted:
		return nil, appErrors.Clone(appErrors.ErrAlreadyLinked,
			fmt.Sprintf("%s %d is already linked to %s %d", s.childKind, req.ChildID, s.parentKind, parentID))
	case err == nil:
		link, rerr := s.links.Resurrect(ctx, existing.ID, parentID, req.Volume, req.Coefficient)
		if rerr != nil {
			return nil, appErrors.Wrap(rerr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore link")
		}
		s.invalidate(ctx, companyID)
		return link, nil
	case err != sql.ErrNoRows:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up link")
	}

	link, err := s.links.Create(ctx, parentID, req.ChildID, req.Volume, req.Coefficient)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create link")
	}
	s.invalidate(ctx, companyID)
	return link, nil
}

// RemoveSingle hard-deletes the active link of a pair. Remaining sibling
// positions are not renumbered.
func (s *AssignmentService) RemoveSingle(ctx context.Context, companyID, parentID, childID int64) error {
	if err := s.checkOwned(ctx, s.parents, s.parentKind, companyID, parentID); err != nil {
		return err
	}

	if err := s.links.Unlink(ctx, parentID, childID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotLinked,
				fmt.Sprintf("%s %d is not linked to %s %d", s.childKind, childID, s.parentKind, parentID))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove link")
	}
	s.invalidate(ctx, companyID)
	return nil
}

// Deactivate soft-deletes the active link of a pair, keeping the row so the
// direct create path can later restore it.
func (s *AssignmentService) Deactivate(ctx context.Context, companyID, parentID, childID int64) error {
	if err := s.checkOwned(ctx, s.parents, s.parentKind, companyID, parentID); err != nil {
		return err
	}

	if err := s.links.Deactivate(ctx, parentID, childID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotLinked,
				fmt.Sprintf("%s %d is not linked to %s %d", s.childKind, childID, s.parentKind, parentID))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate link")
	}
	s.invalidate(ctx, companyID)
	return nil
}

// BatchAssign applies an add list and a remove list in one transaction. Adds
// are de-duplicated preserving first-seen order and inserted idempotently:
// already-linked pairs are skipped silently, unlike AddSingle, because batch
// callers retry drag-and-drop edits at least once. The affected count reports
// the requested sizes, not the rows actually changed.
func (s *AssignmentService) BatchAssign(ctx context.Context, companyID, parentID int64, req BatchAssignRequest) (*models.BatchResult, error) {
	if len(req.Add) == 0 && len(req.Remove) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptyOperation, "batch requires at least one id to add or remove")
	}
	if err := s.checkOwned(ctx, s.parents, s.parentKind, companyID, parentID); err != nil {
		return nil, err
	}

	add := dedupe(req.Add)
	if err := s.checkAllOwned(ctx, companyID, add); err != nil {
		return nil, err
	}

	if err := s.links.BatchApply(ctx, parentID, add, req.Remove); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply batch assignment")
	}
	s.invalidate(ctx, companyID)
	return &models.BatchResult{Affected: len(add) + len(req.Remove)}, nil
}

// ReplaceAll drops the parent's links and recreates the supplied children in
// the caller's order, positions 0..n-1. Children absent from the list are
// unlinked.
func (s *AssignmentService) ReplaceAll(ctx context.Context, companyID, parentID int64, req ReplaceAssignmentsRequest) error {
	if err := s.checkOwned(ctx, s.parents, s.parentKind, companyID, parentID); err != nil {
		return err
	}

	ordered := dedupe(req.ChildIDs)
	if err := s.checkAllOwned(ctx, companyID, ordered); err != nil {
		return err
	}

	if err := s.links.ReplaceAll(ctx, parentID, ordered); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace links")
	}
	s.invalidate(ctx, companyID)
	return nil
}

// GetAssignments returns the ordered assigned children and the unassigned
// complement for one parent. Both lists read the committed state; no snapshot
// isolation spans the two queries.
func (s *AssignmentService) GetAssignments(ctx context.Context, companyID, parentID int64) (*models.AssignmentBoard, error) {
	if err := s.checkOwned(ctx, s.parents, s.parentKind, companyID, parentID); err != nil {
		return nil, err
	}

	key := s.boardKey(companyID, parentID)
	if s.cache != nil {
		var cached models.AssignmentBoard
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.ObserveCacheHit()
			}
			return &cached, nil
		}
		if s.metrics != nil {
			s.metrics.ObserveCacheMiss()
		}
	}

	assigned, err := s.boards.ListAssigned(ctx, companyID, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned items")
	}
	unassigned, err := s.boards.ListUnassigned(ctx, companyID, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list unassigned items")
	}

	board := &models.AssignmentBoard{Assigned: assigned, Unassigned: unassigned}
	if board.Assigned == nil {
		board.Assigned = []models.AssignedItem{}
	}
	if board.Unassigned == nil {
		board.Unassigned = []models.CatalogItem{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, board, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache assignment board", zap.String("key", key), zap.Error(err))
		}
	}
	return board, nil
}

func (s *AssignmentService) checkOwned(ctx context.Context, reader refReader, kind string, companyID, id int64) error {
	ref, err := reader.FindRef(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s %d not found", kind, id))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to load %s", kind))
	}
	if ref.CompanyID != companyID {
		return appErrors.Clone(appErrors.ErrTenantMismatch, fmt.Sprintf("%s %d not found", kind, id))
	}
	return nil
}

func (s *AssignmentService) checkAllOwned(ctx context.Context, companyID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	owned, err := s.children.FilterOwned(ctx, companyID, ids)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to resolve %ss", s.childKind))
	}
	ownedSet := make(map[int64]struct{}, len(owned))
	for _, id := range owned {
		ownedSet[id] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := ownedSet[id]; !ok {
			missing = append(missing, strconv.FormatInt(id, 10))
		}
	}
	if len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrNotFound,
			fmt.Sprintf("unknown %s ids: %s", s.childKind, strings.Join(missing, ", ")))
	}
	return nil
}

func (s *AssignmentService) boardKey(companyID, parentID int64) string {
	return fmt.Sprintf("boards:%d:%s-%s:%d", companyID, s.parentKind, s.childKind, parentID)
}

// invalidate drops every cached board of the school: a link mutation changes
// the boards of both directions at once.
func (s *AssignmentService) invalidate(ctx context.Context, companyID int64) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("boards:%d:*", companyID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("failed to invalidate assignment boards", zap.String("pattern", pattern), zap.Error(err))
	}
}

// dedupe keeps the first occurrence of each id, preserving order.
func dedupe(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
