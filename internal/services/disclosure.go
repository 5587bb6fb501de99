package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/disclosure-backend/internal/data/dberr"
	repos "github.com/yungbote/disclosure-backend/internal/data/repos/disclosures"
	types "github.com/yungbote/disclosure-backend/internal/domain"
	"github.com/yungbote/disclosure-backend/internal/observability"
	"github.com/yungbote/disclosure-backend/internal/platform/ctxutil"
	"github.com/yungbote/disclosure-backend/internal/platform/dbctx"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

type ListFilter = repos.ListFilter

type DisclosureService interface {
	// Create assigns a docket and inserts the disclosure, its inventors and
	// the initial pending history entry in one transaction.
	Create(ctx context.Context, res *types.ExtractionResult, originalFilename string) (*types.Disclosure, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Disclosure, error)
	List(ctx context.Context, filter ListFilter) ([]*types.Disclosure, error)
	// ListWithInventors is List plus inventors, loaded with a single query.
	ListWithInventors(ctx context.Context, filter ListFilter) ([]*types.Disclosure, error)
	Update(ctx context.Context, id uuid.UUID, patch DisclosurePatch) (*types.Disclosure, error)
	// Delete removes the disclosure and its children, then makes a best-effort
	// attempt to remove the stored PDF.
	Delete(ctx context.Context, id uuid.UUID) error
	SetPDFObjectKey(ctx context.Context, id uuid.UUID, key string) error
}

type disclosureService struct {
	db          *gorm.DB
	log         *logger.Logger
	dockets     repos.DocketSequencer
	disclosures repos.DisclosureRepo
	inventors   repos.InventorRepo
	history     repos.StatusHistoryRepo
	attachments AttachmentManager
	now         func() time.Time
}

func NewDisclosureService(
	db *gorm.DB,
	baseLog *logger.Logger,
	dockets repos.DocketSequencer,
	disclosureRepo repos.DisclosureRepo,
	inventorRepo repos.InventorRepo,
	historyRepo repos.StatusHistoryRepo,
	attachments AttachmentManager,
) DisclosureService {
	return &disclosureService{
		db:          db,
		log:         baseLog.With("service", "DisclosureService"),
		dockets:     dockets,
		disclosures: disclosureRepo,
		inventors:   inventorRepo,
		history:     historyRepo,
		attachments: attachments,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type extractionMetadata struct {
	Model     string `json:"model,omitempty"`
	TextChars int    `json:"text_chars"`
	Truncated bool   `json:"truncated"`
}

func (s *disclosureService) Create(ctx context.Context, res *types.ExtractionResult, originalFilename string) (*types.Disclosure, error) {
	if res == nil {
		return nil, fmt.Errorf("%w: extraction result required", types.ErrInvalidInput)
	}
	meta, err := json.Marshal(extractionMetadata{Model: res.Model, TextChars: res.TextChars, Truncated: res.Truncated})
	if err != nil {
		return nil, err
	}

	var out *types.Disclosure
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		docket, err := s.dockets.Next(dbc)
		if err != nil {
			return err
		}

		now := s.now()
		d := &types.Disclosure{
			ID:                 uuid.New(),
			DocketNumber:       docket,
			Title:              res.Title,
			Description:        res.Description,
			KeyDifferences:     res.KeyDifferences,
			Status:             types.StatusPending,
			ExtractionMetadata: datatypes.JSON(meta),
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if originalFilename != "" {
			name := originalFilename
			d.OriginalFilename = &name
		}
		if err := s.disclosures.Create(dbc, d); err != nil {
			return err
		}

		rows := make([]*types.Inventor, 0, len(res.Inventors))
		for i, inv := range res.Inventors {
			rows = append(rows, &types.Inventor{
				DisclosureID: d.ID,
				Name:         inv.Name,
				Email:        inv.Email,
				Position:     i,
				CreatedAt:    now,
			})
		}
		created, err := s.inventors.Create(dbc, rows)
		if err != nil {
			return err
		}

		entry := &types.StatusHistoryEntry{DisclosureID: d.ID, Status: types.StatusPending, ChangedAt: now}
		if err := s.history.Append(dbc, entry); err != nil {
			return err
		}

		d.Inventors = created
		d.StatusHistory = []*types.StatusHistoryEntry{entry}
		out = d
		return nil
	})
	if err != nil {
		s.log.Error("create disclosure failed", append(ctxutil.LogFields(ctx), "error", err)...)
		return nil, fmt.Errorf("create disclosure: %w", err)
	}

	observability.Current().IncDisclosureWrite("create")
	s.log.Info("Disclosure created",
		append(ctxutil.LogFields(ctx),
			"disclosure_id", out.ID,
			"docket_number", out.DocketNumber,
			"inventors", len(out.Inventors),
		)...,
	)
	return out, nil
}

func (s *disclosureService) Get(ctx context.Context, id uuid.UUID) (*types.Disclosure, error) {
	dbc := dbctx.Context{Ctx: ctx}
	d, err := s.disclosures.GetByID(dbc, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	gdbc := dbctx.Context{Ctx: gctx}
	var (
		inventors []*types.Inventor
		history   []*types.StatusHistoryEntry
	)
	g.Go(func() error {
		var err error
		inventors, err = s.inventors.ListByDisclosureID(gdbc, id)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.history.ListByDisclosureID(gdbc, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load disclosure %s: %w", id, err)
	}
	d.Inventors = inventors
	d.StatusHistory = history
	return d, nil
}

func (s *disclosureService) List(ctx context.Context, filter ListFilter) ([]*types.Disclosure, error) {
	return s.disclosures.List(dbctx.Context{Ctx: ctx}, filter)
}

func (s *disclosureService) ListWithInventors(ctx context.Context, filter ListFilter) ([]*types.Disclosure, error) {
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := s.disclosures.List(dbc, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, d := range rows {
		ids = append(ids, d.ID)
	}
	byID, err := s.inventors.ListByDisclosureIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	for _, d := range rows {
		d.Inventors = byID[d.ID]
		if d.Inventors == nil {
			d.Inventors = []*types.Inventor{}
		}
	}
	return rows, nil
}

// patchColumns applies the patch as a fixed ordered list of conditional column
// assignments. It validates everything before returning any column.
func patchColumns(patch DisclosurePatch) (map[string]interface{}, *types.Status, error) {
	cols := map[string]interface{}{}
	text := []struct {
		column string
		field  Optional[string]
	}{
		{"title", patch.Title},
		{"description", patch.Description},
		{"key_differences", patch.KeyDifferences},
	}
	for _, f := range text {
		if !f.field.Set {
			continue
		}
		if f.field.Null {
			return nil, nil, fmt.Errorf("%w: %s cannot be null", types.ErrInvalidInput, f.column)
		}
		cols[f.column] = f.field.Value
	}

	var status *types.Status
	if patch.Status.Set {
		if patch.Status.Null {
			return nil, nil, types.ErrInvalidStatus
		}
		st, ok := types.ParseStatus(patch.Status.Value)
		if !ok {
			return nil, nil, types.ErrInvalidStatus
		}
		status = &st
		cols["status"] = st
	}

	if patch.ReviewNotes.Set {
		if patch.ReviewNotes.Null {
			cols["review_notes"] = nil
		} else {
			cols["review_notes"] = patch.ReviewNotes.Value
		}
	}
	return cols, status, nil
}

func (s *disclosureService) Update(ctx context.Context, id uuid.UUID, patch DisclosurePatch) (*types.Disclosure, error) {
	var out *types.Disclosure
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		current, err := s.disclosures.GetByIDForUpdate(dbc, id)
		if err != nil {
			return mapNotFound(err)
		}
		cols, status, err := patchColumns(patch)
		if err != nil {
			return err
		}
		if len(cols) == 0 {
			return types.ErrNoOp
		}

		now := s.now()
		cols["updated_at"] = now
		if err := s.disclosures.UpdateColumns(dbc, id, cols); err != nil {
			return mapNotFound(err)
		}
		if status != nil && *status != current.Status {
			if err := s.history.Append(dbc, &types.StatusHistoryEntry{
				DisclosureID: id,
				Status:       *status,
				ChangedAt:    now,
			}); err != nil {
				return err
			}
		}

		out, err = s.disclosures.GetByID(dbc, id)
		return mapNotFound(err)
	})
	if err != nil {
		return nil, err
	}
	observability.Current().IncDisclosureWrite("update")
	s.log.Info("Disclosure updated", append(ctxutil.LogFields(ctx), "disclosure_id", id, "status", out.Status)...)
	return out, nil
}

func (s *disclosureService) Delete(ctx context.Context, id uuid.UUID) error {
	var key *string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		d, err := s.disclosures.GetByID(dbc, id)
		if err != nil {
			return mapNotFound(err)
		}
		key = d.PDFObjectKey
		return mapNotFound(s.disclosures.DeleteByID(dbc, id))
	})
	if err != nil {
		return err
	}
	observability.Current().IncDisclosureWrite("delete")
	s.log.Info("Disclosure deleted", append(ctxutil.LogFields(ctx), "disclosure_id", id)...)

	if key != nil && *key != "" && s.attachments != nil {
		s.attachments.Remove(context.WithoutCancel(ctx), *key)
	}
	return nil
}

func (s *disclosureService) SetPDFObjectKey(ctx context.Context, id uuid.UUID, key string) error {
	return mapNotFound(s.disclosures.SetPDFObjectKey(dbctx.Context{Ctx: ctx}, id, key))
}

func mapNotFound(err error) error {
	if err != nil && errors.Is(err, dberr.ErrNotFound) {
		return types.ErrNotFound
	}
	return err
}
