package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"supply-desk/internal/cart"
	"supply-desk/internal/draft"
	"supply-desk/internal/model"
	"supply-desk/internal/repository"
	"supply-desk/internal/upstream"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// draftService implements DraftService.
type draftService struct {
	drafts        *draft.Store
	catalog       CatalogService
	client        upstream.Client
	submissions   repository.SubmissionRepository
	submitTimeout time.Duration
	logger        zerolog.Logger

	userMu sync.Mutex
	user   *model.User
}

// NewDraftService creates a new draft service.
func NewDraftService(
	drafts *draft.Store,
	catalog CatalogService,
	client upstream.Client,
	submissions repository.SubmissionRepository,
	submitTimeout time.Duration,
	logger zerolog.Logger,
) DraftService {
	return &draftService{
		drafts:        drafts,
		catalog:       catalog,
		client:        client,
		submissions:   submissions,
		submitTimeout: submitTimeout,
		logger:        logger.With().Str("service", "draft").Logger(),
	}
}

// Open starts an empty draft for a new order.
func (s *draftService) Open(ctx context.Context, req *model.OpenDraftRequest) (*model.DraftView, error) {
	d := draft.Draft{Cart: cart.New()}
	if req != nil && req.DoctorID > 0 {
		d.DoctorID = req.DoctorID
	}
	d.Rep = s.loadUser(ctx)

	d = s.drafts.Create(d)
	s.logger.Info().
		Str("draft_id", d.ID.String()).
		Int64("doctor_id", d.DoctorID).
		Bool("user_loaded", d.Rep != nil).
		Msg("draft opened")

	return toView(d, -1), nil
}

// OpenFromOrder starts a draft pre-filled from an existing order.
func (s *draftService) OpenFromOrder(ctx context.Context, orderID int64) (*model.DraftView, error) {
	detail, err := s.client.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			return nil, model.ErrOrderNotFound
		}
		s.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to load order for editing")
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	d := draft.FromOrder(detail)
	d.Rep = s.loadUser(ctx)
	d = s.drafts.Create(d)

	s.logger.Info().
		Str("draft_id", d.ID.String()).
		Int64("order_id", orderID).
		Int("line_count", d.Cart.Len()).
		Msg("draft opened from order")

	return toView(d, -1), nil
}

// Get returns the current state of a draft.
func (s *draftService) Get(ctx context.Context, id uuid.UUID) (*model.DraftView, error) {
	d, err := s.drafts.Get(id)
	if err != nil {
		return nil, err
	}
	return toView(d, -1), nil
}

// SetHeader updates doctor, discount and paid amount.
func (s *draftService) SetHeader(ctx context.Context, id uuid.UUID, req *model.DraftHeaderRequest) (*model.DraftView, error) {
	d, err := s.drafts.Update(id, func(d draft.Draft) (draft.Draft, error) {
		if req.DoctorID != nil {
			d.DoctorID = *req.DoctorID
		}
		if req.Discount != nil {
			d.Discount = cart.ParseAmount(string(*req.Discount))
		}
		if req.Paid != nil {
			d.Paid = cart.ParseAmount(string(*req.Paid))
		}
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return toView(d, -1), nil
}

// Scan resolves a barcode or slug and adds the product to the cart. A blank
// code leaves the draft as it is.
func (s *draftService) Scan(ctx context.Context, id uuid.UUID, code string) (*model.DraftView, error) {
	product, err := s.catalog.Resolve(code)
	if err != nil {
		s.logger.Debug().Err(err).Str("draft_id", id.String()).Str("code", code).Msg("scan not resolved")
		return nil, err
	}
	if product == nil {
		return s.Get(ctx, id)
	}
	return s.addToCart(id, *product)
}

// AddProduct adds a product picked by id to the cart.
func (s *draftService) AddProduct(ctx context.Context, id uuid.UUID, productID int64) (*model.DraftView, error) {
	product, err := s.catalog.ByID(productID)
	if err != nil {
		return nil, err
	}
	return s.addToCart(id, *product)
}

func (s *draftService) addToCart(id uuid.UUID, product model.ProductBrief) (*model.DraftView, error) {
	index := -1
	d, err := s.drafts.Update(id, func(d draft.Draft) (draft.Draft, error) {
		d.Cart, index = d.Cart.AddOrMerge(product)
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return toView(d, index), nil
}

// UpdateLine edits one line. All requested changes apply or none do.
func (s *draftService) UpdateLine(ctx context.Context, id uuid.UUID, index int, req *model.LineUpdateRequest) (*model.DraftView, error) {
	d, err := s.drafts.Update(id, func(d draft.Draft) (draft.Draft, error) {
		c := d.Cart
		var err error

		if req.Quantity != nil {
			if c, err = c.SetQuantity(index, *req.Quantity); err != nil {
				return d, err
			}
		}
		if req.UnitPrice != nil {
			if c, err = c.SetUnitPrice(index, cart.ParseAmount(string(*req.UnitPrice))); err != nil {
				return d, err
			}
		}
		if req.LineTotal != nil {
			if c, err = c.SetLineTotal(index, cart.ParseAmount(string(*req.LineTotal))); err != nil {
				return d, err
			}
		}
		if req.Notes != nil {
			if c, err = c.SetNotes(index, *req.Notes); err != nil {
				return d, err
			}
		}
		if _, err = c.Line(index); err != nil {
			return d, err
		}

		d.Cart = c
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return toView(d, index), nil
}

// RemoveLine deletes one line.
func (s *draftService) RemoveLine(ctx context.Context, id uuid.UUID, index int) (*model.DraftView, error) {
	d, err := s.drafts.Update(id, func(d draft.Draft) (draft.Draft, error) {
		next, err := d.Cart.RemoveLine(index)
		if err != nil {
			return d, err
		}
		d.Cart = next
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return toView(d, -1), nil
}

// Submit validates the draft, sends it upstream and discards it on success.
// On any failure the draft is kept unchanged.
func (s *draftService) Submit(ctx context.Context, id uuid.UUID) (*model.SubmitResponse, error) {
	var resp *model.SubmitResponse

	err := s.drafts.Consume(id, func(d draft.Draft) error {
		if err := d.Validate(); err != nil {
			if !errors.Is(err, model.ErrUserNotLoaded) {
				return err
			}
			// The profile may have become available since the draft was opened.
			if d.Rep = s.loadUser(ctx); d.Rep == nil {
				return err
			}
			if err := d.Validate(); err != nil {
				return err
			}
		}

		submitCtx := ctx
		if s.submitTimeout > 0 {
			var cancel context.CancelFunc
			submitCtx, cancel = context.WithTimeout(ctx, s.submitTimeout)
			defer cancel()
		}

		orderID, err := s.send(submitCtx, d)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("draft_id", d.ID.String()).
				Int64("order_id", d.OrderID).
				Msg("order submission failed")
			return toSubmissionError(err)
		}

		if orderID == 0 {
			s.logger.Warn().
				Str("draft_id", d.ID.String()).
				Msg("order accepted upstream without an id")
		}

		resp = &model.SubmitResponse{OrderID: orderID, Updated: !d.IsNew()}
		if sub := s.record(ctx, d, orderID); sub != nil {
			resp.SubmissionID = sub.ID.String()
		}

		s.logger.Info().
			Str("draft_id", d.ID.String()).
			Int64("order_id", orderID).
			Bool("updated", resp.Updated).
			Int("line_count", d.Cart.Len()).
			Msg("order submitted")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// send performs the create or update call and returns the order id.
func (s *draftService) send(ctx context.Context, d draft.Draft) (int64, error) {
	if !d.IsNew() {
		in, err := draft.BuildUpdate(d)
		if err != nil {
			return 0, err
		}
		if err := s.client.UpdateOrder(ctx, d.OrderID, in); err != nil {
			return 0, err
		}
		return d.OrderID, nil
	}

	in, err := draft.BuildCreate(d, s.findDoctor(ctx, d.DoctorID))
	if err != nil {
		return 0, err
	}
	return s.client.CreateOrder(ctx, in)
}

// findDoctor returns the selected doctor, or nil when it cannot be loaded so
// contact details fall back to placeholders.
func (s *draftService) findDoctor(ctx context.Context, doctorID int64) *model.Doctor {
	doctors, err := s.client.ListDoctors(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Int64("doctor_id", doctorID).Msg("failed to load doctors, using placeholder contact")
		return nil
	}
	for i := range doctors {
		if doctors[i].ID == doctorID {
			return &doctors[i]
		}
	}
	return nil
}

// record writes the submission audit entry. Failures are logged and do not
// affect the already accepted upstream order.
func (s *draftService) record(ctx context.Context, d draft.Draft, orderID int64) *model.Submission {
	if s.submissions == nil {
		return nil
	}

	totals := d.Totals()
	sub := &model.Submission{
		ID:                 uuid.New(),
		DraftID:            d.ID,
		OrderID:            orderID,
		Updated:            !d.IsNew(),
		DoctorID:           d.DoctorID,
		Subtotal:           totals.Subtotal,
		Discount:           totals.Discount,
		Paid:               totals.Paid,
		TotalAfterDiscount: totals.TotalAfterDiscount,
		Remaining:          totals.Remaining,
		Status:             totals.Status(),
		CreatedAt:          time.Now(),
	}
	if d.Rep != nil {
		sub.RepName = d.Rep.FullName
	}

	lines := d.Cart.Lines()
	subLines := make([]model.SubmissionLine, len(lines))
	for i, l := range lines {
		lineID := l.ID
		if lineID == 0 {
			lineID = l.ProductID
		}
		subLines[i] = model.SubmissionLine{
			ID:           uuid.New(),
			SubmissionID: sub.ID,
			Position:     i,
			LineID:       lineID,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			Notes:        l.Notes,
		}
	}

	tx, err := s.submissions.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to record submission")
		return nil
	}

	if err = s.submissions.CreateSubmission(ctx, tx, sub); err == nil {
		err = s.submissions.CreateSubmissionLines(ctx, tx, subLines)
	}
	if err == nil {
		err = tx.Commit(ctx)
	}
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		s.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to record submission")
		return nil
	}

	return sub
}

// Discard drops the draft without submitting.
func (s *draftService) Discard(ctx context.Context, id uuid.UUID) error {
	if err := s.drafts.Delete(id); err != nil {
		return err
	}
	s.logger.Info().Str("draft_id", id.String()).Msg("draft discarded")
	return nil
}

// History lists the recorded submissions of an upstream order.
func (s *draftService) History(ctx context.Context, orderID int64) ([]model.Submission, error) {
	if s.submissions == nil {
		return []model.Submission{}, nil
	}
	subs, err := s.submissions.ListByOrder(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to list submissions")
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

func (s *draftService) Submission(ctx context.Context, id uuid.UUID) (*model.SubmissionDetail, error) {
	if s.submissions == nil {
		return nil, model.ErrSubmissionNotFound
	}
	sub, lines, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("submission_id", id.String()).Msg("failed to get submission")
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if sub == nil {
		return nil, model.ErrSubmissionNotFound
	}
	if lines == nil {
		lines = []model.SubmissionLine{}
	}
	return &model.SubmissionDetail{Submission: *sub, Lines: lines}, nil
}

// loadUser returns the acting user's profile, fetching it once and caching it.
// It returns nil while the profile cannot be loaded.
func (s *draftService) loadUser(ctx context.Context) *model.User {
	s.userMu.Lock()
	defer s.userMu.Unlock()

	if s.user != nil {
		u := *s.user
		return &u
	}

	user, err := s.client.GetMe(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load current user")
		return nil
	}
	s.user = user
	u := *user
	return &u
}

// toSubmissionError surfaces the upstream message when there is one.
func toSubmissionError(err error) error {
	var de *model.DomainError
	if errors.As(err, &de) {
		return err
	}
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		return model.NewSubmissionError(apiErr.Message, err)
	}
	return model.NewSubmissionError("", err)
}

func toView(d draft.Draft, lastIndex int) *model.DraftView {
	lines := d.Cart.Lines()
	views := make([]model.DraftLineView, len(lines))
	for i, l := range lines {
		views[i] = model.DraftLineView{
			Index:        i,
			ID:           l.ID,
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			Quantity:     l.Quantity,
			QuantityType: l.QuantityType,
			UnitPrice:    cart.FormatMoney(l.UnitPrice),
			LineTotal:    cart.FormatMoney(l.Total()),
			Notes:        l.Notes,
		}
	}

	totals := d.Totals()
	view := &model.DraftView{
		ID:       d.ID.String(),
		OrderID:  d.OrderID,
		DoctorID: d.DoctorID,
		Lines:    views,
		Totals: model.TotalsView{
			Subtotal:           cart.FormatMoney(totals.Subtotal),
			Discount:           cart.FormatMoney(totals.Discount),
			Paid:               cart.FormatMoney(totals.Paid),
			TotalAfterDiscount: cart.FormatMoney(totals.TotalAfterDiscount),
			Remaining:          cart.FormatMoney(totals.Remaining),
		},
		Status:    totals.Status(),
		UpdatedAt: d.UpdatedAt,
		LastIndex: lastIndex,
	}
	if d.Rep != nil {
		view.RepName = d.Rep.FullName
	}
	return view
}
