package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shipflow/models"
	"shipflow/services/bookingapi"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrDraftFinalized is returned when a settled draft receives further
// wizard edits.
var ErrDraftFinalized = errors.New("draft is finalized; no further edits are supported")

// StartSession completes the service selection step: it creates a draft
// with the Booking Service, assigns a session id, and persists the session
// parked on the package step.
func (s *DefaultWizardService) StartSession(ctx context.Context, serviceType string) (*SessionState, error) {
	st := models.ServiceType(serviceType)
	if !st.Valid() {
		verr := newValidationError()
		verr.add("serviceType", fmt.Sprintf("unknown service type %q", serviceType))
		return nil, verr
	}

	draft, err := s.API.CreateDraft(ctx, st)
	if err != nil {
		return nil, &SyncError{Message: callMessage(err), Err: err}
	}

	state := &SessionState{
		SessionID: uuid.New().String(),
		Draft:     *draft,
		StepIndex: 1, // service step done; park on package
	}
	if err := s.Store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to persist wizard session: %w", err)
	}

	s.mu.Lock()
	s.sessions[state.SessionID] = &liveSession{state: state}
	s.mu.Unlock()

	s.Logger.Info("wizard session started",
		zap.String("sessionID", state.SessionID),
		zap.String("draftID", draft.ID),
		zap.String("serviceType", serviceType))
	return detach(state), nil
}

// Resume returns the session's working state: the live copy when one
// exists, otherwise the persisted (draft, step index) pair.
func (s *DefaultWizardService) Resume(ctx context.Context, sessionID string) (*SessionState, error) {
	ls, release, err := s.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()
	return detach(ls.state), nil
}

// Advance validates the current step's local input, merges it into the
// draft, syncs the merged draft to the Booking Service, and only on a
// successful acknowledgment moves the step pointer and persists the pair.
// A failed sync leaves the pointer and persisted state untouched; the local
// merge stays in the live session so a retry needs no re-entry.
func (s *DefaultWizardService) Advance(ctx context.Context, sessionID string, input StepInput) (*SessionState, error) {
	ls, release, err := s.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	state := ls.state
	if state.Draft.Finalized() {
		return nil, ErrDraftFinalized
	}

	switch step := state.CurrentStep(); step {
	case StepPackage:
		if err := s.advancePackage(ctx, state, input.Package); err != nil {
			return nil, err
		}
	case StepDimensions:
		if err := s.advanceDimensions(ctx, state, input.Dimensions); err != nil {
			return nil, err
		}
	case StepPhotos:
		if err := s.advancePhotos(ctx, state, input.Photos); err != nil {
			return nil, err
		}
	case StepDelivery:
		if err := s.advanceDelivery(ctx, state, input.Delivery); err != nil {
			return nil, err
		}
	case StepPayment:
		return nil, fmt.Errorf("payment step completes via settlement, not advance")
	default:
		return nil, fmt.Errorf("cannot advance from step %q", step)
	}

	state.StepIndex++
	if err := s.Store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to persist wizard session: %w", err)
	}
	return detach(state), nil
}

func (s *DefaultWizardService) advancePackage(ctx context.Context, state *SessionState, in *PackageInput) error {
	if err := validatePackage(in); err != nil {
		return err
	}

	state.Draft.PackageType = models.PackageType(in.PackageType)
	state.Draft.Description = in.Description
	state.Draft.Fragile = in.Fragile

	draft, err := s.API.UpdatePackageDetails(ctx, state.Draft.ID, bookingapi.PackagePayload{
		PackageType: state.Draft.PackageType,
		Description: state.Draft.Description,
		Fragile:     state.Draft.Fragile,
	})
	if err != nil {
		return &SyncError{Message: callMessage(err), Err: err}
	}
	state.Draft = *draft
	return nil
}

func (s *DefaultWizardService) advanceDimensions(ctx context.Context, state *SessionState, in *DimensionsInput) error {
	if err := validateDimensions(in, &state.Draft); err != nil {
		return err
	}

	if len(in.GuideItems) > 0 {
		items := make([]models.GuideItem, 0, len(in.GuideItems))
		for _, g := range in.GuideItems {
			items = append(items, models.GuideItem{
				GuideID:     g.GuideID,
				Name:        g.Name,
				GuideNumber: g.GuideNumber,
				UnitPrice:   g.UnitPrice,
				Quantity:    g.Quantity,
			})
		}
		state.Draft.GuideItems = items
		state.Draft.Weight = 0
		state.Draft.DimensionSets = nil
	} else {
		sets := make([]models.DimensionSet, 0, len(in.DimensionSets))
		for _, d := range in.DimensionSets {
			sets = append(sets, models.DimensionSet(d))
		}
		state.Draft.Weight = in.Weight
		state.Draft.DimensionSets = sets
		state.Draft.GuideItems = nil
	}

	draft, err := s.API.UpdateDimensionsOrGuides(ctx, state.Draft.ID, bookingapi.DimensionsPayload{
		Weight:      state.Draft.Weight,
		Dimensions:  state.Draft.DimensionSets,
		PriceGuides: state.Draft.GuideItems,
	})
	if err != nil {
		return &SyncError{Message: callMessage(err), Err: err}
	}
	state.Draft = *draft
	return nil
}

func (s *DefaultWizardService) advancePhotos(ctx context.Context, state *SessionState, in *PhotosInput) error {
	if err := validatePhotos(in); err != nil {
		return err
	}

	state.Draft.PhotoRefs = in.PhotoRefs
	draft, err := s.API.UpdatePhotos(ctx, state.Draft.ID, in.PhotoRefs)
	if err != nil {
		return &SyncError{Message: callMessage(err), Err: err}
	}
	state.Draft = *draft
	return nil
}

func (s *DefaultWizardService) advanceDelivery(ctx context.Context, state *SessionState, in *DeliveryInput) error {
	if err := validateDelivery(in); err != nil {
		return err
	}

	// An unpriceable draft must not reach the payment step.
	if _, err := PriceDraft(&state.Draft, s.Rates); err != nil {
		return err
	}

	state.Draft.PickupAddress = toAddress(in.PickupAddress)
	state.Draft.DeliveryAddr = toAddress(in.DeliveryAddress)
	state.Draft.DeliveryMode = models.DeliveryMode(in.DeliveryMode)
	state.Draft.Receiver = &models.Receiver{
		Name:        in.Receiver.Name,
		Phone:       in.Receiver.Phone,
		Email:       in.Receiver.Email,
		CountryCode: in.Receiver.CountryCode,
	}

	draft, err := s.API.UpdateDeliveryAddress(ctx, state.Draft.ID, bookingapi.DeliveryPayload{
		PickupAddress:   state.Draft.PickupAddress,
		DeliveryAddress: state.Draft.DeliveryAddr,
		DeliveryMode:    state.Draft.DeliveryMode,
		Receiver:        state.Draft.Receiver,
	})
	if err != nil {
		return &SyncError{Message: callMessage(err), Err: err}
	}
	state.Draft = *draft
	return nil
}

// Retreat moves the pointer back one step without contacting the Booking
// Service. The earliest reachable step is package: the service type is
// fixed when the draft is created.
func (s *DefaultWizardService) Retreat(ctx context.Context, sessionID string) (*SessionState, error) {
	ls, release, err := s.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	state := ls.state
	if state.Draft.Finalized() {
		return nil, ErrDraftFinalized
	}
	if state.StepIndex > 1 {
		state.StepIndex--
		if err := s.Store.Save(ctx, state); err != nil {
			return nil, fmt.Errorf("failed to persist wizard session: %w", err)
		}
	}
	return detach(state), nil
}

// Quote prices the session's draft. Pricing is pure; repeated calls on an
// unchanged draft yield an identical breakdown.
func (s *DefaultWizardService) Quote(ctx context.Context, sessionID string) (*models.Quote, error) {
	ls, release, err := s.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	quote, err := PriceDraft(&ls.state.Draft, s.Rates)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Abandon discards the session: unsynced local mutation is dropped and the
// persisted state is cleared. Anything already acknowledged by the Booking
// Service remains server-side.
func (s *DefaultWizardService) Abandon(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return s.Store.Clear(ctx, sessionID)
}

// acquire returns the live session, loading it from the store on first
// touch, with its lock held. A held lock means a call is outstanding.
func (s *DefaultWizardService) acquire(ctx context.Context, sessionID string) (*liveSession, func(), error) {
	s.mu.Lock()
	ls, ok := s.sessions[sessionID]
	if !ok {
		state, err := s.Store.Load(ctx, sessionID)
		if err != nil {
			s.mu.Unlock()
			return nil, nil, err
		}
		ls = &liveSession{state: state}
		s.sessions[sessionID] = ls
	}
	s.mu.Unlock()

	if !ls.mu.TryLock() {
		return nil, nil, ErrSubmissionInFlight
	}
	return ls, ls.mu.Unlock, nil
}

// dropLive removes a live session without touching persisted state; used
// after settlement completes.
func (s *DefaultWizardService) dropLive(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// detach returns a value copy of the session state. The live state must
// never escape the session lock: a later call mutates it in place while the
// earlier caller may still be reading its return value.
func detach(state *SessionState) *SessionState {
	cp := *state
	return &cp
}

func toAddress(in *AddressIn) *models.Address {
	if in == nil {
		return nil
	}
	return &models.Address{
		Street:   in.Street,
		City:     in.City,
		State:    in.State,
		Country:  in.Country,
		Postcode: in.Postcode,
		Lat:      in.Lat,
		Lon:      in.Lon,
		PlaceID:  in.PlaceID,
		Type:     models.AddressType(in.Type),
	}
}

// callMessage extracts the Booking Service's own message when one was
// returned, for verbatim surfacing.
func callMessage(err error) string {
	var ce *bookingapi.CallError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return ""
}

// SessionTTL is how long an idle wizard session stays resumable.
const SessionTTL = 24 * time.Hour
