package workflow

import (
	"context"
	"sync"

	"shipflow/models"
	"shipflow/services/bookingapi"

	"go.uber.org/zap"
)

// WizardService drives a resumable shipment booking wizard: a fixed step
// sequence over a mutable draft, priced by the freight pricing engine and
// finalized by the settlement orchestrator.
type WizardService interface {
	StartSession(ctx context.Context, serviceType string) (*SessionState, error)
	Resume(ctx context.Context, sessionID string) (*SessionState, error)
	Advance(ctx context.Context, sessionID string, input StepInput) (*SessionState, error)
	Retreat(ctx context.Context, sessionID string) (*SessionState, error)
	Quote(ctx context.Context, sessionID string) (*models.Quote, error)
	Settle(ctx context.Context, sessionID string, req models.SettlementRequest) (*models.SettlementResult, error)
	Abandon(ctx context.Context, sessionID string) error
}

// DefaultWizardService implements WizardService.
type DefaultWizardService struct {
	API    bookingapi.Client
	Store  SessionStore
	Wallet WalletProvider
	Rates  RateCard
	Logger *zap.Logger

	// Live sessions hold the working copy of each draft between calls so a
	// failed sync keeps its local mutation for retry. The per-session lock
	// doubles as the double-submit guard.
	mu       sync.Mutex
	sessions map[string]*liveSession
}

type liveSession struct {
	mu    sync.Mutex
	state *SessionState
}

func NewDefaultWizardService(api bookingapi.Client, store SessionStore, wallet WalletProvider, rates RateCard, logger *zap.Logger) *DefaultWizardService {
	return &DefaultWizardService{
		API:      api,
		Store:    store,
		Wallet:   wallet,
		Rates:    rates,
		Logger:   logger,
		sessions: make(map[string]*liveSession),
	}
}
