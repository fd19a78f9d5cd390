package service

import (
	"context"
	"sync"

	"github.com/catalogomaker/backend/internal/config"
	"github.com/catalogomaker/backend/internal/model"
	"github.com/catalogomaker/backend/internal/repository"
)

type memAccounts struct {
	mu        sync.Mutex
	accounts  map[string]model.Account
	deleteErr error
	writeErr  error
}

func newMemAccounts(accs ...model.Account) *memAccounts {
	m := &memAccounts{accounts: map[string]model.Account{}}
	for _, a := range accs {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *memAccounts) get(id string) model.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[id]
}

func (m *memAccounts) CreateOrGet(_ context.Context, a *model.Account) (*model.Account, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.accounts[a.ID]; ok {
		return &existing, false, nil
	}
	m.accounts[a.ID] = *a
	created := *a
	return &created, true, nil
}

func (m *memAccounts) GetByID(_ context.Context, id string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *memAccounts) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	_, ok := m.accounts[id]
	delete(m.accounts, id)
	return ok, nil
}

func (m *memAccounts) GrantPremium(_ context.Context, id, subscriptionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return false, m.writeErr
	}
	a, ok := m.accounts[id]
	if !ok {
		return false, repository.ErrAccountNotFound
	}
	if a.Premium && a.LastSubscriptionID != nil && *a.LastSubscriptionID == subscriptionID {
		return false, nil
	}
	a.Premium = true
	a.LastSubscriptionID = &subscriptionID
	m.accounts[id] = a
	return true, nil
}

func (m *memAccounts) RevokePremiumBySubscription(_ context.Context, subscriptionID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	var ids []string
	for id, a := range m.accounts {
		if a.Premium && a.LastSubscriptionID != nil && *a.LastSubscriptionID == subscriptionID {
			a.Premium = false
			m.accounts[id] = a
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type recordedEvents struct {
	mu     sync.Mutex
	events []model.AccountEvent
	err    error
}

func (r *recordedEvents) PublishAccountEvent(_ context.Context, ev model.AccountEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordedEvents) types() []model.AccountEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.AccountEventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fakeGateway struct {
	mu        sync.Mutex
	canceled  []string
	cancelErr error
	links     map[string]string
}

func (g *fakeGateway) CreateOrReusePaymentLink(_ context.Context, accountID string, tier config.PlanTier) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.links == nil {
		g.links = map[string]string{}
	}
	key := accountID + "/" + tier.String()
	if url, ok := g.links[key]; ok {
		return url, true, nil
	}
	url := "https://buy.example.com/" + key
	g.links[key] = url
	return url, false, nil
}

func (g *fakeGateway) CancelSubscription(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancelErr != nil {
		return g.cancelErr
	}
	g.canceled = append(g.canceled, id)
	return nil
}

func (g *fakeGateway) VerifyWebhook([]byte, string) (model.BillingEvent, error) {
	return nil, ErrInvalidSignature
}

func strPtr(s string) *string { return &s }
