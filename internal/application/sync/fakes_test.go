package sync_test

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appsync "github.com/smartup/onec-supply-sync/internal/application/sync"
	"github.com/smartup/onec-supply-sync/internal/domain/entity"
	"github.com/smartup/onec-supply-sync/internal/domain/repository"
	"github.com/smartup/onec-supply-sync/internal/infrastructure/supply"
)

// memNomRepo is an in-memory NomenclatureRepository with the same replace
// and xmax-created semantics as the postgres implementation.
type memNomRepo struct {
	byID     map[string]*entity.Nomenclature
	byExt    map[string]string // external_id -> id
	products map[string][]*entity.Product

	clock time.Time // advanced on every insert so created_at ordering is stable
}

func newMemNomRepo() *memNomRepo {
	return &memNomRepo{
		byID:     map[string]*entity.Nomenclature{},
		byExt:    map[string]string{},
		products: map[string][]*entity.Product{},
		clock:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

var _ repository.NomenclatureRepository = (*memNomRepo)(nil)

func (r *memNomRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *memNomRepo) Upsert(_ context.Context, n *entity.Nomenclature) (*entity.Nomenclature, bool, error) {
	if id, ok := r.byExt[n.ExternalID]; ok {
		stored := r.byID[id]
		stored.ClientID = n.ClientID
		stored.ClientName = n.ClientName
		stored.CustomerTIN = n.CustomerTIN
		stored.Contract = n.Contract
		stored.Date = n.Date
		return stored, false, nil
	}
	stored := *n
	stored.CreatedAt = r.tick()
	r.byID[stored.ID] = &stored
	r.byExt[stored.ExternalID] = stored.ID
	return &stored, true, nil
}

func (r *memNomRepo) GetByExternalID(_ context.Context, externalID string) (*entity.Nomenclature, error) {
	id, ok := r.byExt[externalID]
	if !ok {
		return nil, nil
	}
	return r.byID[id], nil
}

func (r *memNomRepo) DeleteProducts(_ context.Context, nomenclatureID string) error {
	delete(r.products, nomenclatureID)
	return nil
}

func (r *memNomRepo) BulkInsertProducts(_ context.Context, products []*entity.Product) error {
	for _, p := range products {
		r.products[p.NomenclatureID] = append(r.products[p.NomenclatureID], p)
	}
	return nil
}

func (r *memNomRepo) GetProducts(_ context.Context, nomenclatureID string) ([]*entity.Product, error) {
	return r.products[nomenclatureID], nil
}

func (r *memNomRepo) UpdateSendStatus(_ context.Context, nomenclatureID string, sentOn time.Time, response string, ok bool) error {
	n, found := r.byID[nomenclatureID]
	if !found {
		return errors.New("nomenclature not found")
	}
	n.SentOn = &sentOn
	n.Response = response
	n.SentSuccessfully = ok
	return nil
}

func (r *memNomRepo) ListUnsent(_ context.Context, limit int) ([]*entity.Nomenclature, error) {
	var out []*entity.Nomenclature
	for _, n := range r.byID {
		if !n.SentSuccessfully {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memNomRepo) List(_ context.Context, sent *bool, limit, offset int) ([]*entity.Nomenclature, error) {
	var out []*entity.Nomenclature
	for _, n := range r.byID {
		if sent != nil && n.SentSuccessfully != *sent {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memAgentRepo is an in-memory ContrAgentRepository keyed by TIN.
type memAgentRepo struct {
	byTIN    map[string]*entity.ContrAgent
	balances map[string]*entity.ContrAgentBalance // by agent id
}

func newMemAgentRepo() *memAgentRepo {
	return &memAgentRepo{
		byTIN:    map[string]*entity.ContrAgent{},
		balances: map[string]*entity.ContrAgentBalance{},
	}
}

var _ repository.ContrAgentRepository = (*memAgentRepo)(nil)

func (r *memAgentRepo) UpsertByTIN(_ context.Context, name, tin string) (*entity.ContrAgent, bool, error) {
	if agent, ok := r.byTIN[tin]; ok {
		agent.Name = name
		agent.UpdatedAt = time.Now()
		return agent, false, nil
	}
	agent := &entity.ContrAgent{
		ID:        uuid.New().String(),
		Name:      name,
		TIN:       tin,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	r.byTIN[tin] = agent
	return agent, true, nil
}

func (r *memAgentRepo) GetByTIN(_ context.Context, tin string) (*entity.ContrAgent, error) {
	return r.byTIN[tin], nil
}

func (r *memAgentRepo) UpsertBalance(_ context.Context, agentID string, prepayment, debt decimal.Decimal, syncAt time.Time) error {
	r.balances[agentID] = &entity.ContrAgentBalance{
		ID:           uuid.New().String(),
		ContrAgentID: agentID,
		Prepayment:   prepayment,
		Debt:         debt,
		UpdatedAt:    time.Now(),
		LastSyncAt:   &syncAt,
	}
	return nil
}

func (r *memAgentRepo) GetBalance(_ context.Context, agentID string) (*entity.ContrAgentBalance, error) {
	return r.balances[agentID], nil
}

// memTx executes the callback against the shared fakes, without transactions.
type memTx struct {
	nom   *memNomRepo
	agent *memAgentRepo
}

var _ appsync.TxRunner = (*memTx)(nil)

func (t *memTx) RunSync(ctx context.Context, fn func(repository.NomenclatureRepository, repository.ContrAgentRepository) error) error {
	return fn(t.nom, t.agent)
}

// fakeSender records payloads and answers per order number.
type fakeSender struct {
	sent    []supply.OrderPayload
	failFor map[string]bool // order numbers that must fail
}

var _ appsync.OrderSender = (*fakeSender)(nil)

func (s *fakeSender) Send(_ context.Context, payload supply.OrderPayload, maxRetries int) (bool, supply.Outcome) {
	s.sent = append(s.sent, payload)
	if s.failFor[payload.OrderNumber] {
		return false, supply.Outcome{
			StatusCode: 500,
			Error:      "supply api error: status 500",
			Attempts:   maxRetries,
			Class:      supply.ClassAPI,
		}
	}
	return true, supply.Outcome{
		Success:    true,
		StatusCode: 200,
		Body:       `{"id":"ord-1"}`,
		Attempts:   1,
	}
}
