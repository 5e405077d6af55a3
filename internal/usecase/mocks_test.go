package usecase

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"marketplace-entitlements/internal/domain"
	"marketplace-entitlements/internal/domain/model"
	"marketplace-entitlements/internal/domain/ports/adapter"
	"marketplace-entitlements/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func testConsumerCatalog(t interface{ Fatalf(string, ...any) }) *model.Catalog {
	ids := map[string]string{
		"consumer_starter_monthly": "price_cs_m",
		"consumer_starter_annual":  "price_cs_y",
		"consumer_plus_monthly":    "price_cp_m",
		"consumer_plus_annual":     "price_cp_y",
		"consumer_vip_monthly":     "price_cv_m",
		"consumer_vip_annual":      "price_cv_y",
	}
	cat, err := model.NewCatalog(model.PlanFamilyConsumer, model.ConsumerPlanSpecs(), ids)
	if err != nil {
		t.Fatalf("consumer catalog: %v", err)
	}
	return cat
}

func testVendorCatalog(t interface{ Fatalf(string, ...any) }) *model.Catalog {
	ids := map[string]string{
		"vendor_starter_monthly":    "price_vs_m",
		"vendor_starter_annual":     "price_vs_y",
		"vendor_pro_monthly":        "price_vp_m",
		"vendor_pro_annual":         "price_vp_y",
		"vendor_enterprise_monthly": "price_ve_m",
		"vendor_enterprise_annual":  "price_ve_y",
	}
	cat, err := model.NewCatalog(model.PlanFamilyVendor, model.VendorPlanSpecs(), ids)
	if err != nil {
		t.Fatalf("vendor catalog: %v", err)
	}
	return cat
}

// memSubscriptionRepo is a small in-memory implementation used by unit tests.
// findErr simulates an infrastructure failure on every lookup.
type memSubscriptionRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Subscription
	findErr error
	calls   int
}

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{store: make(map[string]*model.Subscription)}
}

func (m *memSubscriptionRepo) FindByUser(ctx context.Context, _ repository.Tx, userID string) (*model.Subscription, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubscriptionRepo) Save(ctx context.Context, _ repository.Tx, sub *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.store[sub.UserID] = &cp
	return nil
}

func (m *memSubscriptionRepo) CountByStatus(ctx context.Context, _ repository.Tx) (map[model.SubscriptionStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.SubscriptionStatus]int)
	for _, s := range m.store {
		out[s.Status]++
	}
	return out, nil
}

type memVendorRepo struct {
	mu      sync.RWMutex
	byOwner map[string]*model.Vendor
	findErr error
	calls   int
}

func newMemVendorRepo() *memVendorRepo {
	return &memVendorRepo{byOwner: make(map[string]*model.Vendor)}
}

func (m *memVendorRepo) FindByOwner(ctx context.Context, _ repository.Tx, ownerID string) (*model.Vendor, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.byOwner[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *memVendorRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Vendor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.byOwner {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memVendorRepo) Save(ctx context.Context, _ repository.Tx, v *model.Vendor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	m.byOwner[v.OwnerID] = &cp
	return nil
}

type memProfileRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Profile
	findErr error
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{store: make(map[string]*model.Profile)}
}

func (m *memProfileRepo) FindByUser(ctx context.Context, _ repository.Tx, userID string) (*model.Profile, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProfileRepo) Save(ctx context.Context, _ repository.Tx, p *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.UserID] = &cp
	return nil
}

type memVerificationRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.VerificationRecord // by record ID
	findErr error
	saveErr error
}

func newMemVerificationRepo() *memVerificationRepo {
	return &memVerificationRepo{store: make(map[string]*model.VerificationRecord)}
}

func (m *memVerificationRepo) Save(ctx context.Context, _ repository.Tx, rec *model.VerificationRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.store[rec.ID] = &cp
	return nil
}

func (m *memVerificationRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.VerificationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memVerificationRepo) FindLatestByUser(ctx context.Context, _ repository.Tx, userID string) (*model.VerificationRecord, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.VerificationRecord
	for _, r := range m.store {
		if r.UserID != userID {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *memVerificationRepo) ListByStatus(ctx context.Context, _ repository.Tx, status model.VerificationStatus, limit int) ([]*model.VerificationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.VerificationRecord
	for _, r := range m.store {
		if r.Status != status {
			continue
		}
		cp := *r
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memVerificationRepo) CountByStatus(ctx context.Context, _ repository.Tx) (map[model.VerificationStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.VerificationStatus]int)
	for _, r := range m.store {
		out[r.Status]++
	}
	return out, nil
}

// memLedgerRepo mimics the transactional balance arithmetic of the real
// store: BalanceAfter is computed on append and over-redemption is rejected.
type memLedgerRepo struct {
	mu        sync.Mutex
	entries   map[string][]*model.LedgerEntry // by user, append order
	appendErr error
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{entries: make(map[string][]*model.LedgerEntry)}
}

func (m *memLedgerRepo) Append(ctx context.Context, _ repository.Tx, entry *model.LedgerEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var balance int64
	if prev := m.entries[entry.UserID]; len(prev) > 0 {
		balance = prev[len(prev)-1].BalanceAfter
	}
	newBalance := balance + entry.Points
	if newBalance < 0 {
		return domain.ErrInsufficientPoints
	}
	cp := *entry
	cp.BalanceAfter = newBalance
	entry.BalanceAfter = newBalance
	m.entries[entry.UserID] = append(m.entries[entry.UserID], &cp)
	return nil
}

func (m *memLedgerRepo) Balance(ctx context.Context, _ repository.Tx, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.entries[userID]
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[len(rows)-1].BalanceAfter, nil
}

func (m *memLedgerRepo) History(ctx context.Context, _ repository.Tx, userID string, limit int) ([]*model.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.entries[userID]
	out := make([]*model.LedgerEntry, 0, limit)
	for i := len(rows) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *rows[i]
		out = append(out, &cp)
	}
	return out, nil
}

type memReferralRepo struct {
	mu         sync.Mutex
	codes      map[string]string // userID -> code
	collisions int               // fail the next N Ensure calls as taken codes
	ensures    int
}

func newMemReferralRepo() *memReferralRepo {
	return &memReferralRepo{codes: make(map[string]string)}
}

func (m *memReferralRepo) Ensure(ctx context.Context, _ repository.Tx, userID, candidate string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensures++
	if m.collisions > 0 {
		m.collisions--
		return "", domain.ErrAlreadyExists
	}
	if code, ok := m.codes[userID]; ok {
		return code, nil
	}
	m.codes[userID] = candidate
	return candidate, nil
}

func (m *memReferralRepo) FindOwner(ctx context.Context, _ repository.Tx, code string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for user, c := range m.codes {
		if c == code {
			return user, nil
		}
	}
	return "", domain.ErrNotFound
}

// memTxManager runs the callback immediately. beginErr simulates a failure to
// open the transaction; withTxFunc overrides the whole call when set.
type memTxManager struct {
	calls      int
	beginErr   error
	withTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*memTxManager)(nil)

func newMemTxManager() *memTxManager {
	return &memTxManager{}
}

func (m *memTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.calls++
	if m.withTxFunc != nil {
		return m.withTxFunc(ctx, txOpt, fn)
	}
	if m.beginErr != nil {
		return m.beginErr
	}
	return fn(ctx, nil)
}

// mockCheckoutGateway records the last params and returns a canned session.
type mockCheckoutGateway struct {
	lastParams adapter.CheckoutParams
	session    *adapter.CheckoutSession
	err        error
}

func (m *mockCheckoutGateway) CreateCheckoutSession(ctx context.Context, params adapter.CheckoutParams) (*adapter.CheckoutSession, error) {
	m.lastParams = params
	if m.err != nil {
		return nil, m.err
	}
	if m.session != nil {
		return m.session, nil
	}
	return &adapter.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.example.com/cs_test_1"}, nil
}
