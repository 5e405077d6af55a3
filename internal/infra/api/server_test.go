package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"marketplace-entitlements/internal/config"
	"marketplace-entitlements/internal/domain"
	"marketplace-entitlements/internal/domain/model"
	"marketplace-entitlements/internal/domain/ports/adapter"
	"marketplace-entitlements/internal/domain/ports/repository"
	"marketplace-entitlements/internal/infra/api"
	red "marketplace-entitlements/internal/infra/redis"
	"marketplace-entitlements/internal/usecase"
)

//
// ---------------- in-memory infra mocks ----------------
//

type memSubRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Subscription
}

func newMemSubRepo() *memSubRepo { return &memSubRepo{store: map[string]*model.Subscription{}} }

func (m *memSubRepo) FindByUser(ctx context.Context, _ repository.Tx, userID string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubRepo) Save(ctx context.Context, _ repository.Tx, sub *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.store[sub.UserID] = &cp
	return nil
}

func (m *memSubRepo) CountByStatus(ctx context.Context, _ repository.Tx) (map[model.SubscriptionStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[model.SubscriptionStatus]int{}
	for _, s := range m.store {
		out[s.Status]++
	}
	return out, nil
}

type memVendRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Vendor // by owner
}

func newMemVendRepo() *memVendRepo { return &memVendRepo{store: map[string]*model.Vendor{}} }

func (m *memVendRepo) FindByOwner(ctx context.Context, _ repository.Tx, ownerID string) (*model.Vendor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.store[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *memVendRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Vendor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.store {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memVendRepo) Save(ctx context.Context, _ repository.Tx, v *model.Vendor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	m.store[v.OwnerID] = &cp
	return nil
}

type memProfRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Profile
}

func newMemProfRepo() *memProfRepo { return &memProfRepo{store: map[string]*model.Profile{}} }

func (m *memProfRepo) FindByUser(ctx context.Context, _ repository.Tx, userID string) (*model.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProfRepo) Save(ctx context.Context, _ repository.Tx, p *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.UserID] = &cp
	return nil
}

type memVerifRepo struct {
	mu    sync.RWMutex
	store map[string]*model.VerificationRecord
}

func newMemVerifRepo() *memVerifRepo {
	return &memVerifRepo{store: map[string]*model.VerificationRecord{}}
}

func (m *memVerifRepo) Save(ctx context.Context, _ repository.Tx, rec *model.VerificationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.store[rec.ID] = &cp
	return nil
}

func (m *memVerifRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.VerificationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memVerifRepo) FindLatestByUser(ctx context.Context, _ repository.Tx, userID string) (*model.VerificationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.VerificationRecord
	for _, r := range m.store {
		if r.UserID == userID && (latest == nil || r.CreatedAt.After(latest.CreatedAt)) {
			latest = r
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *memVerifRepo) ListByStatus(ctx context.Context, _ repository.Tx, status model.VerificationStatus, limit int) ([]*model.VerificationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.VerificationRecord
	for _, r := range m.store {
		if r.Status == status && len(out) < limit {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memVerifRepo) CountByStatus(ctx context.Context, _ repository.Tx) (map[model.VerificationStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[model.VerificationStatus]int{}
	for _, r := range m.store {
		out[r.Status]++
	}
	return out, nil
}

type memLedger struct {
	mu      sync.Mutex
	entries map[string][]*model.LedgerEntry
}

func newMemLedger() *memLedger { return &memLedger{entries: map[string][]*model.LedgerEntry{}} }

func (m *memLedger) Append(ctx context.Context, _ repository.Tx, entry *model.LedgerEntry) error {
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
	entry.BalanceAfter = newBalance
	cp := *entry
	m.entries[entry.UserID] = append(m.entries[entry.UserID], &cp)
	return nil
}

func (m *memLedger) Balance(ctx context.Context, _ repository.Tx, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.entries[userID]
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[len(rows)-1].BalanceAfter, nil
}

func (m *memLedger) History(ctx context.Context, _ repository.Tx, userID string, limit int) ([]*model.LedgerEntry, error) {
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

type memReferrals struct {
	mu    sync.Mutex
	codes map[string]string
}

func newMemReferrals() *memReferrals { return &memReferrals{codes: map[string]string{}} }

func (m *memReferrals) Ensure(ctx context.Context, _ repository.Tx, userID, candidate string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if code, ok := m.codes[userID]; ok {
		return code, nil
	}
	m.codes[userID] = candidate
	return candidate, nil
}

func (m *memReferrals) FindOwner(ctx context.Context, _ repository.Tx, code string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for user, c := range m.codes {
		if c == code {
			return user, nil
		}
	}
	return "", domain.ErrNotFound
}

type fakeGateway struct{}

func (fakeGateway) CreateCheckoutSession(ctx context.Context, p adapter.CheckoutParams) (*adapter.CheckoutSession, error) {
	return &adapter.CheckoutSession{
		ID:        "cs_test_42",
		URL:       "https://checkout.example.com/cs_test_42",
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}, nil
}

// passthroughTxManager runs the callback without a real transaction.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// fakeRedis backs the fixed-window rate limiter with local counters.
type fakeRedis struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newFakeRedis() *fakeRedis { return &fakeRedis{counters: map[string]int64{}} }

func (f *fakeRedis) Ping(ctx context.Context) error { return nil }
func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	return nil
}
func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) { return "", red.Nil }
func (f *fakeRedis) Incr(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters[key]++
	return f.counters[key], nil
}
func (f *fakeRedis) Expire(ctx context.Context, key string, _ time.Duration) error { return nil }
func (f *fakeRedis) Del(ctx context.Context, keys ...string) error                 { return nil }
func (f *fakeRedis) Close() error                                                  { return nil }

//
// ---------------- fixture ----------------
//

type fixture struct {
	srv           *httptest.Server
	subs          *memSubRepo
	vendors       *memVendRepo
	profiles      *memProfRepo
	verifications *memVerifRepo
	ledger        *memLedger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		subs:          newMemSubRepo(),
		vendors:       newMemVendRepo(),
		profiles:      newMemProfRepo(),
		verifications: newMemVerifRepo(),
		ledger:        newMemLedger(),
	}

	logger := zerolog.Nop()
	allowlist := config.AdminAllowlist{Emails: []string{"root@example.com"}}

	consumerCat, err := model.NewCatalog(model.PlanFamilyConsumer, model.ConsumerPlanSpecs(), map[string]string{
		"consumer_starter_monthly": "price_cs_m",
		"consumer_plus_monthly":    "price_cp_m",
		"consumer_vip_annual":      "price_cv_y",
	})
	if err != nil {
		t.Fatalf("consumer catalog: %v", err)
	}
	vendorCat, err := model.NewCatalog(model.PlanFamilyVendor, model.VendorPlanSpecs(), map[string]string{
		"vendor_starter_monthly": "price_vs_m",
		"vendor_pro_monthly":     "price_vp_m",
	})
	if err != nil {
		t.Fatalf("vendor catalog: %v", err)
	}

	access := usecase.NewAccessUseCase(allowlist, f.subs, nil, f.vendors, nil, &logger)
	gates := usecase.NewGateUseCase(access, f.profiles, f.vendors, f.verifications, &logger)
	loyalty := usecase.NewLoyaltyUseCase(f.ledger, newMemReferrals(), access, consumerCat, &logger)
	checkout := usecase.NewCheckoutUseCase(consumerCat, vendorCat, fakeGateway{}, "https://app.example.com", &logger)
	verifications := usecase.NewVerificationUseCase(f.verifications, passthroughTxManager{}, &logger)

	limiter := red.NewRateLimiter(newFakeRedis())
	srv := api.NewServer(access, gates, loyalty, checkout, verifications, consumerCat, vendorCat, limiter, 5*time.Second, &logger)

	f.srv = httptest.NewServer(srv.Routes())
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path, userID, email string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, f.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if email != "" {
		req.Header.Set("X-User-Email", email)
	}
	resp, err := f.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

//
// ---------------- tests ----------------
//

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodGet, "/health", "", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health = %d, want 200", resp.StatusCode)
	}
}

func TestConsumerAccessEndpoint(t *testing.T) {
	f := newFixture(t)

	// Anonymous caller gets the empty verdict, not an error.
	resp := f.do(t, http.MethodGet, "/api/v1/access/consumer", "", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decodeJSON[model.ConsumerAccess](t, resp)
	if got.IsSubscribed || got.IsAdmin {
		t.Fatalf("expected empty verdict, got %+v", got)
	}

	// Subscribed caller.
	if err := f.subs.Save(context.Background(), nil, &model.Subscription{
		UserID: "u-1", Status: model.SubscriptionStatusActive, PlanKey: "consumer_plus_monthly",
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	resp = f.do(t, http.MethodGet, "/api/v1/access/consumer", "u-1", "u1@example.com", nil)
	got = decodeJSON[model.ConsumerAccess](t, resp)
	if !got.IsSubscribed || got.PlanKey != "consumer_plus_monthly" {
		t.Fatalf("expected subscribed verdict, got %+v", got)
	}

	// Allow-listed admin.
	resp = f.do(t, http.MethodGet, "/api/v1/access/consumer", "u-2", "root@example.com", nil)
	got = decodeJSON[model.ConsumerAccess](t, resp)
	if !got.IsAdmin || got.PlanKey != model.AdminPlanKey {
		t.Fatalf("expected admin verdict, got %+v", got)
	}
}

func TestGateEndpoint(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/v1/gate/consumer", "", "", nil)
	res := decodeJSON[model.GateResult](t, resp)
	if res.Allow || res.RedirectTo != model.RouteLogin {
		t.Fatalf("expected login redirect, got %+v", res)
	}

	// Market gate with gated=true and no verification.
	resp = f.do(t, http.MethodGet, "/api/v1/gate/market?gated=true", "u-1", "u1@example.com", nil)
	res = decodeJSON[model.GateResult](t, resp)
	if res.RedirectTo != model.RouteVerificationStart {
		t.Fatalf("expected verification redirect, got %+v", res)
	}

	// Non-gated market content is open to everyone.
	resp = f.do(t, http.MethodGet, "/api/v1/gate/market", "", "", nil)
	res = decodeJSON[model.GateResult](t, resp)
	if !res.Allow {
		t.Fatalf("expected allow, got %+v", res)
	}

	resp = f.do(t, http.MethodGet, "/api/v1/gate/unknown", "u-1", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown family = %d, want 400", resp.StatusCode)
	}
}

func TestPlansEndpoint(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/v1/plans/consumer", "", "", nil)
	plans := decodeJSON[[]map[string]any](t, resp)
	if len(plans) != 3 {
		t.Fatalf("expected 3 configured consumer plans, got %d", len(plans))
	}
	keys := map[string]bool{}
	for _, p := range plans {
		keys[p["plan_key"].(string)] = true
	}
	if !keys["consumer_starter_monthly"] || !keys["consumer_plus_monthly"] || !keys["consumer_vip_annual"] {
		t.Fatalf("unexpected plan keys %v", keys)
	}
}

func TestProductLimitEndpoint(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/v1/plans/vendor/limit?current=10", "u-1", "u1@example.com", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("no vendor account = %d, want 404", resp.StatusCode)
	}

	if err := f.vendors.Save(context.Background(), nil, &model.Vendor{
		ID: "v-1", OwnerID: "u-1", Status: model.SubscriptionStatusActive, PlanKey: "vendor_starter_monthly",
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Starter cap is 25: 10 is under, 25 is reached.
	resp = f.do(t, http.MethodGet, "/api/v1/plans/vendor/limit?current=10", "u-1", "u1@example.com", nil)
	status := decodeJSON[model.ProductLimitStatus](t, resp)
	if status.Reached || status.Limit != 25 {
		t.Fatalf("unexpected limit status %+v", status)
	}
	resp = f.do(t, http.MethodGet, "/api/v1/plans/vendor/limit?current=25", "u-1", "u1@example.com", nil)
	status = decodeJSON[model.ProductLimitStatus](t, resp)
	if !status.Reached {
		t.Fatalf("expected reached at the cap, got %+v", status)
	}
}

func TestCheckoutSessionEndpoint(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/v1/checkout/session", "", "", map[string]string{"plan_key": "consumer_plus_monthly"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous = %d, want 401", resp.StatusCode)
	}

	resp = f.do(t, http.MethodPost, "/api/v1/checkout/session", "u-1", "u1@example.com", map[string]string{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing plan_key = %d, want 400", resp.StatusCode)
	}

	resp = f.do(t, http.MethodPost, "/api/v1/checkout/session", "u-1", "u1@example.com", map[string]string{"plan_key": "consumer_gold_monthly"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown plan = %d, want 400", resp.StatusCode)
	}

	resp = f.do(t, http.MethodPost, "/api/v1/checkout/session", "u-1", "u1@example.com", map[string]string{"plan_key": "consumer_plus_monthly"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create = %d, want 200", resp.StatusCode)
	}
	out := decodeJSON[map[string]any](t, resp)
	if out["session_id"] != "cs_test_42" || out["checkout_url"] == "" {
		t.Fatalf("unexpected session payload %v", out)
	}
}

func TestLoyaltyEndpoints(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/v1/loyalty/balance", "", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous balance = %d, want 401", resp.StatusCode)
	}

	// Seed 100 points directly through the ledger.
	entry, err := model.NewLedgerEntry("e-1", "u-1", model.LedgerEntryPurchaseAward, 100, "order-1")
	if err != nil {
		t.Fatalf("new entry: %v", err)
	}
	if err := f.ledger.Append(context.Background(), nil, entry); err != nil {
		t.Fatalf("append: %v", err)
	}

	resp = f.do(t, http.MethodGet, "/api/v1/loyalty/balance", "u-1", "", nil)
	bal := decodeJSON[map[string]int64](t, resp)
	if bal["balance"] != 100 {
		t.Fatalf("balance = %d, want 100", bal["balance"])
	}

	// Over-redemption is a 422, never a clamp.
	resp = f.do(t, http.MethodPost, "/api/v1/loyalty/redeem", "u-1", "", map[string]any{"points": 101})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("over-redeem = %d, want 422", resp.StatusCode)
	}

	resp = f.do(t, http.MethodPost, "/api/v1/loyalty/redeem", "u-1", "", map[string]any{"points": 40, "reference": "reward"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("redeem = %d, want 200", resp.StatusCode)
	}
	bal = decodeJSON[map[string]int64](t, resp)
	if bal["balance"] != 60 {
		t.Fatalf("balance after redeem = %d, want 60", bal["balance"])
	}

	resp = f.do(t, http.MethodPost, "/api/v1/loyalty/redeem", "u-1", "", map[string]any{"points": -5})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("negative redeem = %d, want 400", resp.StatusCode)
	}

	resp = f.do(t, http.MethodGet, "/api/v1/loyalty/history", "u-1", "", nil)
	history := decodeJSON[[]map[string]any](t, resp)
	if len(history) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(history))
	}
	if history[0]["kind"] != "redemption" {
		t.Fatalf("expected newest-first history, got %v", history[0])
	}
}

func TestReferralCodeEndpoint(t *testing.T) {
	f := newFixture(t)

	// Plain user with no subscription: forbidden.
	resp := f.do(t, http.MethodPost, "/api/v1/referral/code", "u-1", "u1@example.com", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("ineligible = %d, want 403", resp.StatusCode)
	}

	// Starter consumer: eligible, and the code is stable.
	if err := f.subs.Save(context.Background(), nil, &model.Subscription{
		UserID: "u-1", Status: model.SubscriptionStatusActive, PlanKey: "consumer_starter_monthly",
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	resp = f.do(t, http.MethodPost, "/api/v1/referral/code", "u-1", "u1@example.com", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("eligible = %d, want 200", resp.StatusCode)
	}
	first := decodeJSON[map[string]string](t, resp)

	resp = f.do(t, http.MethodPost, "/api/v1/referral/code", "u-1", "u1@example.com", nil)
	second := decodeJSON[map[string]string](t, resp)
	if first["code"] == "" || first["code"] != second["code"] {
		t.Fatalf("expected a stable code, got %q then %q", first["code"], second["code"])
	}
}

func TestVerificationEndpointRateLimit(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/v1/verification", "", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous = %d, want 401", resp.StatusCode)
	}

	// Three submissions per hour are allowed, the fourth is throttled.
	for i := 0; i < 3; i++ {
		resp := f.do(t, http.MethodPost, "/api/v1/verification", "u-1", "u1@example.com", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("submission %d = %d, want 200", i+1, resp.StatusCode)
		}
		out := decodeJSON[map[string]string](t, resp)
		if out["status"] != string(model.VerificationStatusPending) {
			t.Fatalf("submission %d status = %q", i+1, out["status"])
		}
	}
	resp = f.do(t, http.MethodPost, "/api/v1/verification", "u-1", "u1@example.com", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("fourth submission = %d, want 429", resp.StatusCode)
	}

	// The limit is per user.
	resp = f.do(t, http.MethodPost, "/api/v1/verification", "u-2", "u2@example.com", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("other user = %d, want 200", resp.StatusCode)
	}
}
