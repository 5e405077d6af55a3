package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"marketplace-entitlements/internal/domain"
	"marketplace-entitlements/internal/domain/model"
	"marketplace-entitlements/internal/infra/logging"
	red "marketplace-entitlements/internal/infra/redis"
	"marketplace-entitlements/internal/usecase"
)

// Caller identity headers set by the fronting gateway. The service trusts its
// ingress perimeter; unauthenticated callers simply carry no headers.
const (
	headerUserID    = "X-User-ID"
	headerUserEmail = "X-User-Email"
)

const (
	verificationRateLimit  = 3
	verificationRateWindow = time.Hour
)

// Server exposes the decision surface over HTTP.
type Server struct {
	access        *usecase.AccessUseCase
	gates         *usecase.GateUseCase
	loyalty       *usecase.LoyaltyUseCase
	checkout      *usecase.CheckoutUseCase
	verifications *usecase.VerificationUseCase
	consumerPlans *model.Catalog
	vendorPlans   *model.Catalog
	limiter       *red.RateLimiter
	validate      *validator.Validate
	timeout       time.Duration
	log           *zerolog.Logger
}

func NewServer(
	access *usecase.AccessUseCase,
	gates *usecase.GateUseCase,
	loyalty *usecase.LoyaltyUseCase,
	checkout *usecase.CheckoutUseCase,
	verifications *usecase.VerificationUseCase,
	consumerPlans, vendorPlans *model.Catalog,
	limiter *red.RateLimiter,
	timeout time.Duration,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "APIServer").Logger()
	return &Server{
		access:        access,
		gates:         gates,
		loyalty:       loyalty,
		checkout:      checkout,
		verifications: verifications,
		consumerPlans: consumerPlans,
		vendorPlans:   vendorPlans,
		limiter:       limiter,
		validate:      validator.New(),
		timeout:       timeout,
		log:           &l,
	}
}

// Routes builds the public router with the standard middleware chain.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(s.log), TraceID(), Identity(), RequestLog(s.log), Timeout(s.timeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/access/consumer", s.handleConsumerAccess)
		r.Get("/access/vendor", s.handleVendorAccess)
		r.Get("/gate/{family}", s.handleGate)
		r.Get("/plans/consumer", s.handlePlans(s.consumerPlans))
		r.Get("/plans/vendor", s.handlePlans(s.vendorPlans))
		r.Get("/plans/vendor/limit", s.handleProductLimit)
		r.Post("/checkout/session", s.handleCheckoutSession)
		r.Get("/loyalty/balance", s.handleLoyaltyBalance)
		r.Get("/loyalty/history", s.handleLoyaltyHistory)
		r.Post("/loyalty/redeem", s.handleLoyaltyRedeem)
		r.Post("/referral/code", s.handleReferralCode)
		r.Post("/verification", s.handleVerificationSubmit)
	})

	return r
}

func callerIdentity(r *http.Request) model.Identity {
	return model.Identity{
		UserID: r.Header.Get(headerUserID),
		Email:  r.Header.Get(headerUserEmail),
	}
}

// ---- handlers ----

func (s *Server) handleConsumerAccess(w http.ResponseWriter, r *http.Request) {
	id := callerIdentity(r)
	out, err := s.access.ConsumerAccessStatus(r.Context(), id.UserID, id.Email)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleVendorAccess(w http.ResponseWriter, r *http.Request) {
	id := callerIdentity(r)
	out, err := s.access.VendorAccessStatus(r.Context(), id.UserID, id.Email)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGate(w http.ResponseWriter, r *http.Request) {
	family := chi.URLParam(r, "family")
	gated := r.URL.Query().Get("gated") == "true"
	res, err := s.gates.Evaluate(r.Context(), family, callerIdentity(r), gated)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			s.writeError(w, http.StatusBadRequest, "unknown gate family")
			return
		}
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

type planView struct {
	PlanKey              string  `json:"plan_key"`
	Tier                 string  `json:"tier"`
	BillingInterval      string  `json:"billing_interval"`
	PriceID              string  `json:"price_id"`
	LoyaltyMultiplier    float64 `json:"loyalty_multiplier,omitempty"`
	ReferralRewardPoints int64   `json:"referral_reward_points,omitempty"`
	ProductLimit         int     `json:"product_limit,omitempty"`
	CommissionPercent    int     `json:"commission_percent,omitempty"`
}

func (s *Server) handlePlans(catalog *model.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans := catalog.Plans()
		out := make([]planView, 0, len(plans))
		for _, p := range plans {
			out = append(out, planView{
				PlanKey:              p.Key,
				Tier:                 string(p.Tier),
				BillingInterval:      string(p.Interval),
				PriceID:              p.PriceID,
				LoyaltyMultiplier:    p.LoyaltyMultiplier,
				ReferralRewardPoints: p.ReferralRewardPoints,
				ProductLimit:         p.ProductLimit,
				CommissionPercent:    p.CommissionPercent,
			})
		}
		s.writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleProductLimit(w http.ResponseWriter, r *http.Request) {
	id := callerIdentity(r)
	access, err := s.access.VendorAccessStatus(r.Context(), id.UserID, id.Email)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !access.IsVendor {
		s.writeError(w, http.StatusNotFound, "no vendor account")
		return
	}
	current, _ := strconv.Atoi(r.URL.Query().Get("current"))
	limit := model.UnlimitedProducts
	if p, ok := s.vendorPlans.ByKey(access.PlanKey); ok {
		limit = p.ProductLimit
	}
	s.writeJSON(w, http.StatusOK, model.GetProductLimitStatus(current, limit))
}

type checkoutRequest struct {
	PlanKey string `json:"plan_key" validate:"required"`
}

func (s *Server) handleCheckoutSession(w http.ResponseWriter, r *http.Request) {
	id := callerIdentity(r)
	if !id.Authenticated() {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, "plan_key is required")
		return
	}
	sess, err := s.checkout.CreateSession(r.Context(), id, req.PlanKey)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownPlan) {
			s.writeError(w, http.StatusBadRequest, "unknown plan key")
			return
		}
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"session_id":   sess.ID,
		"checkout_url": sess.URL,
		"expires_at":   sess.ExpiresAt,
	})
}

func (s *Server) handleLoyaltyBalance(w http.ResponseWriter, r *http.Request) {
	id := callerIdentity(r)
	if !id.Authenticated() {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	balance, err := s.loyalty.Balance(r.Context(), id.UserID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

type ledgerEntryView struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	Points       int64  `json:"points"`
	BalanceAfter int64  `json:"balance_after"`
	Reference    string `json:"reference,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func (s *Server) handleLoyaltyHistory(w http.ResponseWriter, r *http.Request) {
	id := callerIdentity(r)
	if !id.Authenticated() {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.loyalty.History(r.Context(), id.UserID, limit)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	out := make([]ledgerEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, ledgerEntryView{
			ID:           e.ID,
			Kind:         string(e.Kind),
			Points:       e.Points,
			BalanceAfter: e.BalanceAfter,
			Reference:    e.Reference,
			CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

type redeemRequest struct {
	Points    int64  `json:"points" validate:"required,gt=0"`
	Reference string `json:"reference"`
}

func (s *Server) handleLoyaltyRedeem(w http.ResponseWriter, r *http.Request) {
	id := callerIdentity(r)
	if !id.Authenticated() {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, "points must be a positive integer")
		return
	}
	entry, err := s.loyalty.Redeem(r.Context(), id.UserID, req.Points, req.Reference)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientPoints) {
			s.writeError(w, http.StatusUnprocessableEntity, "insufficient points")
			return
		}
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"balance": entry.BalanceAfter})
}

func (s *Server) handleReferralCode(w http.ResponseWriter, r *http.Request) {
	id := callerIdentity(r)
	if !id.Authenticated() {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	eligible, err := s.loyalty.ReferralLinkEligible(r.Context(), id)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !eligible {
		s.writeError(w, http.StatusForbidden, "not eligible for referral links")
		return
	}
	code, err := s.loyalty.EnsureReferralCode(r.Context(), id.UserID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"code": code})
}

func (s *Server) handleVerificationSubmit(w http.ResponseWriter, r *http.Request) {
	id := callerIdentity(r)
	if !id.Authenticated() {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if s.limiter != nil {
		ok, err := s.limiter.Allow(r.Context(), red.UserActionKey(id.UserID, "verification"), verificationRateLimit, verificationRateWindow)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if !ok {
			s.writeError(w, http.StatusTooManyRequests, "too many verification attempts")
			return
		}
	}
	rec, err := s.verifications.Submit(r.Context(), id.UserID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"verification_id": rec.ID,
		"status":          string(rec.Status),
	})
}

// ---- helpers ----

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}

// serverError fails closed with a generic message; detail goes to the log only.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logging.With(r.Context(), s.log).Error().Err(err).Msg("request failed")
	s.writeError(w, http.StatusInternalServerError, "something went wrong")
}
