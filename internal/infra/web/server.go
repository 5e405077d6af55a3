package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"marketplace-entitlements/internal/domain"
	"marketplace-entitlements/internal/domain/model"
	"marketplace-entitlements/internal/usecase"
)

// Server is the operator-facing surface: verification moderation, catalog
// diagnostics, manual ledger corrections, and stats. It listens on the admin
// port next to /metrics and is never exposed to marketplace traffic.
type Server struct {
	auth          *AuthManager
	adminPassword string
	verifications *usecase.VerificationUseCase
	loyalty       *usecase.LoyaltyUseCase
	stats         *usecase.StatsUseCase
	consumerPlans *model.Catalog
	vendorPlans   *model.Catalog
	log           *zerolog.Logger
}

func NewServer(
	auth *AuthManager,
	adminPassword string,
	verifications *usecase.VerificationUseCase,
	loyalty *usecase.LoyaltyUseCase,
	stats *usecase.StatsUseCase,
	consumerPlans, vendorPlans *model.Catalog,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "AdminServer").Logger()
	return &Server{
		auth:          auth,
		adminPassword: adminPassword,
		verifications: verifications,
		loyalty:       loyalty,
		stats:         stats,
		consumerPlans: consumerPlans,
		vendorPlans:   vendorPlans,
		log:           &l,
	}
}

// RegisterRoutes attaches the admin API and the metrics endpoint.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/admin/api/v1/login", s.handleLogin)
	mux.HandleFunc("/admin/api/v1/logout", s.handleLogout)

	mux.Handle("/admin/api/v1/stats", s.requireAdmin(http.HandlerFunc(s.handleStats)))
	mux.Handle("/admin/api/v1/catalog/diagnostics", s.requireAdmin(http.HandlerFunc(s.handleCatalogDiagnostics)))
	mux.Handle("/admin/api/v1/verifications", s.requireAdmin(http.HandlerFunc(s.handleVerifications)))
	mux.Handle("/admin/api/v1/verifications/", s.requireAdmin(http.HandlerFunc(s.handleVerificationReview)))
	mux.Handle("/admin/api/v1/loyalty/adjust", s.requireAdmin(http.HandlerFunc(s.handleLoyaltyAdjust)))
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminPassword == "" {
			s.log.Error().Msg("admin password is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if s.adminPassword == "" ||
		subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.adminPassword)) != 1 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if _, err := s.auth.Mint(w); err != nil {
		s.log.Error().Err(err).Msg("mint session")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	out, err := s.stats.Collect(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("collect stats")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCatalogDiagnostics reports (tier, cadence) combinations that were
// skipped at startup for lack of a configured price ID.
func (s *Server) handleCatalogDiagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"consumer_missing": s.consumerPlans.Missing(),
		"vendor_missing":   s.vendorPlans.Missing(),
	})
}

func (s *Server) handleVerifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	recs, err := s.verifications.ListPending(r.Context(), 100)
	if err != nil {
		s.log.Error().Err(err).Msg("list pending verifications")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleVerificationReview serves POST /admin/api/v1/verifications/{id}/review.
func (s *Server) handleVerificationReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := reviewPathID(r.URL.Path)
	if id == "" {
		http.NotFound(w, r)
		return
	}
	var req struct {
		Approve bool   `json:"approve"`
		Note    string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	rec, err := s.verifications.Review(r.Context(), id, req.Approve, req.Note)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Verification not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, domain.ErrInvalidArgument) {
			http.Error(w, "Verification already reviewed", http.StatusConflict)
			return
		}
		s.log.Error().Err(err).Str("verification_id", id).Msg("review verification")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleLoyaltyAdjust(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		UserID    string `json:"user_id"`
		Points    int64  `json:"points"`
		Reference string `json:"reference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	entry, err := s.loyalty.Adjust(r.Context(), req.UserID, req.Points, req.Reference)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		if errors.Is(err, domain.ErrInsufficientPoints) {
			http.Error(w, "Adjustment would drive the balance negative", http.StatusUnprocessableEntity)
			return
		}
		s.log.Error().Err(err).Str("user_id", req.UserID).Msg("adjust loyalty points")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"balance": entry.BalanceAfter})
}

// reviewPathID extracts {id} from /admin/api/v1/verifications/{id}/review.
func reviewPathID(path string) string {
	const prefix = "/admin/api/v1/verifications/"
	const suffix = "/review"
	if len(path) <= len(prefix)+len(suffix) {
		return ""
	}
	if path[:len(prefix)] != prefix || path[len(path)-len(suffix):] != suffix {
		return ""
	}
	return path[len(prefix) : len(path)-len(suffix)]
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
