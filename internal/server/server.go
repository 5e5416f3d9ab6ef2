package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/option-pricer/internal/config"
	"github.com/dgnsrekt/option-pricer/internal/maturity"
	"github.com/dgnsrekt/option-pricer/internal/payoffexpr"
	"github.com/dgnsrekt/option-pricer/internal/pricing"
)

type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	limiter *rate.Limiter
}

func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(cfg.Server.RatePerSecond), cfg.Server.RateBurst),
	}
}

// MarketRequest is the market-side input shared by all pricing endpoints.
// Either maturity (in years) or an expiry date must be supplied; an expiry is
// converted to a trading-day year fraction.
type MarketRequest struct {
	Spot       float64 `json:"spot"`
	Rate       float64 `json:"rate"`
	Volatility float64 `json:"volatility"`
	Maturity   float64 `json:"maturity,omitempty"`
	Expiry     string  `json:"expiry,omitempty"`
}

func (m MarketRequest) market(now time.Time) (pricing.Market, error) {
	mat := m.Maturity
	if m.Expiry != "" {
		expiry, err := maturity.ParseExpiry(m.Expiry)
		if err != nil {
			return pricing.Market{}, err
		}
		mat, err = maturity.YearFraction(now, expiry)
		if err != nil {
			return pricing.Market{}, err
		}
	}
	return pricing.Market{
		Spot:       m.Spot,
		Rate:       m.Rate,
		Volatility: m.Volatility,
		Maturity:   mat,
	}, nil
}

type BinomialRequest struct {
	MarketRequest
	Strike   float64 `json:"strike"`
	Steps    int     `json:"steps"`
	Kind     string  `json:"kind"`
	American bool    `json:"american,omitempty"`
}

type MonteCarloRequest struct {
	MarketRequest
	Strike  float64 `json:"strike"`
	Paths   int     `json:"paths"`
	Steps   int     `json:"steps"`
	Seed    *int64  `json:"seed,omitempty"`
	Workers int     `json:"workers,omitempty"`
	Payoff  string  `json:"payoff,omitempty"`
}

type BlackScholesRequest struct {
	MarketRequest
	Strike float64 `json:"strike"`
	Kind   string  `json:"kind"`
}

type PriceResponse struct {
	RequestID     string   `json:"request_id"`
	Price         float64  `json:"price"`
	Delta         *float64 `json:"delta,omitempty"`
	StandardError *float64 `json:"standard_error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// BinomialHandler prices a vanilla option on a CRR lattice.
func (s *Server) BinomialHandler(w http.ResponseWriter, r *http.Request) {
	var req BinomialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	if req.Steps > s.cfg.Limits.MaxLatticeSteps {
		s.writeError(w, http.StatusBadRequest, "steps exceeds configured maximum")
		return
	}

	market, err := req.market(time.Now())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lattice, err := pricing.CRRLattice(market.Volatility, market.Maturity, req.Steps)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	style := pricing.ExerciseEuropean
	if req.American {
		style = pricing.ExerciseAmerican
	}
	contract := pricing.Contract{
		Strike: req.Strike,
		Kind:   pricing.OptionKind(strings.ToLower(req.Kind)),
		Style:  style,
	}

	res, err := pricing.BinomialPrice(market, contract, lattice)
	if err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}

	s.logger.Debug("binomial priced",
		zap.Float64("spot", market.Spot),
		zap.Float64("strike", contract.Strike),
		zap.Int("steps", req.Steps),
		zap.Float64("price", res.Price),
	)

	writeJSON(w, http.StatusOK, PriceResponse{
		RequestID: uuid.NewString(),
		Price:     res.Price,
		Delta:     ptr(res.Delta),
	})
}

// MonteCarloHandler prices an arbitrary terminal payoff by GBM simulation.
// The payoff expression defaults to the configured vanilla call.
func (s *Server) MonteCarloHandler(w http.ResponseWriter, r *http.Request) {
	var req MonteCarloRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	sim, payoff, market, err := s.resolveMonteCarlo(&req, time.Now())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := pricing.MonteCarloPrice(market, payoff, sim)
	if err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}

	s.logger.Debug("monte carlo priced",
		zap.Float64("spot", market.Spot),
		zap.Int("paths", sim.Paths),
		zap.Int("steps", sim.Steps),
		zap.Float64("price", res.Price),
		zap.Float64("standardError", res.StandardError),
	)

	writeJSON(w, http.StatusOK, PriceResponse{
		RequestID:     uuid.NewString(),
		Price:         res.Price,
		StandardError: ptr(res.StandardError),
	})
}

// BlackScholesHandler prices a European vanilla option in closed form.
func (s *Server) BlackScholesHandler(w http.ResponseWriter, r *http.Request) {
	var req BlackScholesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	market, err := req.market(time.Now())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contract := pricing.Contract{
		Strike: req.Strike,
		Kind:   pricing.OptionKind(strings.ToLower(req.Kind)),
	}

	res, err := pricing.BlackScholesPrice(market, contract)
	if err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, PriceResponse{
		RequestID: uuid.NewString(),
		Price:     res.Price,
		Delta:     ptr(res.Delta),
	})
}

// HealthHandler reports service status and the configured request limits.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"limits": map[string]int{
			"max_paths":         s.cfg.Limits.MaxPaths,
			"max_path_steps":    s.cfg.Limits.MaxPathSteps,
			"max_lattice_steps": s.cfg.Limits.MaxLatticeSteps,
		},
	})
}

// resolveMonteCarlo validates limits, compiles the payoff and resolves the
// market for a Monte Carlo request. Shared with the convergence stream.
func (s *Server) resolveMonteCarlo(req *MonteCarloRequest, now time.Time) (pricing.Simulation, pricing.Payoff, pricing.Market, error) {
	if req.Paths > s.cfg.Limits.MaxPaths {
		return pricing.Simulation{}, nil, pricing.Market{}, errors.New("paths exceeds configured maximum")
	}
	if req.Steps > s.cfg.Limits.MaxPathSteps {
		return pricing.Simulation{}, nil, pricing.Market{}, errors.New("steps exceeds configured maximum")
	}
	if req.Strike <= 0 {
		return pricing.Simulation{}, nil, pricing.Market{}, errors.New("strike price must be positive")
	}

	market, err := req.market(now)
	if err != nil {
		return pricing.Simulation{}, nil, pricing.Market{}, err
	}

	src := req.Payoff
	if strings.TrimSpace(src) == "" {
		src = s.cfg.Pricing.DefaultPayoff
	}
	payoff, err := payoffexpr.Compile(src, req.Strike)
	if err != nil {
		return pricing.Simulation{}, nil, pricing.Market{}, err
	}

	workers := req.Workers
	if workers == 0 {
		workers = s.cfg.Pricing.Workers
	}

	sim := pricing.Simulation{
		Paths:   req.Paths,
		Steps:   req.Steps,
		Seed:    req.Seed,
		Workers: workers,
	}
	return sim, payoff, market, nil
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps pricing failures to HTTP statuses: bad parameters are the
// caller's request, failing payoffs are a semantically broken expression.
func statusFor(err error) int {
	var pe *pricing.PayoffError
	if errors.As(err, &pe) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, pricing.ErrInvalidParameter) {
		return http.StatusBadRequest
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ptr[T any](v T) *T { return &v }
