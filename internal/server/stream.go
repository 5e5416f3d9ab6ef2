package server

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/dgnsrekt/option-pricer/internal/config"
	"github.com/dgnsrekt/option-pricer/internal/pricing"
)

const (
	// Time allowed to write a frame to the peer.
	streamWriteWait = 10 * time.Second

	// Time allowed to receive the pricing request after connecting.
	streamReadWait = 30 * time.Second

	defaultStreamBatches = 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamHandler streams interim Monte Carlo estimates over a WebSocket: the
// client sends one pricing request and receives a convergence frame after
// each batch of paths, pooled over everything simulated so far.
type StreamHandler struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewStreamHandler(cfg *config.Config, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{cfg: cfg, logger: logger}
}

// StreamRequest is a Monte Carlo request plus the number of interim batches.
type StreamRequest struct {
	MonteCarloRequest
	Batches int `json:"batches,omitempty"`
}

// ConvergenceFrame is one interim estimate.
type ConvergenceFrame struct {
	RequestID     string  `json:"request_id"`
	Batch         int     `json:"batch"`
	Batches       int     `json:"batches"`
	PathsDone     int     `json:"paths_done"`
	Price         float64 `json:"price"`
	StandardError float64 `json:"standard_error"`
}

func (h *StreamHandler) Handle(w http.ResponseWriter, r *http.Request) {
	compress := r.URL.Query().Get("compress") == "zstd"

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := uuid.New().String()
	h.logger.Debug("convergence stream connected",
		zap.String("connID", connID),
		zap.Bool("compress", compress),
	)

	_ = conn.SetReadDeadline(time.Now().Add(streamReadWait))
	var req StreamRequest
	if err := conn.ReadJSON(&req); err != nil {
		h.closeWithError(conn, "invalid request: "+err.Error())
		return
	}

	sim, payoff, market, err := h.resolve(&req)
	if err != nil {
		h.closeWithError(conn, err.Error())
		return
	}
	if sim.Paths < 1 || sim.Steps < 1 {
		h.closeWithError(conn, "paths and steps must be >= 1")
		return
	}

	var enc *zstd.Encoder
	if compress {
		enc, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			h.closeWithError(conn, "create zstd encoder: "+err.Error())
			return
		}
		defer enc.Close()
	}

	batches := req.Batches
	if batches == 0 {
		batches = defaultStreamBatches
	}
	if batches > h.cfg.Limits.MaxStreamBatches {
		h.closeWithError(conn, "batches exceeds configured maximum")
		return
	}
	if batches > sim.Paths {
		batches = sim.Paths
	}

	var seed int64
	if sim.Seed != nil {
		seed = *sim.Seed
	} else {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	// The stream reuses one generator across batches, so a seeded stream is
	// reproducible for a fixed batch count.
	var stats pricing.Stats
	base := sim.Paths / batches
	rem := sim.Paths % batches
	firstPath := 0

	for b := 0; b < batches; b++ {
		count := base
		if b < rem {
			count++
		}

		st, err := pricing.SimulatePaths(market, payoff, rng, firstPath, count, sim.Steps)
		if err != nil {
			h.closeWithError(conn, err.Error())
			return
		}
		stats = stats.Merge(st)
		firstPath += count

		res := stats.Result()
		frame := ConvergenceFrame{
			RequestID:     connID,
			Batch:         b + 1,
			Batches:       batches,
			PathsDone:     stats.N,
			Price:         res.Price,
			StandardError: res.StandardError,
		}
		if err := h.writeFrame(conn, enc, frame); err != nil {
			h.logger.Debug("convergence stream write failed",
				zap.String("connID", connID),
				zap.Error(err),
			)
			return
		}
	}

	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
}

// resolve validates the stream request against the server limits. Engine
// preconditions (paths, steps, market bounds) are checked by SimulatePaths
// itself on the first batch.
func (h *StreamHandler) resolve(req *StreamRequest) (pricing.Simulation, pricing.Payoff, pricing.Market, error) {
	srv := &Server{cfg: h.cfg, logger: h.logger}
	return srv.resolveMonteCarlo(&req.MonteCarloRequest, time.Now())
}

func (h *StreamHandler) writeFrame(conn *websocket.Conn, enc *zstd.Encoder, frame ConvergenceFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	if enc != nil {
		return conn.WriteMessage(websocket.BinaryMessage, enc.EncodeAll(payload, nil))
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

func (h *StreamHandler) closeWithError(conn *websocket.Conn, msg string) {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	_ = conn.WriteJSON(ErrorResponse{Error: msg})
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "request rejected"))
}
