// Package quoteserver is the aggregator-facing side channel around the
// pricing core: a small HTTP + WebSocket front end that lets an external
// aggregator (or an integration test) pull quotes over the wire. None of the
// pricing logic lives here; it only marshals chain.Client calls.
package quoteserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/websocket"

	"github.com/symmetryfi/fund-quoter/internal/chain"
	"github.com/symmetryfi/fund-quoter/internal/config"
	"github.com/symmetryfi/fund-quoter/internal/logging"
	"github.com/symmetryfi/fund-quoter/internal/quote"
)

var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

const streamPushInterval = 2 * time.Second

// Service is the HTTP server exposing quote.Price over the wire.
type Service struct {
	cfg              config.Config
	logger           *slog.Logger
	client           *chain.Client
	allowAllOrigins  bool
	allowedOriginSet map[string]struct{}
}

// New builds a Service; client is expected to already be running its own
// poll loop (chain.Client.Run) in the background.
func New(cfg config.Config, logger *slog.Logger, client *chain.Client) *Service {
	allowAllOrigins := false
	allowedOriginSet := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		if trimmed == "*" {
			allowAllOrigins = true
			continue
		}
		allowedOriginSet[trimmed] = struct{}{}
	}
	if len(allowedOriginSet) == 0 && !allowAllOrigins {
		allowAllOrigins = true
	}

	return &Service{
		cfg:              cfg,
		logger:           logger,
		client:           client,
		allowAllOrigins:  allowAllOrigins,
		allowedOriginSet: allowedOriginSet,
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/quote", s.handleQuote)
	mux.HandleFunc("/quote/stream", s.handleQuoteStream)

	server := &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.withCORS(mux),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
			return
		}
		errCh <- err
	}()

	s.logger.Info("quote server started",
		"listen_addr", s.cfg.ListenAddr,
		"allowed_origins", strings.Join(s.cfg.AllowedOrigins, ","),
	)

	select {
	case <-ctx.Done():
		s.logger.Info("quote server stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown quote server: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

type healthResponse struct {
	OK bool `json:"ok"`
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondMethodNotAllowed(w)
		return
	}
	s.respondJSON(w, http.StatusOK, healthResponse{OK: true})
}

type quoteResponse struct {
	InAmount  uint64 `json:"in_amount"`
	OutAmount uint64 `json:"out_amount"`
	FeeAmount uint64 `json:"fee_amount"`
	FeeMint   string `json:"fee_mint"`
	FeePctE4  uint64 `json:"fee_pct_e4"`
}

func toQuoteResponse(q quote.Quote) quoteResponse {
	return quoteResponse{
		InAmount:  q.InAmount,
		OutAmount: q.OutAmount,
		FeeAmount: q.FeeAmount,
		FeeMint:   q.FeeMint.String(),
		FeePctE4:  q.FeePctE4,
	}
}

func (s *Service) handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondMethodNotAllowed(w)
		return
	}

	input, output, amount, err := parseQuoteParams(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := s.client.Quote(input, output, amount)
	if err != nil {
		s.logger.Warn("quote rejected",
			logging.Mint("in_mint", input), logging.Mint("out_mint", output),
			"amount", amount, "err", err)
		s.respondError(w, quoteErrorStatus(err), err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, toQuoteResponse(q))
}

func parseQuoteParams(r *http.Request) (input, output solana.PublicKey, amount uint64, err error) {
	rawInput := strings.TrimSpace(r.URL.Query().Get("input"))
	rawOutput := strings.TrimSpace(r.URL.Query().Get("output"))
	rawAmount := strings.TrimSpace(r.URL.Query().Get("amount"))

	input, err = solana.PublicKeyFromBase58(rawInput)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, 0, fmt.Errorf("invalid input mint: %w", err)
	}
	output, err = solana.PublicKeyFromBase58(rawOutput)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, 0, fmt.Errorf("invalid output mint: %w", err)
	}
	amount, err = strconv.ParseUint(rawAmount, 10, 64)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, 0, fmt.Errorf("invalid amount: %w", err)
	}
	return input, output, amount, nil
}

func quoteErrorStatus(err error) int {
	switch {
	case errors.As(err, new(*quote.TokenNotFoundError)), errors.As(err, new(*quote.TokenNotHeldError)):
		return http.StatusNotFound
	case errors.As(err, new(*quote.WeightOutOfBandError)), errors.As(err, new(*quote.OracleOfflineError)),
		errors.Is(err, quote.ErrLPDisabled), errors.Is(err, quote.ErrArithmeticDegenerate):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

type streamEnvelope struct {
	Type  string         `json:"type"`
	Data  *quoteResponse `json:"data,omitempty"`
	Error string         `json:"error,omitempty"`
}

func (s *Service) handleQuoteStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondMethodNotAllowed(w)
		return
	}

	input, output, amount, err := parseQuoteParams(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	upgrader := websocketUpgrader
	upgrader.CheckOrigin = func(req *http.Request) bool {
		return s.isOriginAllowed(strings.TrimSpace(req.Header.Get("Origin")))
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("quote stream upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go discardIncoming(conn, cancel)

	ticker := time.NewTicker(streamPushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q, err := s.client.Quote(input, output, amount)
			envelope := streamEnvelope{Type: "quote"}
			if err != nil {
				envelope.Error = err.Error()
			} else {
				resp := toQuoteResponse(q)
				envelope.Data = &resp
			}
			if err := conn.WriteJSON(envelope); err != nil {
				return
			}
		}
	}
}

// discardIncoming reads and drops client frames so a disconnect is noticed,
// and cancels the push loop once the client disconnects.
func discardIncoming(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Service) isOriginAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	if s.allowAllOrigins {
		return true
	}
	_, ok := s.allowedOriginSet[origin]
	return ok
}

func (s *Service) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" && s.isOriginAllowed(origin) {
			if s.allowAllOrigins {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response failed", "err", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: message})
}

func (s *Service) respondMethodNotAllowed(w http.ResponseWriter) {
	s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
}
