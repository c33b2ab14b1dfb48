package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	exdb "github.com/clobworks/matchbook/db"
	"github.com/clobworks/matchbook/internal/book"
	"github.com/clobworks/matchbook/internal/config"
	"github.com/clobworks/matchbook/internal/engine"
	"github.com/clobworks/matchbook/internal/logging"
	"github.com/clobworks/matchbook/internal/trades"
	"github.com/clobworks/matchbook/pricefeed"
)

type placeOrderRequest struct {
	Side     string `json:"side"`     // "BID" | "ASK" (also "BUY" | "SELL")
	Type     string `json:"type"`     // "LIMIT" | "MARKET"
	Price    string `json:"price"`    // required for limit
	Quantity string `json:"quantity"` // exact decimal, > 0
}

type fillResponse struct {
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
}

type orderResponse struct {
	ID        string `json:"id"`
	Side      string `json:"side"`
	Price     string `json:"price"`
	Quantity  string `json:"quantity"`
	Timestamp string `json:"timestamp"`
}

type placeOrderResponse struct {
	Fills          []fillResponse `json:"fills"`
	QuantityFilled string         `json:"quantity_filled"`
	Resting        *orderResponse `json:"resting,omitempty"`
	RequestID      string         `json:"request_id"`
}

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// optional collaborators: matching runs with or without them
	var opts []engine.Option

	var store *exdb.TradeStore
	if cfg.DatabaseURL != "" {
		pool, err := exdb.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("db connect failed", zap.Error(err))
		}
		defer pool.Close()
		store = exdb.NewTradeStore(pool)
		opts = append(opts, engine.WithStore(store))
	}

	if cfg.KafkaEnabled() {
		pub := trades.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer pub.Close()
		opts = append(opts, engine.WithPublisher(pub))
	}

	prices := pricefeed.NewCache()
	opts = append(opts, engine.WithPriceRecorder(prices))

	eng := engine.New(cfg.Market, cfg.CommandBuffer, log, opts...)
	go eng.Run(ctx)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(3 * time.Second))

	writeProblem := func(w http.ResponseWriter, r *http.Request, code int, title, detail string) {
		reqID := middleware.GetReqID(r.Context())
		w.Header().Set("Content-Type", "application/problem+json")
		w.Header().Set("X-Request-ID", reqID)
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"title":      title,
			"status":     code,
			"detail":     detail,
			"instance":   r.URL.Path,
			"request_id": reqID,
		})
	}

	writeJSON := func(w http.ResponseWriter, r *http.Request, code int, body any) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Request-ID", middleware.GetReqID(r.Context()))
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(body)
	}

	// POST /orders
	r.Post("/orders", func(w http.ResponseWriter, r *http.Request) {
		var req placeOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, r, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}

		side, quantity, price, isMarket, err := parseOrderRequest(req)
		if err != nil {
			writeProblem(w, r, http.StatusBadRequest, "validation_error", err.Error())
			return
		}

		var res book.OrderResult
		if isMarket {
			res, err = eng.SubmitMarket(r.Context(), side, quantity)
		} else {
			res, err = eng.SubmitLimit(r.Context(), side, quantity, price)
		}
		switch {
		case errors.Is(err, book.ErrInvalidQuantity), errors.Is(err, book.ErrInvalidPrice):
			writeProblem(w, r, http.StatusBadRequest, "validation_error", err.Error())
			return
		case errors.Is(err, book.ErrBookCorrupted):
			log.Error("book corrupted", zap.Error(err))
			writeProblem(w, r, http.StatusInternalServerError, "book_corrupted", err.Error())
			return
		case err != nil:
			writeProblem(w, r, http.StatusInternalServerError, "engine_error", err.Error())
			return
		}

		writeJSON(w, r, http.StatusCreated, toPlaceResponse(res, middleware.GetReqID(r.Context())))
	})

	// GET /orders/{id}
	r.Get("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeProblem(w, r, http.StatusBadRequest, "validation_error", "id must be a valid uuid")
			return
		}
		o, ok, err := eng.Get(r.Context(), id)
		if err != nil {
			writeProblem(w, r, http.StatusInternalServerError, "engine_error", err.Error())
			return
		}
		if !ok {
			writeProblem(w, r, http.StatusNotFound, "not_found", "order not found")
			return
		}
		writeJSON(w, r, http.StatusOK, toOrderResponse(&o))
	})

	// DELETE /orders/{id}
	r.Delete("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeProblem(w, r, http.StatusBadRequest, "validation_error", "id must be a valid uuid")
			return
		}
		removed, err := eng.Cancel(r.Context(), id)
		if err != nil {
			writeProblem(w, r, http.StatusInternalServerError, "engine_error", err.Error())
			return
		}
		if removed == nil {
			writeProblem(w, r, http.StatusNotFound, "not_found", "order not found")
			return
		}
		w.Header().Set("X-Request-ID", middleware.GetReqID(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})

	// GET /depth
	r.Get("/depth", func(w http.ResponseWriter, r *http.Request) {
		d, err := eng.Depth(r.Context())
		if err != nil {
			writeProblem(w, r, http.StatusInternalServerError, "engine_error", err.Error())
			return
		}
		writeJSON(w, r, http.StatusOK, d)
	})

	// GET /markets/{market}/price
	r.Get("/markets/{market}/price", func(w http.ResponseWriter, r *http.Request) {
		market := chi.URLParam(r, "market")
		p, ok := prices.Get(market)
		if !ok {
			writeProblem(w, r, http.StatusNotFound, "not_found", "no trades yet for market")
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]string{"market": market, "price": p.String()})
	})

	// GET /trades?order_id=...
	r.Get("/trades", func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			writeProblem(w, r, http.StatusNotImplemented, "no_store", "trade persistence is not configured")
			return
		}
		orderID, err := uuid.Parse(r.URL.Query().Get("order_id"))
		if err != nil {
			writeProblem(w, r, http.StatusBadRequest, "validation_error", "order_id must be a valid uuid")
			return
		}
		rows, err := store.ListTradesByOrder(r.Context(), orderID)
		if err != nil {
			writeProblem(w, r, http.StatusInternalServerError, "db_error", err.Error())
			return
		}
		writeJSON(w, r, http.StatusOK, rows)
	})

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("listening", zap.String("addr", cfg.ListenAddr), zap.String("market", cfg.Market))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server exited", zap.Error(err))
	}
}

func parseOrderRequest(req placeOrderRequest) (side book.Side, quantity, price decimal.Decimal, isMarket bool, err error) {
	side, err = book.ParseSide(req.Side)
	if err != nil {
		return
	}

	switch strings.ToUpper(strings.TrimSpace(req.Type)) {
	case "MARKET":
		isMarket = true
	case "LIMIT", "":
	default:
		err = errors.New(`type must be "LIMIT" or "MARKET"`)
		return
	}

	quantity, err = decimal.NewFromString(req.Quantity)
	if err != nil {
		err = errors.New("quantity must be a decimal number")
		return
	}
	if !quantity.IsPositive() {
		err = errors.New("quantity must be positive")
		return
	}

	if !isMarket {
		price, err = decimal.NewFromString(req.Price)
		if err != nil {
			err = errors.New("limit orders require a decimal price")
			return
		}
		if !price.IsPositive() {
			err = errors.New("limit orders require a positive price")
			return
		}
	}
	return
}

func toOrderResponse(o *book.Order) *orderResponse {
	return &orderResponse{
		ID:        o.ID.String(),
		Side:      o.Side.String(),
		Price:     o.Price.String(),
		Quantity:  o.Quantity.String(),
		Timestamp: o.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func toPlaceResponse(res book.OrderResult, requestID string) placeOrderResponse {
	out := placeOrderResponse{
		Fills:          make([]fillResponse, 0, len(res.Fills)),
		QuantityFilled: res.QuantityFilled.String(),
		RequestID:      requestID,
	}
	for _, f := range res.Fills {
		out.Fills = append(out.Fills, fillResponse{
			OrderID:  f.OrderID.String(),
			Status:   f.Status.String(),
			Price:    f.Price.String(),
			Quantity: f.Quantity.String(),
		})
	}
	if res.Resting != nil {
		out.Resting = toOrderResponse(res.Resting)
	}
	return out
}
