// Package main provides the unified simulation server:
// - Trading engine: buys, sells, rug pulls, token creation
// - Market simulator (scheduled): price drift, regimes, special events
// - Bot population (scheduled): autonomous traders routed through the engine
// - HTTP: Prometheus metrics, WebSocket event feed, health/status
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"meme-market-sim/internal/bots"
	"meme-market-sim/internal/engine"
	"meme-market-sim/internal/market"
	"meme-market-sim/internal/notify"
	"meme-market-sim/internal/observability"
	"meme-market-sim/internal/sim"
	"meme-market-sim/internal/storage"
	chstore "meme-market-sim/internal/storage/clickhouse"
	"meme-market-sim/internal/storage/memory"
	"meme-market-sim/internal/storage/migrations"
	pgstore "meme-market-sim/internal/storage/postgres"
)

// Server holds all components of the unified service.
type Server struct {
	stores     *allStores
	engine     *engine.Engine
	hub        *notify.Hub
	coord      *sim.Coordinator
	population *bots.Population
	logger     *log.Logger

	started time.Time
}

// allStores holds all storage implementations.
type allStores struct {
	tokens     storage.TokenStore
	portfolios storage.PortfolioStore
	trades     storage.TradeStore
	balances   storage.BalanceStore
	history    storage.PriceHistoryStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	seed := flag.Int64("seed", envInt64("SIM_SEED", 0), "Simulation RNG seed (0 = time-based)")
	driftInterval := flag.Duration("drift-interval", market.DefaultDriftInterval, "Market drift tick interval")
	eventInterval := flag.Duration("event-interval", market.DefaultEventInterval, "Special event tick interval")
	botInterval := flag.Duration("bot-interval", bots.DefaultTickInterval, "Bot population tick interval")
	seedTokens := flag.Bool("seed-tokens", true, "Mint demo tokens on an empty market")
	recordFailures := flag.Bool("record-failures", false, "Append rejected trades to the ledger")
	httpAddr := flag.String("http-addr", ":9090", "HTTP address for metrics, websocket feed and status")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// One base seed, one independent stream per subsystem. Each loop ticks
	// on its own goroutine and must not share a rand.Rand.
	baseSeed := *seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}
	logger.Printf("Simulation seed: %d", baseSeed)

	hub := notify.NewHub(log.New(os.Stdout, "[ws] ", log.LstdFlags))
	sink := notify.Fanout{
		notify.NewLoggerSink(log.New(os.Stdout, "[events] ", log.LstdFlags)),
		hub,
	}

	locks := engine.NewLockTable()
	eng := engine.New(engine.Options{
		Tokens:         stores.tokens,
		Portfolios:     stores.portfolios,
		Trades:         stores.trades,
		Balances:       stores.balances,
		Sink:           sink,
		Locks:          locks,
		Logger:         log.New(os.Stdout, "[engine] ", log.LstdFlags),
		RecordFailures: *recordFailures,
	})

	if *seedTokens {
		if err := seedDemoTokens(ctx, eng, stores); err != nil {
			logger.Fatalf("Failed to seed demo tokens: %v", err)
		}
	}

	simulator := market.New(market.Options{
		Tokens:        stores.tokens,
		History:       stores.history,
		Sink:          sink,
		Locks:         locks,
		Logger:        log.New(os.Stdout, "[market] ", log.LstdFlags),
		Rand:          rand.New(rand.NewSource(baseSeed + 1)),
		DriftInterval: *driftInterval,
		EventInterval: *eventInterval,
	})

	population := bots.New(bots.Options{
		Engine:       eng,
		Tokens:       stores.tokens,
		Balances:     stores.balances,
		Logger:       log.New(os.Stdout, "[bots] ", log.LstdFlags),
		Rand:         rand.New(rand.NewSource(baseSeed + 2)),
		TickInterval: *botInterval,
	})

	coord := sim.NewCoordinator(logger, simulator, population)

	server := &Server{
		stores:     stores,
		engine:     eng,
		hub:        hub,
		coord:      coord,
		population: population,
		logger:     logger,
		started:    time.Now(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go server.startHTTPServer(*httpAddr)

	coord.Start(ctx)
	logger.Printf("Simulation running: %d bots, drift every %v, events every %v",
		len(population.Bots()), *driftInterval, *eventInterval)

	sig := <-sigCh
	logger.Printf("Received signal %v, shutting down...", sig)
	cancel()
	coord.Stop()
	hub.Close()
	logger.Println("Shutdown complete")
}

// createStores creates all required stores and applies migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			tokens:     memory.NewTokenStore(),
			portfolios: memory.NewPortfolioStore(),
			trades:     memory.NewTradeStore(),
			balances:   memory.NewBalanceStore(),
			history:    memory.NewPriceHistoryStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &allStores{
		tokens:     pgstore.NewTokenStore(pool),
		portfolios: pgstore.NewPortfolioStore(pool),
		trades:     pgstore.NewTradeStore(pool),
		balances:   pgstore.NewBalanceStore(pool),
		history:    chstore.NewPriceHistoryStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// demoToken is one launch-roster entry.
type demoToken struct {
	name      string
	symbol    string
	supply    float64
	liquidity float64
}

// demoTokens is the launch roster minted into an empty market so the
// simulator and bots have something to trade from tick one.
var demoTokens = []demoToken{
	{"Doge Classic", "DOGC", 10_000_000, 5_000},
	{"Pepe Gold", "PEPEG", 50_000_000, 8_000},
	{"Moon Rocket", "MOON", 1_000_000, 2_000},
	{"Wojak Finance", "WOJAK", 5_000_000, 1_500},
	{"Giga Chad", "CHAD", 2_000_000, 3_000},
	{"Banana Cat", "BCAT", 100_000_000, 10_000},
	{"Diamond Hands", "HODL", 25_000_000, 6_000},
	{"Ser Pump", "SERP", 500_000, 800},
}

// seedDemoTokens mints the launch roster through the engine on an empty
// market. The house trader pays for liquidity like any creator would.
func seedDemoTokens(ctx context.Context, eng *engine.Engine, stores *allStores) error {
	existing, err := stores.tokens.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list tokens: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	const house = "house"

	total := 0.0
	for _, d := range demoTokens {
		total += engine.TokenCreationCost + d.liquidity
	}
	if err := stores.balances.Credit(ctx, house, total); err != nil {
		return fmt.Errorf("fund house trader: %w", err)
	}

	for _, d := range demoTokens {
		if _, err := eng.CreateToken(ctx, engine.CreateTokenParams{
			CreatorID:        house,
			Name:             d.name,
			Symbol:           d.symbol,
			TotalSupply:      d.supply,
			InitialLiquidity: d.liquidity,
		}); err != nil {
			return fmt.Errorf("mint %s: %w", d.symbol, err)
		}
	}
	return nil
}

// startHTTPServer starts the HTTP server for health/metrics/feed/status.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// WebSocket event feed
	mux.Handle("/ws", s.hub)

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status       string `json:"status"`
	Uptime       string `json:"uptime"`
	ActiveTokens int    `json:"active_tokens"`
	Bots         int    `json:"bots"`
	Subscribers  int    `json:"subscribers"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := "running"
	if !s.coord.Running() {
		status = "stopped"
	}

	active, err := s.stores.tokens.ListActive(r.Context(), 0)
	if err != nil {
		s.logger.Printf("status: list active tokens: %v", err)
	}

	resp := StatusResponse{
		Status:       status,
		Uptime:       time.Since(s.started).String(),
		ActiveTokens: len(active),
		Bots:         len(s.population.Bots()),
		Subscribers:  s.hub.ClientCount(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// envInt64 reads an int64 env var, falling back to def when unset or invalid.
func envInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
