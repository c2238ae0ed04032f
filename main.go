package main

import (
	"log"
	"net/http"
	"os"
)

/* ======================
   Request / Response Types
   ====================== */

type SimpleResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type VoteRequest struct {
	OptionID string `json:"optionId"`
}

type VoteResponse struct {
	OK           bool   `json:"ok"`
	Error        string `json:"error,omitempty"`
	DayKey       string `json:"dayKey,omitempty"`
	UserHasVoted bool   `json:"userHasVoted,omitempty"`
}

type PollResponse struct {
	OK          bool         `json:"ok"`
	Error       string       `json:"error,omitempty"`
	Demo        bool         `json:"demo,omitempty"`
	Boost       *BoostInfo   `json:"boost,omitempty"`
	Penalty     *PenaltyInfo `json:"penalty,omitempty"`
	RateLimited bool         `json:"rateLimited"`
}

type ClaimResponse struct {
	OK    bool               `json:"ok"`
	Error string             `json:"error,omitempty"`
	State *StateSyncResponse `json:"state,omitempty"`
}

type AdminResetResponse struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	DayKey    string `json:"dayKey,omitempty"`
	ResetAtMs int64  `json:"resetAtMs,omitempty"`
}

type AdminPenaltyRequest struct {
	DeltaEnergy int64  `json:"deltaEnergy"`
	Reason      string `json:"reason,omitempty"`
}

type AdminPenaltyResponse struct {
	OK                 bool   `json:"ok"`
	Error              string `json:"error,omitempty"`
	DeltaEnergyApplied int64  `json:"deltaEnergyApplied"`
}

// Points awarded by discrete actions.
const (
	votePoints  = 50
	claimPoints = 200
	demoPoints  = 25

	// Energy a cast vote itself contributes.
	voteEnergy = 5
)

/* ======================
   App
   ====================== */

// App bundles the injected collaborators every handler needs.
type App struct {
	store     Store
	identity  Identity
	stats     StatsProvider
	locks     *dayLocks
	community string
	contentID string
}

/* ======================
   main()
   ====================== */

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	log.Println("App environment:", env)

	devMode := os.Getenv("DEV_MODE") == "true"
	if devMode {
		log.Println("⚠️  DEV MODE ENABLED")
	}

	if path := os.Getenv("GAME_CONFIG_PATH"); path != "" {
		if err := LoadDefaultGameConfig(path); err != nil {
			log.Fatal("Failed to load game config:", err)
		}
		log.Println("Loaded game config from", path)
	}

	store, closer := openStore(devMode)
	if closer != nil {
		defer closer()
	}

	community := os.Getenv("COMMUNITY_ID")
	if community == "" {
		community = "local"
	}

	var stats StatsProvider = noStats{}
	if statsURL := os.Getenv("STATS_URL"); statsURL != "" {
		stats = newHTTPStats(statsURL)
		log.Println("Stats provider:", statsURL)
	}

	app := &App{
		store:     store,
		identity:  newHeaderIdentity(os.Getenv("MODERATOR_USERS")),
		stats:     stats,
		locks:     newDayLocks(),
		community: community,
		contentID: os.Getenv("CONTENT_ID"),
	}

	if app.contentID != "" {
		startPollLoop(app)
	}

	mux := http.NewServeMux()
	registerRoutes(mux, app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	addr := "0.0.0.0:" + port
	log.Println("Listening on", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("server failed:", err)
	}
}

func openStore(devMode bool) (Store, func() error) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		store, err := openPostgresStore(dbURL)
		if err != nil {
			log.Fatal("failed to open database:", err)
		}
		log.Println("Connected to PostgreSQL")
		return store, store.Close
	}

	if boltPath := os.Getenv("BOLT_PATH"); boltPath != "" {
		store, err := openBoltStore(boltPath)
		if err != nil {
			log.Fatal("failed to open bolt store:", err)
		}
		log.Println("Opened bolt store at", boltPath)
		return store, store.Close
	}

	if !devMode {
		log.Fatal("DATABASE_URL or BOLT_PATH is required outside DEV_MODE")
	}
	log.Println("Using in-memory store (DEV_MODE)")
	return newMemoryStore(), nil
}

/* ======================
   Routes
   ====================== */

func registerRoutes(mux *http.ServeMux, app *App) {
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/api/state", stateHandler(app))
	mux.HandleFunc("/api/poll", pollHandler(app))
	mux.HandleFunc("/api/vote", voteHandler(app))
	mux.HandleFunc("/api/claim", claimHandler(app))
	mux.HandleFunc("/api/admin/resetDay", adminResetDayHandler(app))
	mux.HandleFunc("/api/admin/penalty", adminPenaltyHandler(app))
	mux.HandleFunc("/events", eventsHandler(app))
}
