package api

import (
	"github.com/gorilla/mux"

	"github.com/talentlink/matchengine/internal/cache"
	"github.com/talentlink/matchengine/internal/config"
	"github.com/talentlink/matchengine/internal/jobs"
	"github.com/talentlink/matchengine/internal/match"
	"github.com/talentlink/matchengine/internal/repository/sqlite"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, repo *sqlite.SQLiteRepo, engine *match.Engine, queue *jobs.WorkerPool) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	topCache := cache.NewTopMatches(cfg.CacheTTL)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	candidatesHandler := NewCandidatesHandler(repo)
	positionsHandler := NewPositionsHandler(repo)
	configsHandler := NewConfigsHandler(repo)
	matchesHandler := NewMatchesHandler(engine, repo, repo, topCache)
	runsHandler := NewRunsHandler(repo, queue)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Candidate endpoints
	apiV1.HandleFunc("/candidates", candidatesHandler.CreateCandidate).Methods("POST")
	apiV1.HandleFunc("/candidates", candidatesHandler.ListCandidates).Methods("GET")
	apiV1.HandleFunc("/candidates/{id}", candidatesHandler.GetCandidate).Methods("GET")
	apiV1.HandleFunc("/candidates/{id}/matches", matchesHandler.TopForCandidate).Methods("GET")
	apiV1.HandleFunc("/candidates/{id}/stats", matchesHandler.StatsForCandidate).Methods("GET")

	// Position endpoints
	apiV1.HandleFunc("/positions", positionsHandler.CreatePosition).Methods("POST")
	apiV1.HandleFunc("/positions", positionsHandler.ListPositions).Methods("GET")
	apiV1.HandleFunc("/positions/{id}", positionsHandler.GetPosition).Methods("GET")
	apiV1.HandleFunc("/positions/{id}/matches", matchesHandler.TopForPosition).Methods("GET")
	apiV1.HandleFunc("/positions/{id}/stats", matchesHandler.StatsForPosition).Methods("GET")

	// Algorithm config endpoints
	apiV1.HandleFunc("/configs", configsHandler.SaveConfig).Methods("POST")
	apiV1.HandleFunc("/configs", configsHandler.ListConfigs).Methods("GET")
	apiV1.HandleFunc("/configs/active", configsHandler.GetActiveConfig).Methods("GET")
	apiV1.HandleFunc("/configs/activate", configsHandler.ActivateConfig).Methods("POST")

	// Match endpoints
	apiV1.HandleFunc("/matches/calculate", matchesHandler.Calculate).Methods("POST")
	apiV1.HandleFunc("/matches/{candidate_id}/{position_id}", matchesHandler.GetResult).Methods("GET")

	// Batch run endpoints
	apiV1.HandleFunc("/runs", runsHandler.CreateRun).Methods("POST")
	apiV1.HandleFunc("/runs/{id}", runsHandler.GetRun).Methods("GET")

	return r
}
