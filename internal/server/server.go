package server

import (
	"context"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/umamilabs/gurume/internal/catalog"
	"github.com/umamilabs/gurume/internal/config"
	"github.com/umamilabs/gurume/internal/core"
	"github.com/umamilabs/gurume/internal/directory"
	"github.com/umamilabs/gurume/internal/driver"
	"github.com/umamilabs/gurume/internal/llm"
	"github.com/umamilabs/gurume/internal/rating"
)

type Server struct {
	Recommender *core.Recommender
	logger      zerolog.Logger
}

// NewServer wires the full stack from config plus environment overrides.
func NewServer(logger zerolog.Logger) *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfgPath).Msg("config file not loaded, using defaults")
		cfg = config.Default()
	}
	applyEnvOverrides(cfg)

	// default to a local Ollama when no provider is configured
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "ollama"
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = "http://localhost:11434"
		}
	}

	d, err := driver.NewNeo4jDriver(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to store")
	}

	embedder, err := llm.NewEmbedder(context.Background(), cfg.LLM)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedding client")
	}

	cat := catalog.New(d, embedder, logger)
	resolver := directory.NewResolver(cfg.Directory.BaseURL, cfg.DirectoryTimeout(), cfg.Directory.RequestsPerSec, logger)
	yelp := rating.NewYelpClient(cfg.Yelp.APIKey, cfg.Yelp.BaseURL, logger)
	places := rating.NewPlacesClient(cfg.Places.APIKey, cfg.Places.BaseURL, logger)

	rec := core.NewRecommender(cat, resolver, yelp, places, cfg.Concurrency.EnhanceFanout, logger)
	if err := rec.BuildIndices(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("index build failed, continuing")
	}

	return &Server{Recommender: rec, logger: logger.With().Str("component", "server").Logger()}
}

func applyEnvOverrides(cfg *config.Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.LLM.Provider, "LLM_PROVIDER")
	set(&cfg.LLM.EmbeddingModel, "LLM_EMBEDDING_MODEL")
	set(&cfg.LLM.APIKey, "LLM_API_KEY")
	set(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	set(&cfg.Neo4j.URI, "NEO4J_URI")
	set(&cfg.Neo4j.User, "NEO4J_USER")
	set(&cfg.Neo4j.Password, "NEO4J_PASSWORD")
	set(&cfg.Yelp.APIKey, "YELP_API_KEY")
	set(&cfg.Places.APIKey, "PLACES_API_KEY")
	set(&cfg.Directory.BaseURL, "DIRECTORY_BASE_URL")
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/search", s.Search)
	r.POST("/lookup", s.Lookup)
	r.POST("/resolve", s.Resolve)
	r.POST("/summary", s.Summary)
	r.POST("/yelp/validate", s.ValidateYelp)
	r.POST("/yelp/enhance", s.Enhance)
	r.POST("/standardize", s.StandardizeScore)
	r.POST("/enrich", s.Enrich)
	r.GET("/places/search", s.SearchPlaces)

	return r
}

type SearchRequest struct {
	Query   string          `json:"query"`
	Filters catalog.Filters `json:"filters"`
	K       int             `json:"k"`
}

func (s *Server) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	resp := s.Recommender.SearchCatalog(c.Request.Context(), req.Query, req.Filters, req.K)
	c.JSON(http.StatusOK, resp)
}

type LookupRequest struct {
	Name     string  `json:"name"`
	MinScore float64 `json:"min_score"`
}

func (s *Server) Lookup(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	match, err := s.Recommender.LookupCatalogByName(c.Request.Context(), req.Name, req.MinScore)
	if err != nil {
		s.logger.Error().Err(err).Msg("lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if match == nil {
		c.JSON(http.StatusOK, gin.H{"match": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": match})
}

type ResolveRequest struct {
	Name     string `json:"name"`
	AreaHint string `json:"area_hint"`
}

func (s *Server) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	c.JSON(http.StatusOK, s.Recommender.ResolveDirectory(c.Request.Context(), req.Name, req.AreaHint))
}

type SummaryRequest struct {
	URL string `json:"url"`
}

func (s *Server) Summary(c *gin.Context) {
	var req SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	c.JSON(http.StatusOK, s.Recommender.FetchDirectorySummary(c.Request.Context(), req.URL))
}

type ValidateRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (s *Server) ValidateYelp(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	c.JSON(http.StatusOK, s.Recommender.ValidateYelpMatch(c.Request.Context(), req.Name, req.Location))
}

type EnhanceRequest struct {
	Names    []string `json:"names"`
	Location string   `json:"location"`
}

func (s *Server) Enhance(c *gin.Context) {
	var req EnhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Names) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": s.Recommender.EnhanceBatch(c.Request.Context(), req.Names, req.Location)})
}

func (s *Server) StandardizeScore(c *gin.Context) {
	var triple rating.Triple
	if err := c.ShouldBindJSON(&triple); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"standardized_score": s.Recommender.StandardizeScore(triple)})
}

type EnrichRequest struct {
	Name     string `json:"name"`
	AreaHint string `json:"area_hint"`
}

func (s *Server) Enrich(c *gin.Context) {
	var req EnrichRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	c.JSON(http.StatusOK, s.Recommender.Enrich(c.Request.Context(), req.Name, req.AreaHint))
}

func (s *Server) SearchPlaces(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	radius, _ := strconv.Atoi(c.DefaultQuery("radius", "0"))
	places, err := s.Recommender.SearchPlaces(c.Request.Context(), query, c.Query("location"), radius)
	if err != nil {
		s.logger.Error().Err(err).Msg("places search failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "places search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"places": places})
}
