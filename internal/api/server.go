package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mannaalive/import-api/internal/db"
	"github.com/mannaalive/import-api/internal/eval"
	"github.com/mannaalive/import-api/internal/models"
)

type Server struct {
	Store  *db.Store
	Engine *eval.Engine
	Echo   *echo.Echo
	DB     *pgxpool.Pool
}

func NewServer(pool *pgxpool.Pool, engine *eval.Engine) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:4200"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s := &Server{
		DB:     pool,
		Store:  db.NewStore(pool),
		Engine: engine,
		Echo:   e,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")

	// Products
	api.POST("/products", s.handleCreateProduct)
	api.GET("/products", s.handleListProducts)
	// Static paths before :id so echo does not capture them as IDs.
	api.GET("/products/triage", s.handleTriage)
	api.GET("/products/scores/ranking", s.handleRanking)
	api.GET("/products/:id", s.handleGetProduct)
	api.PATCH("/products/:id", s.handleUpdateProduct)
	api.DELETE("/products/:id", s.handleDeleteProduct)

	// Market data
	api.POST("/products/:id/market-data", s.handleUpsertMarketData)
	api.GET("/products/:id/market-data", s.handleGetMarketData)

	// Simulations
	api.POST("/products/:id/simulate", s.handleSimulate)
	api.GET("/products/:id/simulations/last", s.handleLastSimulation)

	// Evaluation
	api.GET("/products/:id/score", s.handleScore)
	api.GET("/products/:id/evaluation", s.handleEvaluation)

	// Decisions
	api.POST("/products/:id/decisions", s.handleCreateDecision)
	api.GET("/products/:id/decisions/latest", s.handleLatestDecision)

	// Regulatory codes
	api.POST("/regulatory-codes", s.handleCreateRegulatoryCode)
	api.GET("/regulatory-codes", s.handleListRegulatoryCodes)
	api.GET("/regulatory-codes/:id", s.handleGetRegulatoryCode)

	// Suppliers
	api.POST("/suppliers", s.handleCreateSupplier)
	api.GET("/suppliers", s.handleListSuppliers)

	api.GET("/stats", s.handleGetStats)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func parseID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

// Products

func (s *Server) handleCreateProduct(c echo.Context) error {
	var p models.Product
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(p.Name) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	exists, err := s.Store.ProductNameExists(c.Request().Context(), p.Name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if exists {
		return c.JSON(http.StatusConflict, map[string]string{"error": "A product with this name already exists"})
	}

	if err := s.Store.CreateProduct(c.Request().Context(), &p); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleListProducts(c echo.Context) error {
	limit := 200
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 1000 {
		limit = l
	}
	products, err := s.Store.ListProducts(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, products)
}

func (s *Server) handleGetProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}
	p, err := s.Store.GetProduct(c.Request().Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleUpdateProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}
	var params db.UpdateProductParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	p, err := s.Store.UpdateProduct(c.Request().Context(), id, params)
	if errors.Is(err, db.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeleteProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}
	err = s.Store.DeleteProduct(c.Request().Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// Market data

func (s *Server) handleUpsertMarketData(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}
	if _, err := s.Store.GetProduct(c.Request().Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	var m models.MarketSnapshot
	if err := c.Bind(&m); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	m.ProductID = id

	if err := s.Store.UpsertMarketData(c.Request().Context(), &m); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, m)
}

func (s *Server) handleGetMarketData(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}
	m, err := s.Store.GetMarketData(c.Request().Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No market data for this product"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, m)
}

// Simulations

func (s *Server) handleSimulate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}
	p, err := s.Store.GetProduct(c.Request().Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	var req eval.SimulationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	sim, err := s.Engine.SimulateImport(*p, req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := s.Store.InsertSimulation(c.Request().Context(), &sim); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, sim)
}

func (s *Server) handleLastSimulation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}
	sim, err := s.Store.LatestSimulation(c.Request().Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No simulation for this product"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, sim)
}

// Evaluation

// loadEvaluationInput gathers every record the engine reads for one product.
// Missing side records come back nil; only a missing product is an error.
func (s *Server) loadEvaluationInput(ctx context.Context, id uuid.UUID) (eval.EvaluationInput, error) {
	p, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return eval.EvaluationInput{}, err
	}

	in := eval.EvaluationInput{Product: *p}

	if p.RegulatoryCodeID != nil {
		if reg, err := s.Store.GetRegulatoryCode(ctx, *p.RegulatoryCodeID); err == nil {
			in.Regulatory = reg
		}
	}
	if m, err := s.Store.GetMarketData(ctx, id); err == nil {
		in.Market = m
	}
	if sim, err := s.Store.LatestSimulation(ctx, id); err == nil {
		in.LatestSimulation = sim
	}
	if d, err := s.Store.LatestDecision(ctx, id); err == nil {
		in.LatestDecision = d
	}

	return in, nil
}

func (s *Server) handleScore(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}
	in, err := s.loadEvaluationInput(c.Request().Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	breakdown, err := s.Engine.Score(eval.ScoreInput{
		Product:          in.Product,
		Market:           in.Market,
		LatestSimulation: in.LatestSimulation,
	})
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, breakdown)
}

func (s *Server) handleEvaluation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}
	in, err := s.loadEvaluationInput(c.Request().Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, s.Engine.Evaluate(in))
}

type rankedProduct struct {
	ProductID   uuid.UUID            `json:"product_id"`
	ProductName string               `json:"product_name"`
	Category    string               `json:"category,omitempty"`
	Score       *eval.ScoreBreakdown `json:"score"`
}

func (s *Server) handleRanking(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 50
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 500 {
		limit = l
	}

	products, err := s.Store.ListProducts(ctx, 1000)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	markets, err := s.Store.MarketDataMap(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	sims, err := s.Store.LatestSimulations(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	ranked := make([]rankedProduct, 0, len(products))
	for _, p := range products {
		entry := rankedProduct{ProductID: p.ID, ProductName: p.Name, Category: p.Category}

		in := eval.ScoreInput{Product: p}
		if m, ok := markets[p.ID]; ok {
			snapshot := m
			in.Market = &snapshot
		}
		if sim, ok := sims[p.ID]; ok {
			latest := sim
			in.LatestSimulation = &latest
		}

		// One malformed product must not take down the whole ranking.
		if b, err := s.Engine.Score(in); err == nil {
			entry.Score = &b
		}
		ranked = append(ranked, entry)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return rankScore(ranked[i]) > rankScore(ranked[j])
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return c.JSON(http.StatusOK, ranked)
}

// rankScore orders unscorable products below every scored one.
func rankScore(r rankedProduct) int {
	if r.Score == nil {
		return -1
	}
	return r.Score.TotalScore
}

func (s *Server) handleTriage(c echo.Context) error {
	ctx := c.Request().Context()

	includeScore := c.QueryParam("include_score") != "false"

	limit := 1000
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 1000 {
		limit = l
	}

	products, err := s.Store.ListProducts(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	markets, err := s.Store.MarketDataMap(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	sims, err := s.Store.LatestSimulations(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	entries := s.Engine.BuildTriage(eval.TriageInput{
		Products:          products,
		LatestSimulations: sims,
		MarketData:        markets,
		IncludeScore:      includeScore,
	})
	return c.JSON(http.StatusOK, entries)
}

// Decisions

func (s *Server) handleCreateDecision(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}
	if _, err := s.Store.GetProduct(c.Request().Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	var d models.ProductDecision
	if err := c.Bind(&d); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	switch d.Decision {
	case models.DecisionApproveTest, models.DecisionApproveImport, models.DecisionReject, models.DecisionNeedsData:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid decision value"})
	}
	d.ProductID = id

	if err := s.Store.CreateDecision(c.Request().Context(), &d); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, d)
}

func (s *Server) handleLatestDecision(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}
	d, err := s.Store.LatestDecision(c.Request().Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No decision for this product"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, d)
}

// Regulatory codes

func (s *Server) handleCreateRegulatoryCode(c echo.Context) error {
	var r models.RegulatoryCode
	if err := c.Bind(&r); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(r.Code) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "code is required"})
	}
	if err := s.Store.CreateRegulatoryCode(c.Request().Context(), &r); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, r)
}

func (s *Server) handleListRegulatoryCodes(c echo.Context) error {
	codes, err := s.Store.ListRegulatoryCodes(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, codes)
}

func (s *Server) handleGetRegulatoryCode(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid regulatory code ID"})
	}
	r, err := s.Store.GetRegulatoryCode(c.Request().Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Regulatory code not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, r)
}

// Suppliers

func (s *Server) handleCreateSupplier(c echo.Context) error {
	var sp models.Supplier
	if err := c.Bind(&sp); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(sp.Name) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	if err := s.Store.CreateSupplier(c.Request().Context(), &sp); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, sp)
}

func (s *Server) handleListSuppliers(c echo.Context) error {
	suppliers, err := s.Store.ListSuppliers(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, suppliers)
}

func (s *Server) handleGetStats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := s.Store.GetStats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	// Triage status counts are derived, not stored.
	products, err := s.Store.ListProducts(ctx, 1000)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	markets, err := s.Store.MarketDataMap(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	sims, err := s.Store.LatestSimulations(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	statusCounts := map[string]int{}
	for _, e := range s.Engine.BuildTriage(eval.TriageInput{
		Products:          products,
		LatestSimulations: sims,
		MarketData:        markets,
	}) {
		statusCounts[string(e.Status)]++
	}
	stats["triage_status_counts"] = statusCounts

	return c.JSON(http.StatusOK, stats)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}
