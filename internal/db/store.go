package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mannaalive/import-api/internal/models"
)

// ErrNotFound marks a referenced record as absent. Callers branch on the
// sentinel instead of catching a generic failure.
var ErrNotFound = errors.New("not found")

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// productCols is the comprehensive column list for all product queries.
const productCols = `id, name, description, category, reference_listing_url, supplier_url,
	supplier_id, regulatory_code_id,
	weight_kg, length_cm, width_cm, height_cm, fragile,
	fob_price_usd, freight_usd, insurance_usd,
	is_famous_brand, has_brand_authorization,
	created_at, updated_at`

func scanProduct(scan func(dest ...any) error) (models.Product, error) {
	var p models.Product
	err := scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.ReferenceListingURL, &p.SupplierURL,
		&p.SupplierID, &p.RegulatoryCodeID,
		&p.WeightKg, &p.LengthCm, &p.WidthCm, &p.HeightCm, &p.Fragile,
		&p.FobPriceUSD, &p.FreightUSD, &p.InsuranceUSD,
		&p.IsFamousBrand, &p.HasBrandAuthorization,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO products (
			name, description, category, reference_listing_url, supplier_url,
			supplier_id, regulatory_code_id,
			weight_kg, length_cm, width_cm, height_cm, fragile,
			fob_price_usd, freight_usd, insurance_usd,
			is_famous_brand, has_brand_authorization
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING id, created_at, updated_at
	`,
		p.Name, p.Description, p.Category, p.ReferenceListingURL, p.SupplierURL,
		p.SupplierID, p.RegulatoryCodeID,
		p.WeightKg, p.LengthCm, p.WidthCm, p.HeightCm, p.Fragile,
		p.FobPriceUSD, p.FreightUSD, p.InsuranceUSD,
		p.IsFamousBrand, p.HasBrandAuthorization,
	)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("insert product failed: %w", err)
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productCols), id)
	p, err := scanProduct(row.Scan)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product failed: %w", err)
	}
	return &p, nil
}

func (s *Store) ProductNameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM products WHERE name = $1)", name).Scan(&exists)
	return exists, err
}

func (s *Store) ListProducts(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		"SELECT %s FROM products ORDER BY created_at DESC LIMIT $1", productCols), limit)
	if err != nil {
		return nil, fmt.Errorf("list products failed: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan product failed: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateProductParams carries the patchable product fields; nil means "leave
// unchanged".
type UpdateProductParams struct {
	Name                  *string     `json:"name"`
	Description           *string     `json:"description"`
	Category              *string     `json:"category"`
	ReferenceListingURL   *string     `json:"reference_listing_url"`
	SupplierURL           *string     `json:"supplier_url"`
	SupplierID            *uuid.UUID  `json:"supplier_id"`
	RegulatoryCodeID      *uuid.UUID  `json:"regulatory_code_id"`
	WeightKg              *float64    `json:"weight_kg"`
	LengthCm              *float64    `json:"length_cm"`
	WidthCm               *float64    `json:"width_cm"`
	HeightCm              *float64    `json:"height_cm"`
	Fragile               *bool       `json:"fragile"`
	FobPriceUSD           *float64    `json:"fob_price_usd"`
	FreightUSD            *float64    `json:"freight_usd"`
	InsuranceUSD          *float64    `json:"insurance_usd"`
	IsFamousBrand         *bool       `json:"is_famous_brand"`
	HasBrandAuthorization *bool       `json:"has_brand_authorization"`
}

func (s *Store) UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (*models.Product, error) {
	set := []string{"updated_at = NOW()"}
	var args []any
	argIdx := 1

	add := func(col string, value any) {
		set = append(set, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, value)
		argIdx++
	}

	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Description != nil {
		add("description", *params.Description)
	}
	if params.Category != nil {
		add("category", *params.Category)
	}
	if params.ReferenceListingURL != nil {
		add("reference_listing_url", *params.ReferenceListingURL)
	}
	if params.SupplierURL != nil {
		add("supplier_url", *params.SupplierURL)
	}
	if params.SupplierID != nil {
		add("supplier_id", *params.SupplierID)
	}
	if params.RegulatoryCodeID != nil {
		add("regulatory_code_id", *params.RegulatoryCodeID)
	}
	if params.WeightKg != nil {
		add("weight_kg", *params.WeightKg)
	}
	if params.LengthCm != nil {
		add("length_cm", *params.LengthCm)
	}
	if params.WidthCm != nil {
		add("width_cm", *params.WidthCm)
	}
	if params.HeightCm != nil {
		add("height_cm", *params.HeightCm)
	}
	if params.Fragile != nil {
		add("fragile", *params.Fragile)
	}
	if params.FobPriceUSD != nil {
		add("fob_price_usd", *params.FobPriceUSD)
	}
	if params.FreightUSD != nil {
		add("freight_usd", *params.FreightUSD)
	}
	if params.InsuranceUSD != nil {
		add("insurance_usd", *params.InsuranceUSD)
	}
	if params.IsFamousBrand != nil {
		add("is_famous_brand", *params.IsFamousBrand)
	}
	if params.HasBrandAuthorization != nil {
		add("has_brand_authorization", *params.HasBrandAuthorization)
	}

	args = append(args, id)
	sql := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), argIdx, productCols)

	row := s.pool.QueryRow(ctx, sql, args...)
	p, err := scanProduct(row.Scan)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update product failed: %w", err)
	}
	return &p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	// Simulations and decisions first; the FK cascade covers market data.
	if _, err := tx.Exec(ctx, "DELETE FROM import_simulations WHERE product_id = $1", id); err != nil {
		return fmt.Errorf("delete simulations failed: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM product_decisions WHERE product_id = $1", id); err != nil {
		return fmt.Errorf("delete decisions failed: %w", err)
	}

	tag, err := tx.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete product failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}

	return tx.Commit(ctx)
}

// Market data

const marketCols = `id, product_id, price_average_brl, sales_per_day, sales_per_month, visits,
	ranking_position, full_ratio_pct, competitor_count, listing_age_days, avg_reviews, updated_at`

func scanMarket(scan func(dest ...any) error) (models.MarketSnapshot, error) {
	var m models.MarketSnapshot
	err := scan(
		&m.ID, &m.ProductID, &m.PriceAverageBRL, &m.SalesPerDay, &m.SalesPerMonth, &m.Visits,
		&m.RankingPosition, &m.FullRatioPct, &m.CompetitorCount, &m.ListingAgeDays, &m.AvgReviews, &m.UpdatedAt,
	)
	return m, err
}

func (s *Store) UpsertMarketData(ctx context.Context, m *models.MarketSnapshot) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO product_market_data (
			product_id, price_average_brl, sales_per_day, sales_per_month, visits,
			ranking_position, full_ratio_pct, competitor_count, listing_age_days, avg_reviews
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (product_id) DO UPDATE SET
			price_average_brl = COALESCE(EXCLUDED.price_average_brl, product_market_data.price_average_brl),
			sales_per_day = COALESCE(EXCLUDED.sales_per_day, product_market_data.sales_per_day),
			sales_per_month = COALESCE(EXCLUDED.sales_per_month, product_market_data.sales_per_month),
			visits = COALESCE(EXCLUDED.visits, product_market_data.visits),
			ranking_position = COALESCE(EXCLUDED.ranking_position, product_market_data.ranking_position),
			full_ratio_pct = COALESCE(EXCLUDED.full_ratio_pct, product_market_data.full_ratio_pct),
			competitor_count = COALESCE(EXCLUDED.competitor_count, product_market_data.competitor_count),
			listing_age_days = COALESCE(EXCLUDED.listing_age_days, product_market_data.listing_age_days),
			avg_reviews = COALESCE(EXCLUDED.avg_reviews, product_market_data.avg_reviews),
			updated_at = NOW()
		RETURNING id, updated_at
	`,
		m.ProductID, m.PriceAverageBRL, m.SalesPerDay, m.SalesPerMonth, m.Visits,
		m.RankingPosition, m.FullRatioPct, m.CompetitorCount, m.ListingAgeDays, m.AvgReviews,
	)
	if err := row.Scan(&m.ID, &m.UpdatedAt); err != nil {
		return fmt.Errorf("upsert market data failed: %w", err)
	}
	return nil
}

func (s *Store) GetMarketData(ctx context.Context, productID uuid.UUID) (*models.MarketSnapshot, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(
		"SELECT %s FROM product_market_data WHERE product_id = $1", marketCols), productID)
	m, err := scanMarket(row.Scan)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("market data for product %s: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get market data failed: %w", err)
	}
	return &m, nil
}

// MarketDataMap prefetches every market snapshot keyed by product, so batch
// triage does not look rows up one by one.
func (s *Store) MarketDataMap(ctx context.Context) (map[uuid.UUID]models.MarketSnapshot, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT %s FROM product_market_data", marketCols))
	if err != nil {
		return nil, fmt.Errorf("market data map failed: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]models.MarketSnapshot)
	for rows.Next() {
		m, err := scanMarket(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan market data failed: %w", err)
		}
		out[m.ProductID] = m
	}
	return out, rows.Err()
}

// Simulations

const simulationCols = `id, product_id, quantity, exchange_rate,
	fob_total_usd, freight_total_usd, insurance_total_usd, customs_value_usd,
	estimated_total_cost_usd, estimated_total_cost_brl, unit_cost_brl,
	target_sale_price_brl, estimated_margin_pct, approved, reason, created_at`

func scanSimulation(scan func(dest ...any) error) (models.ImportSimulation, error) {
	var sim models.ImportSimulation
	err := scan(
		&sim.ID, &sim.ProductID, &sim.Quantity, &sim.ExchangeRate,
		&sim.FobTotalUSD, &sim.FreightTotalUSD, &sim.InsuranceTotalUSD, &sim.CustomsValueUSD,
		&sim.EstimatedTotalCostUSD, &sim.EstimatedTotalCostBRL, &sim.UnitCostBRL,
		&sim.TargetSalePriceBRL, &sim.EstimatedMarginPct, &sim.Approved, &sim.Reason, &sim.CreatedAt,
	)
	return sim, err
}

func (s *Store) InsertSimulation(ctx context.Context, sim *models.ImportSimulation) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO import_simulations (
			product_id, quantity, exchange_rate,
			fob_total_usd, freight_total_usd, insurance_total_usd, customs_value_usd,
			estimated_total_cost_usd, estimated_total_cost_brl, unit_cost_brl,
			target_sale_price_brl, estimated_margin_pct, approved, reason
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id, created_at
	`,
		sim.ProductID, sim.Quantity, sim.ExchangeRate,
		sim.FobTotalUSD, sim.FreightTotalUSD, sim.InsuranceTotalUSD, sim.CustomsValueUSD,
		sim.EstimatedTotalCostUSD, sim.EstimatedTotalCostBRL, sim.UnitCostBRL,
		sim.TargetSalePriceBRL, sim.EstimatedMarginPct, sim.Approved, sim.Reason,
	)
	if err := row.Scan(&sim.ID, &sim.CreatedAt); err != nil {
		return fmt.Errorf("insert simulation failed: %w", err)
	}
	return nil
}

func (s *Store) LatestSimulation(ctx context.Context, productID uuid.UUID) (*models.ImportSimulation, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM import_simulations
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, simulationCols), productID)
	sim, err := scanSimulation(row.Scan)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("simulation for product %s: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest simulation failed: %w", err)
	}
	return &sim, nil
}

// LatestSimulations prefetches the newest simulation per product in a single
// query (max created_at per product), for the batch triage path.
func (s *Store) LatestSimulations(ctx context.Context) (map[uuid.UUID]models.ImportSimulation, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT DISTINCT ON (product_id) %s
		FROM import_simulations
		ORDER BY product_id, created_at DESC
	`, simulationCols))
	if err != nil {
		return nil, fmt.Errorf("latest simulations failed: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]models.ImportSimulation)
	for rows.Next() {
		sim, err := scanSimulation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan simulation failed: %w", err)
		}
		out[sim.ProductID] = sim
	}
	return out, rows.Err()
}

// Decisions

func (s *Store) CreateDecision(ctx context.Context, d *models.ProductDecision) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO product_decisions (product_id, decision, reason, decided_by)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at
	`, d.ProductID, d.Decision, d.Reason, d.DecidedBy)
	if err := row.Scan(&d.ID, &d.CreatedAt); err != nil {
		return fmt.Errorf("insert decision failed: %w", err)
	}
	return nil
}

func (s *Store) LatestDecision(ctx context.Context, productID uuid.UUID) (*models.ProductDecision, error) {
	var d models.ProductDecision
	err := s.pool.QueryRow(ctx, `
		SELECT id, product_id, decision, reason, decided_by, created_at
		FROM product_decisions
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, productID).Scan(&d.ID, &d.ProductID, &d.Decision, &d.Reason, &d.DecidedBy, &d.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("decision for product %s: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest decision failed: %w", err)
	}
	return &d, nil
}

// Regulatory codes

const regulatoryCols = `id, code, description, requires_license, sanitary_control,
	telecom_control, metrology_control, antidumping, created_at`

func scanRegulatory(scan func(dest ...any) error) (models.RegulatoryCode, error) {
	var r models.RegulatoryCode
	err := scan(
		&r.ID, &r.Code, &r.Description, &r.RequiresLicense, &r.SanitaryControl,
		&r.TelecomControl, &r.MetrologyControl, &r.Antidumping, &r.CreatedAt,
	)
	return r, err
}

func (s *Store) CreateRegulatoryCode(ctx context.Context, r *models.RegulatoryCode) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO regulatory_codes (
			code, description, requires_license, sanitary_control,
			telecom_control, metrology_control, antidumping
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at
	`, r.Code, r.Description, r.RequiresLicense, r.SanitaryControl,
		r.TelecomControl, r.MetrologyControl, r.Antidumping)
	if err := row.Scan(&r.ID, &r.CreatedAt); err != nil {
		return fmt.Errorf("insert regulatory code failed: %w", err)
	}
	return nil
}

func (s *Store) GetRegulatoryCode(ctx context.Context, id uuid.UUID) (*models.RegulatoryCode, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(
		"SELECT %s FROM regulatory_codes WHERE id = $1", regulatoryCols), id)
	r, err := scanRegulatory(row.Scan)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("regulatory code %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get regulatory code failed: %w", err)
	}
	return &r, nil
}

func (s *Store) ListRegulatoryCodes(ctx context.Context) ([]models.RegulatoryCode, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		"SELECT %s FROM regulatory_codes ORDER BY code", regulatoryCols))
	if err != nil {
		return nil, fmt.Errorf("list regulatory codes failed: %w", err)
	}
	defer rows.Close()

	codes := []models.RegulatoryCode{}
	for rows.Next() {
		r, err := scanRegulatory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan regulatory code failed: %w", err)
		}
		codes = append(codes, r)
	}
	return codes, rows.Err()
}

// Suppliers

func (s *Store) CreateSupplier(ctx context.Context, sp *models.Supplier) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO suppliers (name, contact_email, country, notes)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at
	`, sp.Name, sp.ContactEmail, sp.Country, sp.Notes)
	if err := row.Scan(&sp.ID, &sp.CreatedAt); err != nil {
		return fmt.Errorf("insert supplier failed: %w", err)
	}
	return nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, contact_email, country, notes, created_at FROM suppliers ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list suppliers failed: %w", err)
	}
	defer rows.Close()

	suppliers := []models.Supplier{}
	for rows.Next() {
		var sp models.Supplier
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.ContactEmail, &sp.Country, &sp.Notes, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan supplier failed: %w", err)
		}
		suppliers = append(suppliers, sp)
	}
	return suppliers, rows.Err()
}

// Stats

func (s *Store) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&total)
	stats["products"] = total

	var withMarket int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM product_market_data").Scan(&withMarket)
	stats["with_market_data"] = withMarket

	var simulations int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM import_simulations").Scan(&simulations)
	stats["simulations"] = simulations

	decisionCounts := map[string]int{}
	rows, err := s.pool.Query(ctx, "SELECT decision, COUNT(*) FROM product_decisions GROUP BY decision")
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var decision string
			var count int
			if scanErr := rows.Scan(&decision, &count); scanErr == nil {
				decisionCounts[decision] = count
			}
		}
	}
	stats["decision_counts"] = decisionCounts

	return stats, nil
}
