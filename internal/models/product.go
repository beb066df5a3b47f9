package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the master record for a candidate import product. Optional
// numeric fields stay nil until the operator fills them in; the evaluation
// engine treats nil as "not yet known", never as zero cost.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`

	ReferenceListingURL string `json:"reference_listing_url"`
	SupplierURL         string `json:"supplier_url"`

	SupplierID       *uuid.UUID `json:"supplier_id"`
	RegulatoryCodeID *uuid.UUID `json:"regulatory_code_id"`

	// Physical attributes
	WeightKg *float64 `json:"weight_kg"`
	LengthCm *float64 `json:"length_cm"`
	WidthCm  *float64 `json:"width_cm"`
	HeightCm *float64 `json:"height_cm"`
	Fragile  bool     `json:"fragile"`

	// Base unit costs (USD)
	FobPriceUSD  *float64 `json:"fob_price_usd"`
	FreightUSD   *float64 `json:"freight_usd"`
	InsuranceUSD *float64 `json:"insurance_usd"`

	// Brand / intellectual property
	IsFamousBrand         bool `json:"is_famous_brand"`
	HasBrandAuthorization bool `json:"has_brand_authorization"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegulatoryCode carries the administrative-treatment flags for a customs
// classification code (e.g. "39269090"). Read-only input to blocker detection.
type RegulatoryCode struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`

	RequiresLicense  bool `json:"requires_license"`
	SanitaryControl  bool `json:"sanitary_control"`
	TelecomControl   bool `json:"telecom_control"`
	MetrologyControl bool `json:"metrology_control"`
	Antidumping      bool `json:"antidumping"`

	CreatedAt time.Time `json:"created_at"`
}

// MarketSnapshot holds operator-collected marketplace signals for a product.
// At most one per product; its absence means the market is unknown.
type MarketSnapshot struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`

	PriceAverageBRL *float64 `json:"price_average_brl"`

	// Demand
	SalesPerDay   *int `json:"sales_per_day"`
	SalesPerMonth *int `json:"sales_per_month"`
	Visits        *int `json:"visits"`

	// Competition
	RankingPosition *int     `json:"ranking_position"`
	FullRatioPct    *float64 `json:"full_ratio_pct"`
	CompetitorCount *int     `json:"competitor_count"`
	ListingAgeDays  *int     `json:"listing_age_days"`
	AvgReviews      *float64 `json:"avg_reviews"`

	UpdatedAt time.Time `json:"updated_at"`
}

// ImportSimulation is one persisted scenario run. Rows are append-only; the
// most recent one per product seeds the defaults for new scenario runs.
type ImportSimulation struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`

	Quantity     int     `json:"quantity"`
	ExchangeRate float64 `json:"exchange_rate"`

	FobTotalUSD       float64 `json:"fob_total_usd"`
	FreightTotalUSD   float64 `json:"freight_total_usd"`
	InsuranceTotalUSD float64 `json:"insurance_total_usd"`
	CustomsValueUSD   float64 `json:"customs_value_usd"`

	EstimatedTotalCostUSD float64 `json:"estimated_total_cost_usd"`
	EstimatedTotalCostBRL float64 `json:"estimated_total_cost_brl"`
	UnitCostBRL           float64 `json:"unit_cost_brl"`

	TargetSalePriceBRL float64 `json:"target_sale_price_brl"`
	EstimatedMarginPct float64 `json:"estimated_margin_pct"`

	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`

	CreatedAt time.Time `json:"created_at"`
}

// Decision values recorded by a human operator for a product.
const (
	DecisionApproveTest   = "approve_test"
	DecisionApproveImport = "approve_import"
	DecisionReject        = "reject"
	DecisionNeedsData     = "needs_data"
)

// ProductDecision is a human judgment recorded against a product.
type ProductDecision struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`

	Decision  string `json:"decision"` // approve_test | approve_import | reject | needs_data
	Reason    string `json:"reason"`
	DecidedBy string `json:"decided_by"`

	CreatedAt time.Time `json:"created_at"`
}

// Supplier is a sourcing contact a product may reference.
type Supplier struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email"`
	Country      string    `json:"country"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}
