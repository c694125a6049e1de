package http

import (
	"errors"
	"io"
	"math/big"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/swap-router/internal/common"
	"github.com/hxuan190/swap-router/internal/domain"
	"github.com/hxuan190/swap-router/internal/http/httputil"
	"github.com/hxuan190/swap-router/internal/services/market"
)

// maxBodyBytes bounds admin import payloads.
const maxBodyBytes = 8 << 20

// PoolService is the part of market.Service the HTTP layer needs.
type PoolService interface {
	Ingest(pools ...*domain.Pool) (int, error)
	Deactivate(addr solana.PublicKey) bool
	UpsertMints(mints ...domain.MintInfo) error
	GetStats() (int, uint64, uint64)
}

// GraphReader is the read side of router.Graph.
type GraphReader interface {
	GetAllPools() []*domain.Pool
	GetPool(addr solana.PublicKey) *domain.Pool
	GetAllMints() []domain.MintInfo
	Stats() (int, int, int, uint64)
}

type PoolHandler struct {
	graph     GraphReader
	marketSvc PoolService
}

func NewPoolHandler(graph GraphReader, marketSvc PoolService) *PoolHandler {
	return &PoolHandler{graph: graph, marketSvc: marketSvc}
}

func (h *PoolHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("/stats", h.getStats)
	pub.GET("/list", h.listPools)
	pub.GET("/:address", h.getPool)

	admin.POST("", h.importPools)
	admin.DELETE("/:address", h.deactivatePool)
}

func (h *PoolHandler) Root() string {
	return "/pools"
}

// PoolStatsResponse contains aggregated statistics about tracked liquidity pools
type PoolStatsResponse struct {
	// Total number of pools in the registry, active or not
	PoolCount int `json:"pool_count" example:"1247"`

	// Pools currently eligible for routing
	RoutablePoolCount int `json:"routable_pool_count" example:"1201"`

	// Distinct tokens reachable in the routing graph
	TokenCount int `json:"token_count" example:"388"`

	// Pool states applied since service start
	UpdateCount uint64 `json:"update_count" example:"45892"`

	// Pool states ignored because a newer slot was already applied
	StaleCount uint64 `json:"stale_count" example:"12"`

	// Version of the routing snapshot currently served
	SnapshotVersion uint64 `json:"snapshot_version" example:"1532"`
}

// @Summary Pool statistics
// @Tags pools
// @Produce json
// @Success 200 {object} httputil.Response{data=PoolStatsResponse}
// @Router /api/v1/pools/stats [get]
func (h *PoolHandler) getStats(c *gin.Context) {
	_, updates, stale := h.marketSvc.GetStats()
	total, routable, tokens, version := h.graph.Stats()
	httputil.HandleSuccess(c, PoolStatsResponse{
		PoolCount:         total,
		RoutablePoolCount: routable,
		TokenCount:        tokens,
		UpdateCount:       updates,
		StaleCount:        stale,
		SnapshotVersion:   version,
	})
}

// PoolInfo is the wire form of a constant-product pool
type PoolInfo struct {
	Address         string `json:"address" example:"HJPjoWUrhoZzkNfRpHuieeFk9WcZWjwy6PBjZ81ngndJ"`
	TokenMintA      string `json:"token_mint_a" example:"So11111111111111111111111111111111111111112"`
	TokenMintB      string `json:"token_mint_b" example:"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"`
	ReserveA        string `json:"reserve_a" example:"1234567890123"`
	ReserveB        string `json:"reserve_b" example:"9876543210987"`
	FeeNumerator    uint64 `json:"fee_numerator" example:"3"`
	FeeDenominator  uint64 `json:"fee_denominator" example:"1000"`
	Active          bool   `json:"active" example:"true"`
	LastUpdatedSlot uint64 `json:"last_updated_slot" example:"245831456"`
}

func toPoolInfo(pool *domain.Pool) PoolInfo {
	info := PoolInfo{
		Address:         pool.Address.String(),
		TokenMintA:      pool.TokenMintA.String(),
		TokenMintB:      pool.TokenMintB.String(),
		ReserveA:        "0",
		ReserveB:        "0",
		FeeNumerator:    pool.FeeNumerator,
		FeeDenominator:  pool.FeeDenominator,
		Active:          pool.Active,
		LastUpdatedSlot: pool.LastUpdatedSlot,
	}
	if pool.ReserveA != nil {
		info.ReserveA = pool.ReserveA.String()
	}
	if pool.ReserveB != nil {
		info.ReserveB = pool.ReserveB.String()
	}
	return info
}

// PoolListResponse contains paginated list of liquidity pools
type PoolListResponse struct {
	// Array of pool information objects for the current page
	Pools []PoolInfo `json:"pools"`

	// Total number of pools across all pages
	Total int `json:"total" example:"1247"`

	// Current page number (1-indexed)
	Page int `json:"page" example:"1"`

	// Number of pools per page (max 500)
	Limit int `json:"limit" example:"100"`

	// Total number of pages available
	Pages int `json:"pages" example:"13"`
}

// @Summary List pools
// @Tags pools
// @Produce json
// @Param page query int false "Page number, 1-indexed" default(1)
// @Param limit query int false "Pools per page, max 500" default(100)
// @Success 200 {object} httputil.Response{data=PoolListResponse}
// @Router /api/v1/pools/list [get]
func (h *PoolHandler) listPools(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	allPools := h.graph.GetAllPools()
	total := len(allPools)

	pages := (total + limit - 1) / limit

	// pages past the end are empty
	offset := total
	if page <= pages {
		offset = (page - 1) * limit
	}
	end := offset + limit
	if end > total {
		end = total
	}

	pools := make([]PoolInfo, 0, end-offset)
	for _, pool := range allPools[offset:end] {
		pools = append(pools, toPoolInfo(pool))
	}

	httputil.HandleSuccess(c, PoolListResponse{
		Pools: pools,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	})
}

// @Summary Get pool
// @Tags pools
// @Produce json
// @Param address path string true "Pool address"
// @Success 200 {object} httputil.Response{data=PoolInfo}
// @Failure 404 {object} httputil.Response
// @Router /api/v1/pools/{address} [get]
func (h *PoolHandler) getPool(c *gin.Context) {
	addr, err := solana.PublicKeyFromBase58(c.Param("address"))
	if err != nil {
		httputil.HandleBadRequest(c, "invalid pool address")
		return
	}

	pool := h.graph.GetPool(addr)
	if pool == nil {
		httputil.HandleNotFound(c, "pool not found")
		return
	}
	httputil.HandleSuccess(c, toPoolInfo(pool))
}

// PoolImportRequest carries pool states to upsert. Missing "active" defaults to true.
type PoolImportRequest struct {
	Pools []PoolImport `json:"pools"`
}

type PoolImport struct {
	Address         string `json:"address"`
	TokenMintA      string `json:"token_mint_a"`
	TokenMintB      string `json:"token_mint_b"`
	ReserveA        string `json:"reserve_a"`
	ReserveB        string `json:"reserve_b"`
	FeeNumerator    uint64 `json:"fee_numerator"`
	FeeDenominator  uint64 `json:"fee_denominator"`
	Active          *bool  `json:"active,omitempty"`
	LastUpdatedSlot uint64 `json:"last_updated_slot"`
}

type PoolImportResponse struct {
	Received int `json:"received"`
	Applied  int `json:"applied"`
}

func (p *PoolImport) toDomain() (*domain.Pool, error) {
	address, err := solana.PublicKeyFromBase58(p.Address)
	if err != nil {
		return nil, common.HTTPErrorBadRequest("invalid pool address " + p.Address)
	}
	mintA, err := solana.PublicKeyFromBase58(p.TokenMintA)
	if err != nil {
		return nil, common.HTTPErrorBadRequest("invalid token_mint_a for pool " + p.Address)
	}
	mintB, err := solana.PublicKeyFromBase58(p.TokenMintB)
	if err != nil {
		return nil, common.HTTPErrorBadRequest("invalid token_mint_b for pool " + p.Address)
	}
	reserveA, ok := new(big.Int).SetString(p.ReserveA, 10)
	if !ok {
		return nil, common.HTTPErrorBadRequest("invalid reserve_a for pool " + p.Address)
	}
	reserveB, ok := new(big.Int).SetString(p.ReserveB, 10)
	if !ok {
		return nil, common.HTTPErrorBadRequest("invalid reserve_b for pool " + p.Address)
	}

	active := true
	if p.Active != nil {
		active = *p.Active
	}

	return &domain.Pool{
		Address:         address,
		TokenMintA:      mintA,
		TokenMintB:      mintB,
		ReserveA:        reserveA,
		ReserveB:        reserveB,
		FeeNumerator:    p.FeeNumerator,
		FeeDenominator:  p.FeeDenominator,
		Active:          active,
		LastUpdatedSlot: p.LastUpdatedSlot,
	}, nil
}

// decodeBody reads a JSON request body with sonic.
func decodeBody(c *gin.Context, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		return common.HTTPErrorBadRequest("failed to read body")
	}
	if err := sonic.Unmarshal(body, v); err != nil {
		return common.HTTPErrorBadRequest("invalid json body: " + err.Error())
	}
	return nil
}

// @Summary Import pool states
// @Description Upsert pool states. States older than the stored slot are skipped.
// @Tags admin
// @Accept json
// @Produce json
// @Param X-Admin-Key header string true "Admin API key"
// @Param body body PoolImportRequest true "Pool states"
// @Success 200 {object} httputil.Response{data=PoolImportResponse}
// @Failure 400 {object} httputil.Response
// @Router /api/v1/admin/pools [post]
func (h *PoolHandler) importPools(c *gin.Context) {
	var req PoolImportRequest
	if err := decodeBody(c, &req); err != nil {
		httputil.HandleError(c, err)
		return
	}
	if len(req.Pools) == 0 {
		httputil.HandleBadRequest(c, "no pools in request")
		return
	}

	pools := make([]*domain.Pool, 0, len(req.Pools))
	for i := range req.Pools {
		pool, err := req.Pools[i].toDomain()
		if err != nil {
			httputil.HandleError(c, err)
			return
		}
		pools = append(pools, pool)
	}

	applied, err := h.marketSvc.Ingest(pools...)
	if err != nil {
		if errors.Is(err, market.ErrInvalidPool) {
			httputil.HandleBadRequest(c, err.Error())
			return
		}
		httputil.InternalError(c, err.Error())
		return
	}

	httputil.HandleSuccess(c, PoolImportResponse{Received: len(pools), Applied: applied})
}

// @Summary Deactivate pool
// @Description Remove a pool from routing. The record is kept.
// @Tags admin
// @Produce json
// @Param X-Admin-Key header string true "Admin API key"
// @Param address path string true "Pool address"
// @Success 200 {object} httputil.Response
// @Failure 404 {object} httputil.Response
// @Router /api/v1/admin/pools/{address} [delete]
func (h *PoolHandler) deactivatePool(c *gin.Context) {
	addr, err := solana.PublicKeyFromBase58(c.Param("address"))
	if err != nil {
		httputil.HandleBadRequest(c, "invalid pool address")
		return
	}
	if !h.marketSvc.Deactivate(addr) {
		httputil.HandleNotFound(c, "pool not found")
		return
	}
	httputil.HandleSuccess(c, gin.H{"address": addr.String(), "active": false})
}
