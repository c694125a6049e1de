package http

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/swap-router/internal/common"
	"github.com/hxuan190/swap-router/internal/domain"
	"github.com/hxuan190/swap-router/internal/http/httputil"
	"github.com/hxuan190/swap-router/internal/services/router"
)

// QuoteService is the part of router.Router the HTTP layer needs.
type QuoteService interface {
	Quote(ctx context.Context, req *domain.SwapRequest) (*domain.Quote, error)
	ListRoutes(req *domain.SwapRequest) ([]domain.RouteTrace, uint64, error)
	DefaultSlippageBps() uint16
	EffectiveMaxHops(req *domain.SwapRequest) int
}

type QuoteHandler struct {
	routerSvc QuoteService
}

func NewQuoteHandler(routerSvc QuoteService) *QuoteHandler {
	return &QuoteHandler{routerSvc: routerSvc}
}

func (h *QuoteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getQuote)
}

func (h *QuoteHandler) Root() string {
	return "/quote"
}

// QuoteRequest represents the parameters for requesting a swap quote
type QuoteRequest struct {
	// Input token mint address (base58 public key)
	InputMint string `form:"inputMint" example:"So11111111111111111111111111111111111111112"`

	// Output token mint address (base58 public key)
	OutputMint string `form:"outputMint" example:"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"`

	// Amount in smallest token units. It is the input for side=bid and the
	// desired output for side=ask.
	Amount string `form:"amount" example:"1000000000"`

	// Which side of the swap is fixed: "bid" (ExactIn) or "ask" (ExactOut).
	// Default: bid
	Side string `form:"side" enums:"bid,ask,ExactIn,ExactOut" example:"bid"`

	// Maximum pools per route. 0 uses the server default.
	MaxHops int `form:"maxHops" example:"3"`

	// Slippage tolerance in basis points (1 bps = 0.01%). Omitted uses the server default.
	SlippageBps *uint16 `form:"slippageBps" example:"50"`

	// Pin the quote to the direct route through this pool
	Pool string `form:"pool" example:"HJPjoWUrhoZzkNfRpHuieeFk9WcZWjwy6PBjZ81ngndJ"`
}

// HopInfo describes a single hop in the swap route
type HopInfo struct {
	PoolAddress string `json:"poolAddress" example:"HJPjoWUrhoZzkNfRpHuieeFk9WcZWjwy6PBjZ81ngndJ"`

	InputMint      string `json:"inputMint" example:"So11111111111111111111111111111111111111112"`
	InputDecimals  uint8  `json:"inputDecimals" example:"9"`
	OutputMint     string `json:"outputMint" example:"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"`
	OutputDecimals uint8  `json:"outputDecimals" example:"6"`

	// Output of this hop for bid quotes, required input of this hop for ask quotes
	Amount string `json:"amount" example:"145320000"`

	FeeNumerator   uint64 `json:"feeNumerator" example:"3"`
	FeeDenominator uint64 `json:"feeDenominator" example:"1000"`
}

// QuoteResponse contains the calculated swap quote with routing information
type QuoteResponse struct {
	InputMint  string `json:"inputMint" example:"So11111111111111111111111111111111111111112"`
	OutputMint string `json:"outputMint" example:"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"`
	Side       string `json:"side" enums:"bid,ask" example:"bid"`

	// For bid quotes AmountIn is the requested amount, for ask quotes AmountOut is
	AmountIn  string `json:"amountIn" example:"1000000000"`
	AmountOut string `json:"amountOut" example:"145320000"`

	// Minimum output (bid) or maximum input (ask) after applying slippage
	OtherAmountThreshold string `json:"otherAmountThreshold" example:"144593400"`
	SlippageBps          uint16 `json:"slippageBps" example:"50"`

	PriceImpactBps      uint16 `json:"priceImpactBps" example:"25"`
	PriceImpactPercent  string `json:"priceImpactPercent" example:"0.25%"`
	PriceImpactSeverity string `json:"priceImpactSeverity" enums:"none,low,moderate,high,extreme" example:"none"`
	PriceImpactWarning  string `json:"priceImpactWarning" example:""`

	Routes    []HopInfo `json:"routes"`
	RoutePath []string  `json:"routePath"`
	HopCount  int       `json:"hopCount" example:"1"`

	RoutesEvaluated int    `json:"routesEvaluated" example:"4"`
	SnapshotVersion uint64 `json:"snapshotVersion" example:"1532"`
}

// parseSwapRequest turns the query of a quote or routes call into a SwapRequest.
func parseSwapRequest(c *gin.Context, svc QuoteService, needAmount bool) (*domain.SwapRequest, error) {
	var req QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return nil, common.HTTPErrorBadRequest("invalid query parameters: " + err.Error())
	}
	if req.InputMint == "" || req.OutputMint == "" {
		return nil, common.HTTPErrorBadRequest("inputMint and outputMint are required")
	}
	if needAmount && req.Amount == "" {
		return nil, common.HTTPErrorBadRequest("amount is required")
	}

	inputMint, err := solana.PublicKeyFromBase58(req.InputMint)
	if err != nil {
		return nil, common.HTTPErrorBadRequest("invalid inputMint address")
	}
	outputMint, err := solana.PublicKeyFromBase58(req.OutputMint)
	if err != nil {
		return nil, common.HTTPErrorBadRequest("invalid outputMint address")
	}

	out := &domain.SwapRequest{
		InputMint:   inputMint,
		OutputMint:  outputMint,
		Side:        domain.SideBid,
		MaxHops:     req.MaxHops,
		SlippageBps: svc.DefaultSlippageBps(),
	}

	if needAmount {
		amount, ok := new(big.Int).SetString(req.Amount, 10)
		if !ok || amount.Sign() <= 0 {
			return nil, common.HTTPErrorBadRequest("invalid amount: must be a positive integer")
		}
		out.Amount = amount
	}

	if req.Side != "" {
		side, err := domain.ParseSwapSide(req.Side)
		if err != nil {
			return nil, common.HTTPErrorBadRequest("invalid side: must be bid or ask")
		}
		out.Side = side
	}

	if req.MaxHops < 0 || req.MaxHops > router.MaxHopsLimit {
		return nil, common.HTTPErrorBadRequest(fmt.Sprintf("invalid maxHops: must be within 0..%d", router.MaxHopsLimit))
	}

	if req.SlippageBps != nil {
		if *req.SlippageBps >= 10000 {
			return nil, common.HTTPErrorBadRequest("invalid slippageBps: must be below 10000")
		}
		out.SlippageBps = *req.SlippageBps
	}

	if req.Pool != "" {
		pool, err := solana.PublicKeyFromBase58(req.Pool)
		if err != nil {
			return nil, common.HTTPErrorBadRequest("invalid pool address")
		}
		out.PoolFilter = &pool
	}

	return out, nil
}

// mapRouterError translates router errors into HTTP errors.
func mapRouterError(err error) error {
	switch {
	case errors.Is(err, router.ErrNoViableRoute):
		return common.HTTPErrorNotFound("no route found: " + err.Error())
	case errors.Is(err, router.ErrInvalidRequest), errors.Is(err, router.ErrInvalidAmount):
		return common.HTTPErrorBadRequest(err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return common.HTTPErrorUnprocessable("request canceled")
	default:
		return common.HTTPErrorInternalError(err.Error())
	}
}

func buildQuoteResponse(q *domain.Quote) QuoteResponse {
	routes := make([]HopInfo, 0, len(q.Route.Hops))
	for i, hop := range q.Route.Hops {
		routes = append(routes, HopInfo{
			PoolAddress:    hop.Pool.Address.String(),
			InputMint:      hop.SrcMint.Address.String(),
			InputDecimals:  hop.SrcMint.Decimals,
			OutputMint:     hop.DstMint.Address.String(),
			OutputDecimals: hop.DstMint.Decimals,
			Amount:         q.Route.Amounts[i].String(),
			FeeNumerator:   hop.Pool.FeeNumerator,
			FeeDenominator: hop.Pool.FeeDenominator,
		})
	}

	path := q.Route.Path()
	routePath := make([]string, 0, len(path))
	for _, mint := range path {
		routePath = append(routePath, mint.String())
	}

	return QuoteResponse{
		InputMint:            q.InputMint.String(),
		OutputMint:           q.OutputMint.String(),
		Side:                 q.Side.String(),
		AmountIn:             q.AmountIn.String(),
		AmountOut:            q.AmountOut.String(),
		OtherAmountThreshold: q.OtherAmountThreshold.String(),
		SlippageBps:          q.SlippageBps,
		PriceImpactBps:       q.PriceImpactBps,
		PriceImpactPercent:   strconv.FormatFloat(float64(q.PriceImpactBps)/100, 'f', 2, 64) + "%",
		PriceImpactSeverity:  string(router.GetPriceImpactSeverity(q.PriceImpactBps)),
		PriceImpactWarning:   router.GetPriceImpactWarning(q.PriceImpactBps),
		Routes:               routes,
		RoutePath:            routePath,
		HopCount:             len(q.Route.Hops),
		RoutesEvaluated:      q.RoutesEvaluated,
		SnapshotVersion:      q.SnapshotVersion,
	}
}

// @Summary Get swap quote
// @Description Find the best single route for a token pair across constant-product pools.
// @Description Routes are enumerated up to maxHops pools deep and simulated with integer math.
// @Description
// @Description **Sides:**
// @Description - bid (ExactIn): amount is the exact input, the route with the largest output wins
// @Description - ask (ExactOut): amount is the exact output, the route with the smallest input wins
// @Tags quote
// @Produce json
// @Param inputMint query string true "Input token mint address"
// @Param outputMint query string true "Output token mint address"
// @Param amount query string true "Amount in smallest token units"
// @Param side query string false "bid or ask" Enums(bid, ask, ExactIn, ExactOut) default(bid)
// @Param maxHops query int false "Maximum pools per route (0 = server default)"
// @Param slippageBps query int false "Slippage tolerance in basis points"
// @Param pool query string false "Restrict to the direct route through this pool"
// @Success 200 {object} httputil.Response{data=QuoteResponse}
// @Failure 400 {object} httputil.Response "Invalid request parameters"
// @Failure 404 {object} httputil.Response "No route found between the token pair"
// @Router /api/v1/quote [get]
func (h *QuoteHandler) getQuote(c *gin.Context) {
	req, err := parseSwapRequest(c, h.routerSvc, true)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	quote, err := h.routerSvc.Quote(c.Request.Context(), req)
	if err != nil {
		httputil.HandleError(c, mapRouterError(err))
		return
	}

	httputil.HandleSuccess(c, buildQuoteResponse(quote))
}
