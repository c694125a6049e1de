package http

import (
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/swap-router/internal/http/httputil"
)

type RouteHandler struct {
	routerSvc QuoteService
}

func NewRouteHandler(routerSvc QuoteService) *RouteHandler {
	return &RouteHandler{routerSvc: routerSvc}
}

func (h *RouteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.listRoutes)
}

func (h *RouteHandler) Root() string {
	return "/routes"
}

// RouteListResponse lists every candidate route between two tokens
type RouteListResponse struct {
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	MaxHops    int    `json:"maxHops" example:"3"`

	// Each route is the ordered list of pool addresses it crosses
	Routes [][]string `json:"routes"`
	Count  int        `json:"count" example:"4"`

	SnapshotVersion uint64 `json:"snapshotVersion" example:"1532"`
}

// @Summary List candidate routes
// @Description Enumerate every simple route between two tokens, without simulating amounts.
// @Tags quote
// @Produce json
// @Param inputMint query string true "Input token mint address"
// @Param outputMint query string true "Output token mint address"
// @Param maxHops query int false "Maximum pools per route (0 = server default)"
// @Param pool query string false "Restrict to the direct route through this pool"
// @Success 200 {object} httputil.Response{data=RouteListResponse}
// @Failure 400 {object} httputil.Response "Invalid request parameters"
// @Router /api/v1/routes [get]
func (h *RouteHandler) listRoutes(c *gin.Context) {
	req, err := parseSwapRequest(c, h.routerSvc, false)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	traces, version, err := h.routerSvc.ListRoutes(req)
	if err != nil {
		httputil.HandleError(c, mapRouterError(err))
		return
	}

	routes := make([][]string, 0, len(traces))
	for _, t := range traces {
		pools := make([]string, 0, len(t.Pools))
		for _, p := range t.Pools {
			pools = append(pools, p.String())
		}
		routes = append(routes, pools)
	}

	httputil.HandleSuccess(c, RouteListResponse{
		InputMint:       req.InputMint.String(),
		OutputMint:      req.OutputMint.String(),
		MaxHops:         h.routerSvc.EffectiveMaxHops(req),
		Routes:          routes,
		Count:           len(routes),
		SnapshotVersion: version,
	})
}
