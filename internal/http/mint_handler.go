package http

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/swap-router/internal/domain"
	"github.com/hxuan190/swap-router/internal/http/httputil"
)

type MintHandler struct {
	graph     GraphReader
	marketSvc PoolService
}

func NewMintHandler(graph GraphReader, marketSvc PoolService) *MintHandler {
	return &MintHandler{graph: graph, marketSvc: marketSvc}
}

func (h *MintHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.listMints)
	admin.POST("", h.upsertMints)
}

func (h *MintHandler) Root() string {
	return "/mints"
}

type MintInfo struct {
	Address  string `json:"address" example:"So11111111111111111111111111111111111111112"`
	Decimals uint8  `json:"decimals" example:"9"`
}

type MintUpsertRequest struct {
	Mints []MintInfo `json:"mints"`
}

// @Summary List mints with known decimals
// @Tags tokens
// @Produce json
// @Success 200 {object} httputil.Response{data=[]MintInfo}
// @Router /api/v1/mints [get]
func (h *MintHandler) listMints(c *gin.Context) {
	mints := h.graph.GetAllMints()
	out := make([]MintInfo, 0, len(mints))
	for _, m := range mints {
		out = append(out, MintInfo{Address: m.Address.String(), Decimals: m.Decimals})
	}
	httputil.HandleSuccess(c, out)
}

// @Summary Register mint decimals
// @Tags admin
// @Accept json
// @Produce json
// @Param X-Admin-Key header string true "Admin API key"
// @Param body body MintUpsertRequest true "Mints"
// @Success 200 {object} httputil.Response
// @Failure 400 {object} httputil.Response
// @Router /api/v1/admin/mints [post]
func (h *MintHandler) upsertMints(c *gin.Context) {
	var req MintUpsertRequest
	if err := decodeBody(c, &req); err != nil {
		httputil.HandleError(c, err)
		return
	}
	if len(req.Mints) == 0 {
		httputil.HandleBadRequest(c, "no mints in request")
		return
	}

	mints := make([]domain.MintInfo, 0, len(req.Mints))
	for _, m := range req.Mints {
		addr, err := solana.PublicKeyFromBase58(m.Address)
		if err != nil {
			httputil.HandleBadRequest(c, "invalid mint address "+m.Address)
			return
		}
		mints = append(mints, domain.MintInfo{Address: addr, Decimals: m.Decimals})
	}

	if err := h.marketSvc.UpsertMints(mints...); err != nil {
		httputil.InternalError(c, err.Error())
		return
	}
	httputil.HandleSuccess(c, gin.H{"updated": len(mints)})
}
