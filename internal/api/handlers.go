package api

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"ammScope/internal/amm"
)

type reservesResponse struct {
	Pool        string `json:"pool"`
	AssetA      string `json:"asset_a"`
	AssetB      string `json:"asset_b"`
	ShareSymbol string `json:"share_symbol"`
	ReserveA    string `json:"reserve_a"`
	ReserveB    string `json:"reserve_b"`
	TotalSupply string `json:"total_supply"`
}

type quoteRequest struct {
	TokenIn  string `form:"token_in"`
	AmountIn string `form:"amount_in"`
}

type quoteResponse struct {
	TokenIn   string `json:"token_in"`
	TokenOut  string `json:"token_out"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
}

type rateResponse struct {
	RateAToB string `json:"rate_a_to_b"`
	RateBToA string `json:"rate_b_to_a"`
	Scale    string `json:"scale"`
}

type sharesResponse struct {
	Holder string `json:"holder"`
	Shares string `json:"shares"`
}

func (s *Server) handleReserves(c *gin.Context) {
	info := s.pool.Info()
	state := s.pool.State()
	c.JSON(http.StatusOK, reservesResponse{
		Pool:        info.Address.Hex(),
		AssetA:      info.AssetA.Hex(),
		AssetB:      info.AssetB.Hex(),
		ShareSymbol: info.ShareSymbol,
		ReserveA:    state.ReserveA.String(),
		ReserveB:    state.ReserveB.String(),
		TotalSupply: state.TotalSupply.String(),
	})
}

func (s *Server) handleQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.fail(c, newError(http.StatusBadRequest, "invalid query parameters"))
		return
	}
	tokenIn, err := parseAddress("token_in", req.TokenIn)
	if err != nil {
		s.fail(c, err)
		return
	}
	amountIn, err := parseAmount(req.AmountIn)
	if err != nil {
		s.fail(c, err)
		return
	}

	amountOut, err := s.pool.GetAmountOut(amountIn, tokenIn)
	if err != nil {
		s.fail(c, poolError(err))
		return
	}

	info := s.pool.Info()
	tokenOut := info.AssetA
	if tokenIn == info.AssetA {
		tokenOut = info.AssetB
	}
	c.JSON(http.StatusOK, quoteResponse{
		TokenIn:   tokenIn.Hex(),
		TokenOut:  tokenOut.Hex(),
		AmountIn:  amountIn.String(),
		AmountOut: amountOut.String(),
	})
}

func (s *Server) handleRate(c *gin.Context) {
	aToB, bToA := s.pool.GetExchangeRate()
	c.JSON(http.StatusOK, rateResponse{
		RateAToB: aToB.String(),
		RateBToA: bToA.String(),
		Scale:    amm.Scale.String(),
	})
}

func (s *Server) handleShares(c *gin.Context) {
	holder, err := parseAddress("holder", c.Param("holder"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sharesResponse{
		Holder: holder.Hex(),
		Shares: s.pool.ShareBalance(holder).String(),
	})
}

func parseAddress(field, value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, NewAddressRequired(field)
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, NewInvalidAddress(field)
	}
	return common.HexToAddress(value), nil
}

// parseAmount leaves sign checks to the pool so they map to its errors.
func parseAmount(value string) (*big.Int, error) {
	if value == "" {
		return nil, ErrAmountRequired
	}
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, ErrInvalidAmountFormat
	}
	return amount, nil
}
