package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"nightfall/models"
	"nightfall/service"
)

// Handlers holds the services the HTTP layer delegates to
type Handlers struct {
	games      service.GameService
	users      service.UserService
	settlement service.SettlementService
}

// NewHandlers creates the HTTP handler set
func NewHandlers(games service.GameService, users service.UserService, settlement service.SettlementService) *Handlers {
	return &Handlers{
		games:      games,
		users:      users,
		settlement: settlement,
	}
}

// CreateGame handles POST /api/games
func (h *Handlers) CreateGame(c *gin.Context) {
	var req CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stake, err := models.ParseSOL(req.StakeAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.games.CreateGame(c.Request.Context(), req.CreatorWallet, stake, req.GameData)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toGameResponse(game))
}

// JoinGame handles POST /api/games/:id/join
func (h *Handlers) JoinGame(c *gin.Context) {
	var req JoinGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.games.JoinGame(c.Request.Context(), c.Param("id"), req.Wallet)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toGameResponse(game))
}

// CompleteGame handles POST /api/games/:id/complete
func (h *Handlers) CompleteGame(c *gin.Context) {
	var req CompleteGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, payout, err := h.games.CompleteGame(c.Request.Context(), c.Param("id"), req.Winner)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ObservePayout(payout.Success)

	c.JSON(http.StatusOK, gin.H{
		"game":   toGameResponse(game),
		"payout": payout,
	})
}

// CancelGame handles POST /api/games/:id/cancel
func (h *Handlers) CancelGame(c *gin.Context) {
	var req CancelGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, refund, err := h.games.CancelGame(c.Request.Context(), c.Param("id"), req.Wallet)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ObserveRefund(refund.Success)

	c.JSON(http.StatusOK, gin.H{
		"game":   toGameResponse(game),
		"refund": refund,
	})
}

// GetGame handles GET /api/games/:id
func (h *Handlers) GetGame(c *gin.Context) {
	game, err := h.games.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if game == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}

	c.JSON(http.StatusOK, toGameResponse(game))
}

// ListGames handles GET /api/games
func (h *Handlers) ListGames(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 || parsed > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	games, err := h.games.ListGames(c.Request.Context(), models.GameStatus(c.Query("status")), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]GameResponse, len(games))
	for i, game := range games {
		responses[i] = toGameResponse(game)
	}
	c.JSON(http.StatusOK, responses)
}

// GetGameTransactions handles GET /api/games/:id/transactions
func (h *Handlers) GetGameTransactions(c *gin.Context) {
	transactions, err := h.games.GetTransactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	responses := make([]TransactionResponse, len(transactions))
	for i, tx := range transactions {
		responses[i] = toTransactionResponse(tx)
	}
	c.JSON(http.StatusOK, responses)
}

// GetUser handles GET /api/users/:wallet
func (h *Handlers) GetUser(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// GetNetworkFee handles GET /api/network-fee
func (h *Handlers) GetNetworkFee(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"estimatedFee": h.settlement.EstimateNetworkFee().SOL()})
}

// statusFor maps service errors onto HTTP status codes by message shape;
// services return plain errors, not typed ones
func statusFor(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "already"):
		return http.StatusConflict
	case strings.Contains(msg, "cannot be cancelled"),
		strings.Contains(msg, "not accepting"),
		strings.Contains(msg, "is full"),
		strings.Contains(msg, "only the creator"):
		return http.StatusConflict
	case strings.Contains(msg, "invalid"),
		strings.Contains(msg, "must"),
		strings.Contains(msg, "insufficient"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
