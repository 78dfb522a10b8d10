package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	sdkmath "cosmossdk.io/math"
	"github.com/gorilla/mux"

	"github.com/solstice-finance/fde/internal/engine"
	"github.com/solstice-finance/fde/internal/reservoir"
	"github.com/solstice-finance/fde/internal/state"
	"github.com/solstice-finance/fde/internal/types"
	"github.com/solstice-finance/fde/internal/utils"
)

// rewardDisplayDecimals shifts base units to whole reward tokens for the
// display fields.
const rewardDisplayDecimals = 6

// actionRequest is the shared body for deposit and withdraw.
type actionRequest struct {
	Participant string `json:"participant"`
	Amount      string `json:"amount"`
}

type registerPoolRequest struct {
	Actor            string `json:"actor"`
	StakedAssetDenom string `json:"staked_asset_denom"`
	AllocationWeight uint64 `json:"allocation_weight"`
}

type setWeightRequest struct {
	Actor            string `json:"actor"`
	AllocationWeight uint64 `json:"allocation_weight"`
}

type transferOwnershipRequest struct {
	Actor    string `json:"actor"`
	NewOwner string `json:"new_owner"`
}

type rotateOperatorRequest struct {
	Actor       string `json:"actor"`
	NewOperator string `json:"new_operator"`
}

// handleGetTick reports the current tick from the configured source.
func (ws *WebServer) handleGetTick(w http.ResponseWriter, r *http.Request) {
	tick, err := ws.ticks.Current(r.Context())
	if err != nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "tick source unavailable: "+err.Error())
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"tick": tick,
	})
}

type advanceTickRequest struct {
	Delta uint64 `json:"delta"`
}

// handleAdvanceTick moves the simulation tick counter forward. Refreshing at
// the new tick is left to the next service cycle or an explicit action.
func (ws *WebServer) handleAdvanceTick(w http.ResponseWriter, r *http.Request) {
	if ws.advance == nil {
		ws.writeErrorResponse(w, http.StatusNotFound, "tick advance is not enabled")
		return
	}

	var req advanceTickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Delta == 0 {
		ws.writeErrorResponse(w, http.StatusBadRequest, "delta must be positive")
		return
	}

	tick := ws.advance(req.Delta)

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"tick": tick,
	})
}

// handleGetPools returns all registered pools.
func (ws *WebServer) handleGetPools(w http.ResponseWriter, r *http.Request) {
	pools := ws.engine.Pools()

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"pools":        pools,
		"count":        len(pools),
		"total_weight": ws.engine.TotalAllocationWeight(),
	})
}

// handleGetPool returns one pool by id.
func (ws *WebServer) handleGetPool(w http.ResponseWriter, r *http.Request) {
	poolID, ok := ws.poolIDFromRequest(w, r)
	if !ok {
		return
	}

	pool, err := ws.engine.Pool(poolID)
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, pool)
}

// handleGetPending returns the reward a participant could claim right now.
func (ws *WebServer) handleGetPending(w http.ResponseWriter, r *http.Request) {
	poolID, ok := ws.poolIDFromRequest(w, r)
	if !ok {
		return
	}
	participant := mux.Vars(r)["participant"]

	tick, err := ws.ticks.Current(r.Context())
	if err != nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "tick source unavailable: "+err.Error())
		return
	}

	pending, err := ws.engine.PendingReward(poolID, participant, tick)
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}

	response := map[string]interface{}{
		"pool_id":        poolID,
		"participant":    participant,
		"tick":           tick,
		"pending_reward": pending.String(),
	}
	if display, err := utils.DisplayAmount(pending, rewardDisplayDecimals); err == nil {
		response["pending_reward_display"] = display
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetPositions returns all positions held by a participant.
func (ws *WebServer) handleGetPositions(w http.ResponseWriter, r *http.Request) {
	participant := mux.Vars(r)["participant"]
	positions := ws.engine.PositionsOf(participant)

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"participant": participant,
		"positions":   positions,
		"count":       len(positions),
	})
}

// handleGetReceipts returns recent action receipts from the database.
func (ws *WebServer) handleGetReceipts(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			ws.writeErrorResponse(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	receipts, err := state.GetRecentReceipts(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to fetch receipts")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "failed to fetch receipts")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"receipts": receipts,
		"count":    len(receipts),
	})
}

// handleDeposit stakes tokens into a pool for a participant.
func (ws *WebServer) handleDeposit(w http.ResponseWriter, r *http.Request) {
	ws.handleAction(w, r, ws.engine.Deposit)
}

// handleWithdraw unstakes tokens from a pool for a participant.
func (ws *WebServer) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	ws.handleAction(w, r, ws.engine.Withdraw)
}

func (ws *WebServer) handleAction(
	w http.ResponseWriter, r *http.Request,
	act func(string, types.PoolID, sdkmath.Int, uint64) (types.ActionReceipt, error),
) {
	poolID, ok := ws.poolIDFromRequest(w, r)
	if !ok {
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Participant == "" {
		ws.writeErrorResponse(w, http.StatusBadRequest, "participant is required")
		return
	}
	amount, ok2 := sdkmath.NewIntFromString(req.Amount)
	if !ok2 {
		ws.writeErrorResponse(w, http.StatusBadRequest, "invalid amount")
		return
	}

	tick, err := ws.ticks.Current(r.Context())
	if err != nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "tick source unavailable: "+err.Error())
		return
	}

	receipt, err := act(req.Participant, poolID, amount, tick)
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.checkpoint()

	ws.writeJSONResponse(w, http.StatusOK, receipt)
}

// handleEmergencyWithdraw returns the full stake and forfeits rewards.
func (ws *WebServer) handleEmergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	poolID, ok := ws.poolIDFromRequest(w, r)
	if !ok {
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Participant == "" {
		ws.writeErrorResponse(w, http.StatusBadRequest, "participant is required")
		return
	}

	tick, err := ws.ticks.Current(r.Context())
	if err != nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "tick source unavailable: "+err.Error())
		return
	}

	receipt, err := ws.engine.EmergencyWithdraw(req.Participant, poolID, tick)
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.checkpoint()

	ws.writeJSONResponse(w, http.StatusOK, receipt)
}

// handleRegisterPool adds a new pool for a staked asset.
func (ws *WebServer) handleRegisterPool(w http.ResponseWriter, r *http.Request) {
	var req registerPoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StakedAssetDenom == "" {
		ws.writeErrorResponse(w, http.StatusBadRequest, "staked_asset_denom is required")
		return
	}

	asset, err := ws.resolve(req.StakedAssetDenom)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "unknown staked asset: "+req.StakedAssetDenom)
		return
	}

	tick, err := ws.ticks.Current(r.Context())
	if err != nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "tick source unavailable: "+err.Error())
		return
	}

	poolID, err := ws.engine.RegisterPool(req.Actor, asset, req.AllocationWeight, tick)
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.checkpoint()

	ws.writeJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"pool_id":            poolID,
		"staked_asset_denom": req.StakedAssetDenom,
		"allocation_weight":  req.AllocationWeight,
	})
}

// handleSetWeight changes a pool's allocation weight.
func (ws *WebServer) handleSetWeight(w http.ResponseWriter, r *http.Request) {
	poolID, ok := ws.poolIDFromRequest(w, r)
	if !ok {
		return
	}

	var req setWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tick, err := ws.ticks.Current(r.Context())
	if err != nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "tick source unavailable: "+err.Error())
		return
	}

	if err := ws.engine.SetAllocationWeight(req.Actor, poolID, req.AllocationWeight, tick); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.checkpoint()

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"pool_id":           poolID,
		"allocation_weight": req.AllocationWeight,
	})
}

// handleTransferOwnership hands the administrator capability to a new owner.
func (ws *WebServer) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	var req transferOwnershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := ws.engine.TransferOwnership(req.Actor, req.NewOwner); err != nil {
		ws.writeEngineError(w, err)
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"owner": req.NewOwner,
	})
}

type faucetRequest struct {
	Denom   string `json:"denom"`
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

// handleFaucet mints staked tokens to an account in simulation deployments.
func (ws *WebServer) handleFaucet(w http.ResponseWriter, r *http.Request) {
	if ws.faucet == nil {
		ws.writeErrorResponse(w, http.StatusNotFound, "faucet is not enabled")
		return
	}

	var req faucetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Account == "" || req.Denom == "" {
		ws.writeErrorResponse(w, http.StatusBadRequest, "denom and account are required")
		return
	}
	amount, ok := sdkmath.NewIntFromString(req.Amount)
	if !ok || !amount.IsPositive() {
		ws.writeErrorResponse(w, http.StatusBadRequest, "invalid amount")
		return
	}

	if err := ws.faucet(req.Denom, req.Account, amount); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"denom":   req.Denom,
		"account": req.Account,
		"amount":  amount.String(),
	})
}

// handleGetReservoir reports the fee reservoir's operator.
func (ws *WebServer) handleGetReservoir(w http.ResponseWriter, r *http.Request) {
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"account":  reservoir.Account,
		"operator": ws.reservoir.Operator(),
	})
}

// handleRotateOperator hands the reservoir payout role to a new identity.
func (ws *WebServer) handleRotateOperator(w http.ResponseWriter, r *http.Request) {
	var req rotateOperatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := ws.reservoir.RotateOperator(req.Actor, req.NewOperator); err != nil {
		if errors.Is(err, reservoir.ErrNotOperator) {
			ws.writeErrorResponse(w, http.StatusForbidden, err.Error())
			return
		}
		ws.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"operator": req.NewOperator,
	})
}

func (ws *WebServer) poolIDFromRequest(w http.ResponseWriter, r *http.Request) (types.PoolID, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "invalid pool id: "+raw)
		return 0, false
	}
	return types.PoolID(id), true
}

// writeEngineError maps engine errors to HTTP status codes.
func (ws *WebServer) writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrUnknownPool):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidAmount),
		errors.Is(err, engine.ErrInsufficientStake):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, engine.ErrDuplicateAsset):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrTransferFailed):
		status = http.StatusBadRequest
	}
	ws.writeErrorResponse(w, status, err.Error())
}

func (ws *WebServer) checkpoint() {
	if ws.persist != nil {
		ws.persist()
	}
}
