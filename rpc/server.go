// SPDX-License-Identifier: MIT

package rpc

import (
	"encoding/hex"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"provernet-core/claim"
	"provernet-core/node"
	"provernet-core/settlement"
	"provernet-core/types"
)

type Server struct {
	node   *node.Node
	router *gin.Engine
	log    *zap.Logger
}

type response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error,omitempty"`
}

func NewServer(n *node.Node, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		node:   n,
		router: router,
		log:    logger.Named("rpc"),
	}
	s.routes()
	return s
}

func (s *Server) Start(addr string) error {
	s.log.Info("rpc listening", zap.String("addr", addr))
	return s.router.Run(addr)
}

func (s *Server) routes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/account/balance", s.handleAccountBalance)
	s.router.GET("/airdrop/root", s.handleAirdropRoot)
	s.router.GET("/settlement/:blockId", s.handleGetSettlement)

	s.router.POST("/hash/commitment", s.handleCommitmentHash)
	s.router.POST("/settlement/submit", s.handleSettlementSubmit)
	s.router.POST("/claim/submit", s.handleClaimSubmit)
}

// -------------------- read handlers --------------------

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, response{Status: "ok"})
}

func (s *Server) handleAccountBalance(c *gin.Context) {
	addrStr := c.Query("address")
	if addrStr == "" {
		badRequest(c, "missing address")
		return
	}

	addr, err := types.ParseAddress(addrStr)
	if err != nil {
		badRequest(c, "invalid address")
		return
	}

	c.JSON(http.StatusOK, response{Status: "ok", Data: gin.H{
		"address": addr.String(),
		"balance": s.node.State.GetBalance(addr).String(),
		"token":   s.node.Token.BalanceOf(addr).String(),
	}})
}

func (s *Server) handleAirdropRoot(c *gin.Context) {
	c.JSON(http.StatusOK, response{Status: "ok", Data: gin.H{
		"root": s.node.Claims.Root().String(),
	}})
}

func (s *Server) handleGetSettlement(c *gin.Context) {
	blockID, err := strconv.ParseUint(c.Param("blockId"), 10, 64)
	if err != nil {
		badRequest(c, "invalid block id")
		return
	}

	ev, err := s.node.Archive.GetSettlement(blockID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response{Status: "error", Error: err.Error()})
		return
	}
	if ev == nil {
		c.JSON(http.StatusNotFound, response{Status: "error", Error: "no settlement for block"})
		return
	}
	c.JSON(http.StatusOK, response{Status: "ok", Data: ev})
}

// -------------------- write handlers --------------------

type commitmentHashRequest struct {
	Assignment types.Assignment `json:"assignment"`
	BlobHash   string           `json:"blobHash"`
}

func (s *Server) handleCommitmentHash(c *gin.Context) {
	var req commitmentHashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	blobHash, err := types.ParseHash(req.BlobHash)
	if err != nil {
		badRequest(c, "invalid blob hash")
		return
	}

	h := s.node.Engine.ComputeCommitmentHash(&req.Assignment, blobHash)
	c.JSON(http.StatusOK, response{Status: "ok", Data: gin.H{"hash": h.String()}})
}

type settlementSubmitRequest struct {
	Caller       string             `json:"caller"`
	Block        types.BlockContext `json:"block"`
	EncodedInput string             `json:"encodedInput"` // hex-encoded SettlementRequest
	Value        string             `json:"value"`
	BlockNumber  uint64             `json:"blockNumber"`
}

func (s *Server) handleSettlementSubmit(c *gin.Context) {
	var req settlementSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	caller, err := types.ParseAddress(req.Caller)
	if err != nil {
		badRequest(c, "invalid caller address")
		return
	}

	input, err := hex.DecodeString(strings.TrimPrefix(req.EncodedInput, "0x"))
	if err != nil {
		badRequest(c, "invalid encoded input")
		return
	}

	value := big.NewInt(0)
	if req.Value != "" {
		if _, ok := value.SetString(req.Value, 10); !ok {
			badRequest(c, "invalid value")
			return
		}
	}

	now := uint64(time.Now().Unix())
	receipt, err := s.node.Engine.OnAssignmentSettlement(caller, &req.Block, input, value, now, req.BlockNumber)
	if err != nil {
		s.log.Info("settlement rejected", zap.Error(err))
		writeFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, response{Status: "ok", Data: receipt})
}

type claimSubmitRequest struct {
	Recipient string   `json:"recipient"`
	Amount    string   `json:"amount"`
	Proof     []string `json:"proof"`
}

func (s *Server) handleClaimSubmit(c *gin.Context) {
	var req claimSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	recipient, err := types.ParseAddress(req.Recipient)
	if err != nil {
		badRequest(c, "invalid recipient address")
		return
	}

	amount := new(big.Int)
	if _, ok := amount.SetString(req.Amount, 10); !ok {
		badRequest(c, "invalid amount")
		return
	}

	proof := make([]types.Hash, 0, len(req.Proof))
	for _, p := range req.Proof {
		h, err := types.ParseHash(p)
		if err != nil {
			badRequest(c, "invalid proof element")
			return
		}
		proof = append(proof, h)
	}

	payload := &claim.Payload{Recipient: recipient, Amount: amount}
	h, err := s.node.Claims.Claim(payload, proof)
	if err != nil {
		s.log.Info("claim rejected", zap.Error(err))
		writeFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, response{Status: "ok", Data: gin.H{"hash": h.String()}})
}

// -------------------- helpers --------------------

// writeFailure maps engine error kinds to HTTP statuses, keeping the
// kind visible to callers for observability.
func writeFailure(c *gin.Context, err error) {
	status := http.StatusBadRequest
	kind := "Invalid"

	switch {
	case errors.Is(err, settlement.ErrUntrustedCaller):
		status, kind = http.StatusForbidden, "UntrustedCaller"
	case errors.Is(err, settlement.ErrAssignmentInvalid):
		kind = "AssignmentExpiredOrInvalid"
	case errors.Is(err, settlement.ErrInvalidSignature):
		status, kind = http.StatusUnauthorized, "InvalidSignature"
	case errors.Is(err, settlement.ErrInsufficientFee):
		status, kind = http.StatusPaymentRequired, "InsufficientFee"
	case errors.Is(err, settlement.ErrTierNotFound):
		kind = "TierNotFound"
	case errors.Is(err, claim.ErrAlreadyClaimed):
		status, kind = http.StatusConflict, "AlreadyClaimed"
	case errors.Is(err, claim.ErrInvalidProof):
		kind = "InvalidProof"
	}

	c.JSON(status, response{Status: "error", Kind: kind, Error: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response{Status: "error", Error: msg})
}
