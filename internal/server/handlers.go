package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	billingdomain "github.com/wordhaven/creditledger/internal/billing/domain"
	identitydomain "github.com/wordhaven/creditledger/internal/identity/domain"
	ledgerdomain "github.com/wordhaven/creditledger/internal/ledger/domain"
	paymentdomain "github.com/wordhaven/creditledger/internal/payment/domain"
	"github.com/wordhaven/creditledger/internal/pricing"
	referraldomain "github.com/wordhaven/creditledger/internal/referral/domain"
)

// Handlers is the thin HTTP surface. It binds JSON, calls one service, and
// maps errors; no business rules live here.
type Handlers struct {
	log      *zap.Logger
	identity identitydomain.Service
	ledger   ledgerdomain.Service
	billing  billingdomain.Service
	referral referraldomain.Service
	payment  paymentdomain.Service
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": code})
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}

	user, err := h.identity.Register(c.Request.Context(), identitydomain.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": user.UserID})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}

	user, err := h.identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": user.UserID, "user_name": user.UserName})
}

type updateUserRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Field  string `json:"field" binding:"required"`
	Value  string `json:"value" binding:"required"`
}

func (h *Handlers) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}

	err := h.identity.Update(c.Request.Context(), identitydomain.UpdateRequest{
		UserID: req.UserID,
		Field:  identitydomain.UpdateField(req.Field),
		Value:  req.Value,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func (h *Handlers) deleteUser(c *gin.Context) {
	if err := h.identity.Delete(c.Request.Context(), c.Param("user_id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handlers) balance(c *gin.Context) {
	balance, err := h.ledger.Balance(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

type humanizeRequest struct {
	UserID string   `json:"user_id" binding:"required"`
	Text   string   `json:"text"`
	Chunks []string `json:"chunks"`
	Mode   string   `json:"mode" binding:"required"`
}

func (h *Handlers) humanize(c *gin.Context) {
	var req humanizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}

	var result *billingdomain.Result
	var err error
	if len(req.Chunks) > 0 {
		result, err = h.billing.HumanizeChunks(c.Request.Context(), req.UserID, req.Chunks, req.Mode)
	} else {
		result, err = h.billing.Humanize(c.Request.Context(), req.UserID, req.Text, req.Mode)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":     result.Output,
		"word_count": result.WordCount,
		"cost":       result.Cost,
		"balance":    result.NewBalance,
	})
}

type checkRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

func (h *Handlers) check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}

	result, err := h.billing.Check(c.Request.Context(), req.UserID, req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":     result.Output,
		"word_count": result.WordCount,
		"cost":       result.Cost,
		"balance":    result.NewBalance,
	})
}

func (h *Handlers) history(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("user_id")

	switch c.Query("kind") {
	case "spend":
		records, err := h.ledger.SpendHistory(ctx, userID)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	case "recharge":
		records, err := h.ledger.RechargeHistory(ctx, userID)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	case "usage":
		records, err := h.ledger.UsageHistory(ctx, userID)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	case "humanize":
		records, err := h.ledger.HumanizeHistory(ctx, userID)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	case "check":
		records, err := h.ledger.CheckHistory(ctx, userID)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_history_kind"})
	}
}

func (h *Handlers) rateTable(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"CNY": pricing.RateTable("cny"),
		"USD": pricing.RateTable("usd"),
		"CAD": pricing.RateTable("cad"),
	})
}

type openIntentRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	AmountMinor int64  `json:"amount" binding:"required"`
	Currency    string `json:"currency" binding:"required"`
	Provider    string `json:"provider"`
}

func (h *Handlers) openIntent(c *gin.Context) {
	var req openIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}
	if req.Provider == "" {
		req.Provider = "stripe"
	}

	secret, err := h.payment.OpenIntent(c.Request.Context(), req.UserID, req.AmountMinor, req.Currency, req.Provider)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"intent_id":     secret.IntentID,
		"client_secret": secret.ClientSecret,
	})
}

type confirmRequest struct {
	ResultID string `json:"result_id" binding:"required"`
	Provider string `json:"provider"`
}

func (h *Handlers) confirmPayment(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}
	if req.Provider == "" {
		req.Provider = "stripe"
	}

	result, err := h.payment.Confirm(c.Request.Context(), req.ResultID, req.Provider)
	if err != nil {
		h.fail(c, err)
		return
	}

	status := "failed"
	if result.Succeeded {
		status = "succeeded"
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":  result.UserID,
		"status":   status,
		"amount":   result.Amount,
		"currency": result.Currency,
		"credits":  result.Credits,
	})
}

func (h *Handlers) referralCode(c *gin.Context) {
	code, err := h.referral.IssueCode(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refer_code": code})
}

type redeemRequest struct {
	UserID         string          `json:"user_id" binding:"required"`
	Code           string          `json:"refer_code" binding:"required"`
	RechargeCredit decimal.Decimal `json:"recharge_credit"`
}

func (h *Handlers) redeemReferral(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}

	if err := h.referral.Redeem(c.Request.Context(), req.UserID, req.Code, req.RechargeCredit); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "referral succeed"})
}

func (h *Handlers) checkReferral(c *gin.Context) {
	eligible := h.referral.CheckEligible(c.Request.Context(), c.Query("user_id"), c.Query("refer_code"))
	c.JSON(http.StatusOK, gin.H{"message": eligible})
}

func (h *Handlers) referralHistory(c *gin.Context) {
	entries, err := h.referral.History(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
