package handler

import (
	"errors"
	"strconv"
	"time"

	"gymledger/internal/config"
	"gymledger/internal/model"
	"gymledger/internal/repository"
	"gymledger/internal/service"
	"gymledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Handler is the thin HTTP layer over the core services. It binds input,
// maps the error taxonomy to business codes and nothing else; every
// invariant lives below.
type Handler struct {
	membershipService *service.MembershipService
	paymentService    *service.PaymentService
	walletService     *service.WalletService
	commissionService *service.CommissionService
	auditRepo         *repository.AuditRepository
	planRepo          *repository.PlanRepository
}

func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Handler {
	return &Handler{
		membershipService: service.NewMembershipService(db, cfg),
		paymentService:    service.NewPaymentService(db, rdb, cfg),
		walletService:     service.NewWalletService(db),
		commissionService: service.NewCommissionService(db),
		auditRepo:         repository.NewAuditRepository(db),
		planRepo:          repository.NewPlanRepository(db),
	}
}

// respondError translates core errors into the response envelope.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrMembershipNotFound),
		errors.Is(err, repository.ErrPaymentNotFound),
		errors.Is(err, repository.ErrPlanNotFound),
		errors.Is(err, repository.ErrWalletNotFound),
		errors.Is(err, repository.ErrCommissionNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, repository.ErrInvalidTransition),
		errors.Is(err, repository.ErrPaymentStateInvalid),
		errors.Is(err, repository.ErrCommissionAlreadyPaid),
		errors.Is(err, repository.ErrPlanInactive):
		response.Error(c, response.CodeInvalidState, err.Error())
	case errors.Is(err, repository.ErrInsufficientBalance):
		response.Error(c, response.CodeInsufficientFunds, err.Error())
	case errors.Is(err, repository.ErrVersionConflict):
		response.Error(c, response.CodeConcurrencyConflict, err.Error())
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrFreezeDateInvalid),
		errors.Is(err, service.ErrPaymentShortfall),
		errors.Is(err, service.ErrInvalidPlanDuration),
		errors.Is(err, service.ErrProofURLRequired),
		errors.Is(err, service.ErrRejectionReasonRequired):
		response.Error(c, response.CodeValidationFailed, err.Error())
	default:
		response.ServerError(c, err.Error())
	}
}

// ============================================================
// Plan endpoints
// ============================================================

type CreatePlanRequest struct {
	Name                     string          `json:"name" binding:"required"`
	Price                    decimal.Decimal `json:"price" binding:"required"`
	DurationDays             int             `json:"duration_days" binding:"required,min=1"`
	CommissionRate           decimal.Decimal `json:"commission_rate"`
	DiscountPercentage       decimal.Decimal `json:"discount_percentage"`
	IncludedSessionsPerMonth int             `json:"included_sessions_per_month"`
}

// CreatePlan handles POST /api/v1/plan/create.
func (h *Handler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	plan := &model.MembershipPlan{
		Name:                     req.Name,
		Price:                    req.Price,
		DurationDays:             req.DurationDays,
		CommissionRate:           req.CommissionRate,
		DiscountPercentage:       req.DiscountPercentage,
		IncludedSessionsPerMonth: req.IncludedSessionsPerMonth,
		IsActive:                 true,
	}
	if err := h.planRepo.Create(c.Request.Context(), plan); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, plan)
}

// ListPlans handles GET /api/v1/plan/list.
func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.planRepo.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{"list": plans})
}

// ============================================================
// Membership endpoints
// ============================================================

type CreateMembershipRequest struct {
	RequestID         string          `json:"request_id"`
	MemberID          int64           `json:"member_id" binding:"required"`
	PlanID            int64           `json:"plan_id" binding:"required"`
	BranchID          *int64          `json:"branch_id"`
	TrainerID         *int64          `json:"trainer_id"`
	Source            string          `json:"source" binding:"required,oneof=ONLINE IN_GYM"`
	StartDate         string          `json:"start_date"` // YYYY-MM-DD, defaults to today
	WalletAmountToUse decimal.Decimal `json:"wallet_amount_to_use"`
	PaymentMethod     string          `json:"payment_method"`
	PaidInFull        bool            `json:"paid_in_full"`
	AutoRenewEnabled  bool            `json:"auto_renew_enabled"`
	CreatedByUserID   *int64          `json:"created_by_user_id"`
}

// CreateMembership handles POST /api/v1/membership/create.
func (h *Handler) CreateMembership(c *gin.Context) {
	var req CreateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	var startDate time.Time
	if req.StartDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.StartDate, time.Local)
		if err != nil {
			response.ParamError(c, "start_date must be YYYY-MM-DD")
			return
		}
		startDate = parsed
	}

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = model.PaymentMethodCash
	}

	result, err := h.membershipService.CreateMembership(c.Request.Context(), &service.CreateMembershipRequest{
		RequestID:         req.RequestID,
		MemberID:          req.MemberID,
		PlanID:            req.PlanID,
		BranchID:          req.BranchID,
		TrainerID:         req.TrainerID,
		Source:            req.Source,
		StartDate:         startDate,
		WalletAmountToUse: req.WalletAmountToUse,
		PaymentMethod:     req.PaymentMethod,
		PaidInFull:        req.PaidInFull,
		AutoRenewEnabled:  req.AutoRenewEnabled,
		CreatedByUserID:   req.CreatedByUserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"membership": result.Membership,
		"payment":    result.Payment,
	})
}

// GetMembership handles GET /api/v1/membership/detail?id=xxx.
func (h *Handler) GetMembership(c *gin.Context) {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid id")
		return
	}

	membership, err := h.membershipService.GetMembership(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	payments, err := h.paymentService.ListByMembership(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"membership": membership,
		"payments":   payments,
	})
}

// ListMemberships handles GET /api/v1/membership/list?member_id=xxx.
func (h *Handler) ListMemberships(c *gin.Context) {
	memberID, err := strconv.ParseInt(c.Query("member_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid member_id")
		return
	}
	page, pageSize := pagination(c)

	memberships, total, err := h.membershipService.ListByMember(c.Request.Context(), memberID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      memberships,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

type FreezeMembershipRequest struct {
	MembershipID int64  `json:"membership_id" binding:"required"`
	FreezeStart  string `json:"freeze_start" binding:"required"` // YYYY-MM-DD
	ActorID      *int64 `json:"actor_id"`
}

// FreezeMembership handles POST /api/v1/membership/freeze.
func (h *Handler) FreezeMembership(c *gin.Context) {
	var req FreezeMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	freezeStart, err := time.ParseInLocation("2006-01-02", req.FreezeStart, time.Local)
	if err != nil {
		response.ParamError(c, "freeze_start must be YYYY-MM-DD")
		return
	}

	membership, err := h.membershipService.Freeze(c.Request.Context(), req.MembershipID, freezeStart, req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, membership)
}

type ResumeMembershipRequest struct {
	MembershipID int64  `json:"membership_id" binding:"required"`
	ActorID      *int64 `json:"actor_id"`
}

// ResumeMembership handles POST /api/v1/membership/resume.
func (h *Handler) ResumeMembership(c *gin.Context) {
	var req ResumeMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	membership, err := h.membershipService.Resume(c.Request.Context(), req.MembershipID, req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, membership)
}

type UpgradeMembershipRequest struct {
	MembershipID    int64  `json:"membership_id" binding:"required"`
	NewPlanID       int64  `json:"new_plan_id" binding:"required"`
	PaymentMethod   string `json:"payment_method"`
	CreatedByUserID *int64 `json:"created_by_user_id"`
}

// UpgradeMembership handles POST /api/v1/membership/upgrade.
func (h *Handler) UpgradeMembership(c *gin.Context) {
	var req UpgradeMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = model.PaymentMethodCash
	}

	membership, err := h.membershipService.Upgrade(c.Request.Context(), &service.UpgradeMembershipRequest{
		MembershipID:    req.MembershipID,
		NewPlanID:       req.NewPlanID,
		PaymentMethod:   req.PaymentMethod,
		CreatedByUserID: req.CreatedByUserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, membership)
}

// ============================================================
// Payment endpoints
// ============================================================

type UploadProofRequest struct {
	PaymentID int64  `json:"payment_id" binding:"required"`
	ProofURL  string `json:"proof_url" binding:"required"`
}

// UploadProof handles POST /api/v1/payment/proof.
func (h *Handler) UploadProof(c *gin.Context) {
	var req UploadProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	payment, err := h.paymentService.UploadProof(c.Request.Context(), req.PaymentID, req.ProofURL)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, payment)
}

type ReviewPaymentRequest struct {
	PaymentID       int64            `json:"payment_id" binding:"required"`
	Approve         bool             `json:"approve"`
	ConfirmedAmount *decimal.Decimal `json:"confirmed_amount"`
	RejectionReason string           `json:"rejection_reason"`
	AdminID         int64            `json:"admin_id" binding:"required"`
}

// ReviewPayment handles POST /api/v1/payment/review.
func (h *Handler) ReviewPayment(c *gin.Context) {
	var req ReviewPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	payment, err := h.paymentService.Review(c.Request.Context(), &service.ReviewPaymentRequest{
		PaymentID:       req.PaymentID,
		Approve:         req.Approve,
		ConfirmedAmount: req.ConfirmedAmount,
		RejectionReason: req.RejectionReason,
		AdminID:         req.AdminID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, payment)
}

// GetPayment handles GET /api/v1/payment/detail?id=xxx.
func (h *Handler) GetPayment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid id")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, payment)
}

// ListPayments handles GET /api/v1/payment/list?membership_id=xxx.
func (h *Handler) ListPayments(c *gin.Context) {
	membershipID, err := strconv.ParseInt(c.Query("membership_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid membership_id")
		return
	}

	payments, err := h.paymentService.ListByMembership(c.Request.Context(), membershipID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{"list": payments})
}

// ============================================================
// Wallet endpoints
// ============================================================

// GetWalletBalance handles GET /api/v1/wallet/balance?member_id=xxx.
func (h *Handler) GetWalletBalance(c *gin.Context) {
	memberID, err := strconv.ParseInt(c.Query("member_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid member_id")
		return
	}

	balance, err := h.walletService.GetBalance(c.Request.Context(), memberID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"member_id": memberID,
		"balance":   balance,
	})
}

type AdjustWalletRequest struct {
	MemberID    int64           `json:"member_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"` // signed
	Description string          `json:"description"`
	AdminID     *int64          `json:"admin_id"`
}

// AdjustWallet handles POST /api/v1/wallet/adjust.
func (h *Handler) AdjustWallet(c *gin.Context) {
	var req AdjustWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	balance, err := h.walletService.Adjust(c.Request.Context(), req.MemberID, req.Amount, req.Description, req.AdminID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"member_id": req.MemberID,
		"balance":   balance,
	})
}

type UseWalletForSessionRequest struct {
	MemberID   int64           `json:"member_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	SessionRef string          `json:"session_ref" binding:"required"`
	UserID     *int64          `json:"user_id"`
}

// UseWalletForSession handles POST /api/v1/wallet/session.
func (h *Handler) UseWalletForSession(c *gin.Context) {
	var req UseWalletForSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	balance, err := h.walletService.UseForSession(c.Request.Context(), req.MemberID, req.Amount, req.SessionRef, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"member_id": req.MemberID,
		"balance":   balance,
	})
}

// ListWalletTransactions handles GET /api/v1/wallet/transactions?member_id=xxx.
func (h *Handler) ListWalletTransactions(c *gin.Context) {
	memberID, err := strconv.ParseInt(c.Query("member_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid member_id")
		return
	}
	page, pageSize := pagination(c)

	transactions, total, err := h.walletService.ListTransactions(c.Request.Context(), memberID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      transactions,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ============================================================
// Commission endpoints
// ============================================================

type MarkCommissionPaidRequest struct {
	CommissionID int64 `json:"commission_id" binding:"required"`
	AdminID      int64 `json:"admin_id" binding:"required"`
}

// MarkCommissionPaid handles POST /api/v1/commission/paid.
func (h *Handler) MarkCommissionPaid(c *gin.Context) {
	var req MarkCommissionPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	if err := h.commissionService.MarkPaid(c.Request.Context(), req.CommissionID, req.AdminID); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{"commission_id": req.CommissionID})
}

// ListCommissions handles GET /api/v1/commission/list?trainer_id=xxx.
func (h *Handler) ListCommissions(c *gin.Context) {
	trainerID, err := strconv.ParseInt(c.Query("trainer_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid trainer_id")
		return
	}
	page, pageSize := pagination(c)

	commissions, total, err := h.commissionService.ListByTrainer(c.Request.Context(), trainerID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      commissions,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ListAuditTrail handles GET /api/v1/audit/list?entity_type=xxx&entity_id=xxx.
func (h *Handler) ListAuditTrail(c *gin.Context) {
	entityType := c.Query("entity_type")
	if entityType == "" {
		response.ParamError(c, "entity_type is required")
		return
	}
	entityID, err := strconv.ParseInt(c.Query("entity_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid entity_id")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	entries, err := h.auditRepo.ListByEntity(c.Request.Context(), entityType, entityID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{"list": entries})
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}
