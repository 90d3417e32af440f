package handler

import (
	"net/http"

	"billing_api/internal/metrics"
	"billing_api/internal/middleware"
	"billing_api/internal/model"
	"billing_api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BillHandler serves the owner-scoped bill endpoints
type BillHandler struct {
	service service.BillService
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewBillHandler(s service.BillService, logger *zap.Logger, m *metrics.Metrics) *BillHandler {
	return &BillHandler{service: s, logger: logger, metrics: m}
}

// owner returns the authenticated user, answering 401 if the guard did not run
func (h *BillHandler) owner(c *gin.Context) (*model.User, bool) {
	user, ok := middleware.UserFromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Please authenticate"})
		return nil, false
	}
	return user, true
}

func (h *BillHandler) CreateBill(c *gin.Context) {
	user, ok := h.owner(c)
	if !ok {
		return
	}

	var req model.CreateBillRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	bill, err := h.service.CreateBill(c.Request.Context(), user.ID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.metrics.BillEvent("created")
	c.JSON(http.StatusCreated, bill)
}

func (h *BillHandler) ListBills(c *gin.Context) {
	user, ok := h.owner(c)
	if !ok {
		return
	}

	bills, err := h.service.ListBills(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if bills == nil {
		bills = []model.Bill{}
	}
	c.JSON(http.StatusOK, bills)
}

func (h *BillHandler) GetBill(c *gin.Context) {
	user, ok := h.owner(c)
	if !ok {
		return
	}

	bill, err := h.service.GetBill(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (h *BillHandler) DeleteBill(c *gin.Context) {
	user, ok := h.owner(c)
	if !ok {
		return
	}

	if err := h.service.DeleteBill(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.metrics.BillEvent("deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Bill deleted successfully"})
}

// RegisterBillRoutes mounts the bill endpoints behind authMW
func (h *BillHandler) RegisterBillRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	bills := rg.Group("/bills")
	bills.Use(authMW)
	{
		bills.POST("", h.CreateBill)
		bills.GET("", h.ListBills)
		bills.GET("/:id", h.GetBill)
		bills.DELETE("/:id", h.DeleteBill)
	}
}
