package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"medorder/internal/domain"
	"medorder/internal/repository"
	"medorder/internal/service"
)

const defaultPageSize = 50

type Server struct {
	engine    *gin.Engine
	medicines *service.MedicineService
	orch      *service.Orchestrator
	orders    *service.OrderService
	log       *zap.Logger
}

func NewServer(medicines *service.MedicineService, orch *service.Orchestrator, orders *service.OrderService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(requestID(), accessLog(log), gin.Recovery())
	s := &Server{engine: r, medicines: medicines, orch: orch, orders: orders, log: log}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	v1 := s.engine.Group("/api/v1")
	{
		medicines := v1.Group("/medicines")
		medicines.POST("", s.createMedicine)
		medicines.GET("", s.listMedicines)
		medicines.GET("search", s.searchMedicines)
		medicines.GET("low-stock", s.lowStock)
		medicines.GET(":id", s.getMedicine)
		medicines.PUT(":id", s.updateMedicine)
		medicines.DELETE(":id", s.deleteMedicine)

		customers := v1.Group("/customers")
		customers.POST("", s.createCustomer)
		customers.GET("", s.listCustomers)
		customers.GET(":id", s.getCustomer)
		customers.GET("phone/:phone", s.getCustomerByPhone)

		orders := v1.Group("/orders")
		orders.POST("", s.createOrder)
		orders.GET("", s.listOrders)
		orders.GET(":id", s.getOrder)
		orders.GET(":id/invoice", s.getOrderInvoice)
		orders.GET("number/:number", s.getOrderByNumber)
		orders.POST(":id/cancel", s.cancelOrder)

		v1.POST("/ai-agent/order", s.createVoiceOrder)

		invoices := v1.Group("/invoices")
		invoices.GET(":id", s.getInvoice)
		invoices.GET(":id/download", s.downloadInvoice)
		invoices.GET("number/:number", s.getInvoiceByNumber)
	}
}

// Medicine handlers
type medicineReq struct {
	Name                 string           `json:"name" binding:"required"`
	LocalizedName        string           `json:"localized_name"`
	GenericName          string           `json:"generic_name"`
	Company              string           `json:"company"`
	Category             string           `json:"category"`
	UnitPrice            decimal.Decimal  `json:"unit_price" swaggertype:"number"`
	StockQuantity        int64            `json:"stock_quantity" binding:"gte=0"`
	ReorderLevel         int64            `json:"reorder_level" binding:"gte=0"`
	DefaultPackaging     domain.Packaging `json:"default_packaging"`
	UnitsPerPackage      int64            `json:"units_per_package" binding:"gte=0"`
	PrescriptionRequired bool             `json:"prescription_required"`
}

func (r medicineReq) medicine(id int64) domain.Medicine {
	m := domain.Medicine{
		ID:                   id,
		Name:                 r.Name,
		LocalizedName:        r.LocalizedName,
		GenericName:          r.GenericName,
		Company:              r.Company,
		Category:             r.Category,
		UnitPrice:            r.UnitPrice,
		StockQuantity:        r.StockQuantity,
		ReorderLevel:         r.ReorderLevel,
		DefaultPackaging:     r.DefaultPackaging,
		UnitsPerPackage:      r.UnitsPerPackage,
		PrescriptionRequired: r.PrescriptionRequired,
	}
	if m.ReorderLevel == 0 {
		m.ReorderLevel = 10
	}
	return m
}

// @Summary Create medicine
// @Tags medicines
// @Accept json
// @Produce json
// @Param input body medicineReq true "Medicine"
// @Success 201 {object} domain.Medicine
// @Failure 400 {object} map[string]string
// @Router /medicines [post]
func (s *Server) createMedicine(c *gin.Context) {
	var req medicineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	m, err := s.medicines.Create(c.Request.Context(), req.medicine(0))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// @Summary Get medicine by id
// @Tags medicines
// @Produce json
// @Param id path int true "Medicine ID"
// @Success 200 {object} domain.Medicine
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /medicines/{id} [get]
func (s *Server) getMedicine(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	m, err := s.medicines.GetByID(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// @Summary Update medicine
// @Tags medicines
// @Accept json
// @Produce json
// @Param id path int true "Medicine ID"
// @Param input body medicineReq true "Update"
// @Success 200 {object} domain.Medicine
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /medicines/{id} [put]
func (s *Server) updateMedicine(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req medicineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	m, err := s.medicines.Update(c.Request.Context(), req.medicine(id))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// @Summary Delete medicine
// @Tags medicines
// @Param id path int true "Medicine ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /medicines/{id} [delete]
func (s *Server) deleteMedicine(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.medicines.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List medicines
// @Tags medicines
// @Produce json
// @Param q query string false "Name contains"
// @Param min_price query number false "Min price"
// @Param max_price query number false "Max price"
// @Param low_stock query bool false "Only at or below reorder level"
// @Param offset query int false "Offset"
// @Param limit query int false "Limit"
// @Success 200 {array} domain.Medicine
// @Router /medicines [get]
func (s *Server) listMedicines(c *gin.Context) {
	f := repository.MedicineFilter{
		NameSubstring: c.Query("q"),
		LowStockOnly:  cast.ToBool(c.Query("low_stock")),
	}
	f.Offset, f.Limit = paging(c)
	if v := c.Query("min_price"); v != "" {
		if x, err := decimal.NewFromString(v); err == nil {
			f.MinPrice = &x
		}
	}
	if v := c.Query("max_price"); v != "" {
		if x, err := decimal.NewFromString(v); err == nil {
			f.MaxPrice = &x
		}
	}
	list, err := s.medicines.List(c.Request.Context(), f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Search medicines by name, localized name or generic name
// @Tags medicines
// @Produce json
// @Param q query string true "Free text in any script"
// @Param limit query int false "Limit"
// @Success 200 {array} domain.Medicine
// @Failure 400 {object} map[string]string
// @Router /medicines/search [get]
func (s *Server) searchMedicines(c *gin.Context) {
	list, err := s.medicines.Search(c.Request.Context(), c.Query("q"), cast.ToInt(c.Query("limit")))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Medicines at or below their reorder level
// @Tags medicines
// @Produce json
// @Param offset query int false "Offset"
// @Param limit query int false "Limit"
// @Success 200 {array} domain.Medicine
// @Router /medicines/low-stock [get]
func (s *Server) lowStock(c *gin.Context) {
	offset, limit := paging(c)
	list, err := s.medicines.LowStock(c.Request.Context(), offset, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func paging(c *gin.Context) (offset, limit int) {
	offset = cast.ToInt(c.Query("offset"))
	limit = cast.ToInt(c.Query("limit"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 500 {
		limit = defaultPageSize
	}
	return offset, limit
}

func mapErrorToStatus(err error) int {
	switch {
	// a storage fault keeps its cause in the chain; it must not leak as 404/409
	case errors.Is(err, service.ErrPersistence):
		return http.StatusInternalServerError
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrStockConflict),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, repository.ErrReferenced),
		errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, service.ErrNoFulfillableItems):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Internal errors are logged and
// replaced by a generic message.
func (s *Server) fail(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": strings.TrimSpace(err.Error())})
}
