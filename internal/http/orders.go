package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medorder/internal/normalize"
	"medorder/internal/service"
)

// IdempotencyHeader lets a voice platform retry a webhook safely.
const IdempotencyHeader = "Idempotency-Key"

// respondResult writes an order result. Failures carry the mapped status
// and still return the result body so a voice agent can read the message.
func (s *Server) respondResult(c *gin.Context, res *service.Result, err error) {
	if err == nil {
		status := http.StatusCreated
		if res.Replayed {
			status = http.StatusOK
		}
		c.JSON(status, res)
		return
	}
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("order failed",
			zap.String("request_id", c.GetString(requestIDKey)), zap.Error(err))
	}
	if res == nil {
		res = &service.Result{Message: service.MsgOrderFailed}
	}
	c.JSON(status, res)
}

// @Summary Create order (all items must be available)
// @Tags orders
// @Accept json
// @Produce json
// @Param input body service.ManualOrder true "Order"
// @Success 201 {object} service.Result
// @Failure 400 {object} service.Result
// @Failure 409 {object} service.Result
// @Router /orders [post]
func (s *Server) createOrder(c *gin.Context) {
	var req service.ManualOrder
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	res, err := s.orch.CreateManualOrder(c.Request.Context(), req)
	s.respondResult(c, res, err)
}

// @Summary Create order from a voice agent (unavailable items are skipped)
// @Tags ai-agent
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Retry key"
// @Param input body normalize.VoiceOrder true "Voice order"
// @Success 201 {object} service.Result
// @Success 200 {object} service.Result "Replayed"
// @Failure 400 {object} service.Result
// @Failure 422 {object} service.Result
// @Router /ai-agent/order [post]
func (s *Server) createVoiceOrder(c *gin.Context) {
	var req normalize.VoiceOrder
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if key := strings.TrimSpace(c.GetHeader(IdempotencyHeader)); key != "" {
		req.IdempotencyKey = key
	}
	res, err := s.orch.CreateVoiceOrder(c.Request.Context(), req)
	s.respondResult(c, res, err)
}

// @Summary List orders, newest first
// @Tags orders
// @Produce json
// @Param offset query int false "Offset"
// @Param limit query int false "Limit"
// @Success 200 {array} domain.Order
// @Router /orders [get]
func (s *Server) listOrders(c *gin.Context) {
	offset, limit := paging(c)
	list, err := s.orders.ListOrders(c.Request.Context(), offset, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get order by id
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	o, err := s.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Get order by number
// @Tags orders
// @Produce json
// @Param number path string true "Order number"
// @Success 200 {object} domain.Order
// @Failure 404 {object} map[string]string
// @Router /orders/number/{number} [get]
func (s *Server) getOrderByNumber(c *gin.Context) {
	o, err := s.orders.GetOrderByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Get the invoice of an order
// @Tags invoices
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} domain.Invoice
// @Failure 404 {object} map[string]string
// @Router /orders/{id}/invoice [get]
func (s *Server) getOrderInvoice(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	inv, err := s.orders.GetInvoiceByOrder(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// @Summary Cancel order
// @Description Restores stock and reverts customer counters. The invoice stays issued.
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/cancel [post]
func (s *Server) cancelOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	o, err := s.orders.CancelOrder(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Get invoice by id
// @Tags invoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {object} domain.Invoice
// @Failure 404 {object} map[string]string
// @Router /invoices/{id} [get]
func (s *Server) getInvoice(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	inv, err := s.orders.GetInvoice(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// @Summary Download the rendered invoice document
// @Tags invoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {object} document.Snapshot
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /invoices/{id}/download [get]
func (s *Server) downloadInvoice(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	snap, err := s.orders.InvoiceDocument(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.json"`, snap.InvoiceNumber))
	c.JSON(http.StatusOK, snap)
}

// @Summary Get invoice by number
// @Tags invoices
// @Produce json
// @Param number path string true "Invoice number"
// @Success 200 {object} domain.Invoice
// @Failure 404 {object} map[string]string
// @Router /invoices/number/{number} [get]
func (s *Server) getInvoiceByNumber(c *gin.Context) {
	inv, err := s.orders.GetInvoiceByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

type customerReq struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address"`
}

// @Summary Register customer
// @Tags customers
// @Accept json
// @Produce json
// @Param input body customerReq true "Customer"
// @Success 201 {object} domain.Customer
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /customers [post]
func (s *Server) createCustomer(c *gin.Context) {
	var req customerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	cust, err := s.orders.CreateCustomer(c.Request.Context(), req.Name, req.Phone, req.Address)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cust)
}

// @Summary List customers
// @Tags customers
// @Produce json
// @Param offset query int false "Offset"
// @Param limit query int false "Limit"
// @Success 200 {array} domain.Customer
// @Router /customers [get]
func (s *Server) listCustomers(c *gin.Context) {
	offset, limit := paging(c)
	list, err := s.orders.ListCustomers(c.Request.Context(), offset, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get customer by id
// @Tags customers
// @Produce json
// @Param id path int true "Customer ID"
// @Success 200 {object} domain.Customer
// @Failure 404 {object} map[string]string
// @Router /customers/{id} [get]
func (s *Server) getCustomer(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	cust, err := s.orders.GetCustomer(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

// @Summary Get customer by phone
// @Tags customers
// @Produce json
// @Param phone path string true "Phone in canonical form, e.g. +919876543210"
// @Success 200 {object} domain.Customer
// @Failure 404 {object} map[string]string
// @Router /customers/phone/{phone} [get]
func (s *Server) getCustomerByPhone(c *gin.Context) {
	cust, err := s.orders.GetCustomerByPhone(c.Request.Context(), c.Param("phone"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}
