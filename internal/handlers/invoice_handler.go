package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fireforce-invoice-api/internal/models"
	"fireforce-invoice-api/internal/services"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	dataService services.DataService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(dataService services.DataService) *InvoiceHandler {
	return &InvoiceHandler{
		dataService: dataService,
	}
}

// @Summary Create a new invoice
// @Description Create an invoice for an existing customer. Totals are calculated server-side.
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body services.CreateInvoiceRequest true "Invoice data"
// @Success 201 {object} models.Invoice
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req services.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	invoice, err := h.dataService.CreateInvoice(c.Request.Context(), &req)
	if err != nil {
		if isNotFoundError(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "Customer not found",
				Message: err.Error(),
			})
			return
		}
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Validation failed",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to create invoice",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, invoice)
}

// @Summary List invoices
// @Description Get invoices with optional filters, newest first
// @Tags invoices
// @Produce json
// @Param status query string false "Filter by status" Enums(pending, in-process, completed)
// @Param transaction_type query string false "Filter by transaction type" Enums(sales_order, service_order, quote)
// @Param sales_rep query string false "Filter by sales rep"
// @Param archived query bool false "Filter by archived flag"
// @Success 200 {array} models.Invoice
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	filters := &services.InvoiceFilters{}

	if status := c.Query("status"); status != "" {
		s := models.InvoiceStatus(status)
		filters.Status = &s
	}

	if transactionType := c.Query("transaction_type"); transactionType != "" {
		tt := models.TransactionType(transactionType)
		filters.TransactionType = &tt
	}

	if salesRep := c.Query("sales_rep"); salesRep != "" {
		filters.SalesRep = &salesRep
	}

	if archived := c.Query("archived"); archived != "" {
		if val, err := strconv.ParseBool(archived); err == nil {
			filters.Archived = &val
		}
	}

	invoices, err := h.dataService.ListInvoices(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list invoices",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, invoices)
}

// @Summary Get an invoice
// @Description Get an invoice by ID, line items included
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} models.Invoice
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id := c.Param("id")

	invoice, err := h.dataService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		if isNotFoundError(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "Invoice not found",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to get invoice",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// @Summary Update an invoice
// @Description Update invoice fields. Totals are recalculated when items, shipping, or tax rate change.
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param invoice body services.UpdateInvoiceRequest true "Fields to update"
// @Success 200 {object} models.Invoice
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	id := c.Param("id")

	var req services.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	invoice, err := h.dataService.UpdateInvoice(c.Request.Context(), id, &req)
	if err != nil {
		if isNotFoundError(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "Invoice not found",
				Message: err.Error(),
			})
			return
		}
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Validation failed",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to update invoice",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// @Summary Delete an invoice
// @Description Delete an invoice and its line items
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	id := c.Param("id")

	if err := h.dataService.DeleteInvoice(c.Request.Context(), id); err != nil {
		if isNotFoundError(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "Invoice not found",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to delete invoice",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}
