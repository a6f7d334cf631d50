package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	paysvc "github.com/fatflowers/subscription/internal/app/service/payment"
	"github.com/fatflowers/subscription/internal/models"
	"github.com/fatflowers/subscription/pkg/response"
)

type failPaymentRequest struct {
	Reason string `json:"reason"`
}

// @Summary      Create Payment
// @Description  Creates a PENDING payment. The outcome is reported later through the success or fail endpoint.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body payment.CreatePaymentRequest true "Payment to create"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/payments [post]
func ApiCreatePayment(svc *paysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req paysvc.CreatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		p, err := svc.Create(c.Request.Context(), &req, nil)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

// @Summary      Get Payment
// @Tags         Payment
// @Produce      json
// @Param        id path int true "Payment ID"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/payments/{id} [get]
func ApiGetPayment(svc *paysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid payment id"))
			return
		}
		p, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

// @Summary      List Payments
// @Description  Lists payments filtered by subscription_id or customer_id.
// @Tags         Payment
// @Produce      json
// @Param        subscription_id query int false "Subscription ID"
// @Param        customer_id query int false "Customer ID"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/payments [get]
func ApiListPayments(svc *paysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var (
			payments []*models.Payment
			err      error
		)
		switch {
		case c.Query("subscription_id") != "":
			var subID int64
			if subID, err = strconv.ParseInt(c.Query("subscription_id"), 10, 64); err == nil {
				payments, err = svc.ListBySubscription(ctx, subID)
			}
		case c.Query("customer_id") != "":
			var customerID int64
			if customerID, err = strconv.ParseInt(c.Query("customer_id"), 10, 64); err == nil {
				payments, err = svc.ListByCustomer(ctx, customerID)
			}
		default:
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest,
				"subscription_id or customer_id query param is required"))
			return
		}
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(payments))
	}
}

// @Summary      Confirm Payment
// @Description  Resolves a PENDING payment to SUCCESS and publishes the outcome event.
// @Tags         Payment
// @Produce      json
// @Param        id path int true "Payment ID"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/payments/{id}/success [post]
func ApiConfirmPayment(svc *paysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid payment id"))
			return
		}
		p, err := svc.Confirm(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

// @Summary      Fail Payment
// @Description  Resolves a PENDING payment to FAILED with a reason and publishes the outcome event.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        id path int true "Payment ID"
// @Param        request body handlers.failPaymentRequest false "Failure reason"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/payments/{id}/fail [post]
func ApiFailPayment(svc *paysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid payment id"))
			return
		}
		var req failPaymentRequest
		_ = c.ShouldBindJSON(&req)

		p, err := svc.Fail(c.Request.Context(), id, req.Reason)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

func RegisterPaymentRoutes(r gin.IRouter, svc *paysvc.Service) {
	r.POST("/payments", ApiCreatePayment(svc))
	r.GET("/payments", ApiListPayments(svc))
	r.GET("/payments/:id", ApiGetPayment(svc))
	r.POST("/payments/:id/success", ApiConfirmPayment(svc))
	r.POST("/payments/:id/fail", ApiFailPayment(svc))
}
