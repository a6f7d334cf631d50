package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	subsvc "github.com/fatflowers/subscription/internal/app/service/subscription"
	"github.com/fatflowers/subscription/pkg/response"
	"github.com/fatflowers/subscription/pkg/types"
)

type updateSubscriptionRequest struct {
	Status types.SubscriptionStatus `json:"status" binding:"required"`
}

// @Summary      Create Subscription
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body subscription.CreateSubscriptionRequest true "Subscription to create"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/subscriptions [post]
func ApiCreateSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subsvc.CreateSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		sub, err := svc.Create(c.Request.Context(), &req)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Get Subscription
// @Tags         Subscription
// @Produce      json
// @Param        id path int true "Subscription ID"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/subscriptions/{id} [get]
func ApiGetSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid subscription id"))
			return
		}
		sub, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      List Subscriptions
// @Description  Lists a customer's subscriptions, or with due=true the subscriptions currently overdue for renewal.
// @Tags         Subscription
// @Produce      json
// @Param        customer_id query int false "Customer ID"
// @Param        due query bool false "List subscriptions due for renewal"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/subscriptions [get]
func ApiListSubscriptions(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("due") == "true" {
			subs, err := svc.GetOverdue(c.Request.Context(), time.Now().UTC())
			if err != nil {
				respondErr(c, err)
				return
			}
			c.JSON(http.StatusOK, response.OKT(subs))
			return
		}

		customerID, err := strconv.ParseInt(c.Query("customer_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "customer_id query param is required"))
			return
		}
		subs, err := svc.ListByCustomer(c.Request.Context(), customerID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(subs))
	}
}

// @Summary      Request Subscription Renewal
// @Description  Publishes a payment request for the subscription. The renewal itself completes asynchronously when the payment outcome arrives.
// @Tags         Subscription
// @Produce      json
// @Param        id path int true "Subscription ID"
// @Success      202  {object}  response.APIResponse[any]
// @Router       /api/v1/subscriptions/{id}/renew [post]
func ApiRenewSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid subscription id"))
			return
		}
		if err := svc.RequestRenewal(c.Request.Context(), id); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusAccepted, response.OKT(map[string]string{"status": "renewal requested"}))
	}
}

// @Summary      Update Subscription Status
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        id path int true "Subscription ID"
// @Param        request body handlers.updateSubscriptionRequest true "Target status"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/subscriptions/{id} [put]
func ApiUpdateSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid subscription id"))
			return
		}
		var req updateSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		sub, err := svc.UpdateStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, svc *subsvc.Service) {
	r.POST("/subscriptions", ApiCreateSubscription(svc))
	r.GET("/subscriptions", ApiListSubscriptions(svc))
	r.GET("/subscriptions/:id", ApiGetSubscription(svc))
	r.PUT("/subscriptions/:id", ApiUpdateSubscription(svc))
	r.POST("/subscriptions/:id/renew", ApiRenewSubscription(svc))
}
