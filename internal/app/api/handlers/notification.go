package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	notifsvc "github.com/fatflowers/subscription/internal/app/service/notification"
	"github.com/fatflowers/subscription/pkg/response"
)

// @Summary      List Notifications by customer
// @Tags         Notification
// @Produce      json
// @Param        customer_id query int true "Customer ID"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/notifications [get]
func ApiListNotifications(svc *notifsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, err := strconv.ParseInt(c.Query("customer_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "customer_id query param is required"))
			return
		}
		list, err := svc.ListByCustomer(c.Request.Context(), customerID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(list))
	}
}

func RegisterNotificationRoutes(r gin.IRouter, svc *notifsvc.Service) {
	r.GET("/notifications", ApiListNotifications(svc))
}
