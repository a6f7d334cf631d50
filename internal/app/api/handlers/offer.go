package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/subscription/internal/app/service/offer"
	"github.com/fatflowers/subscription/pkg/response"
)

// @Summary      Create Offer
// @Tags         Offer
// @Accept       json
// @Produce      json
// @Param        request body offer.CreateOfferRequest true "Offer definition"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/offers [post]
func ApiCreateOffer(svc *offer.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req offer.CreateOfferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		o, err := svc.Create(c.Request.Context(), &req)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(o))
	}
}

// @Summary      Get Offer
// @Tags         Offer
// @Produce      json
// @Param        id path int true "Offer ID"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/offers/{id} [get]
func ApiGetOffer(svc *offer.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid offer id"))
			return
		}
		o, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(o))
	}
}

// @Summary      List Offers
// @Tags         Offer
// @Produce      json
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/offers [get]
func ApiListOffers(svc *offer.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		offers, err := svc.List(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(offers))
	}
}

func RegisterOfferRoutes(r gin.IRouter, svc *offer.Service) {
	r.POST("/offers", ApiCreateOffer(svc))
	r.GET("/offers", ApiListOffers(svc))
	r.GET("/offers/:id", ApiGetOffer(svc))
}
