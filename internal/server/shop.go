package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	shopdomain "github.com/smallbiznis/kudos/internal/shop/domain"
)

type purchaseRequest struct {
	ItemID string `json:"item_id"`
}

func (s *Server) Purchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.shopSvc.Purchase(c.Request.Context(), shopdomain.PurchaseRequest{
		UserID: currentUserID(c),
		ItemID: strings.TrimSpace(req.ItemID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ListPurchases(c *gin.Context) {
	purchases, err := s.shopSvc.ListPurchases(c.Request.Context(), currentUserID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": purchases})
}

func (s *Server) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.catalog.Get().Items})
}
