package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) RecordLogin(c *gin.Context) {
	result, err := s.streakSvc.RecordLogin(c.Request.Context(), currentUserID(c), s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
