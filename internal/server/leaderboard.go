package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	leaderboarddomain "github.com/smallbiznis/kudos/internal/leaderboard/domain"
)

func (s *Server) GetLeaderboard(c *gin.Context) {
	metric := leaderboarddomain.Metric(c.DefaultQuery("metric", string(leaderboarddomain.MetricKarma)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, err := s.leaderboardSvc.Top(c.Request.Context(), metric, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}
