package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	reputationdomain "github.com/smallbiznis/kudos/internal/reputation/domain"
)

type createUserRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil {
		AbortWithError(c, reputationdomain.ErrInvalidUser)
		return
	}

	rec, err := s.reputationSvc.EnsureUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rec})
}

func (s *Server) GetReputation(c *gin.Context) {
	userID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, reputationdomain.ErrInvalidUser)
		return
	}

	rec, err := s.reputationSvc.Get(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rec})
}

func (s *Server) GetReputationLogs(c *gin.Context) {
	userID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, reputationdomain.ErrInvalidUser)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := s.reputationSvc.Logs(c.Request.Context(), userID, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": logs})
}

type applyActionRequest struct {
	Action    string `json:"action"`
	SubjectID string `json:"subject_id"`
}

func (s *Server) ApplyAction(c *gin.Context) {
	var req applyActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.reputationSvc.ApplyAction(c.Request.Context(), reputationdomain.ApplyActionRequest{
		UserID:    currentUserID(c),
		Action:    reputationdomain.Action(strings.TrimSpace(req.Action)),
		SubjectID: strings.TrimSpace(req.SubjectID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
