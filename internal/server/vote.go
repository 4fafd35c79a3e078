package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	votedomain "github.com/smallbiznis/kudos/internal/vote/domain"
)

type registerTargetRequest struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	OwnerID    string `json:"owner_id"`
}

func (s *Server) RegisterTarget(c *gin.Context) {
	var req registerTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	targetID, err := snowflake.ParseString(strings.TrimSpace(req.TargetID))
	if err != nil {
		AbortWithError(c, votedomain.ErrInvalidTarget)
		return
	}
	ownerID, err := snowflake.ParseString(strings.TrimSpace(req.OwnerID))
	if err != nil {
		AbortWithError(c, votedomain.ErrInvalidOwner)
		return
	}

	target, err := s.voteSvc.RegisterTarget(c.Request.Context(), votedomain.RegisterTargetRequest{
		TargetType: votedomain.TargetType(strings.TrimSpace(req.TargetType)),
		TargetID:   targetID,
		OwnerID:    ownerID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": target})
}

func (s *Server) GetTarget(c *gin.Context) {
	targetID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, votedomain.ErrInvalidTarget)
		return
	}

	target, err := s.voteSvc.GetTarget(c.Request.Context(), votedomain.TargetType(c.Param("type")), targetID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": target})
}

type castVoteRequest struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Desired    string `json:"desired"`
}

func (s *Server) CastVote(c *gin.Context) {
	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	targetID, err := snowflake.ParseString(strings.TrimSpace(req.TargetID))
	if err != nil {
		AbortWithError(c, votedomain.ErrInvalidTarget)
		return
	}

	result, err := s.voteSvc.CastVote(c.Request.Context(), votedomain.CastVoteRequest{
		VoterID:    currentUserID(c),
		TargetType: votedomain.TargetType(strings.TrimSpace(req.TargetType)),
		TargetID:   targetID,
		Desired:    votedomain.VoteState(strings.TrimSpace(req.Desired)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
