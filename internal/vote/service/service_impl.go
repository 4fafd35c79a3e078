package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	obsmetrics "github.com/smallbiznis/kudos/internal/observability/metrics"
	reputationdomain "github.com/smallbiznis/kudos/internal/reputation/domain"
	"github.com/smallbiznis/kudos/internal/vote/domain"
	kdb "github.com/smallbiznis/kudos/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Reputation reputationdomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	reputation reputationdomain.Service
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("vote.service"),
		genID:      p.GenID,
		reputation: p.Reputation,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) RegisterTarget(ctx context.Context, req domain.RegisterTargetRequest) (domain.Target, error) {
	if !req.TargetType.Valid() {
		return domain.Target{}, domain.ErrInvalidTarget
	}
	if req.TargetID == 0 {
		return domain.Target{}, domain.ErrInvalidTarget
	}
	if req.OwnerID == 0 {
		return domain.Target{}, domain.ErrInvalidOwner
	}

	if _, err := s.reputation.EnsureUser(ctx, req.OwnerID); err != nil {
		return domain.Target{}, err
	}

	err := s.db.WithContext(ctx).Exec(
		`INSERT INTO targets (target_type, target_id, owner_id, upvote_count, downvote_count, created_at)
		 VALUES (?, ?, ?, 0, 0, ?)
		 ON CONFLICT (target_type, target_id) DO NOTHING`,
		string(req.TargetType),
		req.TargetID,
		req.OwnerID,
		time.Now().UTC(),
	).Error
	if err != nil {
		return domain.Target{}, err
	}

	return s.GetTarget(ctx, req.TargetType, req.TargetID)
}

func (s *Service) GetTarget(ctx context.Context, targetType domain.TargetType, targetID snowflake.ID) (domain.Target, error) {
	var target domain.Target
	err := s.db.WithContext(ctx).Raw(
		`SELECT target_type, target_id, owner_id, upvote_count, downvote_count, created_at
		 FROM targets WHERE target_type = ? AND target_id = ?`,
		string(targetType),
		targetID,
	).Scan(&target).Error
	if err != nil {
		return domain.Target{}, err
	}
	if target.TargetID == 0 {
		return domain.Target{}, domain.ErrTargetNotFound
	}
	return target, nil
}

// transition captures one row of the vote state machine.
type transition struct {
	upDelta    int64
	downDelta  int64
	karmaDelta int64
	label      string
}

func transitionFor(current, desired domain.VoteState) (transition, bool) {
	switch current {
	case domain.VoteStateNone:
		switch desired {
		case domain.VoteStateUpvoted:
			return transition{upDelta: 1, karmaDelta: 1, label: "new_upvote"}, true
		case domain.VoteStateDownvoted:
			return transition{downDelta: 1, label: "new_downvote"}, true
		}
	case domain.VoteStateUpvoted:
		switch desired {
		case domain.VoteStateDownvoted:
			return transition{upDelta: -1, downDelta: 1, karmaDelta: -1, label: "switch_to_downvote"}, true
		case domain.VoteStateNone:
			return transition{upDelta: -1, karmaDelta: -1, label: "remove_upvote"}, true
		}
	case domain.VoteStateDownvoted:
		switch desired {
		case domain.VoteStateUpvoted:
			return transition{upDelta: 1, downDelta: -1, karmaDelta: 1, label: "switch_to_upvote"}, true
		case domain.VoteStateNone:
			return transition{downDelta: -1, label: "remove_downvote"}, true
		}
	}
	// Same state requested: idempotent no-op.
	return transition{}, false
}

func (s *Service) CastVote(ctx context.Context, req domain.CastVoteRequest) (domain.CastVoteResult, error) {
	if req.VoterID == 0 {
		return domain.CastVoteResult{}, domain.ErrInvalidVoter
	}
	if !req.TargetType.Valid() || req.TargetID == 0 {
		return domain.CastVoteResult{}, domain.ErrInvalidTarget
	}
	if !req.Desired.Valid() {
		return domain.CastVoteResult{}, domain.ErrInvalidVoteState
	}

	var (
		result domain.CastVoteResult
		label  string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Locking the target row serializes concurrent votes on the
		// same target; votes on disjoint targets proceed in parallel.
		target, err := s.loadTargetForUpdate(ctx, tx, req.TargetType, req.TargetID)
		if err != nil {
			return err
		}

		vote, err := s.findVote(ctx, tx, req.VoterID, req.TargetType, req.TargetID)
		if err != nil {
			return err
		}
		current := domain.VoteStateNone
		if vote != nil {
			current = vote.VoteState
		}

		tr, changed := transitionFor(current, req.Desired)
		if !changed {
			result = domain.CastVoteResult{
				State:         current,
				UpvoteCount:   target.UpvoteCount,
				DownvoteCount: target.DownvoteCount,
			}
			label = "noop"
			return nil
		}
		label = tr.label

		if err := s.applyVoteRow(ctx, tx, vote, req); err != nil {
			return err
		}

		if err := tx.WithContext(ctx).Exec(
			`UPDATE targets
			 SET upvote_count = upvote_count + ?, downvote_count = downvote_count + ?
			 WHERE target_type = ? AND target_id = ?`,
			tr.upDelta,
			tr.downDelta,
			string(req.TargetType),
			req.TargetID,
		).Error; err != nil {
			return err
		}

		// Self-votes are stored but never move the owner's karma.
		if tr.karmaDelta != 0 && req.VoterID != target.OwnerID {
			action := reputationdomain.ActionReceiveUpvote
			if tr.karmaDelta < 0 {
				action = reputationdomain.ActionUpvoteRevoked
			}
			if _, err := s.reputation.AdjustTx(ctx, tx, target.OwnerID, tr.karmaDelta, 0, action); err != nil {
				return err
			}
		}

		result = domain.CastVoteResult{
			State: req.Desired,
			Deltas: domain.CounterDeltas{
				Upvotes:   tr.upDelta,
				Downvotes: tr.downDelta,
			},
			UpvoteCount:   target.UpvoteCount + tr.upDelta,
			DownvoteCount: target.DownvoteCount + tr.downDelta,
		}
		return nil
	})
	if err != nil {
		return domain.CastVoteResult{}, err
	}

	s.obsMetrics.RecordVote(label)
	return result, nil
}

func (s *Service) loadTargetForUpdate(ctx context.Context, tx *gorm.DB, targetType domain.TargetType, targetID snowflake.ID) (*domain.Target, error) {
	var target domain.Target
	err := tx.WithContext(ctx).Raw(
		kdb.ForUpdate(tx,
			`SELECT target_type, target_id, owner_id, upvote_count, downvote_count, created_at
			 FROM targets WHERE target_type = ? AND target_id = ?`),
		string(targetType),
		targetID,
	).Scan(&target).Error
	if err != nil {
		return nil, err
	}
	if target.TargetID == 0 {
		return nil, domain.ErrTargetNotFound
	}
	return &target, nil
}

func (s *Service) findVote(ctx context.Context, tx *gorm.DB, voterID snowflake.ID, targetType domain.TargetType, targetID snowflake.ID) (*domain.Vote, error) {
	var vote domain.Vote
	err := tx.WithContext(ctx).Raw(
		`SELECT id, voter_id, target_type, target_id, vote_state, created_at, updated_at
		 FROM votes WHERE voter_id = ? AND target_type = ? AND target_id = ?`,
		voterID,
		string(targetType),
		targetID,
	).Scan(&vote).Error
	if err != nil {
		return nil, err
	}
	if vote.ID == 0 {
		return nil, nil
	}
	return &vote, nil
}

func (s *Service) applyVoteRow(ctx context.Context, tx *gorm.DB, existing *domain.Vote, req domain.CastVoteRequest) error {
	now := time.Now().UTC()

	if existing == nil {
		return tx.WithContext(ctx).Exec(
			`INSERT INTO votes (id, voter_id, target_type, target_id, vote_state, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.genID.Generate(),
			req.VoterID,
			string(req.TargetType),
			req.TargetID,
			string(req.Desired),
			now,
			now,
		).Error
	}

	if req.Desired == domain.VoteStateNone {
		return tx.WithContext(ctx).Exec(
			`DELETE FROM votes WHERE id = ?`,
			existing.ID,
		).Error
	}

	return tx.WithContext(ctx).Exec(
		`UPDATE votes SET vote_state = ?, updated_at = ? WHERE id = ?`,
		string(req.Desired),
		now,
		existing.ID,
	).Error
}
