package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	obsmetrics "github.com/smallbiznis/kudos/internal/observability/metrics"
	"github.com/smallbiznis/kudos/internal/reputation/domain"
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
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("reputation.service"),
		genID:      p.GenID,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) EnsureUser(ctx context.Context, userID snowflake.ID) (domain.UserReputation, error) {
	if userID == 0 {
		return domain.UserReputation{}, domain.ErrInvalidUser
	}

	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Exec(
		`INSERT INTO user_reputations (
			user_id, karma_points, reward_points, rank_tier, learning_streak, created_at, updated_at
		) VALUES (?, 0, 0, ?, 0, ?, ?)
		ON CONFLICT (user_id) DO NOTHING`,
		userID,
		string(domain.TierBronze),
		now,
		now,
	).Error
	if err != nil {
		return domain.UserReputation{}, err
	}

	return s.Get(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID snowflake.ID) (domain.UserReputation, error) {
	var rec domain.UserReputation
	err := s.db.WithContext(ctx).Raw(
		`SELECT user_id, karma_points, reward_points, rank_tier, learning_streak,
		        last_login_at, created_at, updated_at
		 FROM user_reputations WHERE user_id = ?`,
		userID,
	).Scan(&rec).Error
	if err != nil {
		return domain.UserReputation{}, err
	}
	if rec.UserID == 0 {
		return domain.UserReputation{}, domain.ErrNotFound
	}
	return rec, nil
}

func (s *Service) ApplyAction(ctx context.Context, req domain.ApplyActionRequest) (domain.ApplyActionResult, error) {
	if req.UserID == 0 {
		return domain.ApplyActionResult{}, domain.ErrInvalidUser
	}
	if strings.TrimSpace(req.SubjectID) == "" {
		return domain.ApplyActionResult{}, domain.ErrInvalidSubject
	}
	delta, ok := domain.DeltaFor(req.Action)
	if !ok {
		return domain.ApplyActionResult{}, domain.ErrUnknownAction
	}

	var applied domain.UserReputation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.WithContext(ctx).Exec(
			`INSERT INTO action_completions (id, user_id, action, subject_id, created_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (user_id, action, subject_id) DO NOTHING`,
			s.genID.Generate(),
			req.UserID,
			string(req.Action),
			req.SubjectID,
			time.Now().UTC(),
		)
		if result.Error != nil {
			return result.Error
		}
		// Zero rows means the completion marker already exists: this
		// logical event was rewarded before.
		if result.RowsAffected == 0 {
			return domain.ErrDuplicateAction
		}

		rec, err := s.AdjustTx(ctx, tx, req.UserID, delta.Karma, delta.Reward, req.Action)
		if err != nil {
			return err
		}
		applied = rec
		return nil
	})
	if err != nil {
		if err == domain.ErrDuplicateAction {
			s.obsMetrics.RecordRejection("duplicate_action")
		}
		return domain.ApplyActionResult{}, err
	}

	s.obsMetrics.RecordAction(string(req.Action))
	s.log.Debug("action applied",
		zap.String("user_id", req.UserID.String()),
		zap.String("action", string(req.Action)),
		zap.String("subject_id", req.SubjectID),
	)
	return domain.ApplyActionResult{
		KarmaDelta:  delta.Karma,
		RewardDelta: delta.Reward,
		Reputation:  applied,
	}, nil
}

func (s *Service) Logs(ctx context.Context, userID snowflake.ID, limit int) ([]domain.ReputationLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var logs []domain.ReputationLog
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, user_id, action, karma_delta, reward_delta, karma_after, reward_after, created_at
		 FROM reputation_logs
		 WHERE user_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		userID,
		limit,
	).Scan(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Service) AdjustTx(ctx context.Context, tx *gorm.DB, userID snowflake.ID, karmaDelta, rewardDelta int64, action domain.Action) (domain.UserReputation, error) {
	var rec domain.UserReputation
	err := tx.WithContext(ctx).Raw(
		kdb.ForUpdate(tx,
			`SELECT user_id, karma_points, reward_points, rank_tier, learning_streak,
			        last_login_at, created_at, updated_at
			 FROM user_reputations WHERE user_id = ?`),
		userID,
	).Scan(&rec).Error
	if err != nil {
		return domain.UserReputation{}, err
	}
	if rec.UserID == 0 {
		return domain.UserReputation{}, domain.ErrNotFound
	}

	newKarma := rec.KarmaPoints + karmaDelta
	if newKarma < 0 {
		newKarma = 0
	}
	newReward := rec.RewardPoints + rewardDelta
	if newReward < 0 {
		newReward = 0
	}
	newTier := domain.RankFor(newKarma)

	now := time.Now().UTC()
	if err := tx.WithContext(ctx).Exec(
		`UPDATE user_reputations
		 SET karma_points = ?, reward_points = ?, rank_tier = ?, updated_at = ?
		 WHERE user_id = ?`,
		newKarma,
		newReward,
		string(newTier),
		now,
		userID,
	).Error; err != nil {
		return domain.UserReputation{}, err
	}

	if err := tx.WithContext(ctx).Exec(
		`INSERT INTO reputation_logs (
			id, user_id, action, karma_delta, reward_delta, karma_after, reward_after, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.genID.Generate(),
		userID,
		string(action),
		newKarma-rec.KarmaPoints,
		newReward-rec.RewardPoints,
		newKarma,
		newReward,
		now,
	).Error; err != nil {
		return domain.UserReputation{}, err
	}

	rec.KarmaPoints = newKarma
	rec.RewardPoints = newReward
	rec.RankTier = newTier
	rec.UpdatedAt = now
	return rec, nil
}
