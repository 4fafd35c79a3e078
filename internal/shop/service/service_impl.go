package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/kudos/internal/config"
	obsmetrics "github.com/smallbiznis/kudos/internal/observability/metrics"
	reputationdomain "github.com/smallbiznis/kudos/internal/reputation/domain"
	"github.com/smallbiznis/kudos/internal/shop/domain"
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
	Catalog    *config.ShopCatalogHolder
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	catalog    *config.ShopCatalogHolder
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("shop.service"),
		genID:      p.GenID,
		catalog:    p.Catalog,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Purchase(ctx context.Context, req domain.PurchaseRequest) (domain.PurchaseResult, error) {
	if req.UserID == 0 {
		return domain.PurchaseResult{}, domain.ErrInvalidUser
	}
	item, ok := s.catalog.Item(req.ItemID)
	if !ok {
		return domain.PurchaseResult{}, domain.ErrItemNotFound
	}

	var result domain.PurchaseResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The row lock serializes purchases per user, so the limit count
		// and the balance check cannot race with a concurrent purchase.
		var rec reputationdomain.UserReputation
		err := tx.WithContext(ctx).Raw(
			kdb.ForUpdate(tx,
				`SELECT user_id, karma_points, reward_points, rank_tier, learning_streak,
				        last_login_at, created_at, updated_at
				 FROM user_reputations WHERE user_id = ?`),
			req.UserID,
		).Scan(&rec).Error
		if err != nil {
			return err
		}
		if rec.UserID == 0 {
			return reputationdomain.ErrNotFound
		}

		if item.MaxPerUser > 0 {
			var owned int64
			if err := tx.WithContext(ctx).Raw(
				`SELECT COUNT(*) FROM purchases WHERE user_id = ? AND item_id = ?`,
				req.UserID,
				item.ID,
			).Scan(&owned).Error; err != nil {
				return err
			}
			if owned >= int64(item.MaxPerUser) {
				return domain.ErrLimitReached
			}
		}

		// Guarded debit: the WHERE clause re-checks the balance at write
		// time, so even without the row lock no debit can go negative.
		debit := tx.WithContext(ctx).Exec(
			`UPDATE user_reputations
			 SET reward_points = reward_points - ?, updated_at = ?
			 WHERE user_id = ? AND reward_points >= ?`,
			item.Cost,
			time.Now().UTC(),
			req.UserID,
			item.Cost,
		)
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			return domain.ErrInsufficientBalance
		}

		now := time.Now().UTC()
		purchaseID := s.genID.Generate()
		if err := tx.WithContext(ctx).Exec(
			`INSERT INTO purchases (id, user_id, item_id, cost, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			purchaseID,
			req.UserID,
			item.ID,
			item.Cost,
			now,
		).Error; err != nil {
			return err
		}

		newBalance := rec.RewardPoints - item.Cost
		if err := tx.WithContext(ctx).Exec(
			`INSERT INTO reputation_logs (
				id, user_id, action, karma_delta, reward_delta, karma_after, reward_after, created_at
			) VALUES (?, ?, ?, 0, ?, ?, ?, ?)`,
			s.genID.Generate(),
			req.UserID,
			string(reputationdomain.ActionShopPurchase),
			-item.Cost,
			rec.KarmaPoints,
			newBalance,
			now,
		).Error; err != nil {
			return err
		}

		result = domain.PurchaseResult{
			PurchaseID: purchaseID,
			ItemID:     item.ID,
			Cost:       item.Cost,
			NewBalance: newBalance,
		}
		return nil
	})
	if err != nil {
		switch err {
		case domain.ErrInsufficientBalance:
			s.obsMetrics.RecordRejection("insufficient_balance")
		case domain.ErrLimitReached:
			s.obsMetrics.RecordRejection("limit_reached")
		}
		return domain.PurchaseResult{}, err
	}

	s.obsMetrics.RecordPurchase(item.ID)
	s.log.Info("purchase completed",
		zap.String("user_id", req.UserID.String()),
		zap.String("item_id", item.ID),
		zap.Int64("cost", item.Cost),
	)
	return result, nil
}

func (s *Service) ListPurchases(ctx context.Context, userID snowflake.ID) ([]domain.Purchase, error) {
	var purchases []domain.Purchase
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, user_id, item_id, cost, created_at
		 FROM purchases WHERE user_id = ?
		 ORDER BY id DESC`,
		userID,
	).Scan(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}
