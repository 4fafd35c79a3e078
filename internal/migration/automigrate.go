package migration

import (
	reputationdomain "github.com/smallbiznis/kudos/internal/reputation/domain"
	shopdomain "github.com/smallbiznis/kudos/internal/shop/domain"
	votedomain "github.com/smallbiznis/kudos/internal/vote/domain"
	"gorm.io/gorm"
)

// AutoMigrate builds the full ledger schema from the domain models. Tests
// use the same model list so the two schema paths cannot drift silently.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&reputationdomain.UserReputation{},
		&reputationdomain.ActionCompletion{},
		&reputationdomain.ReputationLog{},
		&votedomain.Target{},
		&votedomain.Vote{},
		&shopdomain.Purchase{},
	)
}
