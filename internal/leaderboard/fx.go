package leaderboard

import (
	"github.com/smallbiznis/kudos/internal/leaderboard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("leaderboard.service",
	fx.Provide(service.NewService),
)
