package streak

import (
	"github.com/smallbiznis/kudos/internal/streak/service"
	"go.uber.org/fx"
)

var Module = fx.Module("streak.service",
	fx.Provide(service.NewService),
)
