package vote

import (
	"github.com/smallbiznis/kudos/internal/vote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vote.service",
	fx.Provide(service.NewService),
)
