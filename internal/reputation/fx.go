package reputation

import (
	"github.com/smallbiznis/kudos/internal/reputation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reputation.service",
	fx.Provide(service.NewService),
)
