package shop

import (
	"github.com/smallbiznis/kudos/internal/shop/service"
	"go.uber.org/fx"
)

var Module = fx.Module("shop.service",
	fx.Provide(service.NewService),
)
