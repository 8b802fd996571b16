package billing

import (
	"github.com/smallbiznis/parqo/internal/billing/repository"
	"github.com/smallbiznis/parqo/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
