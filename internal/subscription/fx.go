package subscription

import (
	"github.com/odontocare/odontocare/internal/subscription/repository"
	"github.com/odontocare/odontocare/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
