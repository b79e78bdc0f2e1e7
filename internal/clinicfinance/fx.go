package clinicfinance

import (
	"github.com/odontocare/odontocare/internal/clinicfinance/repository"
	"github.com/odontocare/odontocare/internal/clinicfinance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("clinicfinance.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
