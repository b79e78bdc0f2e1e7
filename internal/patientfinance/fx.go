package patientfinance

import (
	"github.com/odontocare/odontocare/internal/patientfinance/repository"
	"github.com/odontocare/odontocare/internal/patientfinance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("patientfinance.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
