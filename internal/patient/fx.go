package patient

import (
	"github.com/odontocare/odontocare/internal/patient/repository"
	"github.com/odontocare/odontocare/internal/patient/service"
	"go.uber.org/fx"
)

var Module = fx.Module("patient.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
