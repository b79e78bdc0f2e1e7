package appointment

import (
	"github.com/odontocare/odontocare/internal/appointment/repository"
	"github.com/odontocare/odontocare/internal/appointment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("appointment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
