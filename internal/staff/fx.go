package staff

import (
	"github.com/odontocare/odontocare/internal/staff/repository"
	"github.com/odontocare/odontocare/internal/staff/service"
	"go.uber.org/fx"
)

var Module = fx.Module("staff.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
