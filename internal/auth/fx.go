package auth

import (
	"github.com/odontocare/odontocare/internal/auth/repository"
	"github.com/odontocare/odontocare/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
