package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/odontocare/odontocare/internal/appointment"
	"github.com/odontocare/odontocare/internal/auth"
	"github.com/odontocare/odontocare/internal/clinicfinance"
	"github.com/odontocare/odontocare/internal/clock"
	"github.com/odontocare/odontocare/internal/config"
	"github.com/odontocare/odontocare/internal/migration"
	"github.com/odontocare/odontocare/internal/observability/metrics"
	"github.com/odontocare/odontocare/internal/patient"
	"github.com/odontocare/odontocare/internal/patientfinance"
	"github.com/odontocare/odontocare/internal/patientstatus"
	"github.com/odontocare/odontocare/internal/server"
	"github.com/odontocare/odontocare/internal/staff"
	"github.com/odontocare/odontocare/internal/subscription"
	"github.com/odontocare/odontocare/internal/viewcache"
	"github.com/odontocare/odontocare/pkg/db"
	"github.com/odontocare/odontocare/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,
		viewcache.Module,
		migration.Module,

		auth.Module,
		patient.Module,
		staff.Module,
		appointment.Module,
		patientstatus.Module,
		patientfinance.Module,
		clinicfinance.Module,
		subscription.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
