package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	appointmentdomain "github.com/odontocare/odontocare/internal/appointment/domain"
	authdomain "github.com/odontocare/odontocare/internal/auth/domain"
	clinicfinancedomain "github.com/odontocare/odontocare/internal/clinicfinance/domain"
	"github.com/odontocare/odontocare/internal/config"
	obsmetrics "github.com/odontocare/odontocare/internal/observability/metrics"
	patientdomain "github.com/odontocare/odontocare/internal/patient/domain"
	patientfinancedomain "github.com/odontocare/odontocare/internal/patientfinance/domain"
	staffdomain "github.com/odontocare/odontocare/internal/staff/domain"
	subscriptiondomain "github.com/odontocare/odontocare/internal/subscription/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const sessionCookieName = "odontocare_session"

type ServerParams struct {
	fx.In

	Config config.Config
	Log    *zap.Logger

	AuthSvc          authdomain.Service
	PatientSvc       patientdomain.Service
	StaffSvc         staffdomain.Service
	AppointmentSvc   appointmentdomain.Service
	ClinicFinanceSvc clinicfinancedomain.Service
	PatientLedgerSvc patientfinancedomain.Service
	SubscriptionSvc  subscriptiondomain.Service
}

type Server struct {
	cfg config.Config
	log *zap.Logger

	authsvc          authdomain.Service
	patientSvc       patientdomain.Service
	staffSvc         staffdomain.Service
	appointmentSvc   appointmentdomain.Service
	clinicFinanceSvc clinicfinancedomain.Service
	patientLedgerSvc patientfinancedomain.Service
	subscriptionSvc  subscriptiondomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		cfg:              p.Config,
		log:              p.Log.Named("http"),
		authsvc:          p.AuthSvc,
		patientSvc:       p.PatientSvc,
		staffSvc:         p.StaffSvc,
		appointmentSvc:   p.AppointmentSvc,
		clinicFinanceSvc: p.ClinicFinanceSvc,
		patientLedgerSvc: p.PatientLedgerSvc,
		subscriptionSvc:  p.SubscriptionSvc,
	}
}

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// RegisterRoutes mounts the versioned API.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")

	v1.POST("/auth/login", s.Login)
	v1.POST("/auth/logout", s.Logout)

	authed := v1.Group("")
	authed.Use(s.AuthRequired())

	authed.GET("/patients", s.ListPatients)
	authed.GET("/patients/:id", s.GetPatient)
	authed.POST("/patients", s.RequireActiveSubscription(), s.CreatePatient)
	authed.PUT("/patients/:id", s.RequireActiveSubscription(), s.UpdatePatient)
	authed.PUT("/patients/:id/anamnesis", s.RequireActiveSubscription(), s.UpdateAnamnesis)
	authed.PUT("/patients/:id/odontogram", s.RequireActiveSubscription(), s.UpdateOdontogram)

	authed.GET("/staff", s.ListStaff)
	authed.POST("/staff", s.RequireActiveSubscription(), s.UpsertStaff)
	authed.DELETE("/staff/:id", s.RequireActiveSubscription(), s.DeactivateStaff)

	authed.GET("/appointments", s.ListAppointments)
	authed.POST("/appointments", s.RequireActiveSubscription(), s.BookAppointment)
	authed.PUT("/appointments/:id", s.RequireActiveSubscription(), s.RescheduleAppointment)
	authed.POST("/appointments/:id/status", s.RequireActiveSubscription(), s.SetAppointmentStatus)
	authed.POST("/appointments/:id/cancel", s.RequireActiveSubscription(), s.CancelAppointment)

	authed.GET("/finance/clinic", s.ListClinicTransactions)
	authed.GET("/finance/clinic/summary", s.ClinicFinanceSummary)
	authed.GET("/finance/clinic/linkable", s.ListLinkableCharges)
	authed.POST("/finance/clinic", s.RequireActiveSubscription(), s.UpsertClinicFinance)
	authed.DELETE("/finance/clinic/:id", s.RequireActiveSubscription(), s.DeleteClinicFinance)
	authed.POST("/finance/clinic/:id/refund", s.RequireActiveSubscription(), s.RefundClinicFinance)
	authed.POST("/finance/clinic/mark-overdue", s.RequireActiveSubscription(), s.MarkOverdueTransactions)

	authed.GET("/finance/patients", s.ListPatientFinances)
	authed.POST("/finance/patients", s.RequireActiveSubscription(), s.UpsertPatientFinance)
	authed.DELETE("/finance/patients/:id", s.RequireActiveSubscription(), s.DeletePatientFinance)

	authed.GET("/subscription", s.GetSubscription)
	authed.POST("/subscription/sync", s.SyncSubscription)
}

// Module wires the HTTP layer.
var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server, r *gin.Engine) {
		s.RegisterRoutes(r)
	}),
	fx.Invoke(Run),
)

func Run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
