package router

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	mem "medication-tracker/internal/adapters/storage/memory"
	pg "medication-tracker/internal/adapters/storage/postgres"
	lite "medication-tracker/internal/adapters/storage/sqlite"
	"medication-tracker/internal/domain/doses"
	"medication-tracker/internal/domain/medications"
	"medication-tracker/internal/middleware"
	"medication-tracker/internal/platform/logger"
	"medication-tracker/internal/web"

	_ "medication-tracker/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"gorm.io/gorm"
)

type Options struct {
	Logger    logger.Logger
	SecretKey string
	Location  *time.Location // zona para "hoy" y el .ics; nil = UTC

	// Stores: DB => Postgres, Gorm => SQLite, ninguno => in-memory.
	DB   *sql.DB
	Gorm *gorm.DB
}

func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	ui, err := web.NewUI(opts.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	var (
		medRepo medications.Repository
		admRepo doses.Repository
	)

	switch {
	case opts.DB != nil:
		medRepo = pg.NewMedicationsRepo(opts.DB)
		admRepo = pg.NewAdministrationsRepo(opts.DB)
	case opts.Gorm != nil:
		medRepo = lite.NewMedicationsRepo(opts.Gorm)
		admRepo = lite.NewAdministrationsRepo(opts.Gorm)
	default:
		medRepo = mem.NewMedicationsRepo()
		admRepo = mem.NewAdministrationsRepo()
	}

	// Services por módulo
	medsSvc := medications.NewService(medRepo, opts.Location)
	engine := doses.NewEngine(log, opts.Location)
	dosesSvc := doses.NewService(medsSvc, admRepo, engine)

	// Rutas por módulo
	medications.RegisterRoutes(r, medsSvc, ui)
	doses.RegisterRoutes(r, dosesSvc, ui)

	return r, nil
}
