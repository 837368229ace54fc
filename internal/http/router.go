package httpapi

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/sheetcaller/backend/internal/config"
	"github.com/sheetcaller/backend/internal/http/handlers"
	"github.com/sheetcaller/backend/internal/http/middleware"
	"github.com/sheetcaller/backend/internal/service"
	"github.com/sheetcaller/backend/internal/telephony"

	_ "github.com/sheetcaller/backend/docs"
)

// Deps are the collaborators the router wires into handlers. Journal and CallLog
// may be nil when no database is configured.
type Deps struct {
	Store   service.LeadStore
	Dialer  telephony.Dialer
	Journal service.Journal
	CallLog handlers.CallLog
}

func Router(cfg config.Config, deps Deps, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if origins := allowedOrigins(cfg.CORSAllowed); len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = origins
	}
	r.Use(cors.New(corsCfg))

	journal := deps.Journal
	if journal == nil {
		journal = service.NopJournal{}
	}

	h := &handlers.Handler{
		Orchestrator: &service.Orchestrator{
			Store:  deps.Store,
			Dialer: deps.Dialer,
			Scripts: telephony.ScriptRenderer{
				Brand:           cfg.CompanyName,
				DefaultLanguage: cfg.DefaultLanguage,
				GatherTimeout:   cfg.GatherTimeout,
			},
			BaseURL:     cfg.BaseURL,
			CallerID:    cfg.TwilioCallerID,
			RingTimeout: cfg.RingTimeout,
			Logger:      logger,
		},
		Reconciler: &service.Reconciler{
			Store:   deps.Store,
			Journal: journal,
			Logger:  logger,
		},
		CallLog:   deps.CallLog,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/health", h.Health)
	r.GET("/readyz", h.Readyz)

	r.POST("/initiate-call", h.InitiateCall)
	r.GET("/get-next-customer", h.GetNextCustomer)
	r.POST("/save-response", h.SaveResponse)
	r.GET("/leads", h.Leads)

	voice := r.Group("")
	if cfg.ValidateSig {
		voice.Use(middleware.TwilioSignature(cfg.TwilioAuthToken, cfg.BaseURL, logger))
	}
	{
		voice.GET("/call-script", h.CallScript)
		voice.POST("/call-status", h.CallStatus)
		voice.POST("/handle-input", h.HandleInput)
	}

	admin := r.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.GET("/calls", h.Calls)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// allowedOrigins splits a comma separated origin list. Nil means any origin.
func allowedOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o == "*" {
			return nil
		}
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
