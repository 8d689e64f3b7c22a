package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"currencyconverter/internal/api"
	"currencyconverter/internal/api/middleware"
	"currencyconverter/internal/service"
)

func (app *App) initHTTP(conversionService service.ConversionServiceInterface) {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(app.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/convert", api.HandleConvert(conversionService))
	r.Get("/rates", api.HandleLatestRates(conversionService))
	r.Post("/rates/refresh", api.HandleRequestRefresh(conversionService))
	r.Get("/rates/refresh/{refresh_id}", api.HandleGetRefresh(conversionService))
	r.Get("/conversions", api.HandleRecentConversions(conversionService))
	r.Get("/healthz", api.HandleHealthz())
	r.Get("/readyz", api.HandleReadyz(app.db, app.rdbCache, app.rdbAsynq))

	if app.cfg.Server.ServeSwagger {
		r.Get("/swagger/*", api.SwaggerUIHandler())
		r.Get("/openapi.json", api.OpenAPISpecHandler())
	}

	if app.monitor != nil {
		r.Handle(app.monitor.RootPath()+"/*", app.monitor)
	}

	app.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
