package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "webhooksandbox/internal/api/context"
	"webhooksandbox/internal/api/handlers"
	"webhooksandbox/internal/api/middleware"
	"webhooksandbox/internal/pkg/errors"
)

type Dependencies struct {
	AuthHandler     *handlers.AuthHandler
	SampleHandler   *handlers.SampleHandler
	EndpointHandler *handlers.EndpointHandler
	AuditHandler    *handlers.AuditHandler
	HealthHandler   *handlers.HealthHandler
	MetricsHandler  *handlers.MetricsHandler
	AuthMiddleware  *middleware.AuthMiddleware
	RateLimiter     *middleware.RateLimiter
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Route not found", nil)
	})

	authMid := deps.AuthMiddleware
	limit := deps.RateLimiter

	// Operational
	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))

	// Authentication
	router.POST("/api/v1/auth/token", chain(deps.AuthHandler.Token, limit.Handle))

	// Sample notifications
	router.GET("/api/v1/kinds", wrap(deps.SampleHandler.Kinds))
	router.GET("/api/v1/notifications/sample", chain(deps.SampleHandler.Sample, limit.Handle))
	router.POST("/api/v1/notifications/sample", chain(deps.SampleHandler.Sample, limit.Handle))
	router.POST("/api/v1/notifications/dispatch",
		chain(deps.SampleHandler.Dispatch, authMid.Handle, limit.Handle))

	// Endpoint management
	router.POST("/api/v1/endpoints", chain(deps.EndpointHandler.Create, authMid.Handle))
	router.GET("/api/v1/endpoints", chain(deps.EndpointHandler.List, authMid.Handle))
	router.GET("/api/v1/endpoints/:endpoint_id", chain(deps.EndpointHandler.Get, authMid.Handle))
	router.PATCH("/api/v1/endpoints/:endpoint_id", chain(deps.EndpointHandler.Update, authMid.Handle))
	router.DELETE("/api/v1/endpoints/:endpoint_id", chain(deps.EndpointHandler.Delete, authMid.Handle))
	router.GET("/api/v1/endpoints/:endpoint_id/deliveries",
		chain(deps.EndpointHandler.Deliveries, authMid.Handle))

	// Audit trail
	router.GET("/api/v1/audit", chain(deps.AuditHandler.List, authMid.Handle))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
