// Package uploads provides the image upload bounded context module.
package uploads

import (
	"eventcraft_backend/internal/adapters/storage"
	apphttp "eventcraft_backend/internal/http"
	"eventcraft_backend/internal/uploads/handler"
	"eventcraft_backend/internal/uploads/service"
	"eventcraft_backend/platform/logger"
)

// Module is the uploads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the uploads module. The store may be nil
// when object storage is not configured.
func NewModule(store storage.ObjectStore, bucket string, log *logger.Logger) *Module {
	svc := service.New(store, bucket, log)
	h := handler.New(svc)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "uploads"
}

// RegisterRoutes mounts upload routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	protected := ctx.Protected.Group("/upload")
	protected.POST("/image", m.handler.UploadImage)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
