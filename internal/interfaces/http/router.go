package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/auth"
	"github.com/jhoicas/Almacen-api/internal/application/catalog"
	"github.com/jhoicas/Almacen-api/internal/application/movement"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	MovementGW *movement.Gateway
	CatalogUC  *catalog.CatalogUseCase
	AuthUC     *auth.AuthUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Movements (protegido)
	movements := protected.Group("/movements")
	movementHandler := NewMovementHandler(deps.MovementGW)
	movements.Post("/", movementHandler.Create)
	movements.Get("/", movementHandler.List)
	movements.Get("/:id", movementHandler.GetByID)
	movements.Put("/:id", movementHandler.Update)
	movements.Delete("/:id", movementHandler.Delete)
	movements.Post("/:id/start", movementHandler.Start)
	movements.Post("/:id/hold", movementHandler.Hold)
	movements.Post("/:id/release", movementHandler.Release)
	movements.Post("/:id/cancel", movementHandler.Cancel)
	movements.Get("/:id/document", movementHandler.Document)
	// El cierre forzado es un override de operador: solo admin o bodeguero.
	movements.Post("/:id/complete",
		RequireRole(entity.RoleAdmin, entity.RoleBodeguero),
		movementHandler.Complete)

	// Movement lines (protegido)
	lines := protected.Group("/movement-lines")
	lineHandler := NewMovementLineHandler(deps.MovementGW)
	lines.Post("/", lineHandler.Create)
	lines.Put("/:id", lineHandler.Update)
	lines.Post("/:id/advance", lineHandler.Advance)
	lines.Post("/:id/cancel", lineHandler.Cancel)

	// Movement tasks (protegido)
	tasks := protected.Group("/movement-tasks")
	taskHandler := NewMovementTaskHandler(deps.MovementGW)
	tasks.Post("/", taskHandler.Create)
	tasks.Get("/", taskHandler.List)
	tasks.Get("/queue", taskHandler.Queue)
	tasks.Put("/:id", taskHandler.Update)
	tasks.Post("/:id/assign", taskHandler.Assign)
	tasks.Post("/:id/unassign", taskHandler.Unassign)
	tasks.Post("/:id/start", taskHandler.Start)
	tasks.Post("/:id/complete", taskHandler.Complete)
	tasks.Post("/:id/cancel", taskHandler.Cancel)

	// Catálogos (protegido)
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	items := protected.Group("/items")
	items.Post("/", catalogHandler.CreateItem)
	items.Get("/", catalogHandler.ListItems)
	items.Get("/:id", catalogHandler.GetItem)

	locations := protected.Group("/locations")
	locations.Post("/", catalogHandler.CreateLocation)
	locations.Get("/", catalogHandler.ListLocations)

	warehouses := protected.Group("/warehouses")
	warehouses.Post("/", catalogHandler.CreateWarehouse)
	warehouses.Get("/", catalogHandler.ListWarehouses)
	warehouses.Get("/:id", catalogHandler.GetWarehouse)
}
