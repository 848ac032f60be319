package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/licencecheck/licencecheck/pkg/api/routes"
	"github.com/licencecheck/licencecheck/pkg/snapshot"
	"github.com/licencecheck/licencecheck/pkg/workspace"
)

func NewApp(store snapshot.Store, w *workspace.Workspace, expiryWindowDays int) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.SnapshotsRouter(group.Group("/snapshots"), store, expiryWindowDays)
	routes.ReportsRouter(group.Group("/reports"), w)

	return webApp
}

func SetupServer(listen string, store snapshot.Store, w *workspace.Workspace, expiryWindowDays int) error {
	return NewApp(store, w, expiryWindowDays).Listen(listen)
}
