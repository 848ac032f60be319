package routes

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/licencecheck/licencecheck/pkg/workspace"
)

func ReportsRouter(router fiber.Router, w *workspace.Workspace) {
	router.Get("/:date", func(c *fiber.Ctx) error {
		date, ok := dateParam(c, c.Params("date"))
		if !ok {
			return nil
		}

		contents, err := os.ReadFile(w.ReportPath(date))
		if errors.Is(err, os.ErrNotExist) {
			c.Status(fiber.StatusNotFound)
			return c.JSON(fiber.Map{
				"error": "Could not find a report for this date",
			})
		} else if err != nil {
			return err
		}

		c.Type("html", "utf-8")
		return c.Send(contents)
	})
}
