package routes

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/licencecheck/licencecheck/pkg/comparator"
	"github.com/licencecheck/licencecheck/pkg/licence"
	"github.com/licencecheck/licencecheck/pkg/snapshot"
	"github.com/licencecheck/licencecheck/pkg/util"
	"github.com/rs/zerolog/log"
)

type snapshotsRouter struct {
	store            snapshot.Store
	expiryWindowDays int
}

func SnapshotsRouter(router fiber.Router, store snapshot.Store, expiryWindowDays int) {
	r := &snapshotsRouter{store: store, expiryWindowDays: expiryWindowDays}

	router.Get("/:date", r.getSnapshot)
	router.Get("/:date/changes", r.getChanges)
}

func dateParam(c *fiber.Ctx, value string) (time.Time, bool) {
	date, err := util.ParseDate(value)
	if err != nil {
		c.Status(fiber.StatusBadRequest)
		c.JSON(fiber.Map{
			"error": "Date must be formatted as YYYY-MM-DD",
		})
		return time.Time{}, false
	}

	return date, true
}

func (r *snapshotsRouter) load(c *fiber.Ctx, date time.Time) (*licence.Snapshot, error) {
	loaded, err := r.store.Load(c.UserContext(), date)
	if err != nil && !errors.Is(err, snapshot.ErrNotFound) {
		log.Error().Err(err).Str("date", date.Format(util.DateFormat)).Msg("Failed to load snapshot")
	}

	return loaded, err
}

func (r *snapshotsRouter) getSnapshot(c *fiber.Ctx) error {
	date, ok := dateParam(c, c.Params("date"))
	if !ok {
		return nil
	}

	loaded, err := r.load(c, date)
	if errors.Is(err, snapshot.ErrNotFound) {
		c.Status(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find a snapshot for this date",
		})
	} else if err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"date":    loaded.DateString(),
		"records": loaded.Records,
	})
}

func (r *snapshotsRouter) getChanges(c *fiber.Ctx) error {
	date, ok := dateParam(c, c.Params("date"))
	if !ok {
		return nil
	}

	againstDate := date.AddDate(0, 0, -1)
	if against := c.Query("against"); against != "" {
		if againstDate, ok = dateParam(c, against); !ok {
			return nil
		}
	}

	today, err := r.load(c, date)
	if errors.Is(err, snapshot.ErrNotFound) {
		c.Status(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find a snapshot for this date",
		})
	} else if err != nil {
		return fiber.ErrInternalServerError
	}

	yesterday, err := r.load(c, againstDate)
	if errors.Is(err, snapshot.ErrNotFound) {
		yesterday = licence.NewSnapshot(againstDate, nil)
	} else if err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(comparator.New(date, r.expiryWindowDays).Compare(today, yesterday))
}
