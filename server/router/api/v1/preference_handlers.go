package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func (s *APIV1Service) GetPreferences(c echo.Context) error {
	ctx := c.Request().Context()
	prefs := s.PrefService.Get(ctx)
	return c.JSON(http.StatusOK, map[string]any{
		"preferences": prefs,
		"isAdFree":    s.PrefService.IsAdFree(ctx),
	})
}

type setNotificationsRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *APIV1Service) SetNotifications(c echo.Context) error {
	ctx := c.Request().Context()

	var req setNotificationsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	if err := s.PrefService.SetNotificationsEnabled(ctx, req.Enabled); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update notifications").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type setLocationRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (s *APIV1Service) SetLocation(c echo.Context) error {
	ctx := c.Request().Context()

	var req setLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	if err := s.PrefService.UpdateLocation(ctx, req.Lat, req.Lon); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update location").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) BuyPremium(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.PrefService.SetPremium(ctx, true); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to activate premium").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) DowngradeToFree(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.PrefService.SetPremium(ctx, false); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to downgrade").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// BuyPlantPack raises the free-tier capacity by five plants.
func (s *APIV1Service) BuyPlantPack(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.PrefService.IncreasePlantLimit(ctx, 5); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to apply plant pack").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// OpenSession is the single "on foreground" hook. It runs the
// reactivation check against the pre-stamp lastAppOpen, stamps it, and
// tells the client whether to show the welcome-back acknowledgment and
// whether the rating dialog may be shown.
func (s *APIV1Service) OpenSession(c echo.Context) error {
	ctx := c.Request().Context()

	reactivated, err := s.PrefService.OnAppOpen(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open session").SetInternal(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"reactivated":      reactivated,
		"shouldShowRating": s.PrefService.ShouldShowRating(ctx),
		"isAdFree":         s.PrefService.IsAdFree(ctx),
	})
}

func (s *APIV1Service) SetRated(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.PrefService.SetRated(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record rating").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) SetNeverAskAgain(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.PrefService.SetNeverAskAgain(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record opt-out").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) RatingPromptShown(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.PrefService.UpdateLastRatingPromptTime(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to stamp rating prompt").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) SharePromptShown(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.PrefService.UpdateLastSharePromptTime(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to stamp share prompt").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}
