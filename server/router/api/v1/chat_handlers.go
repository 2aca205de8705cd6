package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *APIV1Service) Chat(c echo.Context) error {
	if s.Advisor == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "chat advisor is not enabled")
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	reply, err := s.Advisor.SendMessage(c.Request().Context(), req.SessionID, req.Message)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "chat request failed").SetInternal(err)
	}
	return c.JSON(http.StatusOK, &chatResponse{Reply: reply})
}

// GetWeather returns current conditions for the last known location and
// stores fresh coordinates when the client supplies them.
func (s *APIV1Service) GetWeather(c echo.Context) error {
	if s.WeatherProvider == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "weather is not configured")
	}
	ctx := c.Request().Context()

	lat, lon, ok := parseCoordinates(c.QueryParam("lat"), c.QueryParam("lon"))
	if ok {
		if err := s.PrefService.UpdateLocation(ctx, lat, lon); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to store location").SetInternal(err)
		}
	} else {
		prefs := s.PrefService.Get(ctx)
		if prefs.LastLat == 0.0 {
			return echo.NewHTTPError(http.StatusBadRequest, "no location known; pass lat and lon")
		}
		lat, lon = prefs.LastLat, prefs.LastLon
	}

	report, err := s.WeatherProvider.Fetch(ctx, lat, lon)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "weather lookup failed").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"temperatureCelsius": report.TemperatureCelsius,
		"condition":          report.Condition,
		"humidity":           report.Humidity,
		"city":               report.City,
	})
}
