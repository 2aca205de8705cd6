package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/guarden/server/service/plant"
	"github.com/hrygo/guarden/store"
)

type plantResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Type              string  `json:"type"`
	ImageURI          *string `json:"imageUri,omitempty"`
	WateringFrequency int     `json:"wateringFrequency"`
	LastWateringDate  int64   `json:"lastWateringDate"`
	DaysUntilDue      int     `json:"daysUntilDue"`
}

func (s *APIV1Service) toPlantResponse(p *store.Plant, nowMillis int64) *plantResponse {
	return &plantResponse{
		ID:                p.ID,
		Name:              p.Name,
		Type:              p.Type,
		ImageURI:          p.ImageURI,
		WateringFrequency: p.WateringFrequency,
		LastWateringDate:  p.LastWateringDate,
		DaysUntilDue:      plant.DaysUntilDue(p, nowMillis),
	}
}

func (s *APIV1Service) ListPlants(c echo.Context) error {
	ctx := c.Request().Context()
	plants, err := s.PlantService.ListPlants(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list plants").SetInternal(err)
	}

	nowMillis := nowMillis()
	resp := make([]*plantResponse, len(plants))
	for i, p := range plants {
		resp[i] = s.toPlantResponse(p, nowMillis)
	}
	return c.JSON(http.StatusOK, resp)
}

type createPlantRequest struct {
	Name              string  `json:"name"`
	Type              string  `json:"type"`
	ImageURI          *string `json:"imageUri"`
	WateringFrequency int     `json:"wateringFrequency"`
}

// CreatePlant adds a plant. A free-tier user at capacity gets 402 with a
// paywall flag so the client can present the upgrade dialog; nothing is
// inserted in that case.
func (s *APIV1Service) CreatePlant(c echo.Context) error {
	ctx := c.Request().Context()

	var req createPlantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}

	created, err := s.PlantService.AddPlant(ctx, req.Name, req.Type, req.WateringFrequency, req.ImageURI)
	if err != nil {
		if errors.Is(err, plant.ErrPlantLimitReached) {
			return c.JSON(http.StatusPaymentRequired, map[string]any{
				"paywall": true,
				"message": "Plant limit reached. Upgrade to premium or buy a plant pack.",
			})
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, s.toPlantResponse(created, nowMillis()))
}

func (s *APIV1Service) DeletePlant(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.PlantService.DeletePlant(ctx, c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete plant").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) WaterPlant(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.PlantService.WaterPlant(ctx, c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to water plant").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) ListNotifications(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Notifications.List())
}

func (s *APIV1Service) DismissNotification(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification id")
	}
	s.Notifications.Dismiss(id)
	return c.NoContent(http.StatusNoContent)
}
