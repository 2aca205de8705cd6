// Package v1 exposes the HTTP surface of guarden: the foreground entry
// points the mobile UI used to call directly.
package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/hrygo/guarden/internal/profile"
	"github.com/hrygo/guarden/plugin/ai"
	"github.com/hrygo/guarden/plugin/notify"
	"github.com/hrygo/guarden/plugin/weather"
	"github.com/hrygo/guarden/server/service/plant"
	"github.com/hrygo/guarden/server/service/userpref"
)

type APIV1Service struct {
	Profile         *profile.Profile
	PlantService    *plant.Service
	PrefService     *userpref.Service
	WeatherProvider weather.Provider // nil when not configured
	Advisor         *ai.Advisor      // nil when AI is disabled
	Notifications   *notify.Center
}

func NewAPIV1Service(
	profile *profile.Profile,
	plantService *plant.Service,
	prefService *userpref.Service,
	weatherProvider weather.Provider,
	advisor *ai.Advisor,
	notifications *notify.Center,
) *APIV1Service {
	return &APIV1Service{
		Profile:         profile,
		PlantService:    plantService,
		PrefService:     prefService,
		WeatherProvider: weatherProvider,
		Advisor:         advisor,
		Notifications:   notifications,
	}
}

// Register wires all v1 routes onto the Echo instance.
func (s *APIV1Service) Register(e *echo.Echo) {
	g := e.Group("/api/v1")

	g.GET("/plants", s.ListPlants)
	g.POST("/plants", s.CreatePlant)
	g.DELETE("/plants/:id", s.DeletePlant)
	g.POST("/plants/:id/water", s.WaterPlant)

	g.GET("/preferences", s.GetPreferences)
	g.POST("/preferences/notifications", s.SetNotifications)
	g.POST("/preferences/location", s.SetLocation)

	g.POST("/purchases/premium", s.BuyPremium)
	g.POST("/purchases/plant-pack", s.BuyPlantPack)
	g.POST("/purchases/downgrade", s.DowngradeToFree)

	g.POST("/session/open", s.OpenSession)
	g.POST("/rating/rated", s.SetRated)
	g.POST("/rating/never", s.SetNeverAskAgain)
	g.POST("/rating/shown", s.RatingPromptShown)
	g.POST("/share/shown", s.SharePromptShown)

	g.GET("/weather", s.GetWeather)
	g.POST("/chat", s.Chat)

	g.GET("/notifications", s.ListNotifications)
	g.DELETE("/notifications/:id", s.DismissNotification)
}
