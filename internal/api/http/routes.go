package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weathervision/internal/controller"
	"github.com/i474232898/weathervision/internal/geocode"
	"github.com/i474232898/weathervision/internal/prefs"
	"github.com/i474232898/weathervision/internal/render"
	"github.com/i474232898/weathervision/internal/weather"
)

var validate = validator.New()

// Controller is the set of controller operations exposed over HTTP.
type Controller interface {
	View() controller.View
	SelectPlace(ctx context.Context, p weather.Place) controller.Outcome
	SelectQuery(ctx context.Context, query string) (controller.Outcome, error)
	Search(ctx context.Context, query string) ([]weather.Place, error)
	UseMyLocation(ctx context.Context) controller.Outcome
	SetUnit(ctx context.Context, u weather.Unit) controller.Outcome
	SelectDay(date string) string
	SelectHour(i int) int
	SelectTab(t controller.Tab) controller.Tab
	Refresh(ctx context.Context) controller.Outcome
	Retry(ctx context.Context) controller.Outcome
	SetVisible(ctx context.Context, visible bool) controller.Outcome
	DismissNotice()
	ToggleFavorite(ctx context.Context, p weather.Place) bool
	ToggleCurrentFavorite(ctx context.Context) bool
	ClearFavorites(ctx context.Context)
	SelectFavorite(ctx context.Context, i int) controller.Outcome
	RefreshDashboard(ctx context.Context) []controller.DashboardCard
	CycleTheme(ctx context.Context) prefs.Theme
	ToggleSound(ctx context.Context) bool
	ToggleA11y(ctx context.Context) bool
	ToggleAutoRefresh(ctx context.Context) bool
	Compare(dateA, dateB string) (controller.Comparison, bool)
}

// OfflineSwitch pins connectivity offline, for testing the fallback path.
type OfflineSwitch interface {
	ForceOffline(on bool)
}

// Options carries the optional collaborators of the routes.
type Options struct {
	Connectivity OfflineSwitch
	Sound        *render.Soundscape
	Terminal     render.Terminal
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, ctrl Controller, opts Options) {
	v1 := app.Group("/api/v1")

	v1.Get("/view", func(c *fiber.Ctx) error {
		return c.JSON(ctrl.View())
	})

	v1.Get("/screen", func(c *fiber.Ctx) error {
		v := ctrl.View()
		if t := c.Query("tab"); t != "" {
			if err := validate.Var(t, "oneof=forecast hourly daily dashboard map"); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "unknown tab")
			}
			v.Tab = controller.Tab(t)
		}
		return c.SendString(opts.Terminal.Screen(v))
	})

	v1.Get("/widget", func(c *fiber.Ctx) error {
		v := ctrl.View()
		return c.SendString(render.Widget(v, render.StylesFor(v)))
	})

	v1.Get("/search", func(c *fiber.Ctx) error {
		req := searchQuery{Query: c.Query("q")}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		places, err := ctrl.Search(c.UserContext(), req.Query)
		if err != nil {
			return geocodeError(err)
		}
		return c.JSON(places)
	})

	v1.Post("/place", func(c *fiber.Ctx) error {
		var req placeRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		return respond(c, ctrl, ctrl.SelectPlace(c.UserContext(), req.toPlace()))
	})

	v1.Post("/place/query", func(c *fiber.Ctx) error {
		var req searchQuery
		if err := bind(c, &req); err != nil {
			return err
		}
		out, err := ctrl.SelectQuery(c.UserContext(), req.Query)
		if err != nil {
			return geocodeError(err)
		}
		return respond(c, ctrl, out)
	})

	v1.Post("/location", func(c *fiber.Ctx) error {
		return respond(c, ctrl, ctrl.UseMyLocation(c.UserContext()))
	})

	v1.Put("/unit", func(c *fiber.Ctx) error {
		var req unitRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		return respond(c, ctrl, ctrl.SetUnit(c.UserContext(), weather.Unit(req.Unit)))
	})

	v1.Put("/day", func(c *fiber.Ctx) error {
		var req dayRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"selectedDay": ctrl.SelectDay(req.Date)})
	})

	v1.Put("/hour", func(c *fiber.Ctx) error {
		var req hourRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"selectedHour": ctrl.SelectHour(*req.Hour)})
	})

	v1.Put("/tab", func(c *fiber.Ctx) error {
		var req tabRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"tab": ctrl.SelectTab(controller.Tab(req.Tab))})
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		return respond(c, ctrl, ctrl.Refresh(c.UserContext()))
	})

	v1.Post("/retry", func(c *fiber.Ctx) error {
		return respond(c, ctrl, ctrl.Retry(c.UserContext()))
	})

	v1.Put("/visibility", func(c *fiber.Ctx) error {
		var req visibilityRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		return respond(c, ctrl, ctrl.SetVisible(c.UserContext(), *req.Visible))
	})

	v1.Put("/connectivity", func(c *fiber.Ctx) error {
		if opts.Connectivity == nil {
			return fiber.NewError(fiber.StatusNotImplemented, "connectivity control is not available")
		}
		var req connectivityRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		opts.Connectivity.ForceOffline(*req.Offline)
		return c.JSON(ctrl.View())
	})

	v1.Delete("/notice", func(c *fiber.Ctx) error {
		ctrl.DismissNotice()
		return c.JSON(ctrl.View())
	})

	v1.Post("/favorites/toggle", func(c *fiber.Ctx) error {
		var added bool
		if len(c.Body()) == 0 {
			added = ctrl.ToggleCurrentFavorite(c.UserContext())
		} else {
			var req placeRequest
			if err := bind(c, &req); err != nil {
				return err
			}
			added = ctrl.ToggleFavorite(c.UserContext(), req.toPlace())
		}
		return c.JSON(fiber.Map{"added": added, "favorites": ctrl.View().Favorites})
	})

	v1.Delete("/favorites", func(c *fiber.Ctx) error {
		ctrl.ClearFavorites(c.UserContext())
		return c.JSON(fiber.Map{"favorites": ctrl.View().Favorites})
	})

	v1.Post("/favorites/:index/select", func(c *fiber.Ctx) error {
		i, err := c.ParamsInt("index")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "index must be an integer")
		}
		out := ctrl.SelectFavorite(c.UserContext(), i)
		if out == controller.OutcomeSkipped {
			return fiber.NewError(fiber.StatusNotFound, "no favorite at that index")
		}
		return respond(c, ctrl, out)
	})

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		ctrl.RefreshDashboard(c.UserContext())
		v := ctrl.View()
		return c.JSON(fiber.Map{"unit": v.DashboardUnit, "cards": v.Dashboard, "offline": v.Offline})
	})

	v1.Get("/compare", func(c *fiber.Ctx) error {
		req := compareQuery{A: c.Query("a"), B: c.Query("b")}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		cmp, ok := ctrl.Compare(req.A, req.B)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no forecast loaded")
		}
		return c.JSON(cmp)
	})

	v1.Post("/prefs/theme", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"theme": ctrl.CycleTheme(c.UserContext())})
	})

	v1.Post("/prefs/:flag/toggle", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		var on bool
		switch c.Params("flag") {
		case "sound":
			on = ctrl.ToggleSound(ctx)
		case "a11y":
			on = ctrl.ToggleA11y(ctx)
		case "auto-refresh":
			on = ctrl.ToggleAutoRefresh(ctx)
		default:
			return fiber.NewError(fiber.StatusNotFound, "unknown preference")
		}
		return c.JSON(fiber.Map{"flag": c.Params("flag"), "on": on})
	})

	v1.Get("/sound", func(c *fiber.Ctx) error {
		if opts.Sound == nil {
			return fiber.NewError(fiber.StatusNotFound, "soundscape is not enabled")
		}
		return c.JSON(opts.Sound.Profile())
	})
}

type outcomeResponse struct {
	Outcome controller.Outcome `json:"outcome"`
	View    controller.View    `json:"view"`
}

func respond(c *fiber.Ctx, ctrl Controller, out controller.Outcome) error {
	return c.JSON(outcomeResponse{Outcome: out, View: ctrl.View()})
}

func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func geocodeError(err error) error {
	switch {
	case errors.Is(err, geocode.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, weather.ErrUnsupported):
		return fiber.NewError(fiber.StatusNotImplemented, "search is not configured")
	default:
		return fiber.NewError(fiber.StatusBadGateway, "search is unavailable")
	}
}

type searchQuery struct {
	Query string `json:"query" validate:"required,max=100"`
}

type placeRequest struct {
	Name      string   `json:"name" validate:"max=200"`
	Country   string   `json:"country" validate:"max=100"`
	Latitude  *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	Timezone  string   `json:"tz" validate:"max=64"`
}

func (r placeRequest) toPlace() weather.Place {
	return weather.Place{
		Name:      r.Name,
		Country:   r.Country,
		Latitude:  *r.Latitude,
		Longitude: *r.Longitude,
		Timezone:  r.Timezone,
	}
}

type unitRequest struct {
	Unit string `json:"unit" validate:"required,oneof=metric imperial"`
}

type dayRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type hourRequest struct {
	Hour *int `json:"hour" validate:"required,gte=-1,lte=23"`
}

type tabRequest struct {
	Tab string `json:"tab" validate:"required,oneof=forecast hourly daily dashboard map"`
}

type visibilityRequest struct {
	Visible *bool `json:"visible" validate:"required"`
}

type connectivityRequest struct {
	Offline *bool `json:"offline" validate:"required"`
}

type compareQuery struct {
	A string `validate:"required,datetime=2006-01-02"`
	B string `validate:"required,datetime=2006-01-02"`
}
