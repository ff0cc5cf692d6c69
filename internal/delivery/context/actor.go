package context

import (
	"mlm/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// SetActor stores the authenticated caller on the echo context.
func SetActor(c echo.Context, actor entity.Actor) {
	c.Set(string(KeyActor), actor)
}

// GetActor returns the authenticated caller. The second value is false on
// routes that skipped authentication.
func GetActor(c echo.Context) (entity.Actor, bool) {
	actor, ok := c.Get(string(KeyActor)).(entity.Actor)
	if !ok || !actor.IsAuthenticated() {
		return entity.Actor{}, false
	}

	return actor, true
}
