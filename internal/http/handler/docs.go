package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"docintake/docs"
)

// RegisterDocs serves the Swagger UI under /swagger. The advertised host and
// schemes are fixed here, before the app starts serving.
func RegisterDocs(app *fiber.App, host string, schemes ...string) {
	docs.SwaggerInfo.Host = host
	docs.SwaggerInfo.Schemes = schemes
	app.Get("/swagger/*", swagger.HandlerDefault)
}
