package server

import (
	"errors"
	"jotter/internal/config"
	"jotter/internal/database"
	"jotter/internal/notes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

type FiberServer struct {
	*fiber.App

	notes *notes.Book
	// db is nil unless the postgres backend is in use.
	db database.Service
}

func New(cfg config.Config, book *notes.Book, db database.Service) *FiberServer {
	server := &FiberServer{
		App: fiber.New(fiber.Config{
			ServerHeader:      "jotter",
			AppName:           "jotter",
			EnablePrintRoutes: cfg.Debug,
			ErrorHandler:      errorHandler(cfg.Debug),
		}),
		notes: book,
		db:    db,
	}
	server.App.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.Debug,
	}))
	server.App.Use(favicon.New())
	server.App.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Requested-With",
		AllowMethods: "GET,POST,OPTIONS",
		MaxAge:       3600,
	}))
	if cfg.AllowOrigins == "*" {
		// cors skips requests without an Origin header
		server.App.Use(func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
			return c.Next()
		})
	}
	server.App.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	server.App.Use(logger.New(logger.Config{
		Format: "${time} | ${locals:requestid} | ${status} | ${latency} | ${method} ${path} | ${error}\n",
	}))
	if cfg.Debug {
		server.App.Use(pprof.New())
	}
	return server
}

// errorHandler writes errors as plain text. Client errors keep their message;
// server errors only reveal theirs in debug mode.
func errorHandler(debug bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := utils.StatusMessage(code)

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
			if debug {
				message = err.Error()
			}
		}

		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(code).SendString(message)
	}
}
