package server

import (
	"fmt"
	"jotter/internal/database/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

const (
	RouteNotes  = "/notes"
	RouteHealth = "/health"
)

const errNoteRequired = "Note is required"

func (s *FiberServer) RegisterFiberRoutes() {
	s.App.Get(RouteHealth, s.healthHandler)

	s.App.Get(RouteNotes, s.getAllNotes)
	s.App.Post(RouteNotes, s.createNote)
}

func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	stats := s.notes.Health()
	if s.db != nil {
		for k, v := range s.db.Health() {
			stats[k] = v
		}
	}
	return c.JSON(stats)
}

func (s *FiberServer) getAllNotes(c *fiber.Ctx) error {
	doc, err := s.notes.List(c.UserContext())
	if err != nil {
		return fmt.Errorf("error listing notes: %w", err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(doc)
}

func (s *FiberServer) createNote(c *fiber.Ctx) error {
	if !c.Is("json") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errNoteRequired})
	}
	input := models.NoteInput{}
	if err := c.BodyParser(&input); err != nil {
		log.Debugf("rejecting note body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errNoteRequired})
	}
	if !input.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errNoteRequired})
	}
	if err := s.notes.Add(c.UserContext(), input.Note); err != nil {
		return fmt.Errorf("error adding note: %w", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}
