package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/rs/zerolog/log"

	"github.com/hookline/hookline/internal/agent"
	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/internal/executor"
	"github.com/hookline/hookline/internal/registry"
)

// HTTPServerDependencies holds everything the HTTP surface exposes.
type HTTPServerDependencies struct {
	Registry *registry.Registry
	Executor *executor.Executor
	Agent    *agent.Agent
}

// NewHTTPServer builds the fiber app with all routes registered.
func NewHTTPServer(ctx context.Context, deps HTTPServerDependencies) *fiber.App {
	router := fiber.New(fiber.Config{
		AppName: "hookline",
	})

	router.Use(cors.New())
	router.Use(logger.New())

	router.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"service":   "hookline",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	v1 := router.Group("/v1")

	v1.Get("/tools", func(c fiber.Ctx) error {
		tools := deps.Registry.List()

		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"tools":      tools,
			"count":      len(tools),
			"generation": deps.Registry.Generation(),
		})
	})

	v1.Post("/tools/refresh", func(c fiber.Ctx) error {
		count, err := deps.Registry.Refresh(c.RequestCtx())
		if err != nil {
			status := fiber.StatusInternalServerError
			if errors.Is(err, domain.ErrRegistryUnavailable) {
				status = fiber.StatusBadGateway
			}

			return c.Status(status).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"count":      count,
			"generation": deps.Registry.Generation(),
		})
	})

	v1.Post("/tools/:name/execute", func(c fiber.Ctx) error {
		name := c.Params("name")

		var req ExecuteToolRequest
		if len(c.Body()) > 0 {
			if err := c.Bind().Body(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid request body",
				})
			}
		}

		if _, found := deps.Registry.Get(name); !found {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "unknown tool: " + name,
			})
		}

		result := deps.Executor.Execute(c.RequestCtx(), name, req.Arguments, nil)

		status := fiber.StatusOK
		if result.Status == domain.StatusFailure {
			status = fiber.StatusUnprocessableEntity
		}

		return c.Status(status).JSON(result)
	})

	v1.Post("/chat", func(c fiber.Ctx) error {
		if deps.Agent == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "chat is not configured, set CLAUDE_API_KEY",
			})
		}

		var req ChatRequest
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		if req.Message == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "message is required",
			})
		}

		reply, messages, err := deps.Agent.Chat(c.RequestCtx(), req.History.toDomain(), req.Message)
		if err != nil {
			log.Error().Err(err).Msg("chat turn failed")

			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.Status(fiber.StatusOK).JSON(ChatResponse{
			Reply:   reply,
			History: historyFromDomain(messages),
		})
	})

	return router
}
