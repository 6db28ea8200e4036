package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/featuregraph"
	"github.com/meikuraledutech/featuregraph/client"
	"github.com/meikuraledutech/featuregraph/config"
	"github.com/meikuraledutech/featuregraph/postgres"
	"github.com/meikuraledutech/featuregraph/session"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	// The store is optional: without DATABASE_URL the server runs with no
	// snapshot cache and no template catalog.
	var store featuregraph.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	}

	backend := client.New(cfg.BackendURL)
	sessions := session.NewManager(backend, logger)
	configured := cfg.SourceConfigured()

	app := fiber.New()

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", func(c fiber.Ctx) error {
		if store == nil {
			return c.Status(503).JSON(fiber.Map{"error": "store not configured"})
		}
		if err := store.CreateSchema(c.Context()); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"message": "schema created"})
	})

	app.Delete("/schema", func(c fiber.Ctx) error {
		if store == nil {
			return c.Status(503).JSON(fiber.Map{"error": "store not configured"})
		}
		if err := store.DropSchema(c.Context()); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"message": "schema dropped"})
	})

	// ── Sessions ──────────────────────────────────────────────────────
	app.Post("/sessions", func(c fiber.Ctx) error {
		var body struct {
			Version string `json:"version"`
		}
		if err := c.Bind().JSON(&body); err != nil || body.Version == "" {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}

		s := sessions.Create(body.Version)
		if err := s.Refresh(c.Context(), body.Version); err != nil {
			// Backend down: fall back to a cached snapshot when one exists,
			// otherwise surface the fetch failure as an error state.
			if !restoreFromCache(c.Context(), store, s, body.Version) {
				logger.Warn("graph fetch failed", "session", s.ID, "error", err)
				return c.Status(502).JSON(fiber.Map{"id": s.ID, "error": "graph unavailable"})
			}
		} else if store != nil {
			cacheSnapshot(c.Context(), store, backend, body.Version, logger)
		}

		return c.Status(201).JSON(s.State())
	})

	app.Get("/sessions/:id", func(c fiber.Ctx) error {
		s := sessions.Get(c.Params("id"))
		if s == nil {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		return c.JSON(s.State())
	})

	app.Delete("/sessions/:id", func(c fiber.Ctx) error {
		sessions.Delete(c.Params("id"))
		return c.SendStatus(204)
	})

	app.Post("/sessions/:id/refresh", func(c fiber.Ctx) error {
		s := sessions.Get(c.Params("id"))
		if s == nil {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		var body struct {
			Version string `json:"version"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		version := body.Version
		if version == "" {
			version = s.Version()
		}
		if err := s.Refresh(c.Context(), version); err != nil {
			return c.Status(502).JSON(fiber.Map{"error": "graph unavailable"})
		}
		return c.JSON(s.State())
	})

	// ── Selection operations ──────────────────────────────────────────
	app.Post("/sessions/:id/toggle-feature", func(c fiber.Ctx) error {
		s := sessions.Get(c.Params("id"))
		if s == nil {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		var body struct {
			Feature string `json:"feature"`
		}
		if err := c.Bind().JSON(&body); err != nil || body.Feature == "" {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		s.ToggleFeature(body.Feature)
		return c.JSON(s.State())
	})

	app.Post("/sessions/:id/toggle-node", func(c fiber.Ctx) error {
		s := sessions.Get(c.Params("id"))
		if s == nil {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		var body struct {
			Node string `json:"node"`
		}
		if err := c.Bind().JSON(&body); err != nil || body.Node == "" {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if err := s.ClickNode(body.Node); err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "node not found"})
		}
		return c.JSON(s.State())
	})

	app.Post("/sessions/:id/select-all", func(c fiber.Ctx) error {
		s := sessions.Get(c.Params("id"))
		if s == nil {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		var usable func(featuregraph.Node) bool
		if configured != nil {
			usable = func(n featuregraph.Node) bool { return configured(featuregraph.NodeSource(n)) }
		}
		s.SelectAll(usable)
		return c.JSON(s.State())
	})

	app.Post("/sessions/:id/clear", func(c fiber.Ctx) error {
		s := sessions.Get(c.Params("id"))
		if s == nil {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		s.Clear()
		return c.JSON(s.State())
	})

	app.Post("/sessions/:id/template/:tid", func(c fiber.Ctx) error {
		s := sessions.Get(c.Params("id"))
		if s == nil {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		if store == nil {
			return c.Status(503).JSON(fiber.Map{"error": "store not configured"})
		}
		t, err := store.GetTemplate(c.Context(), c.Params("tid"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if t == nil {
			return c.Status(404).JSON(fiber.Map{"error": "template not found"})
		}
		s.ApplyTemplate(t.Features)
		return c.JSON(s.State())
	})

	app.Post("/sessions/:id/expand", func(c fiber.Ctx) error {
		s := sessions.Get(c.Params("id"))
		if s == nil {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		var body struct {
			Node string `json:"node"`
		}
		if err := c.Bind().JSON(&body); err != nil || body.Node == "" {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		s.ToggleExpand(body.Node)
		return c.SendStatus(204)
	})

	app.Put("/sessions/:id/search", func(c fiber.Ctx) error {
		s := sessions.Get(c.Params("id"))
		if s == nil {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		var body struct {
			Query string `json:"query"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		s.SetQuery(body.Query)
		return c.SendStatus(204)
	})

	// ── Views ─────────────────────────────────────────────────────────
	app.Get("/sessions/:id/layout", func(c fiber.Ctx) error {
		s := sessions.Get(c.Params("id"))
		if s == nil {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		return c.JSON(s.Layout(cfg.Layout))
	})

	app.Get("/sessions/:id/tree", func(c fiber.Ctx) error {
		s := sessions.Get(c.Params("id"))
		if s == nil {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		tree := s.Tree(configured)
		if tree == nil {
			tree = []featuregraph.TreeSource{}
		}
		return c.JSON(tree)
	})

	app.Get("/sessions/:id/summary", func(c fiber.Ctx) error {
		s := sessions.Get(c.Params("id"))
		if s == nil {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		summary := s.Summary()
		return c.JSON(fiber.Map{"summary": summary, "export": summary.Export()})
	})

	app.Get("/sessions/:id/export", func(c fiber.Ctx) error {
		s := sessions.Get(c.Params("id"))
		if s == nil {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		return c.JSON(fiber.Map{"features": s.Selected()})
	})

	// ── Templates ─────────────────────────────────────────────────────
	app.Post("/templates", func(c fiber.Ctx) error {
		if store == nil {
			return c.Status(503).JSON(fiber.Map{"error": "store not configured"})
		}
		var t featuregraph.Template
		if err := c.Bind().JSON(&t); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		id, err := store.CreateTemplate(c.Context(), &t)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(fiber.Map{"id": id})
	})

	app.Get("/templates", func(c fiber.Ctx) error {
		if store == nil {
			return c.Status(503).JSON(fiber.Map{"error": "store not configured"})
		}
		templates, err := store.ListTemplates(c.Context())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(templates)
	})

	app.Get("/templates/:id", func(c fiber.Ctx) error {
		if store == nil {
			return c.Status(503).JSON(fiber.Map{"error": "store not configured"})
		}
		t, err := store.GetTemplate(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if t == nil {
			return c.Status(404).JSON(fiber.Map{"error": "template not found"})
		}
		return c.JSON(t)
	})

	app.Put("/templates/:id", func(c fiber.Ctx) error {
		if store == nil {
			return c.Status(503).JSON(fiber.Map{"error": "store not configured"})
		}
		var t featuregraph.Template
		if err := c.Bind().JSON(&t); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		t.ID = c.Params("id")
		err := store.UpdateTemplate(c.Context(), &t)
		if errors.Is(err, featuregraph.ErrTemplateNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "template not found"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(204)
	})

	app.Delete("/templates/:id", func(c fiber.Ctx) error {
		if store == nil {
			return c.Status(503).JSON(fiber.Map{"error": "store not configured"})
		}
		if err := store.DeleteTemplate(c.Context(), c.Params("id")); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(204)
	})

	log.Fatal(app.Listen(cfg.Listen))
}

// restoreFromCache installs a stored snapshot into the session, if one
// exists for the version.
func restoreFromCache(ctx context.Context, store featuregraph.Store, s *session.Session, version string) bool {
	if store == nil {
		return false
	}
	snap, err := store.GetSnapshot(ctx, version)
	if err != nil || snap == nil {
		return false
	}
	return s.InstallSnapshot(snap) == nil
}

// cacheSnapshot refetches the raw documents and stores them so later
// sessions survive a backend outage. Failures are logged, not surfaced.
func cacheSnapshot(ctx context.Context, store featuregraph.Store, backend *client.Client, version string, logger *slog.Logger) {
	snap, err := backend.FetchRaw(ctx, version)
	if err != nil {
		logger.Warn("snapshot cache fetch failed", "version", version, "error", err)
		return
	}
	if err := store.SaveSnapshot(ctx, snap); err != nil {
		logger.Warn("snapshot cache save failed", "version", version, "error", err)
	}
}
