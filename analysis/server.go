package analysis

import (
	"log/slog"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meikuraledutech/pipeline"
	"github.com/meikuraledutech/pipeline/internal/logging"
)

// DefaultAllowOrigins lets a locally served editor call the service.
var DefaultAllowOrigins = []string{"http://localhost:3000"}

type serverConfig struct {
	logger   *slog.Logger
	registry *prometheus.Registry
	origins  []string
}

// ServerOption configures the analysis service.
type ServerOption func(*serverConfig)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(c *serverConfig) { c.logger = l }
}

// WithRegistry registers service metrics on reg and serves reg at /metrics.
func WithRegistry(reg *prometheus.Registry) ServerOption {
	return func(c *serverConfig) { c.registry = reg }
}

// WithAllowOrigins sets the CORS origins.
func WithAllowOrigins(origins ...string) ServerOption {
	return func(c *serverConfig) { c.origins = origins }
}

// NewApp builds the analysis service.
//
//	GET  /health          liveness
//	GET  /metrics         prometheus metrics
//	POST /pipelines/parse node/edge counts and DAG check
func NewApp(opts ...ServerOption) *fiber.App {
	cfg := &serverConfig{
		logger:   logging.NewNop(),
		registry: prometheus.NewRegistry(),
		origins:  DefaultAllowOrigins,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	parsed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_analysis_parsed_total",
		Help: "Pipelines analysed, by DAG validity.",
	}, []string{"is_dag"})
	cfg.registry.MustRegister(parsed)

	app := fiber.New(fiber.Config{
		AppName:     "pipeline-analysis",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.origins}))

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.registry, promhttp.HandlerOpts{})))

	app.Post(ParsePath, func(c fiber.Ctx) error {
		var g pipeline.Graph
		if err := c.Bind().JSON(&g); err != nil {
			cfg.logger.Warn("invalid pipeline body", "error", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}
		result := Analyze(g)
		parsed.WithLabelValues(strconv.FormatBool(result.IsDAG)).Inc()
		cfg.logger.Debug("pipeline analysed",
			"num_nodes", result.NumNodes,
			"num_edges", result.NumEdges,
			"is_dag", result.IsDAG,
		)
		return c.JSON(result)
	})

	return app
}

// Analyze computes the structural facts the service reports for g.
func Analyze(g pipeline.Graph) pipeline.Result {
	return pipeline.Result{
		NumNodes: len(g.Nodes),
		NumEdges: len(g.Edges),
		IsDAG:    isAcyclic(g.Nodes, g.Edges),
	}
}

// isAcyclic checks that the edges don't form a cycle using DFS.
func isAcyclic(nodes []pipeline.Node, edges []pipeline.Edge) bool {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	state := make(map[string]int)
	for _, n := range nodes {
		state[n.ID] = unvisited
	}
	// Also include nodes referenced only in edges.
	for _, e := range edges {
		if _, ok := state[e.Source]; !ok {
			state[e.Source] = unvisited
		}
		if _, ok := state[e.Target]; !ok {
			state[e.Target] = unvisited
		}
	}

	var dfs func(id string) bool
	dfs = func(id string) bool {
		state[id] = visiting
		for _, next := range adj[id] {
			switch state[next] {
			case visiting:
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		state[id] = visited
		return false
	}

	for id, s := range state {
		if s == unvisited && dfs(id) {
			return false
		}
	}
	return true
}
