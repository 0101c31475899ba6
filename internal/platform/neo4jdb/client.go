package neo4jdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"

	"github.com/genegraph/genegraph-backend/internal/platform/envutil"
	"github.com/genegraph/genegraph-backend/internal/platform/logger"
)

const cypherSyntaxErrorCode = "Neo.ClientError.Statement.SyntaxError"

type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
	log      *logger.Logger
}

func NewFromEnv(log *logger.Logger) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("neo4jdb: logger required")
	}

	uri := strings.TrimSpace(os.Getenv("NEO4J_URI"))
	if uri == "" {
		return nil, fmt.Errorf("neo4jdb: missing NEO4J_URI")
	}

	user := envutil.String("NEO4J_USER", "neo4j")
	password := strings.TrimSpace(os.Getenv("NEO4J_PASSWORD"))
	database := strings.TrimSpace(os.Getenv("NEO4J_DATABASE"))
	timeoutSec := envutil.Int("NEO4J_TIMEOUT_SECONDS", 10)
	maxPool := envutil.Int("NEO4J_MAX_POOL_SIZE", 50)

	auth := neo4j.BasicAuth(user, password, "")
	driver, err := neo4j.NewDriverWithContext(uri, auth, func(cfg *neo4j.Config) {
		cfg.MaxConnectionPoolSize = maxPool
		cfg.SocketConnectTimeout = time.Duration(timeoutSec) * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("neo4jdb: init driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4jdb: verify connectivity: %w", err)
	}

	return &Client{
		Driver:   driver,
		Database: database,
		log:      log.With("client", "Neo4jDB"),
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}

// Run executes a single Cypher statement in an auto-commit transaction and
// returns every record as a plain map. Write statements are allowed because
// agent-generated Cypher is not known to be read-only in advance.
func (c *Client) Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	if c == nil || c.Driver == nil {
		return nil, fmt.Errorf("neo4jdb: client not initialized")
	}
	session := c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.Database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.AsMap())
	}
	return out, nil
}

// IsSyntaxError reports whether err is the server's Cypher syntax-error
// condition, as opposed to connectivity or semantic failures.
func IsSyntaxError(err error) bool {
	if err == nil {
		return false
	}
	var neoErr *db.Neo4jError
	if errors.As(err, &neoErr) {
		return neoErr.Code == cypherSyntaxErrorCode
	}
	return false
}

// SchemaText renders the node and relationship shape of the database as text
// suitable for inclusion in a prompt, wrapped at width columns.
func (c *Client) SchemaText(ctx context.Context, width int) (string, error) {
	nodeProps, err := c.Run(ctx, `
CALL db.schema.nodeTypeProperties()
YIELD nodeLabels, propertyName
RETURN nodeLabels, collect(propertyName) AS properties
`, nil)
	if err != nil {
		return "", fmt.Errorf("neo4jdb: node schema: %w", err)
	}

	relPatterns, err := c.Run(ctx, `
MATCH (a)-[r]->(b)
RETURN DISTINCT labels(a) AS from, type(r) AS rel, labels(b) AS to
`, nil)
	if err != nil {
		return "", fmt.Errorf("neo4jdb: relationship schema: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Node properties:\n")
	for _, row := range nodeProps {
		labels := stringSlice(row["nodeLabels"])
		props := stringSlice(row["properties"])
		sb.WriteString(fmt.Sprintf("%s {%s}\n", strings.Join(labels, ":"), strings.Join(props, ", ")))
	}
	sb.WriteString("Relationships:\n")
	for _, row := range relPatterns {
		from := stringSlice(row["from"])
		to := stringSlice(row["to"])
		rel, _ := row["rel"].(string)
		sb.WriteString(fmt.Sprintf("(:%s)-[:%s]->(:%s)\n", strings.Join(from, ":"), rel, strings.Join(to, ":")))
	}

	if width <= 0 {
		width = 60
	}
	return wrapText(sb.String(), width), nil
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func wrapText(text string, width int) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}
		current := words[0]
		for _, w := range words[1:] {
			if len(current)+1+len(w) > width {
				out = append(out, current)
				current = w
				continue
			}
			current += " " + w
		}
		out = append(out, current)
	}
	return strings.Join(out, "\n")
}
