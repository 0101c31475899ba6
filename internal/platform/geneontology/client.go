package geneontology

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/genegraph/genegraph-backend/internal/platform/envutil"
	"github.com/genegraph/genegraph-backend/internal/platform/logger"
)

// Term is the human-readable description of a GO identifier. Label and
// Definition are nil when the lookup failed or the service had no text.
type Term struct {
	Label      *string
	Definition *string
}

// Client resolves GO identifiers against the Gene Ontology term API.
type Client interface {
	LookupTerm(ctx context.Context, goID string) (Term, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	baseURL := strings.TrimRight(envutil.String("GO_API_BASE_URL", "http://api.geneontology.org"), "/")
	timeoutSec := envutil.Int("GO_API_TIMEOUT_SECONDS", 15)

	return &client{
		log:        log.With("service", "GeneOntologyClient"),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

type termResponse struct {
	Label      *string `json:"label"`
	Definition *string `json:"definition"`
}

func (c *client) LookupTerm(ctx context.Context, goID string) (Term, error) {
	goID = strings.TrimSpace(goID)
	if goID == "" {
		return Term{}, fmt.Errorf("geneontology: empty GO id")
	}

	endpoint := c.baseURL + "/api/ontology/term/" + url.PathEscape(goID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Term{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Term{}, fmt.Errorf("geneontology: lookup %s: %w", goID, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Term{}, fmt.Errorf("geneontology: read %s: %w", goID, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Term{}, fmt.Errorf("geneontology: lookup %s: http %d", goID, resp.StatusCode)
	}

	var body termResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return Term{}, fmt.Errorf("geneontology: decode %s: %w", goID, err)
	}
	return Term{Label: body.Label, Definition: body.Definition}, nil
}
