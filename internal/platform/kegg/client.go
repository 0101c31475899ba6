package kegg

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/genegraph/genegraph-backend/internal/platform/envutil"
	"github.com/genegraph/genegraph-backend/internal/platform/logger"
)

// Client scrapes gene display names from a KEGG pathway web page. The page
// lists one gene per table row; the second cell holds
// "SYMBOL; description [links]".
type Client interface {
	GeneNames(ctx context.Context, pathwayURL string) (map[string]string, error)
}

type client struct {
	log        *logger.Logger
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	timeoutSec := envutil.Int("KEGG_TIMEOUT_SECONDS", 30)
	return &client{
		log:        log.With("service", "KEGGClient"),
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

func (c *client) GeneNames(ctx context.Context, pathwayURL string) (map[string]string, error) {
	pathwayURL = strings.TrimSpace(pathwayURL)
	if pathwayURL == "" {
		return nil, fmt.Errorf("kegg: pathway URL required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pathwayURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kegg: fetch pathway page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("kegg: fetch pathway page: http %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("kegg: parse pathway page: %w", err)
	}
	return ExtractGeneNames(doc), nil
}

// ExtractGeneNames walks every table row in the document and keeps cells that
// match the "SYMBOL; name [..." pattern used by KEGG gene listings.
func ExtractGeneNames(doc *html.Node) map[string]string {
	genes := make(map[string]string)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			cells := childElements(n, "td")
			if len(cells) > 1 {
				text := strings.TrimSpace(nodeText(cells[1]))
				if strings.Contains(text, ";") && strings.Contains(text, "[") {
					parts := strings.SplitN(text, ";", 2)
					symbol := strings.TrimSpace(parts[0])
					name := strings.TrimSpace(strings.SplitN(parts[1], "[", 2)[0])
					if symbol != "" && name != "" {
						genes[symbol] = name
					}
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return genes
}

func childElements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.ElementNode && child.Data == tag {
				out = append(out, child)
				continue
			}
			walk(child)
		}
	}
	walk(n)
	return out
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
