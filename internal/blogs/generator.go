package blogs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/petermazzocco/interior-admin/models"
)

// Request is what the dashboard sends to start a generated post.
type Request struct {
	Topic    string `json:"topic" validate:"required"`
	Keywords string `json:"keywords" validate:"required"`
	Category string `json:"category" validate:"required"`
}

type generateBody struct {
	Topic    string `json:"topic"`
	Category string `json:"category"`
}

type errorBody struct {
	Message string `json:"message"`
}

// Generator calls the external blog writing service.
type Generator struct {
	http *resty.Client
	url  string
}

func NewGenerator(url string, timeout time.Duration) *Generator {
	return &Generator{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		url: url,
	}
}

func (g *Generator) Enabled() bool {
	return g != nil && g.url != ""
}

// Generate returns the service's JSON response unchanged.
func (g *Generator) Generate(ctx context.Context, req Request) (json.RawMessage, error) {
	if !g.Enabled() {
		return nil, models.UpstreamError(nil, "Blog generation is not configured.")
	}
	resp, err := g.http.R().
		SetContext(ctx).
		SetBody(generateBody{
			Topic:    fmt.Sprintf("%s - %s", strings.TrimSpace(req.Topic), strings.TrimSpace(req.Keywords)),
			Category: req.Category,
		}).
		SetError(&errorBody{}).
		Post(g.url)
	if err != nil {
		return nil, models.UpstreamError(err, "Failed to connect to the blog generator.")
	}
	if resp.IsError() {
		msg := "Failed to generate blog"
		if eb, ok := resp.Error().(*errorBody); ok && eb.Message != "" {
			msg = eb.Message
		}
		return nil, models.UpstreamError(fmt.Errorf("generator returned status %d", resp.StatusCode()), "%s", msg)
	}
	body := resp.Body()
	if !json.Valid(body) {
		return nil, models.UpstreamError(fmt.Errorf("generator returned invalid JSON"), "Failed to generate blog")
	}
	return json.RawMessage(body), nil
}
