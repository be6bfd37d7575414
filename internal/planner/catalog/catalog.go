package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"floorplanner/internal/geometry"
	"floorplanner/internal/planner/models"
	"floorplanner/internal/planner/store"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const cacheKey = "catalog:rooms"

var errEmptyCatalog = errors.New("catalog returned no rooms")

// Fallback is served whenever the remote catalog cannot be used.
func Fallback() []models.Template {
	return []models.Template{
		{Type: "bedroom", Width: 120, Height: 100},
		{Type: "bathroom", Width: 80, Height: 80},
		{Type: "kitchen", Width: 140, Height: 100},
		{Type: "living", Width: 160, Height: 140},
	}
}

type roomsResponse struct {
	Rooms []models.Template `json:"rooms"`
}

// ============================================================
// Catalog Client
// ============================================================

type Client struct {
	http   *resty.Client
	cache  store.KV
	ttl    time.Duration
	logger *zap.Logger
}

// New создает клиент каталога. Пустой baseURL означает работу только на
// встроенном списке.
func New(baseURL string, cache store.KV, ttl time.Duration, logger *zap.Logger) *Client {
	var http *resty.Client
	if baseURL != "" {
		http = resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(5*time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(200*time.Millisecond).
			SetHeader("Accept", "application/json")
	}
	return &Client{http: http, cache: cache, ttl: ttl, logger: logger}
}

// Templates returns the room templates, normalised to the grid. It never
// fails: any problem with the remote catalog yields the fallback list.
func (c *Client) Templates(ctx context.Context) (templates []models.Template, remote bool) {
	if c.http == nil {
		return Normalize(Fallback()), false
	}

	if cached, ok := c.fromCache(ctx); ok {
		return cached, true
	}

	fetched, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("Room catalog unavailable, using built-in templates", zap.Error(err))
		return Normalize(Fallback()), false
	}

	templates = Normalize(fetched)
	c.toCache(ctx, templates)
	return templates, true
}

func (c *Client) fetch(ctx context.Context) ([]models.Template, error) {
	var body roomsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/rooms")
	if err != nil {
		return nil, fmt.Errorf("fetch rooms: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch rooms: status %d", resp.StatusCode())
	}
	if len(body.Rooms) == 0 {
		return nil, errEmptyCatalog
	}
	return body.Rooms, nil
}

func (c *Client) fromCache(ctx context.Context) ([]models.Template, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, cacheKey)
	if err != nil {
		if !errors.Is(err, store.ErrMiss) {
			c.logger.Warn("Catalog cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var templates []models.Template
	if err := json.Unmarshal([]byte(raw), &templates); err != nil || len(templates) == 0 {
		return nil, false
	}
	return templates, true
}

func (c *Client) toCache(ctx context.Context, templates []models.Template) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(templates)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, cacheKey, string(data), c.ttl); err != nil {
		c.logger.Warn("Catalog cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached catalog.
func (c *Client) Invalidate(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Delete(ctx, cacheKey)
}

// Lookup finds a template by type.
func Lookup(templates []models.Template, typ string) (models.Template, bool) {
	for _, t := range templates {
		if strings.EqualFold(t.Type, typ) {
			return t, true
		}
	}
	return models.Template{}, false
}

// Normalize drops entries without a type and floors and snaps their sizes.
func Normalize(in []models.Template) []models.Template {
	out := make([]models.Template, 0, len(in))
	for _, t := range in {
		t.Type = strings.TrimSpace(t.Type)
		if t.Type == "" {
			continue
		}
		t.Width, t.Height = geometry.NormalizeSize(t.Width, t.Height)
		out = append(out, t)
	}
	return out
}
