package handlers

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// API Docs
// ============================================================

var docsPage = template.Must(template.New("docs").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">
  <style>
    header { font-family: sans-serif; padding: 12px 20px; border-bottom: 1px solid #e5e7eb; }
    header h1 { font-size: 18px; margin: 0; }
    header p { margin: 4px 0 0; color: #6b7280; font-size: 13px; }
  </style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <p>Routes are served under <code>{{.Prefix}}</code>: canvases and layouts by the planner, render and import by the renderer.</p>
</header>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: {{.SpecURL}},
      dom_id: '#swagger-ui',
      deepLinking: true,
      tryItOutEnabled: true,
      presets: [SwaggerUIBundle.presets.apis],
    });
  };
</script>
</body>
</html>`))

// Docs отдаёт встроенный OpenAPI и страницу Swagger UI для него.
type Docs struct {
	spec    []byte
	specURL string
	title   string
	prefix  string
}

func NewDocs(spec []byte, specURL, title, prefix string) *Docs {
	return &Docs{spec: spec, specURL: specURL, title: title, prefix: prefix}
}

func (d *Docs) Spec(c fiber.Ctx) error {
	if len(d.spec) == 0 {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "openapi document not found"})
	}
	c.Type("yaml")
	return c.Send(d.spec)
}

func (d *Docs) UI(c fiber.Ctx) error {
	var buf bytes.Buffer
	err := docsPage.Execute(&buf, struct {
		Title, SpecURL, Prefix string
	}{d.title, d.specURL, d.prefix})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to render docs"})
	}
	c.Type("html")
	return c.Send(buf.Bytes())
}
