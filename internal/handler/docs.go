package handler

import (
	_ "embed"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// Swagger UI page loading its assets from a CDN and pointing at /openapi.yaml.
//
//go:embed swagger.html
var swaggerHTML string

// OpenAPIPath is where the API description is read from, relative to the working directory.
var OpenAPIPath = "api/openapi.yaml"

// RegisterDocs mounts documentation endpoints at the root:
//   - GET /openapi.yaml: the scoreboard API description
//   - GET /docs: Swagger UI for it
func RegisterDocs(r *gin.Engine) {
	r.GET("/openapi.yaml", func(c *gin.Context) {
		data, err := os.ReadFile(OpenAPIPath)
		if err != nil {
			c.String(http.StatusInternalServerError, "failed to read openapi spec: %v", err)
			return
		}
		c.Data(http.StatusOK, "application/yaml; charset=utf-8", data)
	})
	r.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})
}
