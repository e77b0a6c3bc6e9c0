package routes

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qcinsights/docs"
	traininghandler "qcinsights/internal/api/handlers/training"
)

// TestSwaggerDocumentsTrainingRoutes каждый маршрут пайплайна описан в Swagger, и наоборот
func TestSwaggerDocumentsTrainingRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterTrainingRoutes(router.Group("/api"), &traininghandler.Handler{}, 60)

	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc))

	registered := make(map[string]bool)
	for _, r := range router.Routes() {
		path := swaggerPath(r.Path)
		key := strings.ToLower(r.Method) + " " + path
		registered[key] = true

		ops, ok := doc.Paths[path]
		if assert.True(t, ok, "path %s is not documented", path) {
			assert.Contains(t, ops, strings.ToLower(r.Method), "%s %s is not documented", r.Method, path)
		}
	}

	for path, ops := range doc.Paths {
		for method := range ops {
			assert.True(t, registered[method+" "+path], "documented %s %s has no route", strings.ToUpper(method), path)
		}
	}
	assert.Contains(t, doc.Paths, "/api/training/patterns/{id}")
	assert.Contains(t, doc.Paths["/api/training/data"], strings.ToLower(http.MethodDelete))
}

// swaggerPath переводит параметры gin (:id) в нотацию Swagger ({id})
func swaggerPath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, ":") {
			parts[i] = "{" + part[1:] + "}"
		}
	}
	return strings.Join(parts, "/")
}
