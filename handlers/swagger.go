package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(r *gin.Engine) {
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.String(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>taskory-api — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the public API surface.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "taskory-api", "version": "v0.1.0" },
  "components": {
    "securitySchemes": {
      "bearerAuth": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" }
    }
  },
  "paths": {
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/api/v1/auth/health": { "get": { "summary": "API health", "responses": { "200": { "description": "ok" } } } },
    "/api/v1/auth/profile": {
      "get": { "summary": "Caller identity", "security": [{"bearerAuth": []}], "responses": { "200": { "description": "verified claims" }, "401": { "description": "missing or invalid token" } } }
    },
    "/api/v1/todos": {
      "get": {
        "summary": "List own todos",
        "security": [{"bearerAuth": []}],
        "parameters": [
          { "name": "search", "in": "query", "schema": {"type":"string"} },
          { "name": "completed", "in": "query", "schema": {"type":"boolean"} },
          { "name": "page", "in": "query", "schema": {"type":"integer","minimum":1,"default":1} },
          { "name": "limit", "in": "query", "schema": {"type":"integer","minimum":1,"default":10} },
          { "name": "sortBy", "in": "query", "schema": {"type":"string","enum":["createdAt","updatedAt","title"]} },
          { "name": "sortOrder", "in": "query", "schema": {"type":"string","enum":["asc","desc"]} }
        ],
        "responses": { "200": { "description": "paginated todos with meta" } }
      },
      "post": {
        "summary": "Create todo",
        "security": [{"bearerAuth": []}],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["title"],"properties":{"title":{"type":"string","maxLength":200},"summary":{"type":"string","maxLength":1000},"completed":{"type":"boolean"}}}}}},
        "responses": { "201": { "description": "created" }, "400": { "description": "validation failed" } }
      }
    },
    "/api/v1/todos/statistics": {
      "get": { "summary": "Completion statistics for own todos", "security": [{"bearerAuth": []}], "responses": { "200": { "description": "totals and completion rate" } } }
    },
    "/api/v1/todos/{id}": {
      "get": { "summary": "Get own todo", "security": [{"bearerAuth": []}], "parameters": [{ "name": "id", "in": "path", "required": true, "schema": {"type":"string","format":"uuid"} }], "responses": { "200": { "description": "todo" }, "403": { "description": "owned by someone else" }, "404": { "description": "no such todo" } } },
      "patch": { "summary": "Update own todo", "security": [{"bearerAuth": []}], "parameters": [{ "name": "id", "in": "path", "required": true, "schema": {"type":"string","format":"uuid"} }], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string","maxLength":200},"summary":{"type":"string","maxLength":1000},"completed":{"type":"boolean"}}}}}}, "responses": { "200": { "description": "updated todo" } } },
      "delete": { "summary": "Delete own todo", "security": [{"bearerAuth": []}], "parameters": [{ "name": "id", "in": "path", "required": true, "schema": {"type":"string","format":"uuid"} }], "responses": { "204": { "description": "deleted" } } }
    },
    "/api/v1/users": {
      "get": { "summary": "List users (admin)", "security": [{"bearerAuth": []}], "responses": { "200": { "description": "users" }, "403": { "description": "admin role required" } } },
      "post": { "summary": "Create local user (admin)", "security": [{"bearerAuth": []}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["username","email","password"],"properties":{"username":{"type":"string"},"email":{"type":"string","format":"email"},"password":{"type":"string","minLength":8}}}}}}, "responses": { "201": { "description": "created" } } }
    },
    "/api/v1/users/{id}": {
      "get": { "summary": "Get user (admin)", "security": [{"bearerAuth": []}], "parameters": [{ "name": "id", "in": "path", "required": true, "schema": {"type":"string","format":"uuid"} }], "responses": { "200": { "description": "user" } } },
      "delete": { "summary": "Delete user (admin)", "security": [{"bearerAuth": []}], "parameters": [{ "name": "id", "in": "path", "required": true, "schema": {"type":"string","format":"uuid"} }], "responses": { "204": { "description": "deleted" } } }
    }
  }
}`
