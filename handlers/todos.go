package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/taskory/taskory-api/internal/apperrors"
	"github.com/taskory/taskory-api/internal/identity"
	"github.com/taskory/taskory-api/internal/todos"
	"github.com/taskory/taskory-api/pkg/middleware"
)

// CreateTodoRequest is the payload for POST /todos.
type CreateTodoRequest struct {
	Title     string  `json:"title"`
	Summary   *string `json:"summary"`
	Completed bool    `json:"completed"`
}

func (r CreateTodoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Summary, validation.Length(0, 1000)),
	)
}

// UpdateTodoRequest is a partial update; absent fields are left untouched.
type UpdateTodoRequest struct {
	Title     *string `json:"title"`
	Summary   *string `json:"summary"`
	Completed *bool   `json:"completed"`
}

func (r UpdateTodoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(1, 200)),
		validation.Field(&r.Summary, validation.Length(0, 1000)),
	)
}

// TodoHandler exposes the per-user todo CRUD endpoints.
type TodoHandler struct {
	svc *todos.Service
}

func NewTodoHandler(svc *todos.Service) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// Register mounts the todo routes on an authenticated router group.
func (h *TodoHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/todos")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/statistics", h.Statistics)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *TodoHandler) Create(c *gin.Context) {
	claims, ok := identity.FromContext(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Unauthenticated())
		return
	}
	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, apperrors.Validation("invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		middleware.AbortWithError(c, apperrors.Validation("%v", err))
		return
	}
	td, err := h.svc.Create(c.Request.Context(), claims.Subject, todos.CreateInput{
		Title:     req.Title,
		Summary:   req.Summary,
		Completed: req.Completed,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, td)
}

func (h *TodoHandler) List(c *gin.Context) {
	claims, ok := identity.FromContext(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Unauthenticated())
		return
	}
	q, err := listQuery(c)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	page, err := h.svc.List(c.Request.Context(), claims.Subject, q)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *TodoHandler) Statistics(c *gin.Context) {
	claims, ok := identity.FromContext(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Unauthenticated())
		return
	}
	stats, err := h.svc.Statistics(c.Request.Context(), claims.Subject)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *TodoHandler) Get(c *gin.Context) {
	claims, ok := identity.FromContext(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Unauthenticated())
		return
	}
	td, err := h.svc.Get(c.Request.Context(), c.Param("id"), claims.Subject)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, td)
}

func (h *TodoHandler) Update(c *gin.Context) {
	claims, ok := identity.FromContext(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Unauthenticated())
		return
	}
	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, apperrors.Validation("invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		middleware.AbortWithError(c, apperrors.Validation("%v", err))
		return
	}
	td, err := h.svc.Update(c.Request.Context(), c.Param("id"), claims.Subject, todos.UpdateInput{
		Title:     req.Title,
		Summary:   req.Summary,
		Completed: req.Completed,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, td)
}

func (h *TodoHandler) Delete(c *gin.Context) {
	claims, ok := identity.FromContext(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Unauthenticated())
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), claims.Subject); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// listQuery parses and sanity-checks the list query parameters. Defaults and
// whitelisting of sort columns happen in the service's Normalize.
func listQuery(c *gin.Context) (todos.Query, error) {
	q := todos.Query{
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	if raw := c.Query("completed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return q, apperrors.Validation("completed must be true or false")
		}
		q.Completed = &v
	}
	if raw := c.Query("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return q, apperrors.Validation("page must be an integer")
		}
		q.Page = v
	}
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return q, apperrors.Validation("limit must be an integer")
		}
		q.Limit = v
	}
	return q, nil
}
