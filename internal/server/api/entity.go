// Package api exposes the tenant-scoped CRUD surface over gin. One set of
// entity endpoints is registered per managed entity type; every operation
// runs behind the authorization gate.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/recordhub/recordhub/internal/authz"
	"github.com/recordhub/recordhub/internal/contexts"
	"github.com/recordhub/recordhub/internal/files"
	"github.com/recordhub/recordhub/internal/jobs"
	"github.com/recordhub/recordhub/internal/objects"
	"github.com/recordhub/recordhub/internal/pkg/xcache"
	"github.com/recordhub/recordhub/internal/repository"
	"github.com/recordhub/recordhub/internal/server/middleware"
)

// Rights required by the standard CRUD operations. Named queries, imports
// and exports use their identifier as the right instead.
const (
	RightView   = "view"
	RightAdd    = "add"
	RightEdit   = "edit"
	RightDelete = "delete"
)

const defaultIdentifier = "primary"

// Registrar is anything that mounts routes on the authenticated API group.
type Registrar interface {
	RegisterRoutes(router gin.IRouter)
}

// EntityConfig wires one entity type into the HTTP surface.
type EntityConfig[E repository.Editable] struct {
	Application string
	Entity      string
	Gate        *authz.Gate
	Repo        repository.Tenantable[E]
	Files       *files.Store
	Importer    *jobs.Importer

	// ParamOf projects an editable value into the shape entity policy
	// scripts see. Defaults to the value itself.
	ParamOf func(E) any

	// ExportExpiration bounds how long generated export links stay valid.
	ExportExpiration time.Duration
}

type EntityEndpoints[E repository.Editable] struct {
	application string
	entity      string
	gate        *authz.Gate
	repo        repository.Tenantable[E]
	files       *files.Store
	importer    *jobs.Importer
	paramOf     func(E) any

	exports          xcache.Cache[repository.ExportResult]
	exportExpiration time.Duration
}

func NewEntityEndpoints[E repository.Editable](cfg EntityConfig[E]) *EntityEndpoints[E] {
	paramOf := cfg.ParamOf
	if paramOf == nil {
		paramOf = func(value E) any { return value }
	}

	expiration := cfg.ExportExpiration
	if expiration == 0 {
		expiration = 15 * time.Minute
	}

	return &EntityEndpoints[E]{
		application:      cfg.Application,
		entity:           cfg.Entity,
		gate:             cfg.Gate,
		repo:             cfg.Repo,
		files:            cfg.Files,
		importer:         cfg.Importer,
		paramOf:          paramOf,
		exports:          xcache.NewMemoryWithOptions[repository.ExportResult](expiration, 2*expiration, xcache.WithExpiration(expiration)),
		exportExpiration: expiration,
	}
}

// RegisterRoutes mounts the endpoints under /{application}/{entity}.
func (e *EntityEndpoints[E]) RegisterRoutes(router gin.IRouter) {
	group := router.Group(fmt.Sprintf("/%s/%s", e.application, e.entity))

	group.GET("/all", e.All)
	group.GET("/query/:identifier", e.Query)
	group.GET("/count", e.Count)
	group.GET("/new", e.New)
	group.GET("/new/:identifier", e.NewQuery)
	group.GET("/byid/:id", e.ByID)
	group.POST("/save", e.Save)
	group.POST("/savebatch", e.SaveBatch)
	group.DELETE("/remove/:id", e.Remove)
	group.POST("/import/:identifier", e.Import)
	group.GET("/export/:identifier", e.Export)
	group.GET("/exporturl/:identifier", e.ExportURL)
	group.GET("/download/:id", e.Download)
}

func identity(c *gin.Context) (uuid.UUID, uuid.UUID, objects.Claims, bool) {
	ctx := c.Request.Context()

	tenantID, ok := contexts.GetTenantID(ctx)
	if !ok {
		middleware.AbortWithError(c, http.StatusUnauthorized, fmt.Errorf("missing tenant"))
		return uuid.Nil, uuid.Nil, nil, false
	}

	userID, ok := contexts.GetUserID(ctx)
	if !ok {
		middleware.AbortWithError(c, http.StatusUnauthorized, fmt.Errorf("missing user"))
		return uuid.Nil, uuid.Nil, nil, false
	}

	claims, ok := contexts.GetClaims(ctx)
	if !ok {
		claims = objects.Claims{}
	}

	return tenantID, userID, claims, true
}

// queryParams flattens the URL query into the generic parameter map the
// repository understands.
func queryParams(c *gin.Context) map[string]any {
	params := map[string]any{}

	for key, values := range c.Request.URL.Query() {
		if len(values) == 1 {
			params[key] = values[0]
		} else {
			params[key] = values
		}
	}

	return params
}

// queryRight maps a query identifier to the required right. The primary
// query needs the plain view right, named queries need a right of their own
// name.
func queryRight(identifier string) string {
	if identifier == defaultIdentifier {
		return RightView
	}

	return identifier
}

func (e *EntityEndpoints[E]) check(tenantID uuid.UUID, claims objects.Claims, right string) *authz.Check {
	return e.gate.Entity(tenantID, e.application, e.entity).WithClaims(claims).RequireRight(right)
}

func (e *EntityEndpoints[E]) All(c *gin.Context) {
	tenantID, _, claims, ok := identity(c)
	if !ok {
		return
	}

	values, err := authz.Execute(c.Request.Context(), e.check(tenantID, claims, RightView), func(ctx context.Context) ([]E, error) {
		return e.repo.All(ctx, tenantID, defaultIdentifier, claims)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, values)
}

func (e *EntityEndpoints[E]) Query(c *gin.Context) {
	tenantID, _, claims, ok := identity(c)
	if !ok {
		return
	}

	identifier := c.Param("identifier")

	values, err := authz.Execute(c.Request.Context(), e.check(tenantID, claims, queryRight(identifier)), func(ctx context.Context) ([]E, error) {
		return e.repo.Query(ctx, tenantID, identifier, claims, queryParams(c))
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, values)
}

func (e *EntityEndpoints[E]) Count(c *gin.Context) {
	tenantID, _, claims, ok := identity(c)
	if !ok {
		return
	}

	count, err := authz.Execute(c.Request.Context(), e.check(tenantID, claims, RightView), func(ctx context.Context) (int64, error) {
		return e.repo.Count(ctx, tenantID, defaultIdentifier, claims, queryParams(c))
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (e *EntityEndpoints[E]) New(c *gin.Context) {
	e.newWithIdentifier(c, defaultIdentifier)
}

func (e *EntityEndpoints[E]) NewQuery(c *gin.Context) {
	e.newWithIdentifier(c, c.Param("identifier"))
}

func (e *EntityEndpoints[E]) newWithIdentifier(c *gin.Context, identifier string) {
	tenantID, _, claims, ok := identity(c)
	if !ok {
		return
	}

	value, err := authz.Execute(c.Request.Context(), e.check(tenantID, claims, RightAdd), func(ctx context.Context) (E, error) {
		return e.repo.NewQuery(ctx, tenantID, identifier, claims, queryParams(c))
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, value)
}

func (e *EntityEndpoints[E]) ByID(c *gin.Context) {
	tenantID, _, claims, ok := identity(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid record id: %w", err))
		return
	}

	type lookup struct {
		value E
		found bool
	}

	result, err := authz.Execute(c.Request.Context(), e.check(tenantID, claims, RightView), func(ctx context.Context) (lookup, error) {
		value, found, err := e.repo.ByID(ctx, tenantID, defaultIdentifier, claims, id)
		return lookup{value: value, found: found}, err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if !result.found {
		middleware.AbortWithError(c, http.StatusNotFound, fmt.Errorf("record %s not found", id))
		return
	}

	c.JSON(http.StatusOK, result.value)
}

func (e *EntityEndpoints[E]) Save(c *gin.Context) {
	tenantID, userID, claims, ok := identity(c)
	if !ok {
		return
	}

	var value E
	if err := c.ShouldBindJSON(&value); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid payload: %w", err))
		return
	}

	identifier := c.DefaultQuery("identifier", defaultIdentifier)

	err := e.check(tenantID, claims, RightEdit).
		WithParam(e.paramOf(value)).
		Run(c.Request.Context(), func(ctx context.Context) error {
			return e.repo.Save(ctx, tenantID, userID, identifier, claims, value)
		})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, value)
}

func (e *EntityEndpoints[E]) SaveBatch(c *gin.Context) {
	tenantID, userID, claims, ok := identity(c)
	if !ok {
		return
	}

	var values []E
	if err := c.ShouldBindJSON(&values); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid payload: %w", err))
		return
	}

	identifier := c.DefaultQuery("identifier", defaultIdentifier)

	batch := lo.Map(values, func(value E, _ int) any {
		return e.paramOf(value)
	})

	err := e.check(tenantID, claims, RightEdit).
		WithBatch(batch).
		Run(c.Request.Context(), func(ctx context.Context) error {
			for _, value := range values {
				if err := e.repo.Save(ctx, tenantID, userID, identifier, claims, value); err != nil {
					return err
				}
			}

			return nil
		})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, values)
}

func (e *EntityEndpoints[E]) Remove(c *gin.Context) {
	tenantID, userID, claims, ok := identity(c)
	if !ok {
		return
	}

	removeParams := queryParams(c)
	removeParams["Id"] = c.Param("id")

	result, err := authz.Execute(
		c.Request.Context(),
		e.check(tenantID, claims, RightDelete).WithParam(removeParams),
		func(ctx context.Context) (repository.RemoveResult[E], error) {
			return e.repo.Remove(ctx, tenantID, userID, claims, removeParams)
		},
	)
	if err != nil {
		respondError(c, err)
		return
	}

	if !result.Result {
		c.JSON(http.StatusBadRequest, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Import accepts an uploaded payload, stores it and queues a background
// import job. Per-item authorization happens inside the job, so the endpoint
// itself only needs an authenticated caller.
func (e *EntityEndpoints[E]) Import(c *gin.Context) {
	tenantID, userID, claims, ok := identity(c)
	if !ok {
		return
	}

	identifier := c.Param("identifier")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, fmt.Errorf("missing upload: %w", err))
		return
	}
	defer file.Close()

	fileID := uuid.New()

	if err := e.files.Upload(c.Request.Context(), tenantID, userID, fileID, header.Filename, header.Header.Get("Content-Type"), file); err != nil {
		respondError(c, err)
		return
	}

	job, err := e.importer.Enqueue(c.Request.Context(), jobs.ImportRequest{
		TenantID:   tenantID,
		UserID:     userID,
		Entity:     e.entity,
		Identifier: identifier,
		FileID:     fileID,
		Claims:     claims,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"jobId": job.ID})
}

func (e *EntityEndpoints[E]) export(c *gin.Context) (*repository.ExportResult, bool) {
	tenantID, _, claims, ok := identity(c)
	if !ok {
		return nil, false
	}

	identifier := c.Param("identifier")

	result, err := authz.Execute(c.Request.Context(), e.check(tenantID, claims, identifier), func(ctx context.Context) (*repository.ExportResult, error) {
		return e.repo.Export(ctx, tenantID, identifier, claims, queryParams(c))
	})
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	return result, true
}

func (e *EntityEndpoints[E]) Export(c *gin.Context) {
	result, ok := e.export(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.MediaType, result.Data)
}

// ExportURL materializes an export and hands back a short-lived download id.
func (e *EntityEndpoints[E]) ExportURL(c *gin.Context) {
	result, ok := e.export(c)
	if !ok {
		return
	}

	tenantID, _, _, _ := identity(c)
	downloadID := uuid.New()

	key := exportKey(tenantID, downloadID)
	if err := e.exports.Set(c.Request.Context(), key, *result); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        downloadID,
		"url":       fmt.Sprintf("/%s/%s/download/%s", e.application, e.entity, downloadID),
		"expiresAt": time.Now().Add(e.exportExpiration),
	})
}

func (e *EntityEndpoints[E]) Download(c *gin.Context) {
	tenantID, _, _, ok := identity(c)
	if !ok {
		return
	}

	downloadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid download id: %w", err))
		return
	}

	result, err := e.exports.Get(c.Request.Context(), exportKey(tenantID, downloadID))
	if err != nil {
		middleware.AbortWithError(c, http.StatusNotFound, fmt.Errorf("download %s not found or expired", downloadID))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.MediaType, result.Data)
}

func exportKey(tenantID, downloadID uuid.UUID) string {
	return fmt.Sprintf("export:%s:%s", tenantID, downloadID)
}
