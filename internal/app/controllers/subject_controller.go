package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mvarela/uniregistro/internal/app/models/dto"
	"github.com/mvarela/uniregistro/internal/app/services"
	"github.com/mvarela/uniregistro/internal/middleware"
)

// SubjectController handles subject catalog operations
type SubjectController struct {
	catalogService *services.CatalogService
}

// NewSubjectController creates a new SubjectController
func NewSubjectController(catalogService *services.CatalogService) *SubjectController {
	return &SubjectController{catalogService: catalogService}
}

func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter").
			WithField(name)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return 0, false
	}
	return id, true
}

// CreateSubject handles subject creation
// @Summary Create a new subject
// @Description Creates a catalog subject with a unique code
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSubjectRequest true "Subject information"
// @Success 201 {object} dto.APIResponse{data=dto.SubjectResponse} "Subject created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Subject code already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /subjects [post]
func (c *SubjectController) CreateSubject(ctx *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	subject, err := c.catalogService.CreateSubject(ctx, req.Code, req.Name, req.Credits)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.NewSubjectResponse(*subject), "Subject created successfully"))
}

// GetSubject retrieves a subject by ID
// @Summary Get subject by ID
// @Description Retrieves a subject together with its prerequisite and dependent edges
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subject ID"
// @Success 200 {object} dto.APIResponse{data=dto.SubjectResponse} "Subject retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid subject ID"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Router /subjects/{id} [get]
func (c *SubjectController) GetSubject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	subject, err := c.catalogService.GetSubject(id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewSubjectResponse(*subject), "Subject retrieved successfully"))
}

// GetAllSubjects retrieves the whole catalog
// @Summary List all subjects
// @Description Retrieves every catalog subject ordered by id
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.SubjectResponse} "Subjects retrieved successfully"
// @Router /subjects [get]
func (c *SubjectController) GetAllSubjects(ctx *gin.Context) {
	subjects := c.catalogService.ListSubjects()
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewSubjectListResponse(subjects), "Subjects retrieved successfully"))
}

// GetStudyOrder returns a topological ordering of the catalog
// @Summary Get a valid study order
// @Description Returns every subject ordered so that prerequisites always come first
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.SubjectResponse} "Order computed successfully"
// @Failure 500 {object} dto.ErrorResponse "Catalog integrity failure"
// @Router /subjects/order [get]
func (c *SubjectController) GetStudyOrder(ctx *gin.Context) {
	ordered, err := c.catalogService.TopologicalOrder()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewSubjectListResponse(ordered), "Order computed successfully"))
}

// DeleteSubject removes a subject from the catalog
// @Summary Delete a subject
// @Description Deletes a subject; blocked while other subjects still require it
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subject ID"
// @Success 200 {object} dto.APIResponse "Subject deleted successfully"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Failure 409 {object} dto.ErrorResponse "Subject is required by other subjects"
// @Router /subjects/{id} [delete]
func (c *SubjectController) DeleteSubject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.catalogService.DeleteSubject(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Subject deleted successfully"))
}

// AddPrerequisite adds a prerequisite edge to a subject
// @Summary Add a prerequisite
// @Description Declares that another subject must be completed before this one; rejected if it would create a cycle
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subject ID"
// @Param request body dto.AddPrerequisiteRequest true "Prerequisite information"
// @Success 200 {object} dto.APIResponse{data=dto.SubjectResponse} "Prerequisite added successfully"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Failure 409 {object} dto.ErrorResponse "Prerequisite would create a cycle"
// @Router /subjects/{id}/prerequisites [post]
func (c *SubjectController) AddPrerequisite(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.AddPrerequisiteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	subject, err := c.catalogService.AddPrerequisite(ctx, id, req.PrerequisiteID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewSubjectResponse(*subject), "Prerequisite added successfully"))
}

// RemovePrerequisite removes a prerequisite edge from a subject
// @Summary Remove a prerequisite
// @Description Removes an existing prerequisite edge
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subject ID"
// @Param prerequisiteId path int true "Prerequisite subject ID"
// @Success 200 {object} dto.APIResponse{data=dto.SubjectResponse} "Prerequisite removed successfully"
// @Failure 404 {object} dto.ErrorResponse "Subject or edge not found"
// @Router /subjects/{id}/prerequisites/{prerequisiteId} [delete]
func (c *SubjectController) RemovePrerequisite(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	prerequisiteID, ok := parseIDParam(ctx, "prerequisiteId")
	if !ok {
		return
	}

	subject, err := c.catalogService.RemovePrerequisite(ctx, id, prerequisiteID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewSubjectResponse(*subject), "Prerequisite removed successfully"))
}
