package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mvarela/uniregistro/internal/app/models/dto"
	"github.com/mvarela/uniregistro/internal/app/services"
	"github.com/mvarela/uniregistro/internal/middleware"
)

// StudentController handles student record operations
type StudentController struct {
	studentService *services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService) *StudentController {
	return &StudentController{studentService: studentService}
}

// CreateStudent handles student registration
// @Summary Register a new student
// @Description Creates an active student record at version 1
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=dto.StudentResponse} "Student registered successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Enrollment number already exists"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	student, err := c.studentService.CreateStudent(ctx,
		req.EnrollmentNumber, req.FirstName, req.LastName, req.AdmissionDate)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.NewStudentResponse(student), "Student registered successfully"))
}

// GetStudent retrieves a student by ID
// @Summary Get student by ID
// @Description Retrieves the full student aggregate including completed subjects
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	student, err := c.studentService.GetStudent(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewStudentResponse(student), "Student retrieved successfully"))
}

// GetStudentByEnrollmentNumber retrieves a student by their external identifier
// @Summary Get student by enrollment number
// @Description Retrieves the full student aggregate by enrollment number
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param enrollmentNumber path string true "Enrollment number"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/enrollment/{enrollmentNumber} [get]
func (c *StudentController) GetStudentByEnrollmentNumber(ctx *gin.Context) {
	student, err := c.studentService.GetStudentByEnrollmentNumber(ctx, ctx.Param("enrollmentNumber"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewStudentResponse(student), "Student retrieved successfully"))
}

// GetCompletedSubjects lists the subjects a student has completed
// @Summary List completed subjects
// @Description Returns the catalog subjects in the student's completed set
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.SubjectResponse} "Completed subjects retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/subjects [get]
func (c *StudentController) GetCompletedSubjects(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	subjects, err := c.studentService.CompletedSubjects(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewSubjectListResponse(subjects), "Completed subjects retrieved successfully"))
}

// GetAllStudents retrieves all students
// @Summary List students
// @Description Retrieves all students; pass active=true to filter to active ones
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Only return active students"
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentResponse} "Students retrieved successfully"
// @Router /students [get]
func (c *StudentController) GetAllStudents(ctx *gin.Context) {
	activeOnly := ctx.Query("active") == "true"

	students, err := c.studentService.ListStudents(ctx, activeOnly)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewStudentListResponse(students), "Students retrieved successfully"))
}

// Checkout issues a checkout token for a student record
// @Summary Check out a student record
// @Description Returns the current record and a token bound to its version. The token expires after the configured hold window and grants no exclusivity.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.CheckoutResponse} "Checkout issued successfully"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/lock [get]
func (c *StudentController) Checkout(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	token, _, err := c.studentService.Checkout(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	response := dto.CheckoutResponse{
		Token:     token.Token,
		StudentID: token.StudentID,
		Version:   token.Version,
		ExpiresAt: token.ExpiresAt,
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(response, "Checkout issued successfully"))
}

// UpdateStudent updates a student's profile through a checkout commit
// @Summary Update student profile
// @Description Applies a profile change against a checkout token. A stale token yields a conflict.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.UpdateStudentRequest true "Profile update with checkout token"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Version conflict or expired checkout"
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	if _, ok := parseIDParam(ctx, "id"); !ok {
		return
	}

	var req dto.UpdateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	student, err := c.studentService.UpdateProfile(ctx, req.CheckoutToken, req.FirstName, req.LastName)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewStudentResponse(student), "Student updated successfully"))
}

// WithdrawStudent withdraws a student through a checkout commit
// @Summary Withdraw a student
// @Description Transitions the student to WITHDRAWN. The transition is terminal and requires a reason.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.WithdrawStudentRequest true "Withdrawal with checkout token"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student withdrawn successfully"
// @Failure 400 {object} dto.ErrorResponse "Missing withdrawal reason"
// @Failure 409 {object} dto.ErrorResponse "Already withdrawn, version conflict or expired checkout"
// @Router /students/{id}/withdraw [put]
func (c *StudentController) WithdrawStudent(ctx *gin.Context) {
	if _, ok := parseIDParam(ctx, "id"); !ok {
		return
	}

	var req dto.WithdrawStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	student, err := c.studentService.Withdraw(ctx, req.CheckoutToken, req.Reason, req.EffectiveDate)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewStudentResponse(student), "Student withdrawn successfully"))
}

// CompleteSubject records a passed subject through a checkout commit
// @Summary Record a completed subject
// @Description Validates enrollment rules and adds the subject to the student's completed set
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.CompleteSubjectRequest true "Completion with checkout token"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Completion recorded successfully"
// @Failure 404 {object} dto.ErrorResponse "Student or subject not found"
// @Failure 409 {object} dto.ErrorResponse "Enrollment rules violated, version conflict or expired checkout"
// @Router /students/{id}/subjects [post]
func (c *StudentController) CompleteSubject(ctx *gin.Context) {
	if _, ok := parseIDParam(ctx, "id"); !ok {
		return
	}

	var req dto.CompleteSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	student, err := c.studentService.CompleteSubject(ctx, req.CheckoutToken, req.SubjectID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewStudentResponse(student), "Completion recorded successfully"))
}

// GetEligibleSubjects lists the subjects a student can enroll in now
// @Summary List eligible subjects
// @Description Returns subjects not yet completed whose prerequisites are all satisfied
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.SubjectResponse} "Eligible subjects retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Student is not active"
// @Router /students/{id}/eligible-subjects [get]
func (c *StudentController) GetEligibleSubjects(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	subjects, err := c.studentService.EligibleSubjects(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewSubjectListResponse(subjects), "Eligible subjects retrieved successfully"))
}
