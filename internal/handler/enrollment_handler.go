package handler

import (
	"net/http"

	"academy/internal/middleware"
	"academy/internal/service"

	"github.com/gin-gonic/gin"
)

type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Enroll handles POST /courses/:id/enroll. 201 for a new enrollment, 200 when already enrolled.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	courseID, ok := parseID(c, "id")
	if !ok {
		return
	}
	e, created, err := h.enrollments.Enroll(c.Request.Context(), middleware.GetUserID(c), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"enrollment": e, "created": created})
}

// ListMine handles GET /me/enrollments.
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	list, err := h.enrollments.ListEnrollments(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// UpdateProgress handles PATCH /me/enrollments/:course_id/progress.
func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	courseID, ok := parseID(c, "course_id")
	if !ok {
		return
	}
	var req struct {
		Progress *int `json:"progress" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "progress is required"})
		return
	}
	e, err := h.enrollments.UpdateProgress(c.Request.Context(), middleware.GetUserID(c), courseID, *req.Progress)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollment": e})
}
