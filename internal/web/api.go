package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel/internal/hostel"
)

// ResolveJSON looks up a student by room or registration number.
func (h *Handler) ResolveJSON(c *gin.Context) {
	identifier := c.Query("identifier")
	if identifier == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifier required"})
		return
	}
	st, err := h.svc.Resolve(c.Request.Context(), identifier)
	if err != nil {
		h.log.Error("resolve failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	if st == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": MsgStudentNotFound})
		return
	}
	c.JSON(http.StatusOK, st)
}

type checkInRequest struct {
	Identifier string       `json:"identifier" binding:"required"`
	Date       *hostel.Date `json:"date"`
}

// CheckInJSON checks a student in for today, or for an explicit date.
func (h *Handler) CheckInJSON(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	day := h.svc.Today(h.loc)
	if req.Date != nil {
		day = *req.Date
	}
	out, ok := h.checkIn(c, req.Identifier, day)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.JSON(checkInStatus(out), gin.H{
		"outcome": out.String(),
		"message": checkInMessage(out),
		"date":    day,
	})
}

type complaintRequest struct {
	Identifier  string `json:"identifier" binding:"required"`
	Department  string `json:"department" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// ComplaintJSON files a complaint.
func (h *Handler) ComplaintJSON(c *gin.Context) {
	var req complaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, ok := h.fileComplaint(c, req.Identifier, req.Department, req.Description)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	if out == hostel.OutcomeNotFound {
		c.JSON(http.StatusNotFound, gin.H{"outcome": out.String(), "message": MsgStudentNotFound})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"outcome": out.String(), "message": MsgComplaintFiled})
}

type feedbackRequest struct {
	Identifier string `json:"identifier"`
	Rating     *int   `json:"rating" binding:"required"`
	Comments   string `json:"comments"`
}

// FeedbackJSON stores feedback; identifier is optional.
func (h *Handler) FeedbackJSON(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, ok := h.submitFeedback(c, req.Identifier, *req.Rating, req.Comments)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"outcome": out.String(), "message": MsgFeedbackThanks})
}

// ReportJSON dumps every stored record.
func (h *Handler) ReportJSON(c *gin.Context) {
	snap, err := h.reporter.Snapshot(c.Request.Context())
	if err != nil {
		h.log.Error("snapshot failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.JSON(http.StatusOK, snap)
}
