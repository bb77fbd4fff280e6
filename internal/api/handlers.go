package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/dashboard"
)

const dateLayout = "2006-01-02"

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

func (h *handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please fill in all fields.")
		return
	}
	u, err := h.accounts.Register(c.Request.Context(), auth.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	switch {
	case errors.Is(err, auth.ErrInvalidRegistration):
		respondError(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, attendance.ErrEmailTaken):
		respondError(c, http.StatusConflict, "Email already registered.")
		return
	case err != nil:
		log.Printf("register failed: %v", err)
		respondError(c, http.StatusInternalServerError, "Could not create account.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Account created successfully.", "id": u.ID})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please enter both email and password.")
		return
	}
	sess, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		respondError(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}
	if err != nil {
		log.Printf("login failed: %v", err)
		respondError(c, http.StatusInternalServerError, "Login failed.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":        sess.Tokens.AccessToken,
		"refreshToken": sess.Tokens.RefreshToken,
		"expiresAt":    sess.Tokens.AccessExp.Unix(),
		"user": gin.H{
			"id":    sess.User.ID,
			"name":  sess.User.Name,
			"email": sess.User.Email,
			"role":  sess.User.Role,
		},
	})
}

type classJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Students  int    `json:"students"`
	LastTaken string `json:"lastTaken"`
}

func classesJSON(in []attendance.ClassSummary) []classJSON {
	out := make([]classJSON, 0, len(in))
	for _, cs := range in {
		last := "N/A"
		if cs.LastTaken != nil {
			last = cs.LastTaken.Format(dateLayout)
		}
		out = append(out, classJSON{ID: cs.ID, Name: cs.Name, Students: cs.StudentCount, LastTaken: last})
	}
	return out
}

func (h *handler) dashboard(c *gin.Context) {
	p, _ := auth.PrincipalFrom(c)
	view, err := h.dashboards.Dashboard(c.Request.Context(), p.Role, p.ID)
	if errors.Is(err, dashboard.ErrUnsupported) {
		c.JSON(http.StatusNotImplemented, gin.H{"message": err.Error(), "role": p.Role})
		return
	}
	if err != nil {
		log.Printf("dashboard for %s failed: %v", p.ID, err)
		respondError(c, http.StatusInternalServerError, "Failed to load dashboard.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": view.Role, "classes": classesJSON(view.Classes)})
}

func (h *handler) teacherClasses(c *gin.Context) {
	classes, err := h.svc.ClassOverview(c.Request.Context())
	if err != nil {
		log.Printf("list classes failed: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch classes.")
		return
	}
	c.JSON(http.StatusOK, classesJSON(classes))
}

func (h *handler) roster(c *gin.Context) {
	students, err := h.svc.Roster(c.Request.Context(), c.Param("classId"))
	if errors.Is(err, attendance.ErrClassNotFound) {
		respondError(c, http.StatusNotFound, "Class not found.")
		return
	}
	if err != nil {
		log.Printf("roster %s failed: %v", c.Param("classId"), err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch students.")
		return
	}
	if students == nil {
		students = []attendance.Student{}
	}
	c.JSON(http.StatusOK, students)
}

type statusJSON struct {
	StudentID string `json:"studentId" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

type takeRequest struct {
	ClassID         string       `json:"classId" binding:"required"`
	ClassName       string       `json:"className"`
	Date            string       `json:"date"`
	StudentStatuses []statusJSON `json:"studentStatuses" binding:"dive"`
}

func (h *handler) takeAttendance(c *gin.Context) {
	var req takeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Malformed attendance submission.")
		return
	}
	p, _ := auth.PrincipalFrom(c)

	marks := make([]attendance.Mark, 0, len(req.StudentStatuses))
	for _, s := range req.StudentStatuses {
		marks = append(marks, attendance.Mark{StudentID: s.StudentID, Status: s.Status})
	}

	id, err := h.svc.Submit(c.Request.Context(), attendance.Submission{
		ClassID:     req.ClassID,
		ClassName:   req.ClassName,
		Date:        req.Date,
		Marks:       marks,
		SubmittedBy: p.ID,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"message": "Attendance successfully recorded.", "id": id})
	case attendance.IsInvalidInput(err):
		respondError(c, http.StatusBadRequest, err.Error())
	case attendance.IsNotFound(err):
		respondError(c, http.StatusNotFound, "Class not found.")
	default:
		log.Printf("attendance submission error: %v", err)
		respondError(c, http.StatusInternalServerError, "Server error while recording attendance.")
	}
}

type recordJSON struct {
	ID              string             `json:"id"`
	ClassID         string             `json:"classId"`
	ClassName       string             `json:"className"`
	Date            string             `json:"date"`
	Teacher         string             `json:"teacher"`
	StudentStatuses []attendance.Entry `json:"studentStatuses"`
	Summary         attendance.Summary `json:"summary"`
}

func (h *handler) latestRecord(c *gin.Context) {
	view, found, err := h.svc.ClassHistory(c.Request.Context(), c.Param("classId"))
	if err != nil {
		log.Printf("attendance retrieval error: %v", err)
		respondError(c, http.StatusInternalServerError, "Server error while retrieving attendance.")
		return
	}
	if !found {
		respondError(c, http.StatusNotFound, "No records found.")
		return
	}
	entries := view.Record.Entries
	if entries == nil {
		entries = []attendance.Entry{}
	}
	c.JSON(http.StatusOK, recordJSON{
		ID:              view.Record.ID,
		ClassID:         view.Record.ClassID,
		ClassName:       view.Record.ClassName,
		Date:            view.Record.Date.Format(dateLayout),
		Teacher:         view.Teacher,
		StudentStatuses: entries,
		Summary:         view.Summary,
	})
}
