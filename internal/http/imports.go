package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/companion/internal/database"
)

const (
	defaultSessionLimit = 50
	maxSessionLimit     = 500
)

// ImportsController exposes the history of import attempts.
type ImportsController struct {
	sessions SessionLister
}

func NewImportsController(sessions SessionLister) *ImportsController {
	return &ImportsController{sessions: sessions}
}

// List handles GET /api/imports?limit=N
func (ic *ImportsController) List(c *gin.Context) {
	limit, ok := parseLimitQuery(c, defaultSessionLimit, maxSessionLimit)
	if !ok {
		return
	}

	sessions, err := ic.sessions.List(limit)
	if err != nil {
		respondInternalError(c, err, "list import sessions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imports": sessions,
		"total":   len(sessions),
	})
}

// Get handles GET /api/imports/:id
func (ic *ImportsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	session, err := ic.sessions.Get(id)
	if errors.Is(err, database.ErrNotFound) {
		respondNotFound(c, "import")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get import session")
		return
	}
	c.JSON(http.StatusOK, session)
}
