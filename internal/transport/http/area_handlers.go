package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Chrezm/TsuserverDR/internal/core"
)

// AreaHandlers serves a read-only view of the areas for operators.
type AreaHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewAreaHandlers creates a new area handlers instance.
func NewAreaHandlers(hub *core.Hub, logger *zerolog.Logger) *AreaHandlers {
	return &AreaHandlers{hub: hub, log: logger}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AreaResponse represents an area in API responses.
type AreaResponse struct {
	ID         int           `json:"id"`
	Name       string        `json:"name"`
	Background string        `json:"background"`
	LightsOn   bool          `json:"lights_on"`
	HasLights  bool          `json:"has_lights"`
	Players    int           `json:"players"`
	Members    []MemberEntry `json:"members"`
}

// MemberEntry is a client present in an area.
type MemberEntry struct {
	ID        int    `json:"id"`
	Character string `json:"character"`
	Name      string `json:"name,omitempty"`
}

// ListAreasResponse represents the list areas response body.
type ListAreasResponse struct {
	Areas   []AreaResponse `json:"areas"`
	Players int            `json:"players"`
	Limit   int            `json:"limit"`
}

// ListAreas returns every area with its members.
// GET /api/areas
func (h *AreaHandlers) ListAreas(c *gin.Context) {
	statuses := h.hub.Areas()
	resp := ListAreasResponse{Areas: make([]AreaResponse, 0, len(statuses))}
	for _, st := range statuses {
		resp.Areas = append(resp.Areas, h.toResponse(st))
	}
	resp.Players, resp.Limit = h.hub.PlayerCount()
	c.JSON(http.StatusOK, resp)
}

// GetArea returns one area.
// GET /api/areas/:id
func (h *AreaHandlers) GetArea(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid area id"})
		return
	}
	st, ok := h.hub.Area(id)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "area not found"})
		return
	}
	c.JSON(http.StatusOK, h.toResponse(st))
}

func (h *AreaHandlers) toResponse(st core.AreaStatus) AreaResponse {
	resp := AreaResponse{
		ID:         st.ID,
		Name:       st.Name,
		Background: st.Background,
		LightsOn:   st.LightsOn,
		HasLights:  st.HasLights,
		Players:    len(st.Members),
		Members:    make([]MemberEntry, 0, len(st.Members)),
	}
	for _, id := range st.Members {
		// A member may leave between the two snapshots.
		client, ok := h.hub.Client(id)
		if !ok {
			continue
		}
		resp.Members = append(resp.Members, MemberEntry{ID: client.ID, Character: client.CharName, Name: client.Name})
	}
	return resp
}
