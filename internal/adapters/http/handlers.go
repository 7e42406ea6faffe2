package http

import (
	"net/http"

	"github.com/dkeye/WordGuess/internal/app"
	"github.com/dkeye/WordGuess/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const profileNameKey = "display_name"

type roomHandlers struct {
	rooms      *app.RoomRegistry
	categories CategoryLister
}

func (h roomHandlers) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.rooms.List()})
}

func (h roomHandlers) get(c *gin.Context) {
	room, ok := h.rooms.Lookup(domain.NormalizeCode(c.Param("code")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrorCode(domain.ErrRoomNotFound)})
		return
	}
	c.JSON(http.StatusOK, room.Info())
}

func (h roomHandlers) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.categories.Categories()})
}

type ProfileRequest struct {
	Name string `json:"name"`
}

type ProfileResponse struct {
	Name string `json:"name"`
}

// getProfile returns the display name remembered for this browser.
func getProfile(c *gin.Context) {
	name, _ := sessions.Default(c).Get(profileNameKey).(string)
	c.JSON(http.StatusOK, ProfileResponse{Name: name})
}

func postProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrorCode(domain.ErrBadPayload)})
		return
	}
	name, err := domain.NormalizeName(req.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrorCode(err)})
		return
	}
	sess := sessions.Default(c)
	sess.Set(profileNameKey, name)
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.ErrorCode(domain.ErrInternal)})
		return
	}
	log.Info().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Str("name", name).Msg("profile saved")
	c.JSON(http.StatusOK, ProfileResponse{Name: name})
}
