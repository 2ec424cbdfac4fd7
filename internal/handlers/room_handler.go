package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/suitenest/hotel-backend/internal/database"
)

// RoomHandler serves the public room catalogue
type RoomHandler struct {
	roomRepo *database.RoomRepository
	logger   *logrus.Logger
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(roomRepo *database.RoomRepository, logger *logrus.Logger) *RoomHandler {
	return &RoomHandler{
		roomRepo: roomRepo,
		logger:   logger,
	}
}

// ListRooms returns all rooms, or only bookable ones with ?available=true
func (h *RoomHandler) ListRooms(c *gin.Context) {
	var rooms interface{}
	var err error

	if c.Query("available") == "true" {
		rooms, err = h.roomRepo.GetAvailable()
	} else {
		rooms, err = h.roomRepo.GetAll()
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to list rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rooms":   rooms,
	})
}

// GetRoom returns a single room by ID
func (h *RoomHandler) GetRoom(c *gin.Context) {
	id := c.Param("id")

	room, err := h.roomRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		h.logger.WithError(err).WithField("room_id", id).Error("Failed to get room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"room":    room,
	})
}
