package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ytfeed/ytfeed-backend/internal/logger"
	"github.com/ytfeed/ytfeed-backend/internal/middleware"
	"github.com/ytfeed/ytfeed-backend/internal/services"
)

type DataHandler struct {
	log                 *logger.Logger
	contributionService services.ContributionService
}

func NewDataHandler(log *logger.Logger, contributionService services.ContributionService) *DataHandler {
	return &DataHandler{log: log.With("handler", "DataHandler"), contributionService: contributionService}
}

type storeDataRequest struct {
	VideoURL string   `json:"video_url"`
	Tags     []string `json:"tags"`
}

func (dh *DataHandler) StoreData(c *gin.Context) {
	googleID, ok := middleware.UserID(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req storeDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Missing video_url or tags")
		return
	}

	err := dh.contributionService.StoreData(c.Request.Context(), googleID, req.VideoURL, req.Tags)
	switch {
	case err == nil:
		respondMessage(c, http.StatusOK, "Data stored successfully")
	case errors.Is(err, services.ErrInvalidInput):
		respondMessage(c, http.StatusBadRequest, "Missing video_url or tags")
	case errors.Is(err, services.ErrQuotaExceeded):
		respondMessage(c, http.StatusTooManyRequests, "Daily request limit reached (3 per day)")
	default:
		dh.log.Error("Failed to store data", "google_id", googleID, "error", err)
		respondMessage(c, http.StatusInternalServerError, "Error storing data")
	}
}

func (dh *DataHandler) GetDataByTag(c *gin.Context) {
	tag := c.Param("tag")
	videos, err := dh.contributionService.GetByTag(c.Request.Context(), tag)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, videos)
	case errors.Is(err, services.ErrNotFound):
		respondMessage(c, http.StatusNotFound, "No data found for tag: "+tag)
	default:
		dh.log.Error("Failed to fetch data by tag", "tag", tag, "error", err)
		respondMessage(c, http.StatusInternalServerError, "Error fetching data by tag")
	}
}

func (dh *DataHandler) GetCachedVideos(c *gin.Context) {
	tag := c.Param("tag")
	cached, err := dh.contributionService.GetCachedByTag(c.Request.Context(), tag)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, cached)
	case errors.Is(err, services.ErrNotFound):
		respondMessage(c, http.StatusNotFound, "No cached videos found for tag: "+tag)
	default:
		dh.log.Error("Failed to fetch cached videos", "tag", tag, "error", err)
		respondMessage(c, http.StatusInternalServerError, "Error fetching cached videos")
	}
}

func (dh *DataHandler) UserContributions(c *gin.Context) {
	googleID, ok := middleware.UserID(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	videos, err := dh.contributionService.UserContributions(c.Request.Context(), googleID)
	if err != nil {
		dh.log.Error("Failed to fetch user contributions", "google_id", googleID, "error", err)
		respondMessage(c, http.StatusInternalServerError, "Error retrieving data")
		return
	}
	c.JSON(http.StatusOK, gin.H{"contributed_videos": videos})
}
