package analytics

import (
	"net/http"

	"promptvault-backend/internal/models"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// Overview godoc
// @Summary Usage statistics overview
// @Description Aggregate counters, most used prompts and recent usage events
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=services.AnalyticsReport}
// @Failure 500 {object} utils.Response
// @Router /analytics/overview [get]
func Overview(c *gin.Context) {
	value, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}
	user := value.(models.User)

	report, err := services.GetAnalytics(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", report))
}

// Trending godoc
// @Summary Trending prompts
// @Description Most used prompts within a period (24h, 7d or 30d)
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param period query string false "Period" Enums(24h, 7d, 30d) default(7d)
// @Success 200 {object} utils.Response{data=[]models.Prompt}
// @Failure 500 {object} utils.Response
// @Router /analytics/trending [get]
func Trending(c *gin.Context) {
	period := c.DefaultQuery("period", "7d")

	prompts, err := services.GetTrendingPrompts(period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", prompts))
}
