package analytics

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/analytics")
	{
		group.GET("/overview", Overview)
		group.GET("/trending", Trending)
	}
}
