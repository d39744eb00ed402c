package prompt

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	prompts := router.Group("/prompts")
	{
		prompts.POST("", CreatePrompt)
		prompts.GET("", ListPrompts)
		prompts.GET("/favorites", ListFavorites)
		prompts.GET("/export", ExportPrompts)
		prompts.POST("/import", ImportPrompts)
		prompts.GET("/:id", GetPrompt)
		prompts.PUT("/:id", UpdatePrompt)
		prompts.DELETE("/:id", DeletePrompt)
		prompts.POST("/:id/render", RenderPrompt)
		prompts.POST("/:id/mark-used", MarkUsed)
		prompts.POST("/:id/favorite", ToggleFavorite)
		prompts.GET("/:id/usages", ListUsages)
	}
}
