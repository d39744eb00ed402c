package category

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/categories")
	{
		categories.POST("", CreateCategory)
		categories.GET("", ListCategories)
		categories.PUT("/:id", UpdateCategory)
		categories.DELETE("/:id", DeleteCategory)
	}
}
