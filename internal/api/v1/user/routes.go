package user

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	profile.GET("", Profile)
	profile.PUT("", UpdateProfile)
}
