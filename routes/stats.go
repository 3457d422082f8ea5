package routes

import (
	"ecolens/controllers"

	"github.com/gin-gonic/gin"
)

func GetStatsRouteHandler(ctx *gin.Context) {
	controllers.GetStats(ctx)
}

func GetAchievementsRouteHandler(ctx *gin.Context) {
	controllers.GetAchievements(ctx)
}

func GetHabitAnalyticsRouteHandler(ctx *gin.Context) {
	controllers.GetHabitAnalytics(ctx)
}
