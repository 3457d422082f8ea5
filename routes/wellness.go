package routes

import (
	"ecolens/controllers"

	"github.com/gin-gonic/gin"
)

func CreateGoalRouteHandler(ctx *gin.Context) {
	controllers.CreateGoal(ctx)
}

func GetGoalsRouteHandler(ctx *gin.Context) {
	controllers.GetGoals(ctx)
}

func UpdateGoalRouteHandler(ctx *gin.Context) {
	controllers.UpdateGoal(ctx)
}

func GetImpactRouteHandler(ctx *gin.Context) {
	controllers.GetImpact(ctx)
}

func UpdateImpactRouteHandler(ctx *gin.Context) {
	controllers.UpdateImpact(ctx)
}

func CreateReminderRouteHandler(ctx *gin.Context) {
	controllers.CreateReminder(ctx)
}

func GetRemindersRouteHandler(ctx *gin.Context) {
	controllers.GetReminders(ctx)
}

func UpdateReminderRouteHandler(ctx *gin.Context) {
	controllers.UpdateReminder(ctx)
}

func DeleteReminderRouteHandler(ctx *gin.Context) {
	controllers.DeleteReminder(ctx)
}
