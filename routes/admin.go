package routes

import (
	"ecolens/controllers"

	"github.com/gin-gonic/gin"
)

func ListUsersRouteHandler(ctx *gin.Context) {
	controllers.ListUsers(ctx)
}

func ListDetectionsRouteHandler(ctx *gin.Context) {
	controllers.ListDetections(ctx)
}

func ListTransactionsRouteHandler(ctx *gin.Context) {
	controllers.ListTransactions(ctx)
}
