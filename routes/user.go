package routes

import (
	"ecolens/controllers"

	"github.com/gin-gonic/gin"
)

func GetUserRouteHandler(ctx *gin.Context) {
	controllers.GetUser(ctx)
}

func GetWalletRouteHandler(ctx *gin.Context) {
	controllers.GetWallet(ctx)
}
