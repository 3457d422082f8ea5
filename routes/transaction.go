package routes

import (
	"ecolens/controllers"

	"github.com/gin-gonic/gin"
)

func GetTransactionsRouteHandler(ctx *gin.Context) {
	controllers.GetTransactions(ctx)
}

func CreateQRRedemptionRouteHandler(ctx *gin.Context) {
	controllers.CreateQRRedemption(ctx)
}
