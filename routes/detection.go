package routes

import (
	"ecolens/controllers"

	"github.com/gin-gonic/gin"
)

func DetectRouteHandler(ctx *gin.Context) {
	controllers.Detect(ctx)
}

func CreateDetectionRouteHandler(ctx *gin.Context) {
	controllers.CreateDetection(ctx)
}

func GetDetectionsRouteHandler(ctx *gin.Context) {
	controllers.GetDetections(ctx)
}

func VerifyDetectionRouteHandler(ctx *gin.Context) {
	controllers.VerifyDetection(ctx)
}
