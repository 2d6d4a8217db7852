package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"bambufarm_v1_202608/internal/controller"
	"bambufarm_v1_202608/internal/middleware"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	userCtl *controller.UserController,
	printerCtl *controller.PrinterController,
	cloudCtl *controller.CloudController) {
	api := r.Group("/api")
	{
		// auth 本地账号（注册/登录加冷却，挡撞库）
		auth := api.Group("/auth")
		{
			auth.POST("/signup", middleware.RateLimit("signup", 3*time.Second), userCtl.Signup)
			auth.POST("/login", middleware.RateLimit("login", 1*time.Second), userCtl.Login)
			auth.POST("/refresh", userCtl.RefreshToken)
		}

		// printers 打印机登记与作业控制
		printers := api.Group("/printers", middleware.JWTAuth())
		{
			printers.GET("", printerCtl.List)
			printers.POST("", printerCtl.Create)
			printers.GET("/:id", printerCtl.Get)
			printers.PUT("/:id", printerCtl.Update)
			printers.DELETE("/:id", middleware.RequireRole("admin"), printerCtl.Delete)

			printers.GET("/:id/status", printerCtl.Status)
			printers.POST("/:id/print", printerCtl.StartPrint)
			printers.POST("/:id/stop", printerCtl.StopPrint)
			printers.POST("/:id/pause", printerCtl.PausePrint)
			printers.POST("/:id/resume", printerCtl.ResumePrint)
			printers.POST("/:id/temperature", printerCtl.SetTemperature)
			printers.POST("/:id/fan", printerCtl.SetFanSpeed)
			printers.GET("/:id/camera", printerCtl.CameraFrame)
		}

		// gcodes G-code 文件库
		gcodes := api.Group("/gcodes", middleware.JWTAuth())
		{
			gcodes.GET("", printerCtl.ListGcodes)
			gcodes.POST("", printerCtl.UploadGcode)
			gcodes.DELETE("/:key", printerCtl.DeleteGcode)
			gcodes.GET("/:key/url", printerCtl.GcodeDownloadURL)
		}

		// cloud Bambu 云端桥接（登录加冷却，云端风控敏感）
		cloud := api.Group("/cloud", middleware.JWTAuth())
		{
			cloud.POST("/login", middleware.RateLimit("cloud-login", 5*time.Second), cloudCtl.Login)
			cloud.POST("/logout", cloudCtl.Logout)
			cloud.GET("/profile", cloudCtl.Profile)
			cloud.GET("/devices", cloudCtl.Devices)
			cloud.POST("/devices/:dev_id/camera", cloudCtl.CameraURL)
			cloud.GET("/tasks", cloudCtl.Tasks)
			cloud.GET("/mqtt-host", cloudCtl.MQTTHost)
		}
	}
}
