package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bambufarm_v1_202608/internal/api/dto"
	"bambufarm_v1_202608/internal/middleware"
	"bambufarm_v1_202608/internal/service"
	"bambufarm_v1_202608/pkg/bambu"
)

// ==================== CloudController 云端桥接控制器 ====================

// CloudController Bambu 云端账号桥接接口
type CloudController struct {
	cloudSvc *service.CloudService
}

// NewCloudController 创建云端桥接控制器
func NewCloudController(cloudSvc *service.CloudService) *CloudController {
	return &CloudController{cloudSvc: cloudSvc}
}

// writeCloudError 按云端错误分类映射 HTTP 状态码
func writeCloudError(ctx *gin.Context, err error) {
	var authErr *bambu.AuthError
	var camErr *bambu.DeviceCameraError
	var schemaErr *bambu.SchemaError
	switch {
	case errors.Is(err, service.ErrVerificationCodeRequired):
		// 428：云端已发出验证码邮件，前端补填 code 后重试
		ctx.JSON(http.StatusPreconditionRequired, gin.H{
			"code":    428,
			"message": err.Error(),
		})
	case errors.Is(err, service.ErrNotLoggedIn):
		ctx.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": err.Error()})
	case errors.Is(err, service.ErrCloudDeviceNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
	case errors.As(err, &authErr):
		ctx.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": err.Error()})
	case errors.As(err, &camErr):
		ctx.JSON(http.StatusBadGateway, gin.H{"code": 502, "message": err.Error()})
	case errors.As(err, &schemaErr):
		ctx.JSON(http.StatusBadGateway, gin.H{"code": 502, "message": err.Error()})
	default:
		ctx.JSON(http.StatusBadGateway, gin.H{"code": 502, "message": err.Error()})
	}
}

// ==================== 云端会话 ====================

// Login 登录云端账号
// @Summary 登录 Bambu 云端账号
// @Tags Cloud
// @Accept json
// @Produce json
// @Param request body dto.CloudLoginRequest true "云端账号信息"
// @Success 200 {object} dto.CloudLoginResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 428 {object} map[string]interface{} "需要邮箱验证码"
// @Router /cloud/login [post]
func (c *CloudController) Login(ctx *gin.Context) {
	var req dto.CloudLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	resp, err := c.cloudSvc.Login(ctx.Request.Context(), middleware.GetUserID(ctx), &req)
	if err != nil {
		writeCloudError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "云端登录成功",
		"data":    resp,
	})
}

// Logout 退出云端账号
// @Summary 退出云端账号
// @Tags Cloud
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /cloud/logout [post]
func (c *CloudController) Logout(ctx *gin.Context) {
	c.cloudSvc.Logout(middleware.GetUserID(ctx))
	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已退出云端账号",
	})
}

// ==================== 云端数据 ====================

// Profile 云端账号主页信息
// @Summary 云端账号主页信息
// @Tags Cloud
// @Produce json
// @Success 200 {object} bambu.Account
// @Failure 401 {object} map[string]interface{}
// @Router /cloud/profile [get]
func (c *CloudController) Profile(ctx *gin.Context) {
	account, err := c.cloudSvc.Profile(ctx.Request.Context(), middleware.GetUserID(ctx))
	if err != nil {
		writeCloudError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": account,
	})
}

// Devices 云端绑定的打印机列表
// @Summary 云端绑定的打印机列表
// @Tags Cloud
// @Produce json
// @Success 200 {array} bambu.Device
// @Failure 401 {object} map[string]interface{}
// @Router /cloud/devices [get]
func (c *CloudController) Devices(ctx *gin.Context) {
	devices, err := c.cloudSvc.Devices(ctx.Request.Context(), middleware.GetUserID(ctx))
	if err != nil {
		writeCloudError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": devices,
	})
}

// Tasks 云端打印任务历史
// @Summary 云端打印任务历史
// @Tags Cloud
// @Produce json
// @Param device_id query string false "按云端设备过滤"
// @Success 200 {array} bambu.Task
// @Failure 401 {object} map[string]interface{}
// @Router /cloud/tasks [get]
func (c *CloudController) Tasks(ctx *gin.Context) {
	tasks, err := c.cloudSvc.Tasks(ctx.Request.Context(), middleware.GetUserID(ctx), ctx.Query("device_id"))
	if err != nil {
		writeCloudError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": tasks,
	})
}

// CameraURL 摄像头握手
// @Summary 云端设备摄像头握手
// @Tags Cloud
// @Produce json
// @Param dev_id path string true "云端设备ID"
// @Success 200 {object} dto.CloudCameraResponse
// @Failure 404 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /cloud/devices/{dev_id}/camera [post]
func (c *CloudController) CameraURL(ctx *gin.Context) {
	devID := ctx.Param("dev_id")
	if devID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "缺少设备ID",
		})
		return
	}

	resp, err := c.cloudSvc.CameraURL(ctx.Request.Context(), middleware.GetUserID(ctx), devID)
	if err != nil {
		writeCloudError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": resp,
	})
}

// MQTTHost 云端 MQTT Broker 地址
// @Summary 云端 MQTT Broker 地址
// @Tags Cloud
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /cloud/mqtt-host [get]
func (c *CloudController) MQTTHost(ctx *gin.Context) {
	host, err := c.cloudSvc.MQTTHost(middleware.GetUserID(ctx))
	if err != nil {
		writeCloudError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": gin.H{"mqtt_host": host},
	})
}
