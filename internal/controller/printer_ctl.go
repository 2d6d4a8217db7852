package controller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bambufarm_v1_202608/internal/api/dto"
	"bambufarm_v1_202608/internal/printer"
	"bambufarm_v1_202608/internal/service"
)

// ==================== PrinterController 打印机控制器 ====================

// PrinterController 打印机登记与作业控制接口
type PrinterController struct {
	printerSvc *service.PrinterService
	storage    service.GcodeStorage
}

// NewPrinterController 创建打印机控制器
func NewPrinterController(printerSvc *service.PrinterService, storage service.GcodeStorage) *PrinterController {
	return &PrinterController{printerSvc: printerSvc, storage: storage}
}

// printerID 解析路径中的打印机 ID
func printerID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的打印机ID",
		})
		return 0, false
	}
	return id, true
}

// writeSvcError 按服务层错误分类映射 HTTP 状态码
func writeSvcError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPrinterNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
	case errors.Is(err, service.ErrSerialTaken):
		ctx.JSON(http.StatusConflict, gin.H{"code": 409, "message": err.Error()})
	case errors.Is(err, service.ErrPrinterOffline), errors.Is(err, printer.ErrNotConnected):
		ctx.JSON(http.StatusBadGateway, gin.H{"code": 502, "message": err.Error()})
	case errors.Is(err, printer.ErrNotSupported):
		ctx.JSON(http.StatusNotImplemented, gin.H{"code": 501, "message": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
	}
}

// ==================== 登记管理 ====================

// Create 登记打印机
// @Summary 登记打印机
// @Tags Printer
// @Accept json
// @Produce json
// @Param request body dto.CreatePrinterRequest true "打印机信息"
// @Success 200 {object} model.Printer
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /printers [post]
func (c *PrinterController) Create(ctx *gin.Context) {
	var req dto.CreatePrinterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	p, err := c.printerSvc.Create(ctx.Request.Context(), &req)
	if err != nil {
		writeSvcError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "登记成功",
		"data":    p,
	})
}

// List 打印机列表
// @Summary 打印机列表
// @Tags Printer
// @Produce json
// @Success 200 {array} model.Printer
// @Router /printers [get]
func (c *PrinterController) List(ctx *gin.Context) {
	printers, err := c.printerSvc.List(ctx.Request.Context())
	if err != nil {
		writeSvcError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": printers,
	})
}

// Get 打印机详情
// @Summary 打印机详情
// @Tags Printer
// @Produce json
// @Param id path int true "打印机ID"
// @Success 200 {object} model.Printer
// @Failure 404 {object} map[string]interface{}
// @Router /printers/{id} [get]
func (c *PrinterController) Get(ctx *gin.Context) {
	id, ok := printerID(ctx)
	if !ok {
		return
	}

	p, err := c.printerSvc.Get(ctx.Request.Context(), id)
	if err != nil {
		writeSvcError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": p,
	})
}

// Update 更新打印机登记信息
// @Summary 更新打印机
// @Tags Printer
// @Accept json
// @Produce json
// @Param id path int true "打印机ID"
// @Param request body dto.UpdatePrinterRequest true "更新字段"
// @Success 200 {object} model.Printer
// @Failure 404 {object} map[string]interface{}
// @Router /printers/{id} [put]
func (c *PrinterController) Update(ctx *gin.Context) {
	id, ok := printerID(ctx)
	if !ok {
		return
	}

	var req dto.UpdatePrinterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	p, err := c.printerSvc.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		writeSvcError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "更新成功",
		"data":    p,
	})
}

// Delete 删除打印机
// @Summary 删除打印机
// @Tags Printer
// @Produce json
// @Param id path int true "打印机ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /printers/{id} [delete]
func (c *PrinterController) Delete(ctx *gin.Context) {
	id, ok := printerID(ctx)
	if !ok {
		return
	}

	if err := c.printerSvc.Delete(ctx.Request.Context(), id); err != nil {
		writeSvcError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "删除成功",
	})
}

// ==================== 状态与作业控制 ====================

// Status 打印机当前状态
// @Summary 打印机当前状态
// @Tags Printer
// @Produce json
// @Param id path int true "打印机ID"
// @Success 200 {object} dto.PrinterStatusResponse
// @Failure 404 {object} map[string]interface{}
// @Router /printers/{id}/status [get]
func (c *PrinterController) Status(ctx *gin.Context) {
	id, ok := printerID(ctx)
	if !ok {
		return
	}

	resp, err := c.printerSvc.Status(ctx.Request.Context(), id)
	if err != nil {
		writeSvcError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": resp,
	})
}

// StartPrint 启动打印
// @Summary 从 SD 卡启动打印
// @Tags Printer
// @Accept json
// @Produce json
// @Param id path int true "打印机ID"
// @Param request body dto.StartPrintRequest true "打印参数"
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /printers/{id}/print [post]
func (c *PrinterController) StartPrint(ctx *gin.Context) {
	id, ok := printerID(ctx)
	if !ok {
		return
	}

	var req dto.StartPrintRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	if err := c.printerSvc.StartPrint(ctx.Request.Context(), id, &req); err != nil {
		writeSvcError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已下发打印指令",
	})
}

// StopPrint 停止打印
// @Summary 停止打印
// @Tags Printer
// @Produce json
// @Param id path int true "打印机ID"
// @Success 200 {object} map[string]interface{}
// @Router /printers/{id}/stop [post]
func (c *PrinterController) StopPrint(ctx *gin.Context) {
	c.jobCommand(ctx, c.printerSvc.StopPrint, "已停止打印")
}

// PausePrint 暂停打印
// @Summary 暂停打印
// @Tags Printer
// @Produce json
// @Param id path int true "打印机ID"
// @Success 200 {object} map[string]interface{}
// @Router /printers/{id}/pause [post]
func (c *PrinterController) PausePrint(ctx *gin.Context) {
	c.jobCommand(ctx, c.printerSvc.PausePrint, "已暂停打印")
}

// ResumePrint 恢复打印
// @Summary 恢复打印
// @Tags Printer
// @Produce json
// @Param id path int true "打印机ID"
// @Success 200 {object} map[string]interface{}
// @Router /printers/{id}/resume [post]
func (c *PrinterController) ResumePrint(ctx *gin.Context) {
	c.jobCommand(ctx, c.printerSvc.ResumePrint, "已恢复打印")
}

func (c *PrinterController) jobCommand(ctx *gin.Context, do func(context.Context, int64) error, okMsg string) {
	id, ok := printerID(ctx)
	if !ok {
		return
	}

	if err := do(ctx.Request.Context(), id); err != nil {
		writeSvcError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": okMsg,
	})
}

// SetTemperature 设定温度
// @Summary 设定喷嘴/热床温度
// @Tags Printer
// @Accept json
// @Produce json
// @Param id path int true "打印机ID"
// @Param request body dto.SetTemperatureRequest true "目标温度"
// @Success 200 {object} map[string]interface{}
// @Router /printers/{id}/temperature [post]
func (c *PrinterController) SetTemperature(ctx *gin.Context) {
	id, ok := printerID(ctx)
	if !ok {
		return
	}

	var req dto.SetTemperatureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	if err := c.printerSvc.SetTemperature(ctx.Request.Context(), id, &req); err != nil {
		writeSvcError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已下发温度指令",
	})
}

// SetFanSpeed 设定风扇转速
// @Summary 设定部件风扇转速
// @Tags Printer
// @Accept json
// @Produce json
// @Param id path int true "打印机ID"
// @Param request body dto.SetFanSpeedRequest true "转速百分比"
// @Success 200 {object} map[string]interface{}
// @Router /printers/{id}/fan [post]
func (c *PrinterController) SetFanSpeed(ctx *gin.Context) {
	id, ok := printerID(ctx)
	if !ok {
		return
	}

	var req dto.SetFanSpeedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	if err := c.printerSvc.SetFanSpeed(ctx.Request.Context(), id, &req); err != nil {
		writeSvcError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已下发风扇指令",
	})
}

// CameraFrame 抓取一帧摄像头画面
// @Summary 摄像头抓帧
// @Tags Printer
// @Produce jpeg
// @Param id path int true "打印机ID"
// @Success 200 {string} binary "JPEG 帧"
// @Failure 501 {object} map[string]interface{}
// @Router /printers/{id}/camera [get]
func (c *PrinterController) CameraFrame(ctx *gin.Context) {
	id, ok := printerID(ctx)
	if !ok {
		return
	}

	frame, err := c.printerSvc.CameraFrame(ctx.Request.Context(), id)
	if err != nil {
		writeSvcError(ctx, err)
		return
	}

	ctx.Data(http.StatusOK, "image/jpeg", frame)
}

// ==================== G-code 文件库 ====================

// ListGcodes 文件库列表
// @Summary G-code 文件库列表
// @Tags Gcode
// @Produce json
// @Success 200 {array} model.GcodeFile
// @Router /gcodes [get]
func (c *PrinterController) ListGcodes(ctx *gin.Context) {
	files, err := c.storage.List(ctx.Request.Context())
	if err != nil {
		writeSvcError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": files,
	})
}

// UploadGcode 上传切片文件
// @Summary 上传 G-code 文件
// @Tags Gcode
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "切片文件 (.gcode / .3mf)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /gcodes [post]
func (c *PrinterController) UploadGcode(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "缺少上传文件: " + err.Error(),
		})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "读取上传文件失败: " + err.Error(),
		})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "读取上传文件失败: " + err.Error(),
		})
		return
	}

	key, err := c.storage.Upload(ctx.Request.Context(), data, fileHeader.Filename)
	if err != nil {
		writeSvcError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "上传成功",
		"data":    gin.H{"key": key},
	})
}

// DeleteGcode 删除文件
// @Summary 删除 G-code 文件
// @Tags Gcode
// @Produce json
// @Param key path string true "存储 Key"
// @Success 200 {object} map[string]interface{}
// @Router /gcodes/{key} [delete]
func (c *PrinterController) DeleteGcode(ctx *gin.Context) {
	key := ctx.Param("key")
	if key == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "缺少文件标识",
		})
		return
	}

	if err := c.storage.Delete(ctx.Request.Context(), key); err != nil {
		writeSvcError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "删除成功",
	})
}

// GcodeDownloadURL 获取下载地址
// @Summary 获取 G-code 下载地址
// @Tags Gcode
// @Produce json
// @Param key path string true "存储 Key"
// @Success 200 {object} map[string]interface{}
// @Router /gcodes/{key}/url [get]
func (c *PrinterController) GcodeDownloadURL(ctx *gin.Context) {
	key := ctx.Param("key")
	if key == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "缺少文件标识",
		})
		return
	}

	url, err := c.storage.GetSignedURL(ctx.Request.Context(), key, 15*time.Minute)
	if err != nil {
		writeSvcError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": gin.H{"url": url},
	})
}
