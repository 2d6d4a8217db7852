package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"bambufarm_v1_202608/internal/api/dto"
	"bambufarm_v1_202608/internal/model"
	"bambufarm_v1_202608/internal/printer"
	"bambufarm_v1_202608/internal/repository"
)

// ==================== 错误定义 ====================

var (
	ErrPrinterNotFound = errors.New("打印机不存在")
	ErrSerialTaken     = errors.New("序列号已登记")
	ErrPrinterOffline  = errors.New("打印机不在线")
)

// ==================== PrinterService 打印机服务 ====================

// PrinterService 打印机登记与本地作业控制
// 每台机器按需建立一条本地 MQTT 连接并缓存复用；
// 登记信息变更或删除时淘汰缓存的连接
type PrinterService struct {
	printerRepo repository.PrinterRepository
	logger      *zap.Logger
	grabber     printer.FrameGrabber // 可为 nil：未注入取帧实现

	mu        sync.Mutex                // 只保护两个 map，不跨网络调用持有
	instances map[int64]*printer.Client
	connLocks map[int64]*sync.Mutex // 每台机器各自的建连锁
}

// NewPrinterService 创建打印机服务
func NewPrinterService(printerRepo repository.PrinterRepository, grabber printer.FrameGrabber, logger *zap.Logger) *PrinterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrinterService{
		printerRepo: printerRepo,
		logger:      logger,
		grabber:     grabber,
		instances:   make(map[int64]*printer.Client),
		connLocks:   make(map[int64]*sync.Mutex),
	}
}

// ==================== 登记管理 ====================

// Create 登记打印机
func (s *PrinterService) Create(ctx context.Context, req *dto.CreatePrinterRequest) (*model.Printer, error) {
	taken, err := s.printerRepo.ExistsBySerial(ctx, req.Serial)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSerialTaken
	}

	p := &model.Printer{
		Name:       req.Name,
		IP:         req.IP,
		AccessCode: req.AccessCode,
		Serial:     req.Serial,
		Model:      req.Model,
	}
	if err := s.printerRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get 获取打印机
func (s *PrinterService) Get(ctx context.Context, id int64) (*model.Printer, error) {
	p, err := s.printerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPrinterNotFound
	}
	return p, nil
}

// List 打印机列表
func (s *PrinterService) List(ctx context.Context) ([]model.Printer, error) {
	return s.printerRepo.List(ctx)
}

// Update 更新打印机登记信息
func (s *PrinterService) Update(ctx context.Context, id int64, req *dto.UpdatePrinterRequest) (*model.Printer, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		p.Name = req.Name
	}
	if req.IP != "" {
		p.IP = req.IP
	}
	if req.AccessCode != "" {
		p.AccessCode = req.AccessCode
	}
	if req.Model != "" {
		p.Model = req.Model
	}

	if err := s.printerRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	// 连接参数可能变了，淘汰旧连接，下次访问时重连
	s.evict(id)
	return p, nil
}

// Delete 删除打印机
func (s *PrinterService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.printerRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(id)
	return nil
}

// ==================== 连接缓存 ====================

// connLock 取一台打印机的建连锁
func (s *PrinterService) connLock(id int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.connLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.connLocks[id] = l
	}
	return l
}

// instance 获取（必要时建立）一台打印机的本地连接
// 建连可能阻塞到 MQTT 超时，只持有该机器自己的锁，
// 连不上的机器不影响其它机器的操作
func (s *PrinterService) instance(ctx context.Context, id int64) (*printer.Client, *model.Printer, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	lock := s.connLock(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	c, ok := s.instances[id]
	s.mu.Unlock()
	if ok && c.Connected() {
		return c, p, nil
	}

	c = printer.NewClient(printer.Options{
		IP:         p.IP,
		AccessCode: p.AccessCode,
		Serial:     p.Serial,
		Logger:     s.logger,
	}, s.onReport(id))
	if err := c.Connect(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrPrinterOffline, err)
	}

	s.mu.Lock()
	s.instances[id] = c
	s.mu.Unlock()
	return c, p, nil
}

// onReport 遥测上报回调：原文落库，排障时可回看
func (s *PrinterService) onReport(id int64) printer.ReportHandler {
	return func(serial string, raw []byte) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.printerRepo.UpdateLastReport(ctx, id, raw); err != nil {
			s.logger.Warn("落库遥测失败", zap.String("serial", serial), zap.Error(err))
		}
	}
}

// evict 淘汰一台打印机的缓存连接
func (s *PrinterService) evict(id int64) {
	s.mu.Lock()
	c, ok := s.instances[id]
	delete(s.instances, id)
	s.mu.Unlock()

	if ok {
		c.Disconnect()
	}
}

// Shutdown 断开所有缓存连接（进程退出时调用）
func (s *PrinterService) Shutdown() {
	s.mu.Lock()
	clients := make([]*printer.Client, 0, len(s.instances))
	for id, c := range s.instances {
		clients = append(clients, c)
		delete(s.instances, id)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.Disconnect()
	}
}

// ==================== 状态与作业控制 ====================

// Status 打印机当前状态
// 连不上时不报错，以 OFFLINE 状态返回（前端轮询友好）
func (s *PrinterService) Status(ctx context.Context, id int64) (*dto.PrinterStatusResponse, error) {
	c, p, err := s.instance(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPrinterOffline) {
			name := ""
			if p2, err2 := s.Get(ctx, id); err2 == nil {
				name = p2.Name
			}
			return &dto.PrinterStatusResponse{Name: name, Status: "OFFLINE"}, nil
		}
		return nil, err
	}

	report := c.Report()
	status := report.GcodeState
	if status == "" {
		status = "IDLE"
	}
	return &dto.PrinterStatusResponse{
		Name:          p.Name,
		Status:        status,
		HotendTemp:    report.NozzleTemp,
		BedTemp:       report.BedTemp,
		PrintProgress: report.Percent,
		TimeRemaining: (time.Duration(report.RemainingMins) * time.Minute).String(),
	}, nil
}

// RefreshAll 向所有已连接的打印机请求一次全量上报（定时任务调用）
func (s *PrinterService) RefreshAll(ctx context.Context) {
	printers, err := s.printerRepo.List(ctx)
	if err != nil {
		s.logger.Warn("刷新打印机状态失败", zap.Error(err))
		return
	}

	for _, p := range printers {
		c, _, err := s.instance(ctx, p.ID)
		if err != nil {
			s.logger.Debug("打印机不在线，跳过刷新",
				zap.String("serial", p.Serial), zap.Error(err))
			continue
		}
		if err := c.Pushall(); err != nil {
			s.logger.Warn("请求全量上报失败",
				zap.String("serial", p.Serial), zap.Error(err))
		}
	}
}

// StartPrint 从 SD 卡启动打印
func (s *PrinterService) StartPrint(ctx context.Context, id int64, req *dto.StartPrintRequest) error {
	c, _, err := s.instance(ctx, id)
	if err != nil {
		return err
	}
	return c.StartPrint(req.Filename, req.Plate)
}

// StopPrint 停止打印
func (s *PrinterService) StopPrint(ctx context.Context, id int64) error {
	c, _, err := s.instance(ctx, id)
	if err != nil {
		return err
	}
	return c.StopPrint()
}

// PausePrint 暂停打印
func (s *PrinterService) PausePrint(ctx context.Context, id int64) error {
	c, _, err := s.instance(ctx, id)
	if err != nil {
		return err
	}
	return c.PausePrint()
}

// ResumePrint 恢复打印
func (s *PrinterService) ResumePrint(ctx context.Context, id int64) error {
	c, _, err := s.instance(ctx, id)
	if err != nil {
		return err
	}
	return c.ResumePrint()
}

// SetTemperature 设定喷嘴/热床目标温度（传 0 表示不调整该项）
func (s *PrinterService) SetTemperature(ctx context.Context, id int64, req *dto.SetTemperatureRequest) error {
	c, _, err := s.instance(ctx, id)
	if err != nil {
		return err
	}
	if req.Hotend > 0 {
		if err := c.SetNozzleTemp(req.Hotend); err != nil {
			return err
		}
	}
	if req.Bed > 0 {
		if err := c.SetBedTemp(req.Bed); err != nil {
			return err
		}
	}
	return nil
}

// SetFanSpeed 设定部件风扇转速
func (s *PrinterService) SetFanSpeed(ctx context.Context, id int64, req *dto.SetFanSpeedRequest) error {
	c, _, err := s.instance(ctx, id)
	if err != nil {
		return err
	}
	return c.SetFanSpeed(req.Speed)
}

// CameraFrame 抓取一帧摄像头画面
// 取帧走厂商私有协议，未注入实现时返回 ErrNotSupported
func (s *PrinterService) CameraFrame(ctx context.Context, id int64) ([]byte, error) {
	if s.grabber == nil {
		return nil, printer.ErrNotSupported
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.grabber.Frame(p.IP, p.AccessCode)
}
