package printer

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ==================== 本地控制客户端 ====================
// 打印机在局域网内自带一个 MQTT Broker（8883，自签证书）：
// 用户名固定 bblp，密码是机身屏幕上的访问码；
// 指令发到 device/<serial>/request，遥测从 device/<serial>/report 订阅

// ErrNotConnected 尚未建立本地连接
var ErrNotConnected = errors.New("printer: not connected")

// ErrNotSupported 当前机型/配置不支持该操作（摄像头、文件直传等厂商私有协议）
var ErrNotSupported = errors.New("printer: operation not supported")

// Options 连接参数
type Options struct {
	IP         string
	AccessCode string
	Serial     string
	Logger     *zap.Logger
}

// Report 最近一次遥测快照
type Report struct {
	GcodeState    string    `json:"gcode_state"`    // IDLE / RUNNING / PAUSE / FAILED / FINISH
	NozzleTemp    float64   `json:"nozzle_temp"`    // 喷嘴当前温度
	BedTemp       float64   `json:"bed_temp"`       // 热床当前温度
	Percent       int       `json:"percent"`        // 打印进度 0-100
	RemainingMins int       `json:"remaining_mins"` // 预计剩余分钟数
	UpdatedAt     time.Time `json:"updated_at"`
}

// ReportHandler 每收到一条上报回调一次（原始 JSON，供上层落库）
type ReportHandler func(serial string, raw []byte)

// FrameGrabber 摄像头取帧的厂商私有协议边界
// 本包不内置实现，部署方按机型注入
type FrameGrabber interface {
	Frame(ip, accessCode string) ([]byte, error)
}

// Client 一台打印机的本地控制连接
type Client struct {
	opts     Options
	logger   *zap.Logger
	onReport ReportHandler

	mu     sync.RWMutex
	mqtt   mqtt.Client // 连接句柄，Connect/Disconnect 写，指令路径快照读
	report Report
	seq    int
}

// NewClient 创建客户端（不发起连接）
func NewClient(opts Options, onReport ReportHandler) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{opts: opts, logger: logger, onReport: onReport}
}

// Connect 建立 MQTT 连接并订阅遥测
func (c *Client) Connect() error {
	broker := fmt.Sprintf("tls://%s:8883", c.opts.IP)

	mqttOpts := mqtt.NewClientOptions()
	mqttOpts.AddBroker(broker)
	mqttOpts.SetClientID("bambufarm-" + uuid.NewString()[:8])
	mqttOpts.SetUsername("bblp")
	mqttOpts.SetPassword(c.opts.AccessCode)
	// 机身证书是自签的，无法走系统信任链
	mqttOpts.SetTLSConfig(&tls.Config{InsecureSkipVerify: true})
	mqttOpts.SetAutoReconnect(true)
	mqttOpts.SetCleanSession(true)
	mqttOpts.SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(mqttOpts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("printer: connect %s failed: %w", broker, token.Error())
	}

	topic := fmt.Sprintf("device/%s/report", c.opts.Serial)
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		c.handleReport(msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		return fmt.Errorf("printer: subscribe %s failed: %w", topic, token.Error())
	}

	c.mu.Lock()
	c.mqtt = client
	c.mu.Unlock()

	c.logger.Info("printer connected",
		zap.String("serial", c.opts.Serial),
		zap.String("broker", broker))

	// 连上后立即要一次全量状态
	return c.Pushall()
}

// Disconnect 断开连接
func (c *Client) Disconnect() {
	c.mu.Lock()
	client := c.mqtt
	c.mqtt = nil
	c.mu.Unlock()

	if client != nil {
		client.Disconnect(250)
	}
}

// conn 当前连接句柄的快照，可能为 nil
func (c *Client) conn() mqtt.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mqtt
}

// Connected 是否在线
func (c *Client) Connected() bool {
	client := c.conn()
	return client != nil && client.IsConnected()
}

// Report 最近一次遥测快照
func (c *Client) Report() Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.report
}

// handleReport 解析遥测上报并更新快照
// 上报里字段是增量的，缺失的字段保留上一次的值
func (c *Client) handleReport(payload []byte) {
	var msg struct {
		Print *struct {
			GcodeState      *string  `json:"gcode_state"`
			NozzleTemper    *float64 `json:"nozzle_temper"`
			BedTemper       *float64 `json:"bed_temper"`
			McPercent       *int     `json:"mc_percent"`
			McRemainingTime *int     `json:"mc_remaining_time"`
		} `json:"print"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil || msg.Print == nil {
		return
	}

	c.mu.Lock()
	if msg.Print.GcodeState != nil {
		c.report.GcodeState = *msg.Print.GcodeState
	}
	if msg.Print.NozzleTemper != nil {
		c.report.NozzleTemp = *msg.Print.NozzleTemper
	}
	if msg.Print.BedTemper != nil {
		c.report.BedTemp = *msg.Print.BedTemper
	}
	if msg.Print.McPercent != nil {
		c.report.Percent = *msg.Print.McPercent
	}
	if msg.Print.McRemainingTime != nil {
		c.report.RemainingMins = *msg.Print.McRemainingTime
	}
	c.report.UpdatedAt = time.Now()
	c.mu.Unlock()

	if c.onReport != nil {
		c.onReport(c.opts.Serial, payload)
	}
}

// ==================== 指令 ====================

func (c *Client) publish(payload []byte) error {
	// 快照句柄后再发布：并发 Disconnect 只会让 Publish 返回错误，不会解引用 nil
	client := c.conn()
	if client == nil || !client.IsConnected() {
		return ErrNotConnected
	}
	topic := fmt.Sprintf("device/%s/request", c.opts.Serial)
	token := client.Publish(topic, 0, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("printer: publish to %s failed: %w", topic, token.Error())
	}
	return nil
}

func (c *Client) nextSeq() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return fmt.Sprintf("%d", c.seq)
}

// Pushall 请求一次全量状态上报
func (c *Client) Pushall() error {
	return c.publish(buildPushall(c.nextSeq()))
}

// StartPrint 从 SD 卡启动打印
func (c *Client) StartPrint(filename string, plate int) error {
	return c.publish(buildStartPrint(c.nextSeq(), filename, plate))
}

// StopPrint 停止打印
func (c *Client) StopPrint() error {
	return c.publish(buildPrintCommand(c.nextSeq(), "stop"))
}

// PausePrint 暂停打印
func (c *Client) PausePrint() error {
	return c.publish(buildPrintCommand(c.nextSeq(), "pause"))
}

// ResumePrint 恢复打印
func (c *Client) ResumePrint() error {
	return c.publish(buildPrintCommand(c.nextSeq(), "resume"))
}

// SetNozzleTemp 设定喷嘴目标温度
func (c *Client) SetNozzleTemp(temp int) error {
	return c.publish(buildGcodeLine(c.nextSeq(), fmt.Sprintf("M104 S%d", temp)))
}

// SetBedTemp 设定热床目标温度
func (c *Client) SetBedTemp(temp int) error {
	return c.publish(buildGcodeLine(c.nextSeq(), fmt.Sprintf("M140 S%d", temp)))
}

// SetFanSpeed 设定部件风扇转速，speed 为百分比 0-100
func (c *Client) SetFanSpeed(speed int) error {
	// M106 的 S 参数是 0-255
	return c.publish(buildGcodeLine(c.nextSeq(), fmt.Sprintf("M106 P1 S%d", speed*255/100)))
}
