package dto

// ==================== 打印机登记 ====================

// CreatePrinterRequest 新增打印机
type CreatePrinterRequest struct {
	Name       string `json:"name" binding:"required,max=100"`
	IP         string `json:"ip" binding:"required,ip"`
	AccessCode string `json:"access_code" binding:"required,min=6,max=32"`
	Serial     string `json:"serial" binding:"required,min=8,max=32"`
	Model      string `json:"model" binding:"max=50"`
}

// UpdatePrinterRequest 更新打印机
type UpdatePrinterRequest struct {
	Name       string `json:"name" binding:"omitempty,max=100"`
	IP         string `json:"ip" binding:"omitempty,ip"`
	AccessCode string `json:"access_code" binding:"omitempty,min=6,max=32"`
	Model      string `json:"model" binding:"omitempty,max=50"`
}

// ==================== 作业控制 ====================

// PrinterStatusResponse 打印机当前状态
type PrinterStatusResponse struct {
	Name          string  `json:"name"`
	Status        string  `json:"status"` // IDLE / RUNNING / PAUSE / FAILED / FINISH / OFFLINE
	HotendTemp    float64 `json:"hotend_temp"`
	BedTemp       float64 `json:"bed_temp"`
	PrintProgress int     `json:"print_progress"` // 0-100
	TimeRemaining string  `json:"time_remaining"` // 展示用，如 "1h32m"
}

// StartPrintRequest 启动打印
type StartPrintRequest struct {
	Filename string `json:"filename" binding:"required"`
	Plate    int    `json:"plate" binding:"omitempty,min=1"`
}

// SetTemperatureRequest 设定温度
type SetTemperatureRequest struct {
	Hotend int `json:"hotend" binding:"min=0,max=320"`
	Bed    int `json:"bed" binding:"min=0,max=120"`
}

// SetFanSpeedRequest 设定风扇转速（百分比）
type SetFanSpeedRequest struct {
	Speed int `json:"speed" binding:"min=0,max=100"`
}
