package bambu

import "time"

// ==========================================
// 领域模型：云端 JSON 经 mapper 映射后的内部结构
// 每次 API 调用返回全新快照，本包不做任何缓存
// ==========================================

// Device 账号绑定的一台打印机
type Device struct {
	Name           string  `json:"name"`
	Online         bool    `json:"online"`
	DevID          string  `json:"dev_id"`
	PrintStatus    string  `json:"print_status"`
	NozzleDiameter float64 `json:"nozzle_diameter"`
	DevModelName   string  `json:"dev_model_name"`
	DevAccessCode  string  `json:"dev_access_code"`
	DevProductName string  `json:"dev_product_name"`
}

// AMSDetail 一条任务中单个料槽的耗材绑定
// 列表顺序即料槽顺序，映射时必须保持响应中的原始顺序
type AMSDetail struct {
	Position           int64   `json:"position"`
	SourceColor        string  `json:"source_color"`
	TargetColor        string  `json:"target_color"`
	FilamentID         string  `json:"filament_id"`
	FilamentType       string  `json:"filament_type"`
	TargetFilamentType string  `json:"target_filament_type"`
	Weight             float64 `json:"weight"`
}

// Task 一条打印任务（历史或进行中）
// DeviceID 按值引用 Device.DevID，客户端不做引用完整性校验
type Task struct {
	ID               int64       `json:"id"`
	DesignID         int64       `json:"design_id"`
	DesignTitle      string      `json:"design_title"`
	InstanceID       int64       `json:"instance_id"`
	ModelID          string      `json:"model_id"`
	Title            string      `json:"title"`
	Cover            string      `json:"cover"`
	Status           int64       `json:"status"`
	FeedbackStatus   int64       `json:"feedback_status"`
	StartTime        time.Time   `json:"start_time"`
	EndTime          time.Time   `json:"end_time"`
	Weight           float64     `json:"weight"`
	Length           int64       `json:"length"`
	CostTime         int64       `json:"cost_time"`
	ProfileID        int64       `json:"profile_id"`
	PlateIndex       int64       `json:"plate_index"`
	PlateName        string      `json:"plate_name"`
	DeviceID         string      `json:"device_id"`
	AMSDetailMapping []AMSDetail `json:"ams_detail_mapping"`
	Mode             string      `json:"mode"`
	IsPublicProfile  bool        `json:"is_public_profile"`
	IsPrintable      bool        `json:"is_printable"`
	DeviceModel      string      `json:"device_model"`
	DeviceName       string      `json:"device_name"`
	BedType          string      `json:"bed_type"`
}

// Personal 账号主页的个人资料块
type Personal struct {
	Bio           string   `json:"bio"`
	Links         []string `json:"links"`
	TaskWeightSum float64  `json:"task_weight_sum"`
	TaskLengthSum int64    `json:"task_length_sum"`
	TaskTimeSum   int64    `json:"task_time_sum"`
	BackgroundURL string   `json:"background_url"`
}

// Account 账号主页信息
type Account struct {
	UID             int64    `json:"uid"`
	Email           string   `json:"email"`
	Name            string   `json:"name"`
	Avatar          string   `json:"avatar"`
	FanCount        int64    `json:"fan_count"`
	FollowCount     int64    `json:"follow_count"`
	LikeCount       int64    `json:"like_count"`
	CollectionCount int64    `json:"collection_count"`
	DownloadCount   int64    `json:"download_count"`
	ProductModels   []string `json:"product_models"`
	MyLikeCount     int64    `json:"my_like_count"`
	FavouritesCount int64    `json:"favourites_count"`
	Point           int64    `json:"point"`
	Personal        Personal `json:"personal"`
}
