package bambu

// ==================== Region 区域 ====================

// Region Bambu 账号所属区域
// 区域一经设定不可变更：决定 REST 域名后缀（.cn / .com）与云端 MQTT Broker
type Region string

const (
	RegionChina        Region = "cn"
	RegionEurope       Region = "eu"
	RegionNorthAmerica Region = "na"
	RegionAsiaPacific  Region = "ap"
	RegionOther        Region = "other"
)

// IsChina 是否中国区
// 未识别的区域值一律按非中国区处理
func (r Region) IsChina() bool { return r == RegionChina }

// APIBaseURL REST API 基础地址
func (r Region) APIBaseURL() string {
	if r.IsChina() {
		return "https://api.bambulab.cn"
	}
	return "https://api.bambulab.com"
}

// MQTTHost 云端 MQTT Broker 主机名（只返回主机名，连接协议由上层决定）
func (r Region) MQTTHost() string {
	if r.IsChina() {
		return "cn.mqtt.bambulab.com"
	}
	return "us.mqtt.bambulab.com"
}
