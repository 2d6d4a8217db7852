package bambu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionHosts(t *testing.T) {
	cases := []struct {
		region   Region
		baseURL  string
		mqttHost string
	}{
		{RegionChina, "https://api.bambulab.cn", "cn.mqtt.bambulab.com"},
		{RegionEurope, "https://api.bambulab.com", "us.mqtt.bambulab.com"},
		{RegionNorthAmerica, "https://api.bambulab.com", "us.mqtt.bambulab.com"},
		{RegionAsiaPacific, "https://api.bambulab.com", "us.mqtt.bambulab.com"},
		{RegionOther, "https://api.bambulab.com", "us.mqtt.bambulab.com"},
		// 未识别的区域值按非中国区兜底
		{Region("unknown"), "https://api.bambulab.com", "us.mqtt.bambulab.com"},
	}

	for _, c := range cases {
		assert.Equal(t, c.baseURL, c.region.APIBaseURL(), "region=%s", c.region)
		assert.Equal(t, c.mqttHost, c.region.MQTTHost(), "region=%s", c.region)
	}
}

func TestRegionIsChina(t *testing.T) {
	assert.True(t, RegionChina.IsChina())
	assert.False(t, RegionEurope.IsChina())
	assert.False(t, RegionOther.IsChina())
}
