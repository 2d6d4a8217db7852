package printer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePayload(t *testing.T, raw []byte) map[string]map[string]interface{} {
	t.Helper()
	var msg map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func TestBuildPushall(t *testing.T) {
	msg := decodePayload(t, buildPushall("3"))
	assert.Equal(t, "pushall", msg["pushing"]["command"])
	assert.Equal(t, "3", msg["pushing"]["sequence_id"])
}

func TestBuildPrintCommand(t *testing.T) {
	for _, cmd := range []string{"stop", "pause", "resume"} {
		msg := decodePayload(t, buildPrintCommand("1", cmd))
		assert.Equal(t, cmd, msg["print"]["command"])
	}
}

func TestBuildStartPrint(t *testing.T) {
	msg := decodePayload(t, buildStartPrint("7", "benchy.3mf", 2))
	assert.Equal(t, "project_file", msg["print"]["command"])
	assert.Equal(t, "file:///sdcard/benchy.3mf", msg["print"]["url"])
	assert.Equal(t, "Metadata/plate_2.gcode", msg["print"]["param"])

	// 未指定盘位时默认 1 号盘
	msg = decodePayload(t, buildStartPrint("8", "benchy.3mf", 0))
	assert.Equal(t, "Metadata/plate_1.gcode", msg["print"]["param"])
}

func TestBuildGcodeLine(t *testing.T) {
	msg := decodePayload(t, buildGcodeLine("2", "M104 S220"))
	assert.Equal(t, "gcode_line", msg["print"]["command"])
	assert.Equal(t, "M104 S220\n", msg["print"]["param"])
}

func TestHandleReportMergesIncrement(t *testing.T) {
	c := NewClient(Options{Serial: "S1"}, nil)

	c.handleReport([]byte(`{"print": {"gcode_state": "RUNNING", "nozzle_temper": 219.5, "bed_temper": 55.0, "mc_percent": 42, "mc_remaining_time": 93}}`))
	report := c.Report()
	assert.Equal(t, "RUNNING", report.GcodeState)
	assert.Equal(t, 219.5, report.NozzleTemp)
	assert.Equal(t, 42, report.Percent)

	// 增量上报：缺失字段保留上一次的值
	c.handleReport([]byte(`{"print": {"mc_percent": 43}}`))
	report = c.Report()
	assert.Equal(t, 43, report.Percent)
	assert.Equal(t, "RUNNING", report.GcodeState)
	assert.Equal(t, 219.5, report.NozzleTemp)
}

func TestHandleReportIgnoresGarbage(t *testing.T) {
	raws := [][]byte{[]byte("not-json"), []byte(`{"system": {}}`), []byte(`{}`)}

	var called bool
	c := NewClient(Options{Serial: "S1"}, func(string, []byte) { called = true })
	for _, raw := range raws {
		c.handleReport(raw)
	}
	assert.Equal(t, Report{}, c.Report())
	assert.False(t, called)
}

func TestPublishWithoutConnection(t *testing.T) {
	c := NewClient(Options{Serial: "S1"}, nil)
	assert.ErrorIs(t, c.Pushall(), ErrNotConnected)
	assert.ErrorIs(t, c.StopPrint(), ErrNotConnected)
}
