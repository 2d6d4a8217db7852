package printer

import (
	"encoding/json"
	"fmt"
)

// ==================== 指令报文 ====================
// 报文构造独立出来，便于不连真机就能验证协议形状

func buildPushall(seq string) []byte {
	payload, _ := json.Marshal(map[string]interface{}{
		"pushing": map[string]interface{}{
			"sequence_id": seq,
			"command":     "pushall",
		},
	})
	return payload
}

// buildPrintCommand stop / pause / resume
func buildPrintCommand(seq, command string) []byte {
	payload, _ := json.Marshal(map[string]interface{}{
		"print": map[string]interface{}{
			"sequence_id": seq,
			"command":     command,
			"param":       "",
		},
	})
	return payload
}

func buildStartPrint(seq, filename string, plate int) []byte {
	if plate <= 0 {
		plate = 1
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"print": map[string]interface{}{
			"sequence_id":    seq,
			"command":        "project_file",
			"url":            "file:///sdcard/" + filename,
			"param":          fmt.Sprintf("Metadata/plate_%d.gcode", plate),
			"subtask_id":     "0",
			"use_ams":        true,
			"timelapse":      false,
			"bed_leveling":   true,
			"flow_cali":      false,
			"vibration_cali": false,
		},
	})
	return payload
}

func buildGcodeLine(seq, line string) []byte {
	payload, _ := json.Marshal(map[string]interface{}{
		"print": map[string]interface{}{
			"sequence_id": seq,
			"command":     "gcode_line",
			"param":       line + "\n",
		},
	})
	return payload
}
