package bambu

import (
	"encoding/json"
	"time"
)

// ==================== 映射辅助 ====================
// 云端返回 camelCase 的宽松 JSON，这里逐字段取值并校验类型。
// 结构体 Unmarshal 区分不了"字段缺失"和"零值"，所以映射统一走
// map + 类型化取值器：任何必需字段缺失或类型不符都使整次映射失败，
// 绝不返回部分结果（与服务端的 eager 构造语义一致）。

type jsonObject map[string]interface{}

func decodeObject(raw []byte) (jsonObject, error) {
	var obj jsonObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, &SchemaError{Field: "$", Reason: "is not a JSON object: " + err.Error()}
	}
	return obj, nil
}

func (o jsonObject) object(key string) (jsonObject, error) {
	v, ok := o[key]
	if !ok {
		return nil, &SchemaError{Field: key, Reason: "is missing"}
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, &SchemaError{Field: key, Reason: "is not an object"}
	}
	return jsonObject(m), nil
}

func (o jsonObject) array(key string) ([]interface{}, error) {
	v, ok := o[key]
	if !ok {
		return nil, &SchemaError{Field: key, Reason: "is missing"}
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, &SchemaError{Field: key, Reason: "is not an array"}
	}
	return arr, nil
}

func (o jsonObject) str(key string) (string, error) {
	v, ok := o[key]
	if !ok {
		return "", &SchemaError{Field: key, Reason: "is missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &SchemaError{Field: key, Reason: "is not a string"}
	}
	return s, nil
}

func (o jsonObject) boolean(key string) (bool, error) {
	v, ok := o[key]
	if !ok {
		return false, &SchemaError{Field: key, Reason: "is missing"}
	}
	b, ok := v.(bool)
	if !ok {
		return false, &SchemaError{Field: key, Reason: "is not a boolean"}
	}
	return b, nil
}

// float JSON 数字经 encoding/json 统一解码为 float64
func (o jsonObject) float(key string) (float64, error) {
	v, ok := o[key]
	if !ok {
		return 0, &SchemaError{Field: key, Reason: "is missing"}
	}
	f, ok := v.(float64)
	if !ok {
		return 0, &SchemaError{Field: key, Reason: "is not a number"}
	}
	return f, nil
}

func (o jsonObject) integer(key string) (int64, error) {
	f, err := o.float(key)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func (o jsonObject) strList(key string) ([]string, error) {
	arr, err := o.array(key)
	if err != nil {
		return nil, err
	}
	// 顺序与响应保持一致
	list := make([]string, 0, len(arr))
	for _, v := range arr {
		s, ok := v.(string)
		if !ok {
			return nil, &SchemaError{Field: key, Reason: "contains a non-string element"}
		}
		list = append(list, s)
	}
	return list, nil
}

// instant 解析 ISO-8601 时间为绝对时刻
// 优先带时区偏移的 RFC 3339，其次无时区形式（按 UTC 处理）
func (o jsonObject) instant(key string) (time.Time, error) {
	s, err := o.str(key)
	if err != nil {
		return time.Time{}, err
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, &SchemaError{Field: key, Reason: "is not an ISO-8601 timestamp"}
}

// ==================== 映射函数 ====================
// 纯转换，不做任何 I/O，每个响应形状一个函数

// mapProfile 账号主页响应 → Account
// 顶层 camelCase 计数字段平铺，personal 对象重新嵌套为 Personal
func mapProfile(raw []byte) (*Account, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	account := &Account{}
	if account.UID, err = obj.integer("uid"); err != nil {
		return nil, err
	}
	if account.Email, err = obj.str("email"); err != nil {
		return nil, err
	}
	if account.Name, err = obj.str("name"); err != nil {
		return nil, err
	}
	if account.Avatar, err = obj.str("avatar"); err != nil {
		return nil, err
	}
	if account.FanCount, err = obj.integer("fanCount"); err != nil {
		return nil, err
	}
	if account.FollowCount, err = obj.integer("followCount"); err != nil {
		return nil, err
	}
	if account.LikeCount, err = obj.integer("likeCount"); err != nil {
		return nil, err
	}
	if account.CollectionCount, err = obj.integer("collectionCount"); err != nil {
		return nil, err
	}
	if account.DownloadCount, err = obj.integer("downloadCount"); err != nil {
		return nil, err
	}
	if account.ProductModels, err = obj.strList("productModels"); err != nil {
		return nil, err
	}
	if account.MyLikeCount, err = obj.integer("myLikeCount"); err != nil {
		return nil, err
	}
	if account.FavouritesCount, err = obj.integer("favouritesCount"); err != nil {
		return nil, err
	}
	if account.Point, err = obj.integer("point"); err != nil {
		return nil, err
	}

	personal, err := obj.object("personal")
	if err != nil {
		return nil, err
	}
	if account.Personal.Bio, err = personal.str("bio"); err != nil {
		return nil, err
	}
	if account.Personal.Links, err = personal.strList("links"); err != nil {
		return nil, err
	}
	if account.Personal.TaskWeightSum, err = personal.float("taskWeightSum"); err != nil {
		return nil, err
	}
	if account.Personal.TaskLengthSum, err = personal.integer("taskLengthSum"); err != nil {
		return nil, err
	}
	if account.Personal.TaskTimeSum, err = personal.integer("taskTimeSum"); err != nil {
		return nil, err
	}
	if account.Personal.BackgroundURL, err = personal.str("backgroundUrl"); err != nil {
		return nil, err
	}
	return account, nil
}

// mapDevices 绑定设备响应 → []Device
// 任意一个元素非法即整体失败，不返回残缺列表
func mapDevices(raw []byte) ([]Device, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	arr, err := obj.array("devices")
	if err != nil {
		return nil, err
	}

	devices := make([]Device, 0, len(arr))
	for _, v := range arr {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, &SchemaError{Field: "devices", Reason: "contains a non-object element"}
		}
		dev, err := mapDevice(jsonObject(m))
		if err != nil {
			return nil, err
		}
		devices = append(devices, *dev)
	}
	return devices, nil
}

func mapDevice(obj jsonObject) (*Device, error) {
	var err error
	dev := &Device{}
	if dev.Name, err = obj.str("name"); err != nil {
		return nil, err
	}
	if dev.Online, err = obj.boolean("online"); err != nil {
		return nil, err
	}
	if dev.DevID, err = obj.str("dev_id"); err != nil {
		return nil, err
	}
	if dev.PrintStatus, err = obj.str("print_status"); err != nil {
		return nil, err
	}
	if dev.NozzleDiameter, err = obj.float("nozzle_diameter"); err != nil {
		return nil, err
	}
	if dev.DevModelName, err = obj.str("dev_model_name"); err != nil {
		return nil, err
	}
	if dev.DevAccessCode, err = obj.str("dev_access_code"); err != nil {
		return nil, err
	}
	if dev.DevProductName, err = obj.str("dev_product_name"); err != nil {
		return nil, err
	}
	return dev, nil
}

// mapTasks 任务列表响应 → (total, []Task)
// 嵌套的 amsDetailMapping 保持响应顺序；时间解析失败使整条任务映射失败
func mapTasks(raw []byte) (int64, []Task, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return 0, nil, err
	}
	total, err := obj.integer("total")
	if err != nil {
		return 0, nil, err
	}
	arr, err := obj.array("hits")
	if err != nil {
		return 0, nil, err
	}

	tasks := make([]Task, 0, len(arr))
	for _, v := range arr {
		m, ok := v.(map[string]interface{})
		if !ok {
			return 0, nil, &SchemaError{Field: "hits", Reason: "contains a non-object element"}
		}
		task, err := mapTask(jsonObject(m))
		if err != nil {
			return 0, nil, err
		}
		tasks = append(tasks, *task)
	}
	return total, tasks, nil
}

func mapTask(obj jsonObject) (*Task, error) {
	var err error
	task := &Task{}
	if task.ID, err = obj.integer("id"); err != nil {
		return nil, err
	}
	if task.DesignID, err = obj.integer("designId"); err != nil {
		return nil, err
	}
	if task.DesignTitle, err = obj.str("designTitle"); err != nil {
		return nil, err
	}
	if task.InstanceID, err = obj.integer("instanceId"); err != nil {
		return nil, err
	}
	if task.ModelID, err = obj.str("modelId"); err != nil {
		return nil, err
	}
	if task.Title, err = obj.str("title"); err != nil {
		return nil, err
	}
	if task.Cover, err = obj.str("cover"); err != nil {
		return nil, err
	}
	if task.Status, err = obj.integer("status"); err != nil {
		return nil, err
	}
	if task.FeedbackStatus, err = obj.integer("feedbackStatus"); err != nil {
		return nil, err
	}
	if task.StartTime, err = obj.instant("startTime"); err != nil {
		return nil, err
	}
	if task.EndTime, err = obj.instant("endTime"); err != nil {
		return nil, err
	}
	if task.Weight, err = obj.float("weight"); err != nil {
		return nil, err
	}
	if task.Length, err = obj.integer("length"); err != nil {
		return nil, err
	}
	if task.CostTime, err = obj.integer("costTime"); err != nil {
		return nil, err
	}
	if task.ProfileID, err = obj.integer("profileId"); err != nil {
		return nil, err
	}
	if task.PlateIndex, err = obj.integer("plateIndex"); err != nil {
		return nil, err
	}
	if task.PlateName, err = obj.str("plateName"); err != nil {
		return nil, err
	}
	if task.DeviceID, err = obj.str("deviceId"); err != nil {
		return nil, err
	}
	if task.AMSDetailMapping, err = mapAMSDetails(obj); err != nil {
		return nil, err
	}
	if task.Mode, err = obj.str("mode"); err != nil {
		return nil, err
	}
	if task.IsPublicProfile, err = obj.boolean("isPublicProfile"); err != nil {
		return nil, err
	}
	if task.IsPrintable, err = obj.boolean("isPrintable"); err != nil {
		return nil, err
	}
	if task.DeviceModel, err = obj.str("deviceModel"); err != nil {
		return nil, err
	}
	if task.DeviceName, err = obj.str("deviceName"); err != nil {
		return nil, err
	}
	if task.BedType, err = obj.str("bedType"); err != nil {
		return nil, err
	}
	return task, nil
}

func mapAMSDetails(obj jsonObject) ([]AMSDetail, error) {
	arr, err := obj.array("amsDetailMapping")
	if err != nil {
		return nil, err
	}

	details := make([]AMSDetail, 0, len(arr))
	for _, v := range arr {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, &SchemaError{Field: "amsDetailMapping", Reason: "contains a non-object element"}
		}
		elem := jsonObject(m)
		var detail AMSDetail
		if detail.Position, err = elem.integer("position"); err != nil {
			return nil, err
		}
		if detail.SourceColor, err = elem.str("source_color"); err != nil {
			return nil, err
		}
		if detail.TargetColor, err = elem.str("target_color"); err != nil {
			return nil, err
		}
		if detail.FilamentID, err = elem.str("filament_id"); err != nil {
			return nil, err
		}
		if detail.FilamentType, err = elem.str("filament_type"); err != nil {
			return nil, err
		}
		if detail.TargetFilamentType, err = elem.str("target_filament_type"); err != nil {
			return nil, err
		}
		if detail.Weight, err = elem.float("weight"); err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}
