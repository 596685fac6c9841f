package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:         "成功",
	ErrUnknown:         "未知错误",
	ErrBind:            "请求参数绑定错误",
	ErrValidation:      "请求参数验证错误",
	ErrTokenInvalid:    "无效的认证令牌",
	ErrTooManyRequests: "请求频率过高",

	// 用户相关错误码
	ErrUserNotFound:          "用户不存在",
	ErrUserAlreadyExist:      "用户已存在",
	ErrUserPasswordIncorrect: "用户密码错误",

	// 车辆相关错误码
	ErrVehicleNotFound:      "车辆不存在",
	ErrVehicleFieldsMissing: "品牌、型号和年份为必填项",
	ErrVehicleAlreadySold:   "车辆已售出",

	// 预约相关错误码
	ErrAppointmentNotFound:      "预约不存在",
	ErrAppointmentFieldsMissing: "客户姓名、邮箱、电话、预约时间和服务类型为必填项",
	ErrAppointmentEmailInvalid:  "客户邮箱格式错误",
	ErrAppointmentDateInvalid:   "预约时间格式错误",
	ErrAppointmentDatePast:      "预约时间不能早于当前时间",
	ErrAppointmentActionInvalid: "无效的预约操作",
	ErrAppointmentStatusInvalid: "无效的预约状态筛选",
	ErrAppointmentSlotOccupied:  "该时间段已被确认的预约占用",

	// 邮件相关错误码
	ErrMailSend: "邮件发送失败",

	// 数据库相关错误码
	ErrDatabase:       "数据库错误",
	ErrRecordNotFound: "记录不存在",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,

	// 用户相关错误码
	ErrUserNotFound:          StatusNotFound,
	ErrUserAlreadyExist:      StatusBadRequest,
	ErrUserPasswordIncorrect: StatusUnauthorized,

	// 车辆相关错误码
	ErrVehicleNotFound:      StatusNotFound,
	ErrVehicleFieldsMissing: StatusBadRequest,
	ErrVehicleAlreadySold:   StatusBadRequest,

	// 预约相关错误码
	ErrAppointmentNotFound:      StatusNotFound,
	ErrAppointmentFieldsMissing: StatusBadRequest,
	ErrAppointmentEmailInvalid:  StatusBadRequest,
	ErrAppointmentDateInvalid:   StatusBadRequest,
	ErrAppointmentDatePast:      StatusBadRequest,
	ErrAppointmentActionInvalid: StatusBadRequest,
	ErrAppointmentStatusInvalid: StatusBadRequest,
	ErrAppointmentSlotOccupied:  StatusConflict,

	// 邮件相关错误码
	ErrMailSend: StatusServiceUnavailable,

	// 数据库相关错误码
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "未知错误"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
