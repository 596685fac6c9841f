package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusCreated - 201: 创建成功.
	StatusCreated = 201
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusConflict - 409: 资源冲突.
	StatusConflict = 409
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
	// StatusServiceUnavailable - 503: 服务不可用.
	StatusServiceUnavailable = 503
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
)

// 用户相关错误码 (101xxx).
const (
	// ErrUserNotFound - 404: 用户不存在.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 400: 用户已存在.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401: 用户密码错误.
	ErrUserPasswordIncorrect
)

// 车辆相关错误码 (102xxx).
const (
	// ErrVehicleNotFound - 404: 车辆不存在.
	ErrVehicleNotFound int = iota + 102000
	// ErrVehicleFieldsMissing - 400: 车辆必填字段缺失.
	ErrVehicleFieldsMissing
	// ErrVehicleAlreadySold - 400: 车辆已售出.
	ErrVehicleAlreadySold
)

// 预约相关错误码 (103xxx).
const (
	// ErrAppointmentNotFound - 404: 预约不存在.
	ErrAppointmentNotFound int = iota + 103000
	// ErrAppointmentFieldsMissing - 400: 预约必填字段缺失.
	ErrAppointmentFieldsMissing
	// ErrAppointmentEmailInvalid - 400: 客户邮箱格式错误.
	ErrAppointmentEmailInvalid
	// ErrAppointmentDateInvalid - 400: 预约时间格式错误.
	ErrAppointmentDateInvalid
	// ErrAppointmentDatePast - 400: 预约时间早于当前时间.
	ErrAppointmentDatePast
	// ErrAppointmentActionInvalid - 400: 无效的预约操作.
	ErrAppointmentActionInvalid
	// ErrAppointmentStatusInvalid - 400: 无效的预约状态筛选.
	ErrAppointmentStatusInvalid
	// ErrAppointmentSlotOccupied - 409: 该时间段已被确认的预约占用.
	ErrAppointmentSlotOccupied
)

// 邮件相关错误码 (104xxx).
const (
	// ErrMailSend - 503: 邮件发送失败.
	ErrMailSend int = iota + 104000
)

// 数据库相关错误码 (105xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: 记录不存在.
	ErrRecordNotFound
)
