package services

import (
	"errors"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"autolot-http-service/internal/domain/models"
	"autolot-http-service/internal/infrastructure/config"
	"autolot-http-service/pkg/logger"
)

// BookableTimeSlots 每日可预约的固定时间段，中午12:00和13:00为午休不开放
var BookableTimeSlots = []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00", "17:00"}

// 客户邮箱校验，宽松的RFC格式
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// 预约时间支持的解析格式
var appointmentDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// 预约业务错误
var (
	ErrAppointmentNotFound      = errors.New("预约不存在")
	ErrAppointmentFieldsMissing = errors.New("客户姓名、邮箱、电话、预约时间和服务类型为必填项")
	ErrAppointmentEmailInvalid  = errors.New("客户邮箱格式错误")
	ErrAppointmentDateInvalid   = errors.New("预约时间格式错误")
	ErrAppointmentDatePast      = errors.New("预约时间不能早于当前时间")
	ErrAppointmentActionInvalid = errors.New("无效的预约操作")
	ErrAppointmentStatusInvalid = errors.New("无效的预约状态筛选")
	ErrAppointmentSlotOccupied  = errors.New("该时间段已被确认的预约占用")
)

// CreateAppointmentInput 创建预约的输入参数
type CreateAppointmentInput struct {
	ClientName      string
	ClientEmail     string
	ClientPhone     string
	AppointmentDate string
	ServiceType     string
	Message         *string
	VehicleID       *uint
}

// OccupiedSlot 已占用时间段，附带管理端可见的客户信息
type OccupiedSlot struct {
	Time        string `json:"time"`
	ClientName  string `json:"client_name"`
	ServiceType string `json:"service_type"`
}

// DayAvailability 某日的时间段可用情况
type DayAvailability struct {
	Date               string         `json:"date"`
	AvailableTimeSlots []string       `json:"available_time_slots"`
	OccupiedTimeSlots  []OccupiedSlot `json:"occupied_time_slots"`
	TotalSlots         int            `json:"total_slots"`
	AvailableSlots     int            `json:"available_slots"`
}

// AppointmentStatistics 预约统计信息
type AppointmentStatistics struct {
	Total       int64 `json:"total"`
	Pending     int64 `json:"pending"`
	Confirmed   int64 `json:"confirmed"`
	Cancelled   int64 `json:"cancelled"`
	Completed   int64 `json:"completed"`
	Rescheduled int64 `json:"rescheduled"`
}

// InterfaceAppointmentService 预约服务接口
type InterfaceAppointmentService interface {
	GetAllAppointments(status string, page, pageSize int) ([]models.Appointment, int64, error)
	GetAppointmentByID(id uint) (*models.Appointment, error)
	CreateAppointment(input *CreateAppointmentInput) (*models.Appointment, error)
	ApplyAction(id uint, action string, adminMessage *string) (*models.Appointment, error)
	DeleteAppointment(id uint) error
	GetDayAvailability(date string) (*DayAvailability, error)
	GetAppointmentStatistics() (*AppointmentStatistics, error)
	WaitForMailTasks()
}

// AppointmentService 提供预约相关的服务
type AppointmentService struct {
	DB     *gorm.DB
	Config *config.Config
	Email  InterfaceEmailService

	mailWG sync.WaitGroup
}

// NewAppointmentService 创建一个新的预约服务
func NewAppointmentService(db *gorm.DB, cfg *config.Config, email InterfaceEmailService) InterfaceAppointmentService {
	return &AppointmentService{
		DB:     db,
		Config: cfg,
		Email:  email,
	}
}

// transitionOutcome 描述一个预约操作的结果：目标状态、时间戳变更和外发邮件
type transitionOutcome struct {
	status     models.AppointmentStatus
	stampField string // 置为当前时间的时间戳字段，空表示不设置
	clearAll   bool   // 是否清空全部状态时间戳
	mail       string // "confirmation"、"cancellation" 或空
}

// 预约操作状态转移表
var appointmentTransitions = map[string]transitionOutcome{
	"confirm":    {status: models.AppointmentStatusConfirmed, stampField: "confirmed_at", mail: "confirmation"},
	"cancel":     {status: models.AppointmentStatusCancelled, stampField: "cancelled_at", mail: "cancellation"},
	"complete":   {status: models.AppointmentStatusCompleted, stampField: "completed_at"},
	"reschedule": {status: models.AppointmentStatusRescheduled},
	"restore":    {status: models.AppointmentStatusPending, clearAll: true},
}

// 1 GetAllAppointments 获取预约列表，支持按状态筛选和分页，按创建时间倒序
func (s *AppointmentService) GetAllAppointments(status string, page, pageSize int) ([]models.Appointment, int64, error) {
	var appointments []models.Appointment
	var total int64

	if status != "" && !models.IsValidAppointmentStatus(status) {
		return nil, 0, ErrAppointmentStatusInvalid
	}

	query := s.DB.Model(&models.Appointment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	// 获取总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询，并预加载关联车辆
	offset := (page - 1) * pageSize
	if err := query.Preload("Vehicle").
		Order("created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&appointments).Error; err != nil {
		return nil, 0, err
	}

	return appointments, total, nil
}

// 2 GetAppointmentByID 根据ID获取预约
func (s *AppointmentService) GetAppointmentByID(id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.DB.Preload("Vehicle").First(&appointment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &appointment, nil
}

// 3 CreateAppointment 创建预约请求，校验输入并异步发送通知邮件
func (s *AppointmentService) CreateAppointment(input *CreateAppointmentInput) (*models.Appointment, error) {
	// 必填字段校验
	if input.ClientName == "" || input.ClientEmail == "" || input.ClientPhone == "" ||
		input.AppointmentDate == "" || input.ServiceType == "" {
		return nil, ErrAppointmentFieldsMissing
	}

	// 邮箱格式校验
	if !emailPattern.MatchString(input.ClientEmail) {
		return nil, ErrAppointmentEmailInvalid
	}

	// 预约时间解析，且不能早于当前时间
	date, err := parseAppointmentDate(input.AppointmentDate)
	if err != nil {
		return nil, ErrAppointmentDateInvalid
	}
	if date.Before(time.Now()) {
		return nil, ErrAppointmentDatePast
	}

	// 引用了车辆时，车辆必须存在
	var vehicle *models.Vehicle
	if input.VehicleID != nil {
		var v models.Vehicle
		if err := s.DB.First(&v, *input.VehicleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVehicleNotFound
			}
			return nil, err
		}
		vehicle = &v
	}

	appointment := &models.Appointment{
		Reference:       uuid.NewString(),
		ClientName:      input.ClientName,
		ClientEmail:     input.ClientEmail,
		ClientPhone:     input.ClientPhone,
		AppointmentDate: date,
		ServiceType:     input.ServiceType,
		Message:         input.Message,
		Status:          models.AppointmentStatusPending,
		VehicleID:       input.VehicleID,
	}

	if err := s.DB.Create(appointment).Error; err != nil {
		return nil, err
	}
	appointment.Vehicle = vehicle

	// 新预约通知：负责人提醒 + 客户回执，并发发送，互不影响，失败只记录日志
	mailData := buildAppointmentMailData(appointment, s.Config)
	s.dispatchMail("owner-alert", func() bool {
		return s.Email.NotifyOwnerOfNewRequest(mailData)
	})
	s.dispatchMail("client-receipt", func() bool {
		return s.Email.NotifyClientOfReceipt(mailData)
	})

	return appointment, nil
}

// 4 ApplyAction 对预约执行状态转移操作
func (s *AppointmentService) ApplyAction(id uint, action string, adminMessage *string) (*models.Appointment, error) {
	outcome, ok := appointmentTransitions[action]
	if !ok {
		return nil, ErrAppointmentActionInvalid
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var appointment models.Appointment
		if err := tx.First(&appointment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAppointmentNotFound
			}
			return err
		}

		// 确认操作前检查时间段冲突：同一天同一时间段只允许一个已确认预约
		if action == "confirm" {
			occupied, err := s.slotOccupied(tx, &appointment)
			if err != nil {
				return err
			}
			if occupied {
				return ErrAppointmentSlotOccupied
			}
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status": outcome.status,
		}
		if outcome.stampField != "" {
			updates[outcome.stampField] = now
		}
		if outcome.clearAll {
			updates["confirmed_at"] = nil
			updates["cancelled_at"] = nil
			updates["completed_at"] = nil
		}
		// 仅在提供了管理员留言时覆盖备注，未提供时保留原有备注
		if adminMessage != nil {
			updates["admin_notes"] = *adminMessage
		}

		return tx.Model(&appointment).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	// 重新获取更新后的预约及车辆摘要
	appointment, err := s.GetAppointmentByID(id)
	if err != nil {
		return nil, err
	}

	// 确认/取消时向客户发送通知邮件，不阻塞请求
	if outcome.mail != "" {
		mailData := buildAppointmentMailData(appointment, s.Config)
		mailData.AdminMessage = adminMessage
		switch outcome.mail {
		case "confirmation":
			s.dispatchMail("client-confirmation", func() bool {
				return s.Email.NotifyClientOfConfirmation(mailData)
			})
		case "cancellation":
			s.dispatchMail("client-cancellation", func() bool {
				return s.Email.NotifyClientOfCancellation(mailData)
			})
		}
	}

	return appointment, nil
}

// 5 DeleteAppointment 删除预约（硬删除）
func (s *AppointmentService) DeleteAppointment(id uint) error {
	result := s.DB.Delete(&models.Appointment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// 6 GetDayAvailability 计算某日的可用/占用时间段，只有已确认的预约占用时间段
func (s *AppointmentService) GetDayAvailability(date string) (*DayAvailability, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return nil, ErrAppointmentDateInvalid
	}

	start, end := dayWindow(day)

	var confirmed []models.Appointment
	if err := s.DB.Where("status = ? AND appointment_date BETWEEN ? AND ?",
		models.AppointmentStatusConfirmed, start, end).
		Order("appointment_date ASC").
		Find(&confirmed).Error; err != nil {
		return nil, err
	}

	occupiedTimes := make(map[string]bool, len(confirmed))
	occupied := make([]OccupiedSlot, 0, len(confirmed))
	for _, appointment := range confirmed {
		slot := appointment.TimeSlot()
		occupiedTimes[slot] = true
		occupied = append(occupied, OccupiedSlot{
			Time:        slot,
			ClientName:  appointment.ClientName,
			ServiceType: appointment.ServiceType,
		})
	}

	available := make([]string, 0, len(BookableTimeSlots))
	for _, slot := range BookableTimeSlots {
		if !occupiedTimes[slot] {
			available = append(available, slot)
		}
	}

	return &DayAvailability{
		Date:               date,
		AvailableTimeSlots: available,
		OccupiedTimeSlots:  occupied,
		TotalSlots:         len(BookableTimeSlots),
		AvailableSlots:     len(available),
	}, nil
}

// 7 GetAppointmentStatistics 按状态统计预约数量
func (s *AppointmentService) GetAppointmentStatistics() (*AppointmentStatistics, error) {
	stats := &AppointmentStatistics{}

	if err := s.DB.Model(&models.Appointment{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	counts := map[models.AppointmentStatus]*int64{
		models.AppointmentStatusPending:     &stats.Pending,
		models.AppointmentStatusConfirmed:   &stats.Confirmed,
		models.AppointmentStatusCancelled:   &stats.Cancelled,
		models.AppointmentStatusCompleted:   &stats.Completed,
		models.AppointmentStatusRescheduled: &stats.Rescheduled,
	}
	for status, target := range counts {
		if err := s.DB.Model(&models.Appointment{}).Where("status = ?", status).Count(target).Error; err != nil {
			return nil, err
		}
	}

	return stats, nil
}

// WaitForMailTasks 等待所有在途邮件任务完成，用于优雅关闭和测试
func (s *AppointmentService) WaitForMailTasks() {
	s.mailWG.Wait()
}

// slotOccupied 检查预约所在时间段是否已被其他已确认预约占用
func (s *AppointmentService) slotOccupied(tx *gorm.DB, appointment *models.Appointment) (bool, error) {
	start, end := dayWindow(appointment.AppointmentDate)

	var others []models.Appointment
	if err := tx.Where("status = ? AND id != ? AND appointment_date BETWEEN ? AND ?",
		models.AppointmentStatusConfirmed, appointment.ID, start, end).
		Find(&others).Error; err != nil {
		return false, err
	}

	slot := appointment.TimeSlot()
	for _, other := range others {
		if other.TimeSlot() == slot {
			return true, nil
		}
	}
	return false, nil
}

// dispatchMail 异步执行邮件任务并记录结果，任务之间互不影响
func (s *AppointmentService) dispatchMail(task string, fn func() bool) {
	s.mailWG.Add(1)
	go func() {
		defer s.mailWG.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("邮件任务 %s 异常: %v", task, r)
			}
		}()
		if fn() {
			logger.Info("邮件任务 %s 发送成功", task)
		} else {
			logger.Warning("邮件任务 %s 发送失败", task)
		}
	}()
}

// parseAppointmentDate 解析预约时间，支持多种格式
func parseAppointmentDate(value string) (time.Time, error) {
	for _, layout := range appointmentDateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrAppointmentDateInvalid
}

// dayWindow 返回某时刻所在日的本地时间窗口 [00:00:00.000, 23:59:59.999]，
// 以次日零点为界计算，夏令时切换日(23/25小时)也不会漏检或跨天
func dayWindow(t time.Time) (time.Time, time.Time) {
	year, month, day := t.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
	end := time.Date(year, month, day+1, 0, 0, 0, 0, time.Local).Add(-time.Millisecond)
	return start, end
}
