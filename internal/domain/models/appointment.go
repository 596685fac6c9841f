package models

import "time"

// AppointmentStatus represents the lifecycle status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending     AppointmentStatus = "pending"
	AppointmentStatusConfirmed   AppointmentStatus = "confirmed"
	AppointmentStatusCancelled   AppointmentStatus = "cancelled"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
)

// AllAppointmentStatuses 全部合法的预约状态
var AllAppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
	AppointmentStatusCancelled,
	AppointmentStatusCompleted,
	AppointmentStatusRescheduled,
}

// IsValidAppointmentStatus 判断给定状态是否合法
func IsValidAppointmentStatus(s string) bool {
	for _, status := range AllAppointmentStatuses {
		if string(status) == s {
			return true
		}
	}
	return false
}

// Appointment represents a test-drive or service appointment request
type Appointment struct {
	BaseModel
	Reference       string            `gorm:"type:varchar(36);unique;not null" json:"reference"` // 预约编号
	ClientName      string            `gorm:"type:varchar(100);not null" json:"client_name"`
	ClientEmail     string            `gorm:"type:varchar(100);not null" json:"client_email"`
	ClientPhone     string            `gorm:"type:varchar(30);not null" json:"client_phone"`
	AppointmentDate time.Time         `gorm:"not null" json:"appointment_date"`
	ServiceType     string            `gorm:"type:varchar(50);not null" json:"service_type"` // test_drive, maintenance, inspection...
	Message         *string           `gorm:"type:text" json:"message"`
	AdminNotes      *string           `gorm:"type:text" json:"admin_notes"`
	Status          AppointmentStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	VehicleID       *uint             `json:"vehicle_id,omitempty"`
	ConfirmedAt     *time.Time        `json:"confirmed_at"`
	CancelledAt     *time.Time        `json:"cancelled_at"`
	CompletedAt     *time.Time        `json:"completed_at"`

	// Relations - 关联关系
	Vehicle *Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
}

// TimeSlot 返回预约时间对应的 HH:MM 时间段
func (a *Appointment) TimeSlot() string {
	return a.AppointmentDate.Format("15:04")
}
