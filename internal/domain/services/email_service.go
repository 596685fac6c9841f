package services

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"autolot-http-service/internal/domain/models"
	"autolot-http-service/internal/infrastructure/config"
	"autolot-http-service/pkg/logger"
)

// AppointmentMailData 邮件模板所需的预约数据
type AppointmentMailData struct {
	Reference    string
	ClientName   string
	ClientEmail  string
	ClientPhone  string
	Date         string // 已格式化的预约时间
	ServiceType  string
	Message      *string
	AdminMessage *string
	Vehicle      *models.Vehicle
}

// buildAppointmentMailData 从预约记录构造邮件数据
func buildAppointmentMailData(appointment *models.Appointment, cfg *config.Config) *AppointmentMailData {
	return &AppointmentMailData{
		Reference:   appointment.Reference,
		ClientName:  appointment.ClientName,
		ClientEmail: appointment.ClientEmail,
		ClientPhone: appointment.ClientPhone,
		Date:        appointment.AppointmentDate.Format("2006-01-02 15:04"),
		ServiceType: appointment.ServiceType,
		Message:     appointment.Message,
		Vehicle:     appointment.Vehicle,
	}
}

// InterfaceEmailService 邮件服务接口，所有方法只返回是否成功，不抛出错误
type InterfaceEmailService interface {
	NotifyOwnerOfNewRequest(data *AppointmentMailData) bool
	NotifyClientOfReceipt(data *AppointmentMailData) bool
	NotifyClientOfConfirmation(data *AppointmentMailData) bool
	NotifyClientOfCancellation(data *AppointmentMailData) bool
}

// MailSender 邮件投递接口，gomail.Dialer 满足该接口
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService 基于SMTP的邮件服务
type EmailService struct {
	Config *config.Config
	Sender MailSender
}

// NewEmailService 创建一个新的邮件服务
func NewEmailService(cfg *config.Config) InterfaceEmailService {
	return &EmailService{
		Config: cfg,
		Sender: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

// 1 NotifyOwnerOfNewRequest 向车行负责人发送新预约提醒
func (s *EmailService) NotifyOwnerOfNewRequest(data *AppointmentMailData) bool {
	subject := fmt.Sprintf("新预约请求 - %s %s", data.ServiceType, data.Date)
	body := strings.Builder{}
	body.WriteString(fmt.Sprintf("收到新的预约请求（编号 %s）：\n\n", data.Reference))
	body.WriteString(fmt.Sprintf("客户: %s\n电话: %s\n邮箱: %s\n", data.ClientName, data.ClientPhone, data.ClientEmail))
	body.WriteString(fmt.Sprintf("时间: %s\n服务类型: %s\n", data.Date, data.ServiceType))
	if data.Vehicle != nil {
		body.WriteString(fmt.Sprintf("意向车辆: %d年 %s %s\n", data.Vehicle.Year, data.Vehicle.Make, data.Vehicle.Model))
	}
	if data.Message != nil && *data.Message != "" {
		body.WriteString(fmt.Sprintf("\n客户留言:\n%s\n", *data.Message))
	}

	return s.send("owner-alert", s.Config.OwnerEmail, subject, body.String())
}

// 2 NotifyClientOfReceipt 向客户发送预约回执
func (s *EmailService) NotifyClientOfReceipt(data *AppointmentMailData) bool {
	subject := "您的预约请求已收到"
	body := strings.Builder{}
	body.WriteString(fmt.Sprintf("%s 您好：\n\n", data.ClientName))
	body.WriteString(fmt.Sprintf("我们已收到您 %s 的%s预约请求（编号 %s），", data.Date, data.ServiceType, data.Reference))
	body.WriteString("工作人员确认后会再次通知您。\n")
	if data.Vehicle != nil {
		body.WriteString(fmt.Sprintf("\n意向车辆: %d年 %s %s\n", data.Vehicle.Year, data.Vehicle.Make, data.Vehicle.Model))
	}

	return s.send("client-receipt", data.ClientEmail, subject, body.String())
}

// 3 NotifyClientOfConfirmation 向客户发送预约确认通知
func (s *EmailService) NotifyClientOfConfirmation(data *AppointmentMailData) bool {
	subject := "您的预约已确认"
	body := strings.Builder{}
	body.WriteString(fmt.Sprintf("%s 您好：\n\n", data.ClientName))
	body.WriteString(fmt.Sprintf("您 %s 的%s预约（编号 %s）已确认，请准时到店。\n", data.Date, data.ServiceType, data.Reference))
	if data.AdminMessage != nil && *data.AdminMessage != "" {
		body.WriteString(fmt.Sprintf("\n工作人员留言:\n%s\n", *data.AdminMessage))
	}

	return s.send("client-confirmation", data.ClientEmail, subject, body.String())
}

// 4 NotifyClientOfCancellation 向客户发送预约取消通知
func (s *EmailService) NotifyClientOfCancellation(data *AppointmentMailData) bool {
	subject := "您的预约已取消"
	body := strings.Builder{}
	body.WriteString(fmt.Sprintf("%s 您好：\n\n", data.ClientName))
	body.WriteString(fmt.Sprintf("很抱歉，您 %s 的%s预约（编号 %s）已被取消。\n", data.Date, data.ServiceType, data.Reference))
	if data.AdminMessage != nil && *data.AdminMessage != "" {
		body.WriteString(fmt.Sprintf("\n取消原因:\n%s\n", *data.AdminMessage))
	}
	body.WriteString("\n如需重新预约，欢迎随时联系我们。\n")

	return s.send("client-cancellation", data.ClientEmail, subject, body.String())
}

// send 组装并投递邮件，内部错误一律转换为 false
func (s *EmailService) send(kind, to, subject, body string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("邮件 %s 发送异常: %v", kind, r)
			ok = false
		}
	}()

	if to == "" {
		logger.Warning("邮件 %s 收件人为空，跳过发送", kind)
		return false
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.Config.MailFrom)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.Sender.DialAndSend(m); err != nil {
		logger.Error("邮件 %s 发送失败 (收件人 %s): %v", kind, to, err)
		return false
	}

	logger.Info("邮件 %s 已发送至 %s", kind, to)
	return true
}
