package controllers

import (
	"autolot-http-service/internal/domain/models"
	"autolot-http-service/internal/domain/services"
	"autolot-http-service/internal/domain/services/container"
	"autolot-http-service/internal/error/code"
	"autolot-http-service/internal/error/response"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// InterfaceAppointmentController 定义预约控制器接口
type InterfaceAppointmentController interface {
	GetAppointments()
	GetAppointment()
	CreateAppointment()
	UpdateAppointmentStatus()
	DeleteAppointment()
	GetAvailability()
	GetAppointmentStats()
}

// AppointmentController 预约控制器
type AppointmentController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAppointmentController 创建一个新的预约控制器
func NewAppointmentController(ctx *gin.Context, container *container.ServiceContainer) *AppointmentController {
	return &AppointmentController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateAppointmentRequest 创建预约请求
type CreateAppointmentRequest struct {
	ClientName      string  `json:"client_name" binding:"required" example:"张伟"`
	ClientEmail     string  `json:"client_email" binding:"required" example:"zhangwei@example.com"`
	ClientPhone     string  `json:"client_phone" binding:"required" example:"13800138000"`
	AppointmentDate string  `json:"appointment_date" binding:"required" example:"2026-09-15T10:00:00Z"`
	ServiceType     string  `json:"service_type" binding:"required" example:"test_drive"`
	Message         *string `json:"message"`
	VehicleID       *uint   `json:"vehicle_id"`
}

// UpdateAppointmentStatusRequest 更新预约状态请求
type UpdateAppointmentStatusRequest struct {
	Action       string  `json:"action" binding:"required" example:"confirm"`
	AdminMessage *string `json:"admin_message"`
}

// appointmentPayload 组装预约响应数据，附带关联车辆摘要
func appointmentPayload(appointment *models.Appointment) gin.H {
	data := gin.H{"appointment": appointment}
	if appointment.Vehicle != nil {
		data["vehicle_summary"] = appointment.Vehicle.Summary()
	}
	return data
}

// HandleAppointmentFunc 返回一个处理预约请求的Gin处理函数
func HandleAppointmentFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAppointmentController(ctx, container)

		switch method {
		case "getAppointments":
			controller.GetAppointments()
		case "getAppointment":
			controller.GetAppointment()
		case "createAppointment":
			controller.CreateAppointment()
		case "updateAppointmentStatus":
			controller.UpdateAppointmentStatus()
		case "deleteAppointment":
			controller.DeleteAppointment()
		case "getAvailability":
			controller.GetAvailability()
		case "getAppointmentStats":
			controller.GetAppointmentStats()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetAppointments 获取预约列表
// @Summary      获取预约列表
// @Description  分页获取预约列表，支持按状态筛选，按创建时间倒序返回
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Param        page query int false "页码, 默认为1"
// @Param        limit query int false "每页条数, 默认为10"
// @Param        status query string false "预约状态筛选(pending/confirmed/cancelled/completed/rescheduled)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /appointments [get]
// @Security     BearerAuth
func (c *AppointmentController) GetAppointments() {
	page, _ := strconv.Atoi(c.Ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.Ctx.DefaultQuery("limit", "10"))
	status := c.Ctx.Query("status")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	appointmentService := c.Container.GetService("appointment").(services.InterfaceAppointmentService)
	appointments, total, err := appointmentService.GetAllAppointments(status, page, limit)
	if err != nil {
		if errors.Is(err, services.ErrAppointmentStatusInvalid) {
			response.Fail(c.Ctx, code.ErrAppointmentStatusInvalid, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询预约列表失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithPagination(c.Ctx, appointments, response.NewPagination(page, limit, total))
}

// 2. GetAppointment 获取预约详情
// @Summary      获取预约详情
// @Description  根据ID获取特定预约的详细信息，包含关联车辆摘要
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Param        id path int true "预约ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /appointments/{id} [get]
// @Security     BearerAuth
func (c *AppointmentController) GetAppointment() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	appointmentService := c.Container.GetService("appointment").(services.InterfaceAppointmentService)
	appointment, err := appointmentService.GetAppointmentByID(uint(id))
	if err != nil {
		response.NotFound(c.Ctx, "预约不存在")
		return
	}

	response.Success(c.Ctx, appointmentPayload(appointment))
}

// 3. CreateAppointment 创建预约
// @Summary      创建预约
// @Description  公开接口，客户提交预约申请，初始状态为pending，异步发送通知邮件
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Param        request body CreateAppointmentRequest true "预约信息"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /appointments [post]
func (c *AppointmentController) CreateAppointment() {
	var req CreateAppointmentRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	input := &services.CreateAppointmentInput{
		ClientName:      strings.TrimSpace(req.ClientName),
		ClientEmail:     strings.TrimSpace(req.ClientEmail),
		ClientPhone:     strings.TrimSpace(req.ClientPhone),
		AppointmentDate: req.AppointmentDate,
		ServiceType:     strings.TrimSpace(req.ServiceType),
		Message:         req.Message,
		VehicleID:       req.VehicleID,
	}

	appointmentService := c.Container.GetService("appointment").(services.InterfaceAppointmentService)
	appointment, err := appointmentService.CreateAppointment(input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAppointmentFieldsMissing):
			response.Fail(c.Ctx, code.ErrAppointmentFieldsMissing, nil)
		case errors.Is(err, services.ErrAppointmentEmailInvalid):
			response.Fail(c.Ctx, code.ErrAppointmentEmailInvalid, nil)
		case errors.Is(err, services.ErrAppointmentDateInvalid):
			response.Fail(c.Ctx, code.ErrAppointmentDateInvalid, nil)
		case errors.Is(err, services.ErrAppointmentDatePast):
			response.Fail(c.Ctx, code.ErrAppointmentDatePast, nil)
		case errors.Is(err, services.ErrVehicleNotFound):
			response.NotFound(c.Ctx, "车辆不存在")
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "创建预约失败: "+err.Error(), nil)
		}
		return
	}

	response.Created(c.Ctx, appointment)
}

// 4. UpdateAppointmentStatus 更新预约状态
// @Summary      更新预约状态
// @Description  对预约执行状态操作(confirm/cancel/complete/reschedule/restore)，并异步发送通知邮件
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Param        id path int true "预约ID"
// @Param        request body UpdateAppointmentStatusRequest true "状态操作"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /appointments/{id} [patch]
// @Security     BearerAuth
func (c *AppointmentController) UpdateAppointmentStatus() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req UpdateAppointmentStatusRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	appointmentService := c.Container.GetService("appointment").(services.InterfaceAppointmentService)
	appointment, err := appointmentService.ApplyAction(uint(id), req.Action, req.AdminMessage)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAppointmentNotFound):
			response.NotFound(c.Ctx, "预约不存在")
		case errors.Is(err, services.ErrAppointmentActionInvalid):
			response.Fail(c.Ctx, code.ErrAppointmentActionInvalid, nil)
		case errors.Is(err, services.ErrAppointmentSlotOccupied):
			response.Fail(c.Ctx, code.ErrAppointmentSlotOccupied, nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "更新预约状态失败: "+err.Error(), nil)
		}
		return
	}

	response.Success(c.Ctx, appointmentPayload(appointment))
}

// 5. DeleteAppointment 删除预约
// @Summary      删除预约
// @Description  删除指定ID的预约记录
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Param        id path int true "预约ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /appointments/{id} [delete]
// @Security     BearerAuth
func (c *AppointmentController) DeleteAppointment() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	appointmentService := c.Container.GetService("appointment").(services.InterfaceAppointmentService)
	if err := appointmentService.DeleteAppointment(uint(id)); err != nil {
		if errors.Is(err, services.ErrAppointmentNotFound) {
			response.NotFound(c.Ctx, "预约不存在")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "删除预约失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}

// 6. GetAvailability 获取指定日期可用时间段
// @Summary      获取指定日期可用时间段
// @Description  公开接口，返回指定日期的可用与已占用时间段，仅已确认的预约占用时间段
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Param        date query string true "日期(YYYY-MM-DD)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /appointments/availability [get]
func (c *AppointmentController) GetAvailability() {
	date := c.Ctx.Query("date")
	if date == "" {
		response.ParamError(c.Ctx, "缺少date参数")
		return
	}

	appointmentService := c.Container.GetService("appointment").(services.InterfaceAppointmentService)
	availability, err := appointmentService.GetDayAvailability(date)
	if err != nil {
		if errors.Is(err, services.ErrAppointmentDateInvalid) {
			response.Fail(c.Ctx, code.ErrAppointmentDateInvalid, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询可用时间段失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, availability)
}

// 7. GetAppointmentStats 获取预约统计信息
// @Summary      获取预约统计信息
// @Description  获取预约总数及各状态数量
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /appointments/stats [get]
// @Security     BearerAuth
func (c *AppointmentController) GetAppointmentStats() {
	appointmentService := c.Container.GetService("appointment").(services.InterfaceAppointmentService)
	stats, err := appointmentService.GetAppointmentStatistics()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询预约统计失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, stats)
}
