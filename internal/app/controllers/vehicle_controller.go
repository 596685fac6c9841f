package controllers

import (
	"autolot-http-service/internal/domain/models"
	"autolot-http-service/internal/domain/services"
	"autolot-http-service/internal/domain/services/container"
	"autolot-http-service/internal/error/code"
	"autolot-http-service/internal/error/response"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// InterfaceVehicleController 定义车辆控制器接口
type InterfaceVehicleController interface {
	GetVehicles()
	GetVehicle()
	CreateVehicle()
	UpdateVehicle()
	DeleteVehicle()
	MarkVehicleSold()
	GetVehicleStats()
}

// VehicleController 车辆控制器
type VehicleController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewVehicleController 创建一个新的车辆控制器
func NewVehicleController(ctx *gin.Context, container *container.ServiceContainer) *VehicleController {
	return &VehicleController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateVehicleRequest 创建车辆请求
type CreateVehicleRequest struct {
	Make         string   `json:"make" binding:"required" example:"Porsche"`
	Model        string   `json:"model" binding:"required" example:"Cayenne"`
	Year         int      `json:"year" binding:"required" example:"2022"`
	Price        float64  `json:"price" example:"89900"`
	Mileage      int      `json:"mileage" example:"12000"`
	FuelType     string   `json:"fuel_type" example:"gasoline"`
	Transmission string   `json:"transmission" example:"automatic"`
	DriveType    string   `json:"drive_type" example:"awd"`
	Color        string   `json:"color" example:"black"`
	Description  string   `json:"description" example:"一手车，保养记录齐全"`
	Images       []string `json:"images"`
	CityMPG      int      `json:"city_mpg" example:"18"`
	HighwayMPG   int      `json:"highway_mpg" example:"23"`
}

// UpdateVehicleRequest 更新车辆请求
type UpdateVehicleRequest struct {
	Make         *string   `json:"make"`
	Model        *string   `json:"model"`
	Year         *int      `json:"year"`
	Price        *float64  `json:"price"`
	Mileage      *int      `json:"mileage"`
	FuelType     *string   `json:"fuel_type"`
	Transmission *string   `json:"transmission"`
	DriveType    *string   `json:"drive_type"`
	Color        *string   `json:"color"`
	Description  *string   `json:"description"`
	Images       *[]string `json:"images"`
	CityMPG      *int      `json:"city_mpg"`
	HighwayMPG   *int      `json:"highway_mpg"`
	IsAvailable  *bool     `json:"is_available"`
}

// HandleVehicleFunc 返回一个处理车辆请求的Gin处理函数
func HandleVehicleFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewVehicleController(ctx, container)

		switch method {
		case "getVehicles":
			controller.GetVehicles()
		case "getVehicle":
			controller.GetVehicle()
		case "createVehicle":
			controller.CreateVehicle()
		case "updateVehicle":
			controller.UpdateVehicle()
		case "deleteVehicle":
			controller.DeleteVehicle()
		case "markVehicleSold":
			controller.MarkVehicleSold()
		case "getVehicleStats":
			controller.GetVehicleStats()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetVehicles 获取车辆列表
// @Summary      获取车辆列表
// @Description  分页获取车辆列表，支持关键词搜索和筛选
// @Tags         Vehicle
// @Accept       json
// @Produce      json
// @Param        page query int false "页码, 默认为1"
// @Param        limit query int false "每页条数, 默认为10"
// @Param        search query string false "搜索关键词(品牌、型号)"
// @Param        fuel_type query string false "燃料类型筛选"
// @Param        available query bool false "是否在售筛选"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /vehicles [get]
func (c *VehicleController) GetVehicles() {
	// 获取分页参数
	page, _ := strconv.Atoi(c.Ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.Ctx.DefaultQuery("limit", "10"))
	search := c.Ctx.Query("search")
	fuelType := c.Ctx.Query("fuel_type")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	// available参数可选，缺省时不筛选
	var available *bool
	if raw := c.Ctx.Query("available"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.ParamError(c.Ctx, "无效的available参数")
			return
		}
		available = &parsed
	}

	vehicleService := c.Container.GetService("vehicle").(services.InterfaceVehicleService)
	vehicles, total, err := vehicleService.GetAllVehicles(page, limit, search, fuelType, available)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询车辆列表失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithPagination(c.Ctx, vehicles, response.NewPagination(page, limit, total))
}

// 2. GetVehicle 获取车辆详情
// @Summary      获取车辆详情
// @Description  根据ID获取特定车辆的详细信息
// @Tags         Vehicle
// @Accept       json
// @Produce      json
// @Param        id path int true "车辆ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /vehicles/{id} [get]
func (c *VehicleController) GetVehicle() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	vehicleService := c.Container.GetService("vehicle").(services.InterfaceVehicleService)
	vehicle, err := vehicleService.GetVehicleByID(uint(id))
	if err != nil {
		response.NotFound(c.Ctx, "车辆不存在")
		return
	}

	response.Success(c.Ctx, vehicle)
}

// 3. CreateVehicle 创建车辆
// @Summary      创建车辆
// @Description  创建一个新的车辆记录
// @Tags         Vehicle
// @Accept       json
// @Produce      json
// @Param        request body CreateVehicleRequest true "车辆信息"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /vehicles [post]
// @Security     BearerAuth
func (c *VehicleController) CreateVehicle() {
	var req CreateVehicleRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	// 图片列表序列化为JSON列
	images := req.Images
	if images == nil {
		images = []string{}
	}
	rawImages, err := json.Marshal(images)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的图片列表: "+err.Error(), nil)
		return
	}

	vehicle := &models.Vehicle{
		Make:         strings.TrimSpace(req.Make),
		Model:        strings.TrimSpace(req.Model),
		Year:         req.Year,
		Price:        req.Price,
		Mileage:      req.Mileage,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		DriveType:    req.DriveType,
		Color:        req.Color,
		Description:  req.Description,
		Images:       datatypes.JSON(rawImages),
		CityMPG:      req.CityMPG,
		HighwayMPG:   req.HighwayMPG,
	}

	vehicleService := c.Container.GetService("vehicle").(services.InterfaceVehicleService)
	if err := vehicleService.CreateVehicle(vehicle); err != nil {
		if errors.Is(err, services.ErrVehicleFieldsMissing) {
			response.Fail(c.Ctx, code.ErrVehicleFieldsMissing, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "创建车辆失败: "+err.Error(), nil)
		return
	}

	response.Created(c.Ctx, vehicle)
}

// 4. UpdateVehicle 更新车辆
// @Summary      更新车辆
// @Description  更新现有车辆的信息，仅更新请求中出现的字段
// @Tags         Vehicle
// @Accept       json
// @Produce      json
// @Param        id path int true "车辆ID"
// @Param        request body UpdateVehicleRequest true "更新的车辆信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /vehicles/{id} [put]
// @Security     BearerAuth
func (c *VehicleController) UpdateVehicle() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req UpdateVehicleRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	// 构建更新字段映射
	updates := make(map[string]interface{})
	if req.Make != nil {
		updates["make"] = strings.TrimSpace(*req.Make)
	}
	if req.Model != nil {
		updates["model"] = strings.TrimSpace(*req.Model)
	}
	if req.Year != nil {
		updates["year"] = *req.Year
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Mileage != nil {
		updates["mileage"] = *req.Mileage
	}
	if req.FuelType != nil {
		updates["fuel_type"] = *req.FuelType
	}
	if req.Transmission != nil {
		updates["transmission"] = *req.Transmission
	}
	if req.DriveType != nil {
		updates["drive_type"] = *req.DriveType
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Images != nil {
		updates["images"] = *req.Images
	}
	if req.CityMPG != nil {
		updates["city_mpg"] = *req.CityMPG
	}
	if req.HighwayMPG != nil {
		updates["highway_mpg"] = *req.HighwayMPG
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}

	vehicleService := c.Container.GetService("vehicle").(services.InterfaceVehicleService)
	vehicle, err := vehicleService.UpdateVehicle(uint(id), updates)
	if err != nil {
		if errors.Is(err, services.ErrVehicleNotFound) {
			response.NotFound(c.Ctx, "车辆不存在")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "更新车辆失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, vehicle)
}

// 5. DeleteVehicle 删除车辆
// @Summary      删除车辆
// @Description  删除指定ID的车辆记录
// @Tags         Vehicle
// @Accept       json
// @Produce      json
// @Param        id path int true "车辆ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /vehicles/{id} [delete]
// @Security     BearerAuth
func (c *VehicleController) DeleteVehicle() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	vehicleService := c.Container.GetService("vehicle").(services.InterfaceVehicleService)
	if err := vehicleService.DeleteVehicle(uint(id)); err != nil {
		if errors.Is(err, services.ErrVehicleNotFound) {
			response.NotFound(c.Ctx, "车辆不存在")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "删除车辆失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}

// 6. MarkVehicleSold 标记车辆已售出
// @Summary      标记车辆已售出
// @Description  将指定车辆标记为已售出并记录售出时间
// @Tags         Vehicle
// @Accept       json
// @Produce      json
// @Param        id path int true "车辆ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /vehicles/{id}/sold [post]
// @Security     BearerAuth
func (c *VehicleController) MarkVehicleSold() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	vehicleService := c.Container.GetService("vehicle").(services.InterfaceVehicleService)
	vehicle, err := vehicleService.MarkVehicleSold(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrVehicleNotFound) {
			response.NotFound(c.Ctx, "车辆不存在")
			return
		}
		if errors.Is(err, services.ErrVehicleAlreadySold) {
			response.Fail(c.Ctx, code.ErrVehicleAlreadySold, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "标记车辆失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, vehicle)
}

// 7. GetVehicleStats 获取车辆统计信息
// @Summary      获取车辆统计信息
// @Description  获取车辆总数、在售数、已售数以及按燃料类型分布
// @Tags         Vehicle
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /vehicles/stats [get]
// @Security     BearerAuth
func (c *VehicleController) GetVehicleStats() {
	vehicleService := c.Container.GetService("vehicle").(services.InterfaceVehicleService)
	stats, err := vehicleService.GetVehicleStatistics()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询车辆统计失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, stats)
}
