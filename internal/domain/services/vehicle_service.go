package services

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"autolot-http-service/internal/domain/models"
	"autolot-http-service/internal/infrastructure/config"
)

// VehicleStatistics 车辆统计信息
type VehicleStatistics struct {
	Total      int64            `json:"total"`
	Available  int64            `json:"available"`
	Sold       int64            `json:"sold"`
	ByFuelType map[string]int64 `json:"by_fuel_type"`
}

// InterfaceVehicleService 车辆服务接口
type InterfaceVehicleService interface {
	GetAllVehicles(page, pageSize int, search, fuelType string, available *bool) ([]models.Vehicle, int64, error)
	GetVehicleByID(id uint) (*models.Vehicle, error)
	CreateVehicle(vehicle *models.Vehicle) error
	UpdateVehicle(id uint, updates map[string]interface{}) (*models.Vehicle, error)
	DeleteVehicle(id uint) error
	MarkVehicleSold(id uint) (*models.Vehicle, error)
	GetVehicleStatistics() (*VehicleStatistics, error)
	SeedDemoVehicles() error
}

// 车辆业务错误
var (
	ErrVehicleNotFound      = errors.New("车辆不存在")
	ErrVehicleFieldsMissing = errors.New("品牌、型号和年份为必填项")
	ErrVehicleAlreadySold   = errors.New("车辆已售出")
)

// VehicleCacheTTL 车辆详情在Redis中的缓存时长
const VehicleCacheTTL = 5 * time.Minute

// VehicleService 提供车辆相关的服务
type VehicleService struct {
	DB     *gorm.DB
	Config *config.Config
	Cache  InterfaceRedisService // 可选，为nil时直接查库
}

// NewVehicleService 创建一个新的车辆服务
func NewVehicleService(db *gorm.DB, cfg *config.Config, cache InterfaceRedisService) InterfaceVehicleService {
	return &VehicleService{
		DB:     db,
		Config: cfg,
		Cache:  cache,
	}
}

// 1 GetAllVehicles 获取车辆列表，支持分页和筛选
func (s *VehicleService) GetAllVehicles(page, pageSize int, search, fuelType string, available *bool) ([]models.Vehicle, int64, error) {
	var vehicles []models.Vehicle
	var total int64

	query := s.DB.Model(&models.Vehicle{})

	// 添加搜索条件
	if search != "" {
		query = query.Where("make LIKE ? OR model LIKE ? OR color LIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}
	if fuelType != "" {
		query = query.Where("fuel_type = ?", fuelType)
	}
	if available != nil {
		query = query.Where("is_available = ?", *available)
	}

	// 获取总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&vehicles).Error; err != nil {
		return nil, 0, err
	}

	return vehicles, total, nil
}

// 2 GetVehicleByID 根据ID获取车辆，优先读取Redis缓存，未命中时查库并回填
func (s *VehicleService) GetVehicleByID(id uint) (*models.Vehicle, error) {
	if s.Cache != nil {
		if cached, err := s.Cache.GetVehicleByID(id); err == nil {
			return cached, nil
		}
	}

	vehicle, err := s.getVehicleFromDB(id)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		// 缓存失败不影响请求
		_ = s.Cache.CacheVehicle(vehicle, VehicleCacheTTL)
	}
	return vehicle, nil
}

// getVehicleFromDB 直接从数据库获取车辆，写路径使用避免读到过期缓存
func (s *VehicleService) getVehicleFromDB(id uint) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := s.DB.First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// invalidateCache 车辆变更后移除缓存条目
func (s *VehicleService) invalidateCache(id uint) {
	if s.Cache != nil {
		_ = s.Cache.InvalidateVehicle(id)
	}
}

// 3 CreateVehicle 创建新车辆
func (s *VehicleService) CreateVehicle(vehicle *models.Vehicle) error {
	// 品牌、型号、年份为必填项
	if vehicle.Make == "" || vehicle.Model == "" || vehicle.Year == 0 {
		return ErrVehicleFieldsMissing
	}

	if vehicle.Images == nil {
		vehicle.Images = datatypes.JSON([]byte("[]"))
	}
	vehicle.IsAvailable = true

	return s.DB.Create(vehicle).Error
}

// 4 UpdateVehicle 更新车辆信息
func (s *VehicleService) UpdateVehicle(id uint, updates map[string]interface{}) (*models.Vehicle, error) {
	// 首先获取车辆
	vehicle, err := s.getVehicleFromDB(id)
	if err != nil {
		return nil, err
	}

	// 图片列表序列化为JSON列
	if images, ok := updates["images"]; ok {
		raw, err := json.Marshal(images)
		if err != nil {
			return nil, err
		}
		updates["images"] = datatypes.JSON(raw)
	}

	if err := s.DB.Model(vehicle).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.invalidateCache(id)

	// 重新获取更新后的车辆信息
	return s.GetVehicleByID(id)
}

// 5 DeleteVehicle 删除车辆
func (s *VehicleService) DeleteVehicle(id uint) error {
	result := s.DB.Delete(&models.Vehicle{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVehicleNotFound
	}
	s.invalidateCache(id)
	return nil
}

// 6 MarkVehicleSold 将车辆标记为已售出
func (s *VehicleService) MarkVehicleSold(id uint) (*models.Vehicle, error) {
	vehicle, err := s.getVehicleFromDB(id)
	if err != nil {
		return nil, err
	}
	if !vehicle.IsAvailable && vehicle.SoldAt != nil {
		return nil, ErrVehicleAlreadySold
	}

	now := time.Now()
	updates := map[string]interface{}{
		"is_available": false,
		"sold_at":      now,
	}
	if err := s.DB.Model(vehicle).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.invalidateCache(id)

	return s.GetVehicleByID(id)
}

// 7 GetVehicleStatistics 获取车辆统计信息
func (s *VehicleService) GetVehicleStatistics() (*VehicleStatistics, error) {
	stats := &VehicleStatistics{
		ByFuelType: make(map[string]int64),
	}

	if err := s.DB.Model(&models.Vehicle{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Vehicle{}).Where("is_available = ?", true).Count(&stats.Available).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Vehicle{}).Where("is_available = ?", false).Count(&stats.Sold).Error; err != nil {
		return nil, err
	}

	// 按燃料类型统计
	type fuelCount struct {
		FuelType string
		Count    int64
	}
	var rows []fuelCount
	if err := s.DB.Model(&models.Vehicle{}).
		Select("fuel_type, COUNT(*) as count").
		Group("fuel_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByFuelType[row.FuelType] = row.Count
	}

	return stats, nil
}

// 8 SeedDemoVehicles 目录为空时写入演示车辆，幂等，启动时调用
func (s *VehicleService) SeedDemoVehicles() error {
	var count int64
	if err := s.DB.Model(&models.Vehicle{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	demo := []models.Vehicle{
		{
			Make: "Porsche", Model: "Cayenne", Year: 2021, Price: 68900, Mileage: 32000,
			FuelType: "gasoline", Transmission: "automatic", DriveType: "awd", Color: "black",
			Description: "一手车况，全程4S保养记录",
			Images:      datatypes.JSON([]byte(`["/images/cayenne-front.jpg","/images/cayenne-side.jpg"]`)),
			CityMPG:     17, HighwayMPG: 23, IsAvailable: true,
		},
		{
			Make: "Toyota", Model: "RAV4", Year: 2022, Price: 28900, Mileage: 15000,
			FuelType: "hybrid", Transmission: "automatic", DriveType: "awd", Color: "white",
			Description: "混动省油，适合家用",
			Images:      datatypes.JSON([]byte(`["/images/rav4-front.jpg"]`)),
			CityMPG:     41, HighwayMPG: 38, IsAvailable: true,
		},
		{
			Make: "BMW", Model: "330i", Year: 2020, Price: 33500, Mileage: 41000,
			FuelType: "gasoline", Transmission: "automatic", DriveType: "rwd", Color: "blue",
			Description: "运动套件，胎况良好",
			Images:      datatypes.JSON([]byte(`["/images/330i-front.jpg","/images/330i-rear.jpg"]`)),
			CityMPG:     26, HighwayMPG: 36, IsAvailable: true,
		},
	}

	return s.DB.Create(&demo).Error
}
