package models

import (
	"time"

	"gorm.io/datatypes"
)

// Vehicle represents a vehicle listing in the catalog
type Vehicle struct {
	BaseModel
	Make         string         `gorm:"type:varchar(50);not null" json:"make"`
	Model        string         `gorm:"type:varchar(50);not null" json:"model"`
	Year         int            `gorm:"not null" json:"year"`
	Price        float64        `json:"price"`
	Mileage      int            `json:"mileage"`
	FuelType     string         `gorm:"type:varchar(20)" json:"fuel_type"`     // gasoline, diesel, hybrid, electric
	Transmission string         `gorm:"type:varchar(20)" json:"transmission"`  // automatic, manual
	DriveType    string         `gorm:"type:varchar(20)" json:"drive_type"`    // fwd, rwd, awd
	Color        string         `gorm:"type:varchar(30)" json:"color"`
	Description  string         `gorm:"type:text" json:"description"`
	Images       datatypes.JSON `gorm:"type:json" json:"images"` // 图片URL列表，保持顺序
	CityMPG      int            `json:"city_mpg"`
	HighwayMPG   int            `json:"highway_mpg"`
	IsAvailable  bool           `gorm:"default:true" json:"is_available"`
	SoldAt       *time.Time     `json:"sold_at,omitempty"`

	// Relations - 关联关系
	Appointments []Appointment `gorm:"foreignKey:VehicleID" json:"appointments,omitempty"`
}

// Summary 返回用于预约响应的车辆摘要字段
func (v *Vehicle) Summary() map[string]interface{} {
	return map[string]interface{}{
		"id":     v.ID,
		"make":   v.Make,
		"model":  v.Model,
		"year":   v.Year,
		"price":  v.Price,
		"images": v.Images,
	}
}
