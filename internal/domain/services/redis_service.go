package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"autolot-http-service/internal/domain/models"
	"autolot-http-service/internal/infrastructure/config"
)

// InterfaceRedisService defines the Redis service interface
type InterfaceRedisService interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	CacheVehicle(vehicle *models.Vehicle, expiration time.Duration) error
	GetVehicleByID(id uint) (*models.Vehicle, error)
	InvalidateVehicle(id uint) error
	Ping() error
}

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) InterfaceRedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: "", // No password set
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	return &RedisService{
		Client: client,
		Ctx:    ctx,
	}
}

// 1 Set sets a key-value pair in Redis with expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// 2 Get gets a value from Redis by key
func (s *RedisService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

// 3 Delete deletes a key from Redis
func (s *RedisService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

// 4 CacheVehicle caches a catalog vehicle with expiration
func (s *RedisService) CacheVehicle(vehicle *models.Vehicle, expiration time.Duration) error {
	key := fmt.Sprintf("vehicle:%d", vehicle.ID)
	return s.Set(key, vehicle, expiration)
}

// 5 GetVehicleByID gets a cached vehicle by ID
func (s *RedisService) GetVehicleByID(id uint) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	key := fmt.Sprintf("vehicle:%d", id)
	if err := s.Get(key, &vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// 6 InvalidateVehicle removes a vehicle from cache after create/update/delete
func (s *RedisService) InvalidateVehicle(id uint) error {
	key := fmt.Sprintf("vehicle:%d", id)
	return s.Delete(key)
}

// 7 Ping checks the Redis connection
func (s *RedisService) Ping() error {
	ctx, cancel := context.WithTimeout(s.Ctx, 2*time.Second)
	defer cancel()
	return s.Client.Ping(ctx).Err()
}
