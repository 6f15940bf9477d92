package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/HodeX7/KDJeevraksha/config"
)

// InterfaceRedisService defines the cache interface
type InterfaceRedisService interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	CacheDogGraph(dogID uint, dog interface{}) error
	GetDogGraph(dogID uint, dest interface{}) error
	InvalidateDogGraph(dogID uint) error
}

// RedisService caches fully-populated dog case graphs so repeated detail
// fetches from the field apps skip the preload-heavy query.
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

const dogGraphTTL = 5 * time.Minute

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.GetRedisAddr(),
		DB:   cfg.RedisDB,
	})

	return &RedisService{
		Client: client,
		Ctx:    context.Background(),
	}
}

// Set sets a key-value pair with expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// Get gets a value by key
func (s *RedisService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Delete deletes a key
func (s *RedisService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

func dogGraphKey(dogID uint) string {
	return "dog_graph:" + strconv.FormatUint(uint64(dogID), 10)
}

// CacheDogGraph caches a case graph
func (s *RedisService) CacheDogGraph(dogID uint, dog interface{}) error {
	return s.Set(dogGraphKey(dogID), dog, dogGraphTTL)
}

// GetDogGraph reads a cached case graph
func (s *RedisService) GetDogGraph(dogID uint, dest interface{}) error {
	return s.Get(dogGraphKey(dogID), dest)
}

// InvalidateDogGraph drops a cached case graph after a lifecycle mutation
func (s *RedisService) InvalidateDogGraph(dogID uint) error {
	return s.Delete(dogGraphKey(dogID))
}
