package container

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/HodeX7/KDJeevraksha/config"
	"github.com/HodeX7/KDJeevraksha/services"
)

// ServiceContainer wires all services and their dependencies together
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config

	jwtService          services.InterfaceJWTService
	userService         services.InterfaceUserService
	kennelService       services.InterfaceKennelService
	caseNumberService   services.InterfaceCaseNumberService
	dogService          services.InterfaceDogService
	storageService      services.InterfaceStorageService
	reportService       services.InterfaceReportService
	redisService        services.InterfaceRedisService
	notificationService services.InterfaceNotificationService

	mu sync.RWMutex
}

// NewServiceContainer creates a new service container
func NewServiceContainer(db *gorm.DB, cfg *config.Config) *ServiceContainer {
	if db == nil {
		panic("database connection is nil")
	}
	if cfg == nil {
		panic("config is nil")
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
	}
	container.initializeServices()
	return container
}

// initializeServices initializes all services
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.jwtService = services.NewJWTService(c.db, c.config)
	c.storageService = services.NewStorageService(c.config)

	// Redis is optional; the dog controller degrades to plain queries when
	// the server is unreachable.
	redisService := services.NewRedisService(c.config)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisService.Client.Ping(ctx).Err(); err != nil {
		config.Warning("Redis unreachable, case graph caching disabled: %v", err)
		c.redisService = nil
	} else {
		c.redisService = redisService
	}

	// MQTT notifications are optional as well.
	notificationService := services.NewNotificationService(c.config)
	if err := notificationService.Connect(); err != nil {
		config.Warning("MQTT connect failed, field notifications disabled: %v", err)
	}
	c.notificationService = notificationService

	c.userService = services.NewUserService(c.db, c.config, c.jwtService)
	c.kennelService = services.NewKennelService(c.db, c.config)
	c.caseNumberService = services.NewCaseNumberService(c.db)

	dogService := services.NewDogService(c.db, c.config, c.caseNumberService, c.kennelService)
	dogService.Notifier = c.notificationService
	c.dogService = dogService

	c.reportService = services.NewReportService(c.config)
}

// GetService returns the service registered under the given name
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "user":
		return c.userService
	case "kennel":
		return c.kennelService
	case "case_number":
		return c.caseNumberService
	case "dog":
		return c.dogService
	case "storage":
		return c.storageService
	case "report":
		return c.reportService
	case "redis":
		if c.redisService == nil {
			return nil
		}
		return c.redisService
	case "notification":
		return c.notificationService
	default:
		return nil
	}
}

// GetDB returns the database connection
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}
