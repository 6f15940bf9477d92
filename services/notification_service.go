package services

import (
	"encoding/json"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/HodeX7/KDJeevraksha/config"
	"github.com/HodeX7/KDJeevraksha/models"
)

// Topic for case lifecycle events consumed by the field apps
const TopicCaseStatus = "rescue/case/status"

// CaseStatusMessage is the event published on every lifecycle transition
type CaseStatusMessage struct {
	CaseNumber string           `json:"case_number"`
	Status     models.DogStatus `json:"status"`
	Timestamp  int64            `json:"timestamp"`
}

// InterfaceNotificationService defines the field notification interface
type InterfaceNotificationService interface {
	Connect() error
	Disconnect()
	PublishCaseStatus(caseNumber string, status models.DogStatus)
}

// NotificationService pushes case lifecycle events over MQTT so catcher and
// caretaker phones learn about dispatch and release without polling. The
// service is a no-op when no broker is configured.
type NotificationService struct {
	Config         *config.Config
	Client         mqtt.Client
	isConnected    bool
	connectedMutex sync.RWMutex
	publishMutex   sync.Mutex
}

// NewNotificationService creates a new notification service
func NewNotificationService(cfg *config.Config) InterfaceNotificationService {
	return &NotificationService{Config: cfg}
}

// Connect establishes the broker connection. Returns nil without connecting
// when no broker URL is configured.
func (s *NotificationService) Connect() error {
	if s.Config.MQTTBrokerURL == "" {
		return nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.Config.MQTTBrokerURL)
	opts.SetClientID(s.Config.MQTTClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		s.setConnected(false)
		config.Warning("MQTT connection lost: %v", err)
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		s.setConnected(true)
		config.Info("MQTT connected to %s", s.Config.MQTTBrokerURL)
	})

	s.Client = mqtt.NewClient(opts)
	token := s.Client.Connect()
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	s.setConnected(true)
	return nil
}

// Disconnect closes the broker connection
func (s *NotificationService) Disconnect() {
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
	s.setConnected(false)
}

// PublishCaseStatus publishes one lifecycle event. Failures are logged and
// swallowed: notifications never fail a transition that already committed.
func (s *NotificationService) PublishCaseStatus(caseNumber string, status models.DogStatus) {
	if !s.connected() {
		return
	}

	msg := CaseStatusMessage{
		CaseNumber: caseNumber,
		Status:     status,
		Timestamp:  time.Now().Unix(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		config.Error("failed to marshal case status message: %v", err)
		return
	}

	s.publishMutex.Lock()
	defer s.publishMutex.Unlock()

	token := s.Client.Publish(TopicCaseStatus, 1, false, payload)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		config.Error("failed to publish case status for %s: %v", caseNumber, token.Error())
	}
}

func (s *NotificationService) connected() bool {
	s.connectedMutex.RLock()
	defer s.connectedMutex.RUnlock()
	return s.isConnected && s.Client != nil
}

func (s *NotificationService) setConnected(v bool) {
	s.connectedMutex.Lock()
	defer s.connectedMutex.Unlock()
	s.isConnected = v
}
