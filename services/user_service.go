package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/HodeX7/KDJeevraksha/config"
	"github.com/HodeX7/KDJeevraksha/internal/error/code"
	"github.com/HodeX7/KDJeevraksha/models"
	"github.com/HodeX7/KDJeevraksha/utils"
)

// LoginState tells the client what the next authentication step is
type LoginState struct {
	NeedsPin      bool   `json:"needs_pin"`
	IsActive      bool   `json:"is_active"`
	ContactNumber string `json:"contact_number"`
}

// AuthResult is returned after a successful PIN entry or PIN creation
type AuthResult struct {
	Token string      `json:"token"`
	Role  models.Role `json:"role"`
	Name  string      `json:"name"`
}

// InterfaceUserService defines the staff account service interface
type InterfaceUserService interface {
	ListUsers(query models.PaginationQuery) ([]models.User, models.PaginationResult, error)
	GetUser(id uint) (*models.User, error)
	UpdateUser(id uint, updates map[string]interface{}) (*models.User, error)
	DeleteUser(id uint) error
	Signup(name, contactNumber string, role models.Role) (*models.User, error)
	Login(contactNumber string) (*LoginState, error)
	SetPin(contactNumber, pin string) (*AuthResult, error)
	EnterPin(contactNumber, pin string) (*AuthResult, error)
}

// UserService manages staff accounts. Accounts are registered by an admin
// with just a name, contact number and role; the staff member activates the
// account by generating a PIN from their phone.
type UserService struct {
	DB     *gorm.DB
	Config *config.Config
	JWT    InterfaceJWTService
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, cfg *config.Config, jwtService InterfaceJWTService) InterfaceUserService {
	return &UserService{
		DB:     db,
		Config: cfg,
		JWT:    jwtService,
	}
}

// ListUsers returns one page of staff accounts
func (s *UserService) ListUsers(query models.PaginationQuery) ([]models.User, models.PaginationResult, error) {
	query.Normalize()

	var total int64
	if err := s.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, models.PaginationResult{}, code.Newf(code.ErrDatabase, "failed to count users: %v", err)
	}

	order := "id"
	if query.Desc {
		order = "id DESC"
	}

	var users []models.User
	err := s.DB.Order(order).
		Offset(query.Offset()).
		Limit(query.PageSize).
		Find(&users).Error
	if err != nil {
		return nil, models.PaginationResult{}, code.Newf(code.ErrDatabase, "failed to list users: %v", err)
	}
	return users, models.NewPaginationResult(int(total), query.PageNum, query.PageSize), nil
}

// GetUser returns one staff account
func (s *UserService) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.New(code.ErrUserNotFound)
		}
		return nil, code.Newf(code.ErrDatabase, "failed to load user: %v", err)
	}
	return &user, nil
}

// UpdateUser applies field updates, re-validating role and contact uniqueness
func (s *UserService) UpdateUser(id uint, updates map[string]interface{}) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if role, ok := updates["role"].(string); ok && !models.Role(role).Valid() {
		return nil, code.New(code.ErrUserRoleInvalid)
	}

	if contact, ok := updates["contact_number"].(string); ok && contact != user.ContactNumber {
		var count int64
		if err := s.DB.Model(&models.User{}).
			Where("contact_number = ? AND id != ?", contact, id).
			Count(&count).Error; err != nil {
			return nil, code.Newf(code.ErrDatabase, "failed to check contact number: %v", err)
		}
		if count > 0 {
			return nil, code.New(code.ErrUserAlreadyExist)
		}
	}

	if err := s.DB.Model(user).Updates(updates).Error; err != nil {
		return nil, code.Newf(code.ErrDatabase, "failed to update user: %v", err)
	}
	return s.GetUser(id)
}

// DeleteUser removes a staff account
func (s *UserService) DeleteUser(id uint) error {
	user, err := s.GetUser(id)
	if err != nil {
		return err
	}
	if err := s.DB.Delete(user).Error; err != nil {
		return code.Newf(code.ErrDatabase, "failed to delete user: %v", err)
	}
	return nil
}

// Signup registers a new inactive staff account without a PIN
func (s *UserService) Signup(name, contactNumber string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, code.New(code.ErrUserRoleInvalid)
	}

	var count int64
	if err := s.DB.Model(&models.User{}).
		Where("contact_number = ?", contactNumber).
		Count(&count).Error; err != nil {
		return nil, code.Newf(code.ErrDatabase, "failed to check contact number: %v", err)
	}
	if count > 0 {
		return nil, code.New(code.ErrUserAlreadyExist)
	}

	user := &models.User{
		Name:          name,
		ContactNumber: contactNumber,
		Role:          role,
		IsActive:      false,
	}
	if err := s.DB.Create(user).Error; err != nil {
		return nil, code.Newf(code.ErrDatabase, "failed to create user: %v", err)
	}
	return user, nil
}

// Login checks the contact number and reports whether a PIN must still be
// generated before the user can authenticate.
func (s *UserService) Login(contactNumber string) (*LoginState, error) {
	user, err := s.findByContact(contactNumber)
	if err != nil {
		return nil, err
	}

	return &LoginState{
		NeedsPin:      !user.IsActive,
		IsActive:      user.IsActive,
		ContactNumber: user.ContactNumber,
	}, nil
}

// SetPin stores the user's PIN hash, activates the account and hands out the
// access token.
func (s *UserService) SetPin(contactNumber, pin string) (*AuthResult, error) {
	user, err := s.findByContact(contactNumber)
	if err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(pin)
	if err != nil {
		return nil, code.Newf(code.ErrUnknown, "failed to hash PIN: %v", err)
	}

	if err := s.DB.Model(user).Updates(map[string]interface{}{
		"password":  hashed,
		"is_active": true,
	}).Error; err != nil {
		return nil, code.Newf(code.ErrDatabase, "failed to store PIN: %v", err)
	}
	user.Password = hashed
	user.IsActive = true

	token, err := s.JWT.EnsureUserToken(user)
	if err != nil {
		return nil, code.Newf(code.ErrUnknown, "failed to issue token: %v", err)
	}

	return &AuthResult{Token: token, Role: user.Role, Name: user.Name}, nil
}

// EnterPin verifies the PIN and returns the (reused or refreshed) access token
func (s *UserService) EnterPin(contactNumber, pin string) (*AuthResult, error) {
	user, err := s.findByContact(contactNumber)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, code.New(code.ErrUserInactive)
	}

	if !utils.CheckPasswordHash(pin, user.Password) {
		return nil, code.New(code.ErrUserPinIncorrect)
	}

	token, err := s.JWT.EnsureUserToken(user)
	if err != nil {
		return nil, code.Newf(code.ErrUnknown, "failed to issue token: %v", err)
	}

	return &AuthResult{Token: token, Role: user.Role, Name: user.Name}, nil
}

func (s *UserService) findByContact(contactNumber string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("contact_number = ?", contactNumber).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.New(code.ErrUserNotFound)
		}
		return nil, code.Newf(code.ErrDatabase, "failed to load user: %v", err)
	}
	return &user, nil
}
