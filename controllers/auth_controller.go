package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/HodeX7/KDJeevraksha/internal/error/code"
	"github.com/HodeX7/KDJeevraksha/internal/error/response"
	"github.com/HodeX7/KDJeevraksha/models"
	"github.com/HodeX7/KDJeevraksha/services"
	"github.com/HodeX7/KDJeevraksha/services/container"
)

// AuthController handles staff registration and the PIN-based login flow
type AuthController struct {
	BaseControllerImpl
}

// NewAuthController creates a new auth controller
func (f *ControllerFactory) NewAuthController(ctx *gin.Context) *AuthController {
	return &AuthController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// HandleAuthFunc returns a Gin handler dispatching to an auth method
func HandleAuthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	factory := NewControllerFactory(container)
	return func(ctx *gin.Context) {
		controller := factory.NewAuthController(ctx)
		switch method {
		case "signup":
			controller.Signup()
		case "login":
			controller.Login()
		case "setPin":
			controller.SetPin()
		case "enterPin":
			controller.EnterPin()
		default:
			response.Fail(ctx, code.ErrValidation, nil)
		}
	}
}

// SignupRequest registers a new staff account
type SignupRequest struct {
	Name          string `json:"name" binding:"required" example:"Manoj"`
	ContactNumber string `json:"contact_number" binding:"required" example:"9876543210"`
	Role          string `json:"role" binding:"required" example:"catcher"`
}

// LoginRequest starts the login flow for a contact number
type LoginRequest struct {
	ContactNumber string `json:"contact_number" binding:"required" example:"9876543210"`
}

// PinRequest carries a contact number and PIN
type PinRequest struct {
	ContactNumber string `json:"contact_number" binding:"required" example:"9876543210"`
	Pin           string `json:"password" binding:"required" example:"1234"`
}

func (c *AuthController) userService() services.InterfaceUserService {
	return c.Container.GetService("user").(services.InterfaceUserService)
}

// Signup registers a staff account
// @Summary      Register Staff Account
// @Description  Create a new inactive staff account; the user activates it by generating a PIN
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup parameters"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /auth/signup [post]
func (c *AuthController) Signup() {
	var req SignupRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Context, "Invalid request parameters")
		return
	}

	user, err := c.userService().Signup(req.Name, req.ContactNumber, models.Role(req.Role))
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}

	response.Created(c.Context, "User created successfully, PIN Generation is needed", gin.H{
		"id":             user.ID,
		"name":           user.Name,
		"contact_number": user.ContactNumber,
		"role":           user.Role,
	})
}

// Login starts the login flow
// @Summary      Start Login
// @Description  Check a contact number and report whether a PIN must still be generated
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login parameters"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /auth/login [post]
func (c *AuthController) Login() {
	var req LoginRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Context, "Invalid request parameters")
		return
	}

	state, err := c.userService().Login(req.ContactNumber)
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}

	message := "Enter PIN"
	if state.NeedsPin {
		message = "Pin needs to be generated"
	}
	response.SuccessWithMessage(c.Context, message, state)
}

// SetPin creates the user's PIN and activates the account
// @Summary      Set PIN
// @Description  Store the PIN for an account, activate it and return the access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body PinRequest true "PIN parameters"
// @Success      201  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /auth/setpin [post]
func (c *AuthController) SetPin() {
	var req PinRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Context, "Invalid request parameters")
		return
	}

	result, err := c.userService().SetPin(req.ContactNumber, req.Pin)
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}

	response.Created(c.Context, "PIN created successfully", result)
}

// EnterPin verifies the PIN and returns the access token
// @Summary      Enter PIN
// @Description  Verify the PIN and return the long-lived access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body PinRequest true "PIN parameters"
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /auth/enterpin [post]
func (c *AuthController) EnterPin() {
	var req PinRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Context, "Invalid request parameters")
		return
	}

	result, err := c.userService().EnterPin(req.ContactNumber, req.Pin)
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}

	response.SuccessWithMessage(c.Context, "Login successful", result)
}
