package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HodeX7/KDJeevraksha/internal/error/code"
	"github.com/HodeX7/KDJeevraksha/internal/error/response"
	"github.com/HodeX7/KDJeevraksha/models"
	"github.com/HodeX7/KDJeevraksha/services"
	"github.com/HodeX7/KDJeevraksha/services/container"
)

// UserController handles staff account management
type UserController struct {
	BaseControllerImpl
}

// NewUserController creates a new user controller
func (f *ControllerFactory) NewUserController(ctx *gin.Context) *UserController {
	return &UserController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// HandleUserFunc returns a Gin handler dispatching to a user method
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	factory := NewControllerFactory(container)
	return func(ctx *gin.Context) {
		controller := factory.NewUserController(ctx)
		switch method {
		case "getUsers":
			controller.GetUsers()
		case "getUser":
			controller.GetUser()
		case "updateUser":
			controller.UpdateUser()
		case "deleteUser":
			controller.DeleteUser()
		default:
			response.Fail(ctx, code.ErrValidation, nil)
		}
	}
}

func (c *UserController) userService() services.InterfaceUserService {
	return c.Container.GetService("user").(services.InterfaceUserService)
}

func (c *UserController) paramID() (uint, bool) {
	id, err := strconv.Atoi(c.Context.Param("id"))
	if err != nil || id < 1 {
		response.ParamError(c.Context, "Invalid ID parameter")
		return 0, false
	}
	return uint(id), true
}

// GetUsers lists one page of staff accounts
// @Summary      List Staff
// @Tags         Users
// @Produce      json
// @Param        pageNum query int false "Page number (default 1)"
// @Param        pageSize query int false "Page size (default 20, max 100)"
// @Param        desc query bool false "Newest first"
// @Success      200  {object}  response.Response
// @Router       /users [get]
// @Security     BearerAuth
func (c *UserController) GetUsers() {
	var query models.PaginationQuery
	if err := c.Context.ShouldBindQuery(&query); err != nil {
		response.ParamError(c.Context, "Invalid pagination parameters")
		return
	}

	users, page, err := c.userService().ListUsers(query)
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}
	response.Success(c.Context, gin.H{"users": users, "pagination": page})
}

// GetUser returns one staff account
// @Summary      Get Staff By ID
// @Tags         Users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /users/{id} [get]
// @Security     BearerAuth
func (c *UserController) GetUser() {
	id, ok := c.paramID()
	if !ok {
		return
	}

	user, err := c.userService().GetUser(id)
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}
	response.Success(c.Context, user)
}

// UpdateUser updates a staff account
// @Summary      Update Staff
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /users/{id} [put]
// @Security     BearerAuth
func (c *UserController) UpdateUser() {
	id, ok := c.paramID()
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.Context.ShouldBindJSON(&updates); err != nil {
		response.ParamError(c.Context, "Invalid request parameters")
		return
	}
	// Credentials are only writable through the PIN flow.
	delete(updates, "password")
	delete(updates, "access_token")

	user, err := c.userService().UpdateUser(id, updates)
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}
	response.Success(c.Context, user)
}

// DeleteUser removes a staff account
// @Summary      Delete Staff
// @Tags         Users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /users/{id} [delete]
// @Security     BearerAuth
func (c *UserController) DeleteUser() {
	id, ok := c.paramID()
	if !ok {
		return
	}

	if err := c.userService().DeleteUser(id); err != nil {
		response.HandleError(c.Context, err)
		return
	}
	response.SuccessWithMessage(c.Context, "User deleted successfully", nil)
}
