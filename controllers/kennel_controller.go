package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HodeX7/KDJeevraksha/internal/error/code"
	"github.com/HodeX7/KDJeevraksha/internal/error/response"
	"github.com/HodeX7/KDJeevraksha/services"
	"github.com/HodeX7/KDJeevraksha/services/container"
)

// KennelController handles the kennel pool endpoints
type KennelController struct {
	BaseControllerImpl
}

// NewKennelController creates a new kennel controller
func (f *ControllerFactory) NewKennelController(ctx *gin.Context) *KennelController {
	return &KennelController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// HandleKennelFunc returns a Gin handler dispatching to a kennel method
func HandleKennelFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	factory := NewControllerFactory(container)
	return func(ctx *gin.Context) {
		controller := factory.NewKennelController(ctx)
		switch method {
		case "createKennel":
			controller.CreateKennel()
		case "getKennels":
			controller.GetKennels()
		case "getKennel":
			controller.GetKennel()
		default:
			response.Fail(ctx, code.ErrValidation, nil)
		}
	}
}

func (c *KennelController) kennelService() services.InterfaceKennelService {
	return c.Container.GetService("kennel").(services.InterfaceKennelService)
}

// CreateKennel adds a kennel to the pool
// @Summary      Create Kennel
// @Description  Create a new kennel numbered one past the current highest
// @Tags         Kennels
// @Produce      json
// @Success      201  {object}  response.Response
// @Router       /kennels [post]
// @Security     BearerAuth
func (c *KennelController) CreateKennel() {
	kennel, err := c.kennelService().CreateKennel()
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}
	response.Created(c.Context, "Kennel created successfully", kennel)
}

// GetKennels lists the kennel pool
// @Summary      List Kennels
// @Tags         Kennels
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /kennels [get]
// @Security     BearerAuth
func (c *KennelController) GetKennels() {
	kennels, err := c.kennelService().ListKennels()
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}
	response.Success(c.Context, kennels)
}

// GetKennel looks a kennel up by its human-facing number
// @Summary      Get Kennel By Number
// @Tags         Kennels
// @Produce      json
// @Param        number path int true "Kennel number"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /kennels/{number} [get]
// @Security     BearerAuth
func (c *KennelController) GetKennel() {
	number, err := strconv.Atoi(c.Context.Param("number"))
	if err != nil {
		response.ParamError(c.Context, "Invalid kennel number")
		return
	}

	kennel, svcErr := c.kennelService().GetByNumber(number)
	if svcErr != nil {
		response.HandleError(c.Context, svcErr)
		return
	}
	response.Success(c.Context, kennel)
}
