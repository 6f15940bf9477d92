package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HodeX7/KDJeevraksha/internal/error/code"
	"github.com/HodeX7/KDJeevraksha/internal/error/response"
	"github.com/HodeX7/KDJeevraksha/models"
	"github.com/HodeX7/KDJeevraksha/services"
	"github.com/HodeX7/KDJeevraksha/services/container"
)

// ReportController handles XLSX case exports
type ReportController struct {
	BaseControllerImpl
}

// NewReportController creates a new report controller
func (f *ControllerFactory) NewReportController(ctx *gin.Context) *ReportController {
	return &ReportController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// HandleReportFunc returns a Gin handler dispatching to a report method
func HandleReportFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	factory := NewControllerFactory(container)
	return func(ctx *gin.Context) {
		controller := factory.NewReportController(ctx)
		switch method {
		case "exportByIDs":
			controller.ExportByIDs()
		case "exportByDateRange":
			controller.ExportByDateRange()
		default:
			response.Fail(ctx, code.ErrValidation, nil)
		}
	}
}

func (c *ReportController) dogService() services.InterfaceDogService {
	return c.Container.GetService("dog").(services.InterfaceDogService)
}

func (c *ReportController) reportService() services.InterfaceReportService {
	return c.Container.GetService("report").(services.InterfaceReportService)
}

// ExportRequest selects the cases to export
type ExportRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// writeWorkbook streams the workbook as an XLSX attachment
func (c *ReportController) writeWorkbook(dogs []models.Dog) {
	file, err := c.reportService().BuildCaseReport(dogs)
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}

	filename := fmt.Sprintf("dogs-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Context.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Context.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Context.Writer); err != nil {
		response.HandleError(c.Context, code.Newf(code.ErrUnknown, "failed to stream report: %v", err))
		return
	}
	c.Context.Status(http.StatusOK)
}

// ExportByIDs exports the selected cases as an XLSX workbook
// @Summary      Export Cases By ID
// @Tags         Reports
// @Accept       json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        request body ExportRequest true "Case IDs to export"
// @Success      200
// @Failure      404  {object}  response.Response
// @Router       /reports/export [post]
// @Security     BearerAuth
func (c *ReportController) ExportByIDs() {
	var req ExportRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Context, "Invalid request parameters")
		return
	}

	dogs := make([]models.Dog, 0, len(req.IDs))
	for _, id := range req.IDs {
		dog, err := c.dogService().GetDog(id)
		if err != nil {
			response.HandleError(c.Context, err)
			return
		}
		dogs = append(dogs, *dog)
	}

	c.writeWorkbook(dogs)
}

// ExportByDateRange exports every case created inside [start, end]
// @Summary      Export Cases By Date Range
// @Tags         Reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        start query string true "Range start (YYYY-MM-DD)"
// @Param        end query string true "Range end (YYYY-MM-DD)"
// @Success      200
// @Failure      400  {object}  response.Response
// @Router       /reports/export [get]
// @Security     BearerAuth
func (c *ReportController) ExportByDateRange() {
	start, err := time.Parse("2006-01-02", c.Context.Query("start"))
	if err != nil {
		response.ParamError(c.Context, "Invalid start date, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", c.Context.Query("end"))
	if err != nil {
		response.ParamError(c.Context, "Invalid end date, expected YYYY-MM-DD")
		return
	}
	// The range is inclusive of the whole end day.
	end = end.Add(24*time.Hour - time.Nanosecond)
	if end.Before(start) {
		response.ParamError(c.Context, "end date is before start date")
		return
	}

	dogs, svcErr := c.dogService().ListByCreatedRange(start, end)
	if svcErr != nil {
		response.HandleError(c.Context, svcErr)
		return
	}

	c.writeWorkbook(dogs)
}
