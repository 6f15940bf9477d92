package services

import (
	"fmt"
	"path"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/HodeX7/KDJeevraksha/config"
	"github.com/HodeX7/KDJeevraksha/internal/error/code"
	"github.com/HodeX7/KDJeevraksha/models"
)

const reportSheet = "Dogs Report"

// InterfaceReportService defines the report export interface
type InterfaceReportService interface {
	BuildCaseReport(dogs []models.Dog) (*excelize.File, error)
}

// ReportService renders fully-populated case graphs into a downloadable XLSX
// workbook, one row per case, with photo cells hyperlinked against the public
// base URL.
type ReportService struct {
	Config *config.Config
}

// NewReportService creates a new report service
func NewReportService(cfg *config.Config) InterfaceReportService {
	return &ReportService{Config: cfg}
}

// reportCell is either a plain value or a hyperlinked file reference
type reportCell struct {
	Value interface{}
	Link  string
}

// BuildCaseReport builds the workbook for the given cases
func (s *ReportService) BuildCaseReport(dogs []models.Dog) (*excelize.File, error) {
	file := excelize.NewFile()
	file.SetSheetName(file.GetSheetName(0), reportSheet)

	var headers []string
	seen := map[string]bool{}
	rows := make([]map[string]reportCell, 0, len(dogs))

	for _, dog := range dogs {
		row := s.caseRow(&dog)
		for _, h := range s.caseHeaders(&dog) {
			if !seen[h] {
				seen[h] = true
				headers = append(headers, h)
			}
		}
		rows = append(rows, row)
	}

	linkStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0000FF", Underline: "single"},
	})
	if err != nil {
		return nil, code.Newf(code.ErrUnknown, "failed to create report style: %v", err)
	}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(reportSheet, cell, header); err != nil {
			return nil, code.Newf(code.ErrUnknown, "failed to write report header: %v", err)
		}
	}

	for rowIdx, row := range rows {
		for col, header := range headers {
			cellValue, ok := row[header]
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err := file.SetCellValue(reportSheet, cell, cellValue.Value); err != nil {
				return nil, code.Newf(code.ErrUnknown, "failed to write report cell: %v", err)
			}
			if cellValue.Link != "" {
				if err := file.SetCellHyperLink(reportSheet, cell, cellValue.Link, "External"); err != nil {
					return nil, code.Newf(code.ErrUnknown, "failed to link report cell: %v", err)
				}
				file.SetCellStyle(reportSheet, cell, cell, linkStyle)
			}
		}
	}

	return file, nil
}

// caseHeaders lists the row's column order for one case
func (s *ReportService) caseHeaders(dog *models.Dog) []string {
	headers := []string{"Case Number", "Dog's Main Color", "Dog Gender", "Description", "Status"}

	if dog.CatcherDetails != nil {
		headers = append(headers,
			"Catcher's Name", "Catcher's Contact Number",
			"Catching Location", "Catching Location Details",
			"Releasing Location", "Catched At", "Spot Photo")
	}
	if dog.VetDetails != nil {
		headers = append(headers,
			"Vet's Name", "Vet's Contact Number", "Surgery Date", "Surgery Photo",
			"Dog Weight", "Temperature", "Skin Condition", "Procedure",
			"Ear Notched", "Observations", "ARV")
	}
	if dog.CareTakerDetails != nil {
		headers = append(headers, "Caretaker's Name", "Caretaker's Contact Number")
		for idx := range dog.CareTakerDetails.Reports {
			day := strconv.Itoa(idx + 1)
			headers = append(headers,
				"Day "+day+" Food Intake", "Day "+day+" Water Intake",
				"Day "+day+" Stool", "Day "+day+" Antibiotics",
				"Day "+day+" Painkiller", "Day "+day+" Photo")
		}
	}
	return headers
}

// caseRow flattens one case graph into report cells
func (s *ReportService) caseRow(dog *models.Dog) map[string]reportCell {
	row := map[string]reportCell{
		"Case Number":      {Value: dog.CaseNumber},
		"Dog's Main Color": {Value: dog.MainColor},
		"Dog Gender":       {Value: dog.Gender},
		"Description":      {Value: dog.Description},
		"Status":           {Value: string(dog.Status)},
	}

	if c := dog.CatcherDetails; c != nil {
		if c.User != nil {
			row["Catcher's Name"] = reportCell{Value: c.User.Name}
			row["Catcher's Contact Number"] = reportCell{Value: c.User.ContactNumber}
		}
		row["Catching Location"] = reportCell{Value: c.CatchingLocation}
		row["Catching Location Details"] = reportCell{Value: c.LocationDetails}
		row["Releasing Location"] = reportCell{Value: c.ReleasingLocation}
		row["Catched At"] = reportCell{Value: c.CreatedAt.String()}
		row["Spot Photo"] = s.photoCell(dog.DogImage)
	}

	if v := dog.VetDetails; v != nil {
		if v.User != nil {
			row["Vet's Name"] = reportCell{Value: v.User.Name}
			row["Vet's Contact Number"] = reportCell{Value: v.User.ContactNumber}
		}
		if v.SurgeryDate != nil {
			row["Surgery Date"] = reportCell{Value: v.SurgeryDate.String()}
		}
		row["Surgery Photo"] = s.photoCell(v.SurgeryPhoto)
		row["Dog Weight"] = reportCell{Value: v.DogWeight}
		row["Temperature"] = reportCell{Value: v.Temperature}
		row["Skin Condition"] = reportCell{Value: v.SkinCondition}
		row["Procedure"] = reportCell{Value: v.Procedure}
		row["Ear Notched"] = reportCell{Value: v.EarNotched}
		row["Observations"] = reportCell{Value: v.Observations}
		row["ARV"] = reportCell{Value: v.ARV}
	}

	if ct := dog.CareTakerDetails; ct != nil {
		if ct.User != nil {
			row["Caretaker's Name"] = reportCell{Value: ct.User.Name}
			row["Caretaker's Contact Number"] = reportCell{Value: ct.User.ContactNumber}
		}
		for idx, report := range ct.Reports {
			day := strconv.Itoa(idx + 1)
			row["Day "+day+" Food Intake"] = reportCell{Value: report.FoodIntake}
			row["Day "+day+" Water Intake"] = reportCell{Value: report.WaterIntake}
			row["Day "+day+" Stool"] = reportCell{Value: report.Stool}
			row["Day "+day+" Antibiotics"] = reportCell{Value: report.Antibiotics}
			row["Day "+day+" Painkiller"] = reportCell{Value: report.Painkiller}
			row["Day "+day+" Photo"] = s.photoCell(report.Photo)
		}
	}

	return row
}

// photoCell renders a stored photo path as its file name hyperlinked against
// the public base URL; empty paths stay empty cells.
func (s *ReportService) photoCell(photoPath string) reportCell {
	if photoPath == "" {
		return reportCell{Value: ""}
	}
	return reportCell{
		Value: path.Base(photoPath),
		Link:  fmt.Sprintf("%s%s", s.Config.PublicBaseURL, photoPath),
	}
}
