package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HodeX7/KDJeevraksha/config"
	"github.com/HodeX7/KDJeevraksha/internal/error/code"
	"github.com/HodeX7/KDJeevraksha/internal/error/response"
	"github.com/HodeX7/KDJeevraksha/middleware"
	"github.com/HodeX7/KDJeevraksha/models"
	"github.com/HodeX7/KDJeevraksha/services"
	"github.com/HodeX7/KDJeevraksha/services/container"
)

// DogController handles the case lifecycle endpoints
type DogController struct {
	BaseControllerImpl
}

// NewDogController creates a new dog controller
func (f *ControllerFactory) NewDogController(ctx *gin.Context) *DogController {
	return &DogController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// HandleDogFunc returns a Gin handler dispatching to a dog method
func HandleDogFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	factory := NewControllerFactory(container)
	return func(ctx *gin.Context) {
		controller := factory.NewDogController(ctx)
		switch method {
		case "getDogs":
			controller.GetDogs()
		case "getDog":
			controller.GetDog()
		case "createCase":
			controller.CreateCase()
		case "recordObservation":
			controller.RecordObservation()
		case "updateCatcherDetails":
			controller.UpdateCatcherDetails()
		case "updateVetDetails":
			controller.UpdateVetDetails()
		case "addCareTakerReport":
			controller.AddCareTakerReport()
		case "dispatchDog":
			controller.DispatchDog()
		case "releaseDog":
			controller.ReleaseDog()
		case "getObservable":
			controller.GetObservable()
		case "getDispatchable":
			controller.GetDispatchable()
		case "getReleasable":
			controller.GetReleasable()
		case "getDogByKennel":
			controller.GetDogByKennel()
		case "deleteDog":
			controller.DeleteDog()
		default:
			response.Fail(ctx, code.ErrValidation, nil)
		}
	}
}

func (c *DogController) dogService() services.InterfaceDogService {
	return c.Container.GetService("dog").(services.InterfaceDogService)
}

func (c *DogController) storageService() services.InterfaceStorageService {
	return c.Container.GetService("storage").(services.InterfaceStorageService)
}

func (c *DogController) redisService() services.InterfaceRedisService {
	svc, _ := c.Container.GetService("redis").(services.InterfaceRedisService)
	return svc
}

func (c *DogController) paramDogID() (uint, bool) {
	id, err := strconv.Atoi(c.Context.Param("id"))
	if err != nil || id < 1 {
		response.ParamError(c.Context, "Invalid dog ID")
		return 0, false
	}
	return uint(id), true
}

// afterMutation drops stale cached views of a case after a write
func (c *DogController) afterMutation(dogID uint) {
	middleware.FlushCache()
	if redis := c.redisService(); redis != nil {
		if err := redis.InvalidateDogGraph(dogID); err != nil {
			config.Warning("failed to invalidate cached case graph for dog %d: %v", dogID, err)
		}
	}
}

func formTime(c *gin.Context, field string) *time.Time {
	raw := c.PostForm(field)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func formFloat(c *gin.Context, field string) float64 {
	v, _ := strconv.ParseFloat(c.PostForm(field), 64)
	return v
}

func formBool(c *gin.Context, field string) bool {
	v, _ := strconv.ParseBool(c.PostForm(field))
	return v
}

// saveFormFile stores the single upload under the given field name, if present
func (c *DogController) saveFormFile(field string) (string, error) {
	file, err := c.Context.FormFile(field)
	if err != nil {
		return "", nil
	}
	return c.storageService().Save(file, field)
}

// saveFormFiles stores every upload under the given field name
func (c *DogController) saveFormFiles(field string) ([]string, error) {
	form, err := c.Context.MultipartForm()
	if err != nil {
		return nil, nil
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	return c.storageService().SaveAll(files, field)
}

// GetDogs lists one page of cases with their full graphs
// @Summary      List Cases
// @Tags         Dogs
// @Produce      json
// @Param        pageNum query int false "Page number (default 1)"
// @Param        pageSize query int false "Page size (default 20, max 100)"
// @Param        desc query bool false "Newest first"
// @Success      200  {object}  response.Response
// @Router       /dogs [get]
// @Security     BearerAuth
func (c *DogController) GetDogs() {
	var query models.PaginationQuery
	if err := c.Context.ShouldBindQuery(&query); err != nil {
		response.ParamError(c.Context, "Invalid pagination parameters")
		return
	}

	dogs, page, err := c.dogService().ListDogs(query)
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}
	response.Success(c.Context, gin.H{"dogs": dogs, "pagination": page})
}

// GetDog returns one case, served from the graph cache when possible
// @Summary      Get Case By ID
// @Tags         Dogs
// @Produce      json
// @Param        id path int true "Dog ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /dogs/{id} [get]
// @Security     BearerAuth
func (c *DogController) GetDog() {
	id, ok := c.paramDogID()
	if !ok {
		return
	}

	if redis := c.redisService(); redis != nil {
		var cached models.Dog
		if err := redis.GetDogGraph(id, &cached); err == nil {
			response.Success(c.Context, cached)
			return
		}
	}

	dog, err := c.dogService().GetDog(id)
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}

	if redis := c.redisService(); redis != nil {
		if err := redis.CacheDogGraph(id, dog); err != nil {
			config.Warning("failed to cache case graph for dog %d: %v", id, err)
		}
	}
	response.Success(c.Context, dog)
}

// CreateCase registers a newly caught dog
// @Summary      Create Case
// @Description  Record an intake with the catcher's capture data and spot photos
// @Tags         Dogs
// @Accept       multipart/form-data
// @Produce      json
// @Param        catching_location formData string true "Capture location"
// @Param        location_details formData string false "Location details"
// @Param        catching_date formData string false "Capture date (RFC3339 or YYYY-MM-DD)"
// @Param        dog_image formData file false "Spot photo"
// @Success      201  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /dogs [post]
// @Security     BearerAuth
func (c *DogController) CreateCase() {
	actor, ok := middleware.ActorClaims(c.Context)
	if !ok {
		response.Unauthorized(c.Context, "Missing authentication")
		return
	}

	input := services.IntakeInput{
		CatchingLocation: c.Context.PostForm("catching_location"),
		LocationDetails:  c.Context.PostForm("location_details"),
		CatchingDate:     formTime(c.Context, "catching_date"),
	}
	if input.CatchingLocation == "" {
		response.ParamError(c.Context, "catching_location is required")
		return
	}

	var err error
	if input.SpotPhoto, err = c.saveFormFile("dog_image"); err != nil {
		response.HandleError(c.Context, err)
		return
	}
	if input.AdditionalPhotos, err = c.saveFormFiles("additional_images"); err != nil {
		response.HandleError(c.Context, err)
		return
	}

	dog, err := c.dogService().CreateCase(actor, input)
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}

	c.afterMutation(dog.ID)
	response.Created(c.Context, "Case created successfully", dog)
}

// RecordObservation houses a case and records its descriptive attributes
// @Summary      Record Initial Observation
// @Description  Assign a kennel (requested by number, or the first free one) and describe the dog
// @Tags         Dogs
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path int true "Dog ID"
// @Param        kennel_number formData int false "Requested kennel number"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /dogs/{id}/observation [post]
// @Security     BearerAuth
func (c *DogController) RecordObservation() {
	id, ok := c.paramDogID()
	if !ok {
		return
	}

	input := services.ObservationInput{
		DogName:     c.Context.PostForm("dog_name"),
		Breed:       c.Context.PostForm("breed"),
		MainColor:   c.Context.PostForm("main_color"),
		Description: c.Context.PostForm("description"),
		Gender:      c.Context.PostForm("gender"),
		Aggression:  formBool(c.Context, "aggression"),
	}
	input.Age, _ = strconv.Atoi(c.Context.PostForm("age"))
	if raw := c.Context.PostForm("kennel_number"); raw != "" {
		number, err := strconv.Atoi(raw)
		if err != nil {
			response.ParamError(c.Context, "Invalid kennel number")
			return
		}
		input.KennelNumber = &number
	}

	var err error
	if input.KennelPhoto, err = c.saveFormFile("kennel_photo"); err != nil {
		response.HandleError(c.Context, err)
		return
	}
	if input.AdditionalKennelPhotos, err = c.saveFormFiles("additional_kennel_photos"); err != nil {
		response.HandleError(c.Context, err)
		return
	}

	dog, svcErr := c.dogService().RecordInitialObservation(id, input)
	if svcErr != nil {
		response.HandleError(c.Context, svcErr)
		return
	}

	c.afterMutation(id)
	response.SuccessWithMessage(c.Context, "Observation recorded successfully", dog)
}

// UpdateCatcherDetails edits a case's capture metadata
// @Summary      Update Catcher Details
// @Tags         Dogs
// @Accept       json
// @Produce      json
// @Param        id path int true "Dog ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /dogs/{id}/catcher [put]
// @Security     BearerAuth
func (c *DogController) UpdateCatcherDetails() {
	id, ok := c.paramDogID()
	if !ok {
		return
	}

	var updates models.Catcher
	if err := c.Context.ShouldBindJSON(&updates); err != nil {
		response.ParamError(c.Context, "Invalid request parameters")
		return
	}

	catcher, err := c.dogService().UpdateCatcherDetails(id, updates)
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}

	c.afterMutation(id)
	response.Success(c.Context, catcher)
}

// UpdateVetDetails applies one veterinary submission
// @Summary      Update Vet Details
// @Description  First submission moves the case to UnderTreatment, later ones to Operated
// @Tags         Dogs
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path int true "Dog ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /dogs/{id}/vet [put]
// @Security     BearerAuth
func (c *DogController) UpdateVetDetails() {
	actor, ok := middleware.ActorClaims(c.Context)
	if !ok {
		response.Unauthorized(c.Context, "Missing authentication")
		return
	}

	id, ok := c.paramDogID()
	if !ok {
		return
	}

	input := services.VetUpdateInput{
		Details: services.VetDetails{
			DogWeight:     formFloat(c.Context, "dog_weight"),
			Temperature:   formFloat(c.Context, "temperature"),
			SkinCondition: c.Context.PostForm("skin_condition"),
			SurgeryDate:   formTime(c.Context, "surgery_date"),
			Procedure:     c.Context.PostForm("procedure"),
			EarNotched:    c.Context.PostForm("ear_notched"),
			Observations:  c.Context.PostForm("observations"),
			ARV:           formBool(c.Context, "arv"),
			Xylazine:      c.Context.PostForm("xylazine"),
			Dexa:          c.Context.PostForm("dexa"),
			Melonex:       c.Context.PostForm("melonex"),
			Atropine:      c.Context.PostForm("atropine"),
			Enrodac:       c.Context.PostForm("enrodac"),
			Prednisolone:  c.Context.PostForm("prednisolone"),
			Ketamin:       c.Context.PostForm("ketamin"),
			Stadren:       c.Context.PostForm("stadren"),
			Dicrysticin:   c.Context.PostForm("dicrysticin"),
		},
	}

	var err error
	if input.SurgeryPhoto, err = c.saveFormFile("surgery_photo"); err != nil {
		response.HandleError(c.Context, err)
		return
	}
	if input.AdditionalPhotos, err = c.saveFormFiles("additional_photos"); err != nil {
		response.HandleError(c.Context, err)
		return
	}
	if input.SurgeryNotesPhoto, err = c.saveFormFile("surgery_notes_photo"); err != nil {
		response.HandleError(c.Context, err)
		return
	}
	if input.AdditionalNotesPhotos, err = c.saveFormFiles("additional_notes_photos"); err != nil {
		response.HandleError(c.Context, err)
		return
	}

	dog, svcErr := c.dogService().UpdateVetDetails(actor, id, input)
	if svcErr != nil {
		response.HandleError(c.Context, svcErr)
		return
	}

	c.afterMutation(id)
	response.SuccessWithMessage(c.Context, "Vet details updated successfully", dog)
}

// AddCareTakerReport appends one daily monitoring report
// @Summary      Add Daily Report
// @Description  Two reports mark the case FitForRelease
// @Tags         Dogs
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path int true "Dog ID"
// @Success      201  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /dogs/{id}/reports [post]
// @Security     BearerAuth
func (c *DogController) AddCareTakerReport() {
	actor, ok := middleware.ActorClaims(c.Context)
	if !ok {
		response.Unauthorized(c.Context, "Missing authentication")
		return
	}

	id, ok := c.paramDogID()
	if !ok {
		return
	}

	input := services.CareTakerReportInput{
		FoodIntake:   c.Context.PostForm("food_intake"),
		WaterIntake:  c.Context.PostForm("water_intake"),
		Antibiotics:  c.Context.PostForm("antibiotics"),
		Painkiller:   c.Context.PostForm("painkiller"),
		Stool:        c.Context.PostForm("stool"),
		Observations: c.Context.PostForm("observations"),
		Date:         formTime(c.Context, "date"),
	}

	var err error
	if input.Photo, err = c.saveFormFile("photo"); err != nil {
		response.HandleError(c.Context, err)
		return
	}

	dog, svcErr := c.dogService().AddCareTakerReport(actor, id, input)
	if svcErr != nil {
		response.HandleError(c.Context, svcErr)
		return
	}

	c.afterMutation(id)
	response.Created(c.Context, "Report added successfully", dog)
}

// DispatchDog marks a case as sent for release
// @Summary      Dispatch Case
// @Tags         Dogs
// @Produce      json
// @Param        id path int true "Dog ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /dogs/{id}/dispatch [post]
// @Security     BearerAuth
func (c *DogController) DispatchDog() {
	id, ok := c.paramDogID()
	if !ok {
		return
	}

	dog, err := c.dogService().Dispatch(id)
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}

	c.afterMutation(id)
	response.SuccessWithMessage(c.Context, "Dog dispatched successfully", dog)
}

// ReleaseRequest carries the release site
type ReleaseRequest struct {
	ReleaseLocation string `json:"release_location" binding:"required" example:"Kothrud, Pune"`
}

// ReleaseDog closes a case and frees its kennel
// @Summary      Release Case
// @Tags         Dogs
// @Accept       json
// @Produce      json
// @Param        id path int true "Dog ID"
// @Param        request body ReleaseRequest true "Release parameters"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /dogs/{id}/release [post]
// @Security     BearerAuth
func (c *DogController) ReleaseDog() {
	id, ok := c.paramDogID()
	if !ok {
		return
	}

	var req ReleaseRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Context, "Invalid request parameters")
		return
	}

	dog, err := c.dogService().Release(id, req.ReleaseLocation)
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}

	c.afterMutation(id)
	response.SuccessWithMessage(c.Context, "Dog released successfully", dog)
}

// GetObservable lists cases awaiting their initial observation
// @Summary      List Observable Cases
// @Tags         Dogs
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /dogs/observable [get]
// @Security     BearerAuth
func (c *DogController) GetObservable() {
	dogs, err := c.dogService().ListObservable()
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}
	response.Success(c.Context, dogs)
}

// GetDispatchable lists cases whose post-surgery wait has elapsed
// @Summary      List Dispatchable Cases
// @Tags         Dogs
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /dogs/dispatchable [get]
// @Security     BearerAuth
func (c *DogController) GetDispatchable() {
	dogs, err := c.dogService().ListDispatchable()
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}
	response.Success(c.Context, dogs)
}

// GetReleasable lists dispatched cases not yet released
// @Summary      List Releasable Cases
// @Tags         Dogs
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /dogs/releasable [get]
// @Security     BearerAuth
func (c *DogController) GetReleasable() {
	dogs, err := c.dogService().ListReleasable()
	if err != nil {
		response.HandleError(c.Context, err)
		return
	}
	response.Success(c.Context, dogs)
}

// GetDogByKennel returns the active case housed in a kennel
// @Summary      Get Case By Kennel Number
// @Tags         Dogs
// @Produce      json
// @Param        number path int true "Kennel number"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /dogs/kennel/{number} [get]
// @Security     BearerAuth
func (c *DogController) GetDogByKennel() {
	number, err := strconv.Atoi(c.Context.Param("number"))
	if err != nil {
		response.ParamError(c.Context, "Invalid kennel number")
		return
	}

	dog, svcErr := c.dogService().GetDogByKennelNumber(number)
	if svcErr != nil {
		response.HandleError(c.Context, svcErr)
		return
	}
	response.Success(c.Context, dog)
}

// DeleteDog removes a case and frees its kennel
// @Summary      Delete Case
// @Tags         Dogs
// @Produce      json
// @Param        id path int true "Dog ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /dogs/{id} [delete]
// @Security     BearerAuth
func (c *DogController) DeleteDog() {
	id, ok := c.paramDogID()
	if !ok {
		return
	}

	if err := c.dogService().DeleteDog(id); err != nil {
		response.HandleError(c.Context, err)
		return
	}

	c.afterMutation(id)
	response.SuccessWithMessage(c.Context, "Dog deleted successfully", nil)
}
