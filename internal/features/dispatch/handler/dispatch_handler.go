package handler

import (
	"encoding/json"
	"errors"
	"sort"
	"time"

	"manifest-dispatcher/internal/features/dispatch/domain"
	"manifest-dispatcher/internal/features/dispatch/service"
	manifestadapters "manifest-dispatcher/internal/features/manifest/adapters"
	manifestdomain "manifest-dispatcher/internal/features/manifest/domain"
	manifestservice "manifest-dispatcher/internal/features/manifest/service"

	"github.com/gofiber/fiber/v2"
)

// dateLayout is the expected delivery date format.
const dateLayout = "2006-01-02"

// DispatchHandler handles HTTP requests for manifest preview and dispatch.
type DispatchHandler struct {
	dispatchService *service.Service
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(dispatchService *service.Service) *DispatchHandler {
	return &DispatchHandler{
		dispatchService: dispatchService,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// PreviewResponse carries the enriched manifest records plus the distinct
// regions found, so clients can build an asset assignment form.
type PreviewResponse struct {
	// Records are the enriched delivery records in region order.
	Records []manifestdomain.DeliveryRecord `json:"records"`
	// Regions are the distinct resolved regions, sorted.
	Regions []string `json:"regions"`
}

// RegisterRoutes mounts the dispatch endpoints on the application.
func (h *DispatchHandler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/v1")
	api.Post("/manifest/preview", h.PreviewManifest)
	api.Post("/dispatch", h.Dispatch)
}

// PreviewManifest godoc
// @Summary Preview a delivery manifest
// @Description Extracts and enriches a manifest workbook without submitting anything, returning records with cluster and region annotations
// @Tags dispatch
// @Accept multipart/form-data
// @Produce json
// @Param manifest formData file true "Manifest workbook (.xlsx)"
// @Success 200 {object} PreviewResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/manifest/preview [post]
func (h *DispatchHandler) PreviewManifest(c *fiber.Ctx) error {
	reader, errResp := h.manifestReader(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(*errResp)
	}

	records, err := h.dispatchService.Preview(c.UserContext(), reader)
	if err != nil {
		return h.pipelineError(c, err)
	}

	return c.JSON(PreviewResponse{
		Records: records,
		Regions: distinctRegions(records),
	})
}

// Dispatch godoc
// @Summary Dispatch a delivery manifest
// @Description Runs the full pipeline: extraction, enrichment, order creation, route optimization and path updates, returning the run report
// @Tags dispatch
// @Accept multipart/form-data
// @Produce json
// @Param manifest formData file true "Manifest workbook (.xlsx)"
// @Param date formData string true "Delivery date (YYYY-MM-DD)"
// @Param token formData string true "Remote service API token"
// @Param assignments formData string false "JSON object mapping regions to assets"
// @Success 200 {object} domain.Report
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/dispatch [post]
func (h *DispatchHandler) Dispatch(c *fiber.Ctx) error {
	reader, errResp := h.manifestReader(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(*errResp)
	}

	token := c.FormValue("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "token form field is required",
			RayID:   c.Locals("requestid").(string),
		})
	}

	date, err := time.Parse(dateLayout, c.FormValue("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "date form field must be formatted as YYYY-MM-DD",
			RayID:   c.Locals("requestid").(string),
		})
	}

	assets := domain.AssetAssignment{}
	if raw := c.FormValue("assignments"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &assets); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Message: "assignments form field must be a JSON object of region to asset",
				RayID:   c.Locals("requestid").(string),
			})
		}
	}

	report, err := h.dispatchService.Dispatch(c.UserContext(), service.DispatchRequest{
		Reader: reader,
		Date:   date,
		Token:  token,
		Assets: assets,
	})
	if err != nil {
		return h.pipelineError(c, err)
	}

	return c.JSON(report)
}

// manifestReader opens the uploaded workbook from the multipart form.
func (h *DispatchHandler) manifestReader(c *fiber.Ctx) (*manifestadapters.ExcelReader, *ErrorResponse) {
	fileHeader, err := c.FormFile("manifest")
	if err != nil {
		return nil, &ErrorResponse{
			Message: "manifest file is required",
			RayID:   c.Locals("requestid").(string),
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, &ErrorResponse{
			Message: "failed to open uploaded manifest",
			RayID:   c.Locals("requestid").(string),
		}
	}

	return manifestadapters.NewExcelReader(file), nil
}

// pipelineError maps pipeline failures to HTTP statuses: unusable manifests
// are client errors, authentication failures point upstream.
func (h *DispatchHandler) pipelineError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, manifestservice.ErrNoValidData):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, service.ErrAuthentication):
		status = fiber.StatusBadGateway
	}

	return c.Status(status).JSON(ErrorResponse{
		Message: err.Error(),
		RayID:   c.Locals("requestid").(string),
	})
}

func distinctRegions(records []manifestdomain.DeliveryRecord) []string {
	seen := make(map[string]bool)
	var regions []string
	for _, rec := range records {
		if rec.Region == "" || seen[rec.Region] {
			continue
		}
		seen[rec.Region] = true
		regions = append(regions, rec.Region)
	}
	sort.Strings(regions)
	return regions
}
