package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"manifest-dispatcher/internal/core/logger"
	"manifest-dispatcher/internal/features/dispatch/domain"
	"manifest-dispatcher/internal/features/dispatch/ports"
	geodomain "manifest-dispatcher/internal/features/geo/domain"
	geoports "manifest-dispatcher/internal/features/geo/ports"
	geoservice "manifest-dispatcher/internal/features/geo/service"
	manifestdomain "manifest-dispatcher/internal/features/manifest/domain"
	manifestports "manifest-dispatcher/internal/features/manifest/ports"
	manifestservice "manifest-dispatcher/internal/features/manifest/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrAuthentication indicates the remote service rejected the API token.
// Nothing is submitted when authentication fails.
var ErrAuthentication = errors.New("remote service authentication failed")

// minOptimizableGroup is the smallest resource group worth optimizing; a
// single stop has only one possible route.
const minOptimizableGroup = 2

// Service runs the manifest pipeline: extraction, enrichment, order building
// and submission to the remote logistics service.
type Service struct {
	extractor *manifestservice.Extractor
	resolver  geoports.RegionResolver
	gateway   ports.OrderGateway
	limiter   ports.Limiter
	loc       *time.Location
	logger    *zap.Logger
}

// NewService wires the pipeline stages together. The location anchors the
// delivery day window.
func NewService(extractor *manifestservice.Extractor, resolver geoports.RegionResolver, gateway ports.OrderGateway, limiter ports.Limiter, loc *time.Location) *Service {
	return &Service{
		extractor: extractor,
		resolver:  resolver,
		gateway:   gateway,
		limiter:   limiter,
		loc:       loc,
		logger:    logger.Get(),
	}
}

// DispatchRequest carries everything one dispatch run needs.
type DispatchRequest struct {
	// Reader supplies the manifest pages.
	Reader manifestports.ManifestReader
	// Date is the delivery day; the window spans that calendar day.
	Date time.Time
	// Token authenticates against the remote service.
	Token string
	// Assets maps regions to the vehicles serving them.
	Assets domain.AssetAssignment
}

// Preview extracts and enriches the manifest without touching the remote
// service, so operators can review records and assign assets per region.
func (s *Service) Preview(ctx context.Context, reader manifestports.ManifestReader) ([]manifestdomain.DeliveryRecord, error) {
	return s.enrich(ctx, reader)
}

// Dispatch runs the full pipeline and returns the run report. The report is
// partial-failure aware: order creation errors are recorded per order, and
// optimization or path update errors become warnings.
func (s *Service) Dispatch(ctx context.Context, req DispatchRequest) (*domain.Report, error) {
	records, err := s.enrich(ctx, req.Reader)
	if err != nil {
		return nil, err
	}

	window := domain.WindowForDay(req.Date, s.loc)
	orders := domain.BuildOrders(records, window, req.Assets)

	report := &domain.Report{
		RunID:  uuid.NewString(),
		Orders: orders,
	}

	runLogger := s.logger.With(zap.String("run_id", report.RunID))
	runLogger.Info("Starting dispatch run",
		zap.Int("orders", len(orders)),
		zap.Time("delivery_date", req.Date))

	sessionID, err := s.gateway.Login(ctx, req.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	created := s.createOrders(ctx, sessionID, orders, report, runLogger)
	if len(created) > 0 {
		s.optimizeRoutes(ctx, sessionID, created, report, runLogger)
		s.updatePaths(ctx, sessionID, created, report, runLogger)
	}

	runLogger.Info("Dispatch run finished",
		zap.Int("created", report.Created),
		zap.Int("failed", report.Failed),
		zap.Int("optimization_warnings", len(report.OptimizationWarnings)),
		zap.Int("path_update_warnings", len(report.PathUpdateWarnings)))

	return report, nil
}

// enrich extracts delivery records and annotates each with its cluster id
// and administrative region, then orders the batch by region with
// unresolved records last.
func (s *Service) enrich(ctx context.Context, reader manifestports.ManifestReader) ([]manifestdomain.DeliveryRecord, error) {
	pages, err := reader.ReadPages()
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	records, err := s.extractor.Extract(pages)
	if err != nil {
		return nil, err
	}

	points := make([]geodomain.Point, len(records))
	for i, rec := range records {
		points[i] = geodomain.Point{Lat: rec.Lat, Long: rec.Long}
	}

	labels := geoservice.ClusterLabels(points, geoservice.DefaultNeighborhoodKm, geoservice.DefaultMinClusterSize)
	for i := range records {
		records[i].ClusterID = labels[i]

		region, err := s.resolver.Resolve(ctx, points[i])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve region for %q: %w", records[i].CustomerName, err)
		}
		records[i].Region = region
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Region, records[j].Region
		if (a == "") != (b == "") {
			return a != ""
		}
		return a < b
	})

	return records, nil
}

// createOrders submits each order sequentially under the rate limit and
// returns the successfully created subset in submission order.
func (s *Service) createOrders(ctx context.Context, sessionID string, orders []*domain.Order, report *domain.Report, runLogger *zap.Logger) []*domain.Order {
	created := make([]*domain.Order, 0, len(orders))

	for _, order := range orders {
		if err := s.limiter.Wait(ctx); err != nil {
			runLogger.Warn("Dispatch run interrupted", zap.Error(err))
			break
		}

		id, err := s.gateway.CreateOrder(ctx, sessionID, order)
		if err != nil {
			runLogger.Error("Order creation failed",
				zap.String("customer", order.CustomerName),
				zap.Error(err))
			report.Failed++
			report.Results = append(report.Results, domain.SubmissionResult{
				CustomerName: order.CustomerName,
				Status:       domain.SubmissionStatusFailed,
				Error:        err.Error(),
			})
			continue
		}

		order.ID = id
		created = append(created, order)
		report.Created++
		report.Results = append(report.Results, domain.SubmissionResult{
			CustomerName: order.CustomerName,
			OrderID:      id,
			Status:       domain.SubmissionStatusCreated,
		})
	}

	return created
}

// optimizeRoutes groups created orders by resource and requests an optimized
// visit sequence per group. Failed groups keep their original order.
func (s *Service) optimizeRoutes(ctx context.Context, sessionID string, created []*domain.Order, report *domain.Report, runLogger *zap.Logger) {
	var resources []string
	groups := make(map[string][]*domain.Order)
	for _, order := range created {
		if _, seen := groups[order.Resource]; !seen {
			resources = append(resources, order.Resource)
		}
		groups[order.Resource] = append(groups[order.Resource], order)
	}

	for _, resource := range resources {
		group := groups[resource]
		if len(group) < minOptimizableGroup {
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			runLogger.Warn("Route optimization interrupted", zap.Error(err))
			return
		}

		ids := make([]int64, len(group))
		for i, order := range group {
			ids[i] = order.ID
		}

		sequence, err := s.gateway.OptimizeRoute(ctx, sessionID, domain.OptimizationRequest{
			OrderIDs:  ids,
			Resource:  resource,
			Departure: group[0].Window.From,
		})
		if err != nil {
			warning := fmt.Sprintf("route optimization failed for resource %q: %v", resource, err)
			runLogger.Warn("Route optimization failed",
				zap.String("resource", resource),
				zap.Error(err))
			report.OptimizationWarnings = append(report.OptimizationWarnings, warning)
			continue
		}

		byID := make(map[int64]*domain.Order, len(group))
		for _, order := range group {
			byID[order.ID] = order
		}
		for position, id := range sequence {
			if order, ok := byID[id]; ok {
				order.Sequence = position + 1
			}
		}
	}
}

// updatePaths recalculates the road-following path for every created order.
// Failures never remove an order from the run, they only produce warnings.
func (s *Service) updatePaths(ctx context.Context, sessionID string, created []*domain.Order, report *domain.Report, runLogger *zap.Logger) {
	for _, order := range created {
		if err := s.limiter.Wait(ctx); err != nil {
			runLogger.Warn("Route path updates interrupted", zap.Error(err))
			return
		}

		if err := s.gateway.UpdateRoutePath(ctx, sessionID, order.ID); err != nil {
			warning := fmt.Sprintf("route path update failed for order %d (%s): %v", order.ID, order.CustomerName, err)
			runLogger.Warn("Route path update failed",
				zap.Int64("order_id", order.ID),
				zap.Error(err))
			report.PathUpdateWarnings = append(report.PathUpdateWarnings, warning)
		}
	}
}
