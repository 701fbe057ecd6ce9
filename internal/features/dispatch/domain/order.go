package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	manifestdomain "manifest-dispatcher/internal/features/manifest/domain"
)

// Fixed payload values required by the logistics service wire protocol.
const (
	// ItemCategoryID is the remote catalogue entry all delivery orders
	// belong to.
	ItemCategoryID = 25601229
	// ServiceDurationSeconds is the planned on-site time per stop.
	ServiceDurationSeconds = 600
	// StopRadiusMeters is the arrival detection radius.
	StopRadiusMeters = 20
	// TimezoneOffsetHours is the UTC offset sent with each order (EAT).
	TimezoneOffsetHours = 3
	// DeliveryNote is the fixed handling comment attached to every order.
	DeliveryNote = "Handle with care"
	// RoutingModeOptimal requests optimal, road-following routing.
	RoutingModeOptimal = "optimal"
	// UnassignedResource is the placeholder for regions without an asset.
	UnassignedResource = "Unassigned"
)

// TimeWindow is the delivery window in epoch seconds.
type TimeWindow struct {
	// From is the window start.
	From int64 `json:"from"`
	// To is the window end.
	To int64 `json:"to"`
}

// WindowForDay returns the full-day delivery window for the given calendar
// day, anchored in the given location.
func WindowForDay(day time.Time, loc *time.Location) TimeWindow {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	return TimeWindow{
		From: start.Unix(),
		To:   start.AddDate(0, 0, 1).Unix(),
	}
}

// AssetAssignment maps region names to the asset (vehicle) serving them.
// Values may be blank, meaning "unassigned".
type AssetAssignment map[string]string

// ResourceFor returns the asset assigned to the region, or
// UnassignedResource when the region has no non-blank assignment.
func (a AssetAssignment) ResourceFor(region string) string {
	if asset := strings.TrimSpace(a[region]); asset != "" {
		return asset
	}
	return UnassignedResource
}

// Order is the normalized, remote-service-ready representation of a delivery
// stop. ID 0 is the "not yet created" sentinel; once the remote service
// assigns an id the order is immutable except for Sequence.
type Order struct {
	// ID is the remote order identifier, 0 until created.
	ID int64 `json:"id"`
	// CustomerName is the stop display name.
	CustomerName string `json:"customer_name"`
	// Address embeds the resolved region and the raw coordinate pair.
	Address string `json:"address"`
	// Weight is the load in kilograms, derived from manifest tonnage.
	Weight int `json:"weight"`
	// Amount is the invoiced amount, passed through as written.
	Amount string `json:"amount"`
	// CustomerID is the customer account identifier.
	CustomerID string `json:"customer_id"`
	// InvoiceNo is the invoice reference.
	InvoiceNo string `json:"invoice_no"`
	// Resource is the assigned asset, or UnassignedResource.
	Resource string `json:"resource"`
	// Window is the delivery day window.
	Window TimeWindow `json:"window"`
	// Lat and Long are the stop coordinates.
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
	// Region is the administrative region the stop falls in.
	Region string `json:"region"`
	// Sequence is the 1-based visit position set after route optimization;
	// 0 means unsequenced.
	Sequence int `json:"sequence"`
}

// BuildOrder converts an enriched delivery record into an order. It returns
// false when the record's coordinate text no longer parses; extraction should
// already have dropped such rows.
func BuildOrder(rec manifestdomain.DeliveryRecord, window TimeWindow, assets AssetAssignment) (*Order, bool) {
	lat, long, ok := manifestdomain.ParseCoordinates(rec.CoordinatesText)
	if !ok {
		return nil, false
	}

	weight := 0
	if rec.Tonnage != "" {
		if tonnage, err := strconv.ParseFloat(rec.Tonnage, 64); err == nil {
			weight = int(math.Round(tonnage * 1000))
		}
	}

	return &Order{
		CustomerName: rec.CustomerName,
		Address:      fmt.Sprintf("%s (LAT:%v, LONG:%v)", rec.Region, lat, long),
		Weight:       weight,
		Amount:       rec.Amount,
		CustomerID:   rec.CustomerID,
		InvoiceNo:    rec.InvoiceNo,
		Resource:     assets.ResourceFor(rec.Region),
		Window:       window,
		Lat:          lat,
		Long:         long,
		Region:       rec.Region,
	}, true
}

// BuildOrders converts a batch of enriched records, skipping any without
// parseable coordinates.
func BuildOrders(records []manifestdomain.DeliveryRecord, window TimeWindow, assets AssetAssignment) []*Order {
	orders := make([]*Order, 0, len(records))
	for _, rec := range records {
		if order, ok := BuildOrder(rec, window, assets); ok {
			orders = append(orders, order)
		}
	}
	return orders
}
