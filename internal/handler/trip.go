package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tow/internal/domain"
	"tow/internal/service"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// CreateTripRequest is the HTTP request body for creating a trip.
type CreateTripRequest struct {
	CustomerName       string                     `json:"customer_name"`
	CustomerPhone      string                     `json:"customer_phone"`
	PickupAddress      string                     `json:"pickup_address"`
	PickupLat          float64                    `json:"pickup_lat"`
	PickupLng          float64                    `json:"pickup_lng"`
	DropoffAddress     string                     `json:"dropoff_address"`
	DropoffLat         float64                    `json:"dropoff_lat"`
	DropoffLng         float64                    `json:"dropoff_lng"`
	ServiceType        string                     `json:"service_type"`
	VehicleModel       string                     `json:"vehicle_model"`
	DistanceKm         float64                    `json:"distance_km"`
	Price              int64                      `json:"price"`
	AdditionalServices []domain.AdditionalService `json:"additional_services"`
}

// AssignRequest is the HTTP request body for pre-assigning a driver.
type AssignRequest struct {
	DriverID string `json:"driver_id"`
}

// AcceptRequest is the HTTP request body for accepting a trip.
type AcceptRequest struct {
	DriverID string `json:"driver_id"`
}

// CompleteRequest is the HTTP request body for completing a trip.
type CompleteRequest struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}

// CancelRequest is the HTTP request body for cancelling a trip.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	TripID             string                     `json:"trip_id"`
	DriverID           string                     `json:"driver_id,omitempty"`
	CustomerName       string                     `json:"customer_name"`
	CustomerPhone      string                     `json:"customer_phone"`
	PickupAddress      string                     `json:"pickup_address"`
	PickupLat          float64                    `json:"pickup_lat"`
	PickupLng          float64                    `json:"pickup_lng"`
	DropoffAddress     string                     `json:"dropoff_address"`
	DropoffLat         float64                    `json:"dropoff_lat"`
	DropoffLng         float64                    `json:"dropoff_lng"`
	Status             string                     `json:"status"`
	Price              int64                      `json:"price"`
	ServiceType        string                     `json:"service_type"`
	VehicleModel       string                     `json:"vehicle_model"`
	DistanceKm         float64                    `json:"distance_km"`
	DistanceTraveledKm float64                    `json:"distance_traveled_km,omitempty"`
	AdditionalServices []domain.AdditionalService `json:"additional_services,omitempty"`
	CreatedAt          string                     `json:"created_at"`
	StartedAt          string                     `json:"started_at,omitempty"`
	EndedAt            string                     `json:"ended_at,omitempty"`
	CancelledAt        string                     `json:"cancelled_at,omitempty"`
	CancelReason       string                     `json:"cancel_reason,omitempty"`
	Settlement         *SettlementInfo            `json:"settlement,omitempty"`
}

// SettlementInfo contains the money breakdown returned on completion.
type SettlementInfo struct {
	FinalPrice    int64 `json:"final_price"`
	Commission    int64 `json:"commission"`
	DriverNet     int64 `json:"driver_net"`
	WalletBalance int64 `json:"wallet_balance,omitempty"`
}

func tripResponse(trip *domain.Trip) TripResponse {
	resp := TripResponse{
		TripID:             trip.ID,
		DriverID:           trip.DriverID,
		CustomerName:       trip.CustomerName,
		CustomerPhone:      trip.CustomerPhone,
		PickupAddress:      trip.PickupAddress,
		PickupLat:          trip.PickupLat,
		PickupLng:          trip.PickupLng,
		DropoffAddress:     trip.DropoffAddress,
		DropoffLat:         trip.DropoffLat,
		DropoffLng:         trip.DropoffLng,
		Status:             string(trip.Status),
		Price:              trip.Price,
		ServiceType:        string(trip.ServiceType),
		VehicleModel:       trip.VehicleModel,
		DistanceKm:         trip.DistanceKm,
		DistanceTraveledKm: trip.DistanceTraveledKm,
		AdditionalServices: trip.AdditionalServices,
		CreatedAt:          trip.CreatedAt.Format(timeLayout),
		CancelReason:       trip.CancelReason,
	}

	if !trip.StartedAt.IsZero() {
		resp.StartedAt = trip.StartedAt.Format(timeLayout)
	}
	if !trip.EndedAt.IsZero() {
		resp.EndedAt = trip.EndedAt.Format(timeLayout)
	}
	if !trip.CancelledAt.IsZero() {
		resp.CancelledAt = trip.CancelledAt.Format(timeLayout)
	}

	return resp
}

// Create handles POST /v1/trips
//
// When the vehicle model matches no pricing rule and the service type is
// not towing, the engine computes no estimate and the price supplied in the
// body is used verbatim.
func (h *TripHandler) Create(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.Create(c.Request.Context(), service.CreateTripRequest{
		CustomerName:       req.CustomerName,
		CustomerPhone:      req.CustomerPhone,
		PickupAddress:      req.PickupAddress,
		PickupLat:          req.PickupLat,
		PickupLng:          req.PickupLng,
		DropoffAddress:     req.DropoffAddress,
		DropoffLat:         req.DropoffLat,
		DropoffLng:         req.DropoffLng,
		ServiceType:        domain.ServiceType(req.ServiceType),
		VehicleModel:       req.VehicleModel,
		DistanceKm:         req.DistanceKm,
		Price:              req.Price,
		AdditionalServices: req.AdditionalServices,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, tripResponse(trip))
}

// Assign handles POST /v1/trips/:id/assign
func (h *TripHandler) Assign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.Assign(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// Accept handles POST /v1/trips/:id/accept
func (h *TripHandler) Accept(c *gin.Context) {
	var req AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.Accept(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// Start handles POST /v1/trips/:id/start
func (h *TripHandler) Start(c *gin.Context) {
	trip, err := h.tripService.Start(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// Complete handles POST /v1/trips/:id/complete
func (h *TripHandler) Complete(c *gin.Context) {
	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.tripService.Complete(c.Request.Context(), service.CompleteTripRequest{
		TripID:      c.Param("id"),
		DistanceKm:  req.DistanceKm,
		DurationMin: req.DurationMin,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := tripResponse(result.Trip)
	resp.Settlement = &SettlementInfo{
		FinalPrice: result.Trip.Price,
		Commission: result.Commission,
		DriverNet:  result.DriverNet,
	}
	if result.Wallet != nil {
		resp.Settlement.WalletBalance = result.Wallet.Balance
	}

	respondJSON(c, http.StatusOK, resp)
}

// Cancel handles POST /v1/trips/:id/cancel
func (h *TripHandler) Cancel(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// Delete handles DELETE /v1/trips/:id
func (h *TripHandler) Delete(c *gin.Context) {
	if err := h.tripService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Get handles GET /v1/trips/:id
func (h *TripHandler) Get(c *gin.Context) {
	trip, err := h.tripService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// GetAll handles GET /v1/trips
func (h *TripHandler) GetAll(c *gin.Context) {
	trips, err := h.tripService.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, tripResponse(trip))
	}

	c.JSON(http.StatusOK, response)
}
