package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tow/internal/domain"
	"tow/internal/service"
)

// PricingHandler handles HTTP requests for pricing rules.
type PricingHandler struct {
	pricingService *service.PricingService
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(pricingService *service.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: pricingService}
}

// PricingRuleRequest is the HTTP request body for updating a pricing rule.
type PricingRuleRequest struct {
	VehicleType  string `json:"vehicle_type"`
	BasePrice    int64  `json:"base_price"`
	PricePerKm   int64  `json:"price_per_km"`
	DisplayOrder int    `json:"display_order"`
	Active       bool   `json:"active"`
}

// PricingRuleResponse is the HTTP representation of a pricing rule.
type PricingRuleResponse struct {
	RuleID       string `json:"rule_id"`
	VehicleType  string `json:"vehicle_type"`
	BasePrice    int64  `json:"base_price"`
	PricePerKm   int64  `json:"price_per_km"`
	DisplayOrder int    `json:"display_order"`
	Active       bool   `json:"active"`
}

func ruleResponse(rule *domain.PricingRule) PricingRuleResponse {
	return PricingRuleResponse{
		RuleID:       rule.ID,
		VehicleType:  rule.VehicleType,
		BasePrice:    rule.BasePrice,
		PricePerKm:   rule.PricePerKm,
		DisplayOrder: rule.DisplayOrder,
		Active:       rule.Active,
	}
}

// Rules handles GET /v1/pricing/rules
func (h *PricingHandler) Rules(c *gin.Context) {
	rules, err := h.pricingService.Rules(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PricingRuleResponse, 0, len(rules))
	for _, rule := range rules {
		response = append(response, ruleResponse(rule))
	}

	c.JSON(http.StatusOK, response)
}

// UpdateRule handles PUT /v1/pricing/rules/:id
func (h *PricingHandler) UpdateRule(c *gin.Context) {
	var req PricingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rule, err := h.pricingService.UpdateRule(c.Request.Context(), &domain.PricingRule{
		ID:           c.Param("id"),
		VehicleType:  req.VehicleType,
		BasePrice:    req.BasePrice,
		PricePerKm:   req.PricePerKm,
		DisplayOrder: req.DisplayOrder,
		Active:       req.Active,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ruleResponse(rule))
}
