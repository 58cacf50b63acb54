package boq

import (
	"github.com/shopspring/decimal"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// markupFactor is the fixed contractor markup applied to construction totals.
var markupFactor = decimal.NewFromFloat(1.10)

// UnitCosts holds the per-unit prices derived from a component breakdown.
type UnitCosts struct {
	MaterialUnitPrice decimal.Decimal
	LaborUnitPrice    decimal.Decimal
}

// ComponentCost returns quantityFactor × unitRate for a single resource line.
// Negative inputs are clamped to zero so a bad row never subtracts from a total.
func ComponentCost(quantityFactor, unitRate decimal.Decimal) decimal.Decimal {
	if quantityFactor.IsNegative() || unitRate.IsNegative() {
		return decimal.Zero
	}
	return quantityFactor.Mul(unitRate)
}

// ComputeItemUnitCosts derives an item's unit prices from its resource
// components. MATERIAL rows feed the material price; LABOR and EQUIPMENT
// rows feed the labor price. An empty slice yields zero for both.
func ComputeItemUnitCosts(components []models.BoqItemComponent) UnitCosts {
	costs := UnitCosts{
		MaterialUnitPrice: decimal.Zero,
		LaborUnitPrice:    decimal.Zero,
	}
	for _, c := range components {
		cost := ComponentCost(c.QuantityFactor, c.UnitRate)
		switch c.ResourceType {
		case enums.ResourceTypeMaterial:
			costs.MaterialUnitPrice = costs.MaterialUnitPrice.Add(cost)
		case enums.ResourceTypeLabor, enums.ResourceTypeEquipment:
			costs.LaborUnitPrice = costs.LaborUnitPrice.Add(cost)
		}
	}
	return costs
}

// ProjectSummary is the markup-adjusted cost roll-up for a project's BOQ.
type ProjectSummary struct {
	TotalMaterialCost     decimal.Decimal `json:"total_material_cost"`
	TotalLaborCost        decimal.Decimal `json:"total_labor_cost"`
	TotalConstructionCost decimal.Decimal `json:"total_construction_cost"`
	CarportBase           decimal.Decimal `json:"carport_base"`
	CarportWithMarkup     decimal.Decimal `json:"carport_with_markup"`
	TotalWithMarkup       decimal.Decimal `json:"total_with_markup"`
	BuildingWithMarkup    decimal.Decimal `json:"building_with_markup"`
	RatePerSqmBuilding    decimal.Decimal `json:"rate_per_sqm_building"`
	RatePerSqmCarport     decimal.Decimal `json:"rate_per_sqm_carport"`
}

// ComputeProjectSummary rolls BOQ items into project totals split by the
// carport classification. Areas of zero produce zero rates, never a
// division error. An empty item list returns an all-zero summary.
func ComputeProjectSummary(items []models.BoqItem, floorArea, carportArea decimal.Decimal) ProjectSummary {
	summary := ProjectSummary{
		TotalMaterialCost:     decimal.Zero,
		TotalLaborCost:        decimal.Zero,
		TotalConstructionCost: decimal.Zero,
		CarportBase:           decimal.Zero,
		CarportWithMarkup:     decimal.Zero,
		TotalWithMarkup:       decimal.Zero,
		BuildingWithMarkup:    decimal.Zero,
		RatePerSqmBuilding:    decimal.Zero,
		RatePerSqmCarport:     decimal.Zero,
	}

	for _, item := range items {
		materialCost := item.MaterialUnitPrice.Mul(item.Quantity)
		laborCost := item.LaborUnitPrice.Mul(item.Quantity)
		summary.TotalMaterialCost = summary.TotalMaterialCost.Add(materialCost)
		summary.TotalLaborCost = summary.TotalLaborCost.Add(laborCost)
		if item.IsCarport {
			summary.CarportBase = summary.CarportBase.Add(materialCost.Add(laborCost))
		}
	}

	summary.TotalConstructionCost = summary.TotalMaterialCost.Add(summary.TotalLaborCost)
	summary.CarportWithMarkup = summary.CarportBase.Mul(markupFactor)
	summary.TotalWithMarkup = summary.TotalConstructionCost.Mul(markupFactor)
	summary.BuildingWithMarkup = summary.TotalWithMarkup.Sub(summary.CarportWithMarkup)

	if floorArea.IsPositive() {
		summary.RatePerSqmBuilding = summary.BuildingWithMarkup.DivRound(floorArea, 4)
	}
	if carportArea.IsPositive() {
		summary.RatePerSqmCarport = summary.CarportWithMarkup.DivRound(carportArea, 4)
	}
	return summary
}
