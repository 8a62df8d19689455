// Package testing provides test utilities and database setup for testing the pricing engine
package testing

import (
	"fmt"
	"math/rand"

	"github.com/motofleet/backoffice/models"
	"github.com/motofleet/backoffice/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestPart creates a test part in the given category with a cost basis
func (tf *TestFixtures) CreateTestPart(category string, costUSD float64) (*models.Part, error) {
	sku := fmt.Sprintf("TST-%s-%05d", category, rand.Intn(90000)+10000)

	part := &models.Part{
		SKU:            sku,
		Name:           fmt.Sprintf("Test part %s", sku),
		Category:       category,
		StockQuantity:  10,
		AverageCostUSD: costUSD,
		AverageCostARS: costUSD * 1000,
		WeightKg:       1.5,
		VolumeM3:       0.002,
		Active:         true,
	}

	if err := tf.DB.DB.Create(part).Error; err != nil {
		return nil, fmt.Errorf("failed to create test part: %w", err)
	}

	return part, nil
}

// CreateTestPriceList creates a price list with the given code
func (tf *TestFixtures) CreateTestPriceList(code string, listDiscount float64) (*models.PriceList, error) {
	list := &models.PriceList{
		Code:         code,
		Name:         fmt.Sprintf("Test list %s", code),
		Currency:     utils.ARSCurrency,
		ListDiscount: listDiscount,
		Active:       true,
	}

	if err := tf.DB.DB.Create(list).Error; err != nil {
		return nil, fmt.Errorf("failed to create test price list: %w", err)
	}

	return list, nil
}

// CreateTestPrice creates an open base price entry for a part on a list
func (tf *TestFixtures) CreateTestPrice(listID, partID uint, price float64) (*models.PriceListItem, error) {
	item := &models.PriceListItem{
		PriceListID: listID,
		PartID:      partID,
		MinQuantity: 0,
		Price:       price,
	}

	if err := tf.DB.DB.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create test price entry: %w", err)
	}

	return item, nil
}

// CreateTestExchangeRate appends an exchange rate row
func (tf *TestFixtures) CreateTestExchangeRate(rate float64) (*models.ExchangeRate, error) {
	row := &models.ExchangeRate{
		Rate:   rate,
		Source: "manual",
		SetBy:  "test",
	}

	if err := tf.DB.DB.Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create test exchange rate: %w", err)
	}

	return row, nil
}

// CreateTestMarkupRule creates an active markup rule for a category
func (tf *TestFixtures) CreateTestMarkupRule(category string, multiplier float64, priority int) (*models.MarkupRule, error) {
	rule := &models.MarkupRule{
		Name:       fmt.Sprintf("Test rule %s x%.2f", category, multiplier),
		Category:   &category,
		Multiplier: multiplier,
		Rounding:   "none",
		Priority:   priority,
		Active:     true,
	}

	if err := tf.DB.DB.Create(rule).Error; err != nil {
		return nil, fmt.Errorf("failed to create test markup rule: %w", err)
	}

	return rule, nil
}

// CreateTestDiscountRule creates an active quantity discount rule
func (tf *TestFixtures) CreateTestDiscountRule(minQuantity int, value float64) (*models.DiscountRule, error) {
	rule := &models.DiscountRule{
		Name:        fmt.Sprintf("Test discount q%d", minQuantity),
		Condition:   "min_quantity",
		MinQuantity: minQuantity,
		Kind:        "percentage",
		Value:       value,
		Priority:    0,
		Active:      true,
	}

	if err := tf.DB.DB.Create(rule).Error; err != nil {
		return nil, fmt.Errorf("failed to create test discount rule: %w", err)
	}

	return rule, nil
}

// CreateTestShipment creates a draft shipment with two items for the given parts
func (tf *TestFixtures) CreateTestShipment(parts []*models.Part) (*models.Shipment, error) {
	reference := fmt.Sprintf("SHP-TST-%06d", rand.Intn(900000)+100000)

	shipment := &models.Shipment{
		Reference:        reference,
		Supplier:         "Test Supplier SA",
		Status:           models.ShipmentStatusDraft,
		Currency:         utils.USDCurrency,
		AllocationMethod: "by_value",
		Freight:          500,
		Charges: models.ShipmentCharges{
			DutyRate:         0.18,
			StatsTaxRate:     0.03,
			VATRate:          0.21,
			CustomsClearance: 200,
			InlandFreight:    150,
		},
	}

	var total float64
	for i, part := range parts {
		qty := float64(10 * (i + 1))
		subtotal := part.AverageCostUSD * qty
		total += subtotal
		shipment.Items = append(shipment.Items, models.ShipmentItem{
			PartID:      part.ID,
			Quantity:    qty,
			FOBSubtotal: subtotal,
			WeightKg:    part.WeightKg * qty,
			VolumeM3:    part.VolumeM3 * qty,
		})
	}
	shipment.FOBTotal = total

	if err := tf.DB.DB.Create(shipment).Error; err != nil {
		return nil, fmt.Errorf("failed to create test shipment: %w", err)
	}

	return shipment, nil
}

// CreateTestVehicleModel creates an active vehicle model with a full cost basis
func (tf *TestFixtures) CreateTestVehicleModel(name string, landedCost float64) (*models.VehicleModel, error) {
	model := &models.VehicleModel{
		Name:               name,
		Brand:              "TestMoto",
		Segment:            "commuter",
		LandedCost:         landedCost,
		InsuranceMonthly:   15000,
		AnnualTaxes:        60000,
		AnnualRegistration: 24000,
		AnnualInspection:   12000,
		TelematicsMonthly:  5000,
		MaintenanceMonthly: 20000,
		ReserveRate:        0.02,
		StorageMonthly:     8000,
		AdminMonthly:       6000,
		Active:             true,
	}

	if err := tf.DB.DB.Create(model).Error; err != nil {
		return nil, fmt.Errorf("failed to create test vehicle model: %w", err)
	}

	return model, nil
}

// CreateTestRentalPlan creates an active rental plan
func (tf *TestFixtures) CreateTestRentalPlan(name, tier string, months int, discount float64) (*models.RentalPlan, error) {
	plan := &models.RentalPlan{
		Name:           name,
		Tier:           tier,
		DurationMonths: months,
		Discount:       discount,
		DepositMonths:  1,
		TargetMargin:   0.35,
		Active:         true,
	}

	if err := tf.DB.DB.Create(plan).Error; err != nil {
		return nil, fmt.Errorf("failed to create test rental plan: %w", err)
	}

	return plan, nil
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(actor, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test %s action", action)
	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	audit := &models.AuditLog{
		Actor:       actor,
		Action:      action,
		Description: &description,
		Success:     &success,
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	if !success {
		errorMessage := "Test failed action"
		audit.ErrorMessage = &errorMessage
	}

	if err := tf.DB.DB.Create(audit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}

	return audit, nil
}
