package pricing

// AllocationMethod selects the proration metric for shared shipment costs.
type AllocationMethod string

const (
	MethodByValue  AllocationMethod = "by_value"
	MethodByWeight AllocationMethod = "by_weight"
	MethodByVolume AllocationMethod = "by_volume"
	// MethodHybrid is accepted for compatibility and currently prorates
	// by value, same as MethodByValue. A true mixed allocation (freight by
	// volume, the rest by value) would be introduced as a new method name.
	MethodHybrid AllocationMethod = "hybrid"
)

// ValidAllocationMethod reports whether m is one of the known methods.
func ValidAllocationMethod(m AllocationMethod) bool {
	switch m {
	case MethodByValue, MethodByWeight, MethodByVolume, MethodHybrid:
		return true
	}
	return false
}

// ShipmentItemInput is one imported line item. FOBSubtotal is in the foreign
// purchase currency; Weight and Volume may be zero when unknown. SalePrice is
// the current local-currency retail price, zero when the item has none yet.
type ShipmentItemInput struct {
	Reference   string
	Category    string
	Quantity    float64
	FOBSubtotal float64
	Weight      float64
	Volume      float64
	// DutyRate overrides the category and default duty rates when set.
	DutyRate    *float64
	SalePrice   float64
}

// ShipmentInput carries the shipment-level figures shared by all items.
// A nil Insurance defaults to 1% of FOB plus freight.
type ShipmentInput struct {
	FOBTotal  float64
	Freight   float64
	Insurance *float64
	Items     []ShipmentItemInput
}

// AdValoremRates are the shared rates applied on the allocation bases.
// StatsTax is part of the inventory cost; the remaining four are recoverable
// and excluded from it (cash-flow only).
type AdValoremRates struct {
	StatsTax      float64
	VAT           float64
	AdditionalVAT float64
	IncomeTax     float64
	GrossReceipts float64
}

// LogisticsCosts are the prorated local costs of clearing the shipment.
type LogisticsCosts struct {
	CustomsAgent    float64
	PortCharges     float64
	InlandTransport float64
	Other           float64
}

// Total returns the prorated logistics sum.
func (l LogisticsCosts) Total() float64 {
	return l.CustomsAgent + l.PortCharges + l.InlandTransport + l.Other
}

// CostingInput is everything the allocator needs for one shipment.
type CostingInput struct {
	Shipment          ShipmentInput
	Method            AllocationMethod
	Rates             AdValoremRates
	DefaultDutyRate   float64
	CategoryDutyRates map[string]float64
	// FixedFees is the total of per-shipment fixed fees, allocated by factor.
	FixedFees         float64
	Logistics         LogisticsCosts
	// ExchangeRate converts the foreign landed cost into local currency for
	// the per-item margin alert. Zero means no rate available.
	ExchangeRate      float64
}

// CostComponent is one allocated cost piece, as a total and per unit.
type CostComponent struct {
	Total   float64
	PerUnit float64
}

// RecoverableTaxes are computed on the taxable base but excluded from the
// inventory cost; they only matter for disbursement planning.
type RecoverableTaxes struct {
	VAT           float64
	AdditionalVAT float64
	IncomeTax     float64
	GrossReceipts float64
}

func (r RecoverableTaxes) Total() float64 {
	return r.VAT + r.AdditionalVAT + r.IncomeTax + r.GrossReceipts
}

// ItemCosting is the per-item allocation breakdown.
type ItemCosting struct {
	Reference string
	Category  string
	Quantity  float64

	Factor    float64
	FOB       CostComponent
	Freight   CostComponent
	Insurance CostComponent
	Duty      CostComponent
	StatsTax  CostComponent
	FixedFees CostComponent
	Logistics CostComponent

	CIF         float64
	TaxableBase float64
	Recoverable RecoverableTaxes

	NonRecoverableTotal float64
	LandedUnitCost      float64
	DisbursementTotal   float64

	// Margin compares SalePrice against the landed cost converted to local
	// currency. MarginKnown is false when there is no sale price or no
	// exchange rate to convert with.
	Margin       float64
	MarginKnown  bool
	MarginStatus MarginStatus
}

// CategoryCostSummary aggregates non-recoverable cost per category.
type CategoryCostSummary struct {
	Category            string
	Items               int
	Units               float64
	NonRecoverableTotal float64
}

// ShipmentCosting is the full allocation result. Computing it has no side
// effects; callers may re-run it freely before confirming a shipment.
type ShipmentCosting struct {
	Method              AllocationMethod
	CIFTotal            float64
	InsuranceTotal      float64
	NonRecoverableTotal float64
	RecoverableTotal    float64
	DisbursementTotal   float64
	Items               []ItemCosting
	Categories          []CategoryCostSummary
}

// AllocateLandedCosts distributes the shipment's shared costs across its
// items by the chosen method and derives each item's landed unit cost.
//
// When the allocation denominator is zero (e.g. weights missing on a
// by-weight run) every factor defaults to 0: the shared costs stay
// unallocated instead of failing, which callers surface via the conservation
// totals.
func AllocateLandedCosts(in CostingInput, cfg Config) (*ShipmentCosting, error) {
	if !ValidAllocationMethod(in.Method) {
		return nil, newValidationError("method", ErrUnknownAllocationMethod)
	}
	sh := in.Shipment
	if len(sh.Items) == 0 {
		return nil, newValidationError("items", ErrNoShipmentItems)
	}
	if sh.FOBTotal < 0 || sh.Freight < 0 {
		return nil, newValidationError("shipment", ErrNegativeAmount)
	}
	if sh.Insurance != nil && *sh.Insurance < 0 {
		return nil, newValidationError("insurance", ErrNegativeAmount)
	}
	for _, it := range sh.Items {
		if it.Quantity <= 0 {
			return nil, newValidationError("items."+it.Reference, ErrNonPositiveQuantity)
		}
		if it.FOBSubtotal < 0 {
			return nil, newValidationError("items."+it.Reference, ErrNegativeAmount)
		}
	}

	insurance := 0.0
	if sh.Insurance != nil {
		insurance = *sh.Insurance
	} else {
		insurance = 0.01 * (sh.FOBTotal + sh.Freight)
	}

	totalMetric := 0.0
	for _, it := range sh.Items {
		totalMetric += allocationMetric(in.Method, it)
	}

	logisticsTotal := in.Logistics.Total()

	out := &ShipmentCosting{
		Method:         in.Method,
		CIFTotal:       sh.FOBTotal + sh.Freight + insurance,
		InsuranceTotal: insurance,
		Items:          make([]ItemCosting, 0, len(sh.Items)),
	}

	byCategory := make(map[string]*CategoryCostSummary)
	order := make([]string, 0)

	for _, it := range sh.Items {
		factor := 0.0
		if totalMetric > 0 {
			factor = allocationMetric(in.Method, it) / totalMetric
		}

		freight := sh.Freight * factor
		ins := insurance * factor
		cif := it.FOBSubtotal + freight + ins

		duty := cif * dutyRateFor(in, it)
		statsTax := cif * in.Rates.StatsTax
		taxableBase := cif + duty + statsTax

		recoverable := RecoverableTaxes{
			VAT:           taxableBase * in.Rates.VAT,
			AdditionalVAT: taxableBase * in.Rates.AdditionalVAT,
			IncomeTax:     taxableBase * in.Rates.IncomeTax,
			GrossReceipts: taxableBase * in.Rates.GrossReceipts,
		}

		fixedFees := in.FixedFees * factor
		logistics := logisticsTotal * factor

		nonRecoverable := it.FOBSubtotal + freight + ins + duty + statsTax + fixedFees + logistics
		landedUnit := nonRecoverable / it.Quantity
		disbursement := nonRecoverable + recoverable.Total()

		ic := ItemCosting{
			Reference:           it.Reference,
			Category:            it.Category,
			Quantity:            it.Quantity,
			Factor:              factor,
			FOB:                 component(it.FOBSubtotal, it.Quantity),
			Freight:             component(freight, it.Quantity),
			Insurance:           component(ins, it.Quantity),
			Duty:                component(duty, it.Quantity),
			StatsTax:            component(statsTax, it.Quantity),
			FixedFees:           component(fixedFees, it.Quantity),
			Logistics:           component(logistics, it.Quantity),
			CIF:                 cif,
			TaxableBase:         taxableBase,
			Recoverable:         recoverable,
			NonRecoverableTotal: nonRecoverable,
			LandedUnitCost:      landedUnit,
			DisbursementTotal:   disbursement,
		}

		if it.SalePrice > 0 && in.ExchangeRate > 0 {
			landedLocal := landedUnit * in.ExchangeRate
			ic.Margin = Margin(it.SalePrice, landedLocal)
			ic.MarginKnown = true
			ic.MarginStatus = ClassifyMargin(ic.Margin, cfg.MarginFor(it.Category))
		}

		out.Items = append(out.Items, ic)
		out.NonRecoverableTotal += nonRecoverable
		out.RecoverableTotal += recoverable.Total()
		out.DisbursementTotal += disbursement

		summary, ok := byCategory[it.Category]
		if !ok {
			summary = &CategoryCostSummary{Category: it.Category}
			byCategory[it.Category] = summary
			order = append(order, it.Category)
		}
		summary.Items++
		summary.Units += it.Quantity
		summary.NonRecoverableTotal += nonRecoverable
	}

	for _, cat := range order {
		out.Categories = append(out.Categories, *byCategory[cat])
	}

	return out, nil
}

func allocationMetric(method AllocationMethod, it ShipmentItemInput) float64 {
	switch method {
	case MethodByWeight:
		return it.Weight
	case MethodByVolume:
		return it.Volume
	default:
		// by_value and hybrid
		return it.FOBSubtotal
	}
}

func dutyRateFor(in CostingInput, it ShipmentItemInput) float64 {
	if it.DutyRate != nil {
		return *it.DutyRate
	}
	if rate, ok := in.CategoryDutyRates[it.Category]; ok {
		return rate
	}
	return in.DefaultDutyRate
}

func component(total, quantity float64) CostComponent {
	return CostComponent{Total: total, PerUnit: total / quantity}
}
