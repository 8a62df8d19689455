package pricing

// WeightedAverage blends an existing (stock, cost) basis with an incoming
// receipt. With zero prior stock the incoming cost replaces the average
// outright, which also covers brand-new items that never had a cost.
func WeightedAverage(oldStock, oldCost, incomingQty, incomingCost float64) float64 {
	if oldStock <= 0 {
		return incomingCost
	}
	total := oldStock + incomingQty
	if total <= 0 {
		return oldCost
	}
	return (oldStock*oldCost + incomingQty*incomingCost) / total
}

// CostBasisSnapshot captures one currency's basis before and after a merge.
type CostBasisSnapshot struct {
	CostBefore     float64
	CostAfter      float64
	QuantityBefore float64
	QuantityAfter  float64
}

// MergeCostBasis merges an incoming receipt into the current basis and
// returns the full before/after snapshot the cost ledger records. It does not
// change stock; receiving owns quantity mutation, so QuantityAfter reflects
// the blended denominator only.
func MergeCostBasis(oldStock, oldCost, incomingQty, incomingCost float64) (CostBasisSnapshot, error) {
	if incomingQty <= 0 {
		return CostBasisSnapshot{}, newValidationError("incoming_quantity", ErrNonPositiveQuantity)
	}
	if incomingCost < 0 || oldCost < 0 {
		return CostBasisSnapshot{}, newValidationError("cost", ErrNegativeAmount)
	}
	return CostBasisSnapshot{
		CostBefore:     oldCost,
		CostAfter:      WeightedAverage(oldStock, oldCost, incomingQty, incomingCost),
		QuantityBefore: oldStock,
		QuantityAfter:  oldStock + incomingQty,
	}, nil
}
