package model

// ShipmentType classifies a batch of freight by aggregate weight and stop count.
type ShipmentType string

const (
	ShipmentIndividual ShipmentType = "Individual"
	ShipmentLTL        ShipmentType = "LTL"
	ShipmentTL         ShipmentType = "TL"
	// ShipmentSplitTL marks a consolidation group whose weight exceeds a single
	// truckload. It only ever appears at group level: the routing stage splits
	// such groups, so every produced truck fits under the TL cap.
	ShipmentSplitTL ShipmentType = "Split-TL"
)

// Capacity limits applied per truck, and the weight thresholds used for
// freight classification (pounds).
const (
	MaxStops  = 4
	LTLMaxLbs = 18000.0
	TLMaxLbs  = 45000.0
)

// ClassifyGroup returns the shipment type for an unsplit consolidation group.
func ClassifyGroup(totalWeightLbs float64, orders int) ShipmentType {
	switch {
	case orders == 1:
		return ShipmentIndividual
	case totalWeightLbs < LTLMaxLbs:
		return ShipmentLTL
	case totalWeightLbs < TLMaxLbs:
		return ShipmentTL
	default:
		return ShipmentSplitTL
	}
}

// ClassifyTruck returns the shipment type for a single routed truck. A truck is
// never Split-TL: splitting already happened when the truck was formed.
func ClassifyTruck(totalWeightLbs float64, stops int) ShipmentType {
	switch {
	case stops == 1:
		return ShipmentIndividual
	case totalWeightLbs < LTLMaxLbs:
		return ShipmentLTL
	default:
		return ShipmentTL
	}
}
