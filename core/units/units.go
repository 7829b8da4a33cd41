// Package units normalizes heterogeneous mass units to pounds, the single
// working unit of the routing engine.
package units

import "strings"

// KgToLb is the conversion factor from kilograms to pounds.
const KgToLb = 2.20462

// ToPounds converts quantity expressed in unit to pounds. Recognized kilogram
// spellings are KG, KGS and KGM; pound spellings are LB, LBS, LBR and LBM.
// Unknown units are assumed to already be pounds.
func ToPounds(quantity float64, unit string) float64 {
	switch strings.ToUpper(strings.TrimSpace(unit)) {
	case "KG", "KGS", "KGM":
		return quantity * KgToLb
	case "LB", "LBS", "LBR", "LBM":
		return quantity
	default:
		return quantity
	}
}
