package workflow

import (
	"fmt"
	"math"

	"shipflow/models"
)

// seaMaxItemWeightKg is the per-item ceiling on the seafreight volumetric
// tariff; heavier items must route through the price guide.
const seaMaxItemWeightKg = 40.0

// WeightTier is one band of a per-kg tariff. UpToKg of zero marks the open
// top band.
type WeightTier struct {
	UpToKg float64
	PerKg  float64
}

// RateCard holds the tariff the pricing engine applies. Rates are fixed per
// deployment, not per draft.
type RateCard struct {
	AirPerKg float64
	// AirVolumetricDivisor converts cubic centimeters to volumetric
	// kilograms (IATA air cargo convention: cm3 / 6000).
	AirVolumetricDivisor float64
	SeaPerCubicMeter     float64
	// JingssllyTiers must be ascending. The tariff is non-marginal: the
	// entire declared weight bills at the rate of the tier it lands in.
	JingssllyTiers []WeightTier
	FrozenPerKg    float64
	// ServiceFee is added once to every product except seafreight.
	ServiceFee float64
	Currency   string
}

// DefaultRates is the standard tariff.
func DefaultRates() RateCard {
	return RateCard{
		AirPerKg:             12.5,
		AirVolumetricDivisor: 6000,
		SeaPerCubicMeter:     300,
		JingssllyTiers: []WeightTier{
			{UpToKg: 50, PerKg: 8.5},
			{UpToKg: 100, PerKg: 7.5},
			{UpToKg: 0, PerKg: 6.5},
		},
		FrozenPerKg: 9.0,
		ServiceFee:  10,
		Currency:    "USD",
	}
}

// PriceDraft maps a draft to a cost breakdown. It is pure: no side effects,
// and identical drafts yield identical quotes. Guide-based package types
// (pallet, container, items) bypass weight formulas entirely; otherwise
// dispatch is by service type. An unmapped combination is a PricingError.
func PriceDraft(d *models.BookingDraft, rates RateCard) (models.Quote, error) {
	if !d.ServiceType.Valid() {
		return models.Quote{}, &PricingError{Message: fmt.Sprintf("invalid service type %q", d.ServiceType)}
	}
	if !d.PackageType.Valid() {
		return models.Quote{}, &PricingError{Message: fmt.Sprintf("invalid package type %q", d.PackageType)}
	}

	if d.PackageType.GuideBased() {
		if !d.HasGuideItems() {
			return models.Quote{}, &PricingError{Message: fmt.Sprintf("%s shipments require price guide items", d.PackageType)}
		}
		return priceGuideItems(d, rates)
	}

	switch d.ServiceType {
	case models.ServiceSeaFreight:
		if d.HasGuideItems() {
			return priceGuideItems(d, rates)
		}
		return priceSeaVolumetric(d, rates)
	case models.ServiceAirFreight:
		return priceAirFreight(d, rates)
	case models.ServiceJingslly:
		return pricePerKgTiered(d, rates)
	case models.ServiceFrozen:
		return priceFrozen(d, rates)
	default:
		return models.Quote{}, &PricingError{Message: fmt.Sprintf("no pricing rule for %s/%s", d.ServiceType, d.PackageType)}
	}
}

// priceAirFreight bills the chargeable weight: the greater of the declared
// weight and the volumetric-equivalent weight of the pieces.
func priceAirFreight(d *models.BookingDraft, rates RateCard) (models.Quote, error) {
	actual := declaredWeight(d)
	volumetric := 0.0
	for _, set := range d.DimensionSets {
		volumetric += volumetricWeightKg(set, rates.AirVolumetricDivisor)
	}
	if actual <= 0 && volumetric <= 0 {
		return models.Quote{}, &PricingError{Message: "airfreight requires a declared weight or dimensions"}
	}

	chargeable := math.Max(actual, volumetric)
	quote := models.Quote{Currency: rates.Currency}
	quote.Lines = append(quote.Lines, models.QuoteLine{
		Label:  fmt.Sprintf("Air freight, %.2f kg chargeable @ %.2f/kg", chargeable, rates.AirPerKg),
		Amount: round2(chargeable * rates.AirPerKg),
	})
	return applyServiceFee(quote, rates), nil
}

// volumetricWeightKg derives a weight-equivalent from a piece's cube.
// Centimeter measurements go straight into the divisor (L*W*H cm / 6000 =
// kg); converting to meters first, as one legacy formula did, undercharges
// by six orders of magnitude.
func volumetricWeightKg(set models.DimensionSet, divisor float64) float64 {
	if divisor <= 0 {
		return 0
	}
	return set.Length * set.Width * set.Height / divisor
}

// priceSeaVolumetric bills cubic meters at a flat rate. No service fee is
// added on the sea tariff.
func priceSeaVolumetric(d *models.BookingDraft, rates RateCard) (models.Quote, error) {
	if len(d.DimensionSets) == 0 {
		return models.Quote{}, &PricingError{Message: "seafreight requires dimensions or price guide items"}
	}
	cubic := 0.0
	for _, set := range d.DimensionSets {
		cubic += (set.Length / 100) * (set.Width / 100) * (set.Height / 100)
	}
	quote := models.Quote{Currency: rates.Currency}
	quote.Lines = append(quote.Lines, models.QuoteLine{
		Label:  fmt.Sprintf("Sea freight, %.3f m3 @ %.2f/m3", cubic, rates.SeaPerCubicMeter),
		Amount: round2(cubic * rates.SeaPerCubicMeter),
	})
	quote.Total = quote.Lines[0].Amount
	return quote, nil
}

// pricePerKgTiered bills the whole declared weight at the rate of the tier
// it falls into. The tariff is deliberately non-marginal: 50kg bills
// entirely at tier one, 50.01kg entirely at tier two.
func pricePerKgTiered(d *models.BookingDraft, rates RateCard) (models.Quote, error) {
	weight := declaredWeight(d)
	if weight <= 0 {
		return models.Quote{}, &PricingError{Message: "a declared weight is required"}
	}
	rate := tierRate(weight, rates.JingssllyTiers)
	quote := models.Quote{Currency: rates.Currency}
	quote.Lines = append(quote.Lines, models.QuoteLine{
		Label:  fmt.Sprintf("Jingslly freight, %.2f kg @ %.2f/kg", weight, rate),
		Amount: round2(weight * rate),
	})
	return applyServiceFee(quote, rates), nil
}

func tierRate(weight float64, tiers []WeightTier) float64 {
	for _, t := range tiers {
		if t.UpToKg == 0 || weight <= t.UpToKg {
			return t.PerKg
		}
	}
	return 0
}

func priceFrozen(d *models.BookingDraft, rates RateCard) (models.Quote, error) {
	weight := declaredWeight(d)
	if weight <= 0 {
		return models.Quote{}, &PricingError{Message: "a declared weight is required"}
	}
	quote := models.Quote{Currency: rates.Currency}
	quote.Lines = append(quote.Lines, models.QuoteLine{
		Label:  fmt.Sprintf("Frozen freight, %.2f kg @ %.2f/kg", weight, rates.FrozenPerKg),
		Amount: round2(weight * rates.FrozenPerKg),
	})
	return applyServiceFee(quote, rates), nil
}

// priceGuideItems sums unit price times quantity across the selected
// catalogue and ad-hoc lines. Any zero-priced line means pricing is pending
// manual assignment; the quote then carries the pending sentinel instead of
// a numeric total.
func priceGuideItems(d *models.BookingDraft, rates RateCard) (models.Quote, error) {
	quote := models.Quote{Currency: rates.Currency}
	pending := false
	for _, item := range d.GuideItems {
		if item.UnitPrice <= 0 {
			pending = true
		}
		quote.Lines = append(quote.Lines, models.QuoteLine{
			Label:  fmt.Sprintf("%s x%d", item.Name, item.Quantity),
			Amount: round2(item.UnitPrice * float64(item.Quantity)),
		})
	}
	if pending {
		quote.PricePending = true
		quote.Total = 0
		return quote, nil
	}
	if d.ServiceType == models.ServiceSeaFreight {
		for _, l := range quote.Lines {
			quote.Total = round2(quote.Total + l.Amount)
		}
		return quote, nil
	}
	return applyServiceFee(quote, rates), nil
}

func applyServiceFee(quote models.Quote, rates RateCard) models.Quote {
	quote.Lines = append(quote.Lines, models.QuoteLine{
		Label:  "Service fee",
		Amount: rates.ServiceFee,
	})
	total := 0.0
	for _, l := range quote.Lines {
		total += l.Amount
	}
	quote.Total = round2(total)
	return quote
}

func declaredWeight(d *models.BookingDraft) float64 {
	if d.Weight > 0 {
		return d.Weight
	}
	total := 0.0
	for _, set := range d.DimensionSets {
		total += set.Weight
	}
	return total
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
