package workflow

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"shipflow/models"
)

const minDescriptionLen = 10

func validatePackage(in *PackageInput) error {
	verr := newValidationError()
	if in == nil {
		verr.add("package", "package details are required")
		return verr
	}
	pt := models.PackageType(in.PackageType)
	if in.PackageType == "" {
		verr.add("packageType", "a package type must be selected")
	} else if !pt.Valid() {
		verr.add("packageType", fmt.Sprintf("unknown package type %q", in.PackageType))
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Description)) < minDescriptionLen {
		verr.add("description", fmt.Sprintf("description must be at least %d characters", minDescriptionLen))
	}
	return verr.orNil()
}

// validateDimensions enforces the single-pricing-path rule: declared
// weight/dimensions XOR guide items, never both, never neither. The
// seafreight per-item weight ceiling is enforced here, before the pricing
// engine ever runs.
func validateDimensions(in *DimensionsInput, draft *models.BookingDraft) error {
	verr := newValidationError()
	if in == nil {
		verr.add("dimensions", "dimensions or price guide selections are required")
		return verr
	}

	hasDims := in.Weight > 0 || len(in.DimensionSets) > 0
	hasGuides := len(in.GuideItems) > 0

	if hasDims && hasGuides {
		verr.add("dimensions", "provide either dimensions or price guide items, not both")
		return verr
	}
	if !hasDims && !hasGuides {
		verr.add("dimensions", "either dimensions or price guide items are required")
		return verr
	}

	if draft.PackageType.GuideBased() && !hasGuides {
		verr.add("guideItems", fmt.Sprintf("%s shipments are priced from the price guide; select at least one item", draft.PackageType))
		return verr
	}

	// Outside the guide-based package types, only seafreight offers guide
	// pricing; the other products have no rule that could price the items.
	if hasGuides && !draft.PackageType.GuideBased() && draft.ServiceType != models.ServiceSeaFreight {
		verr.add("guideItems", fmt.Sprintf("%s %s shipments are priced from declared weight and dimensions, not the price guide", draft.ServiceType, draft.PackageType))
		return verr
	}

	if hasGuides {
		for i, g := range in.GuideItems {
			if strings.TrimSpace(g.Name) == "" {
				verr.add(fmt.Sprintf("guideItems[%d].name", i), "item name is required")
			}
			if g.Quantity < 1 {
				verr.add(fmt.Sprintf("guideItems[%d].quantity", i), "quantity must be at least 1")
			}
			if g.UnitPrice < 0 {
				verr.add(fmt.Sprintf("guideItems[%d].unitPrice", i), "unit price cannot be negative")
			}
		}
		return verr.orNil()
	}

	if in.Weight < 0 {
		verr.add("weight", "weight cannot be negative")
	}
	for i, d := range in.DimensionSets {
		if d.Length <= 0 || d.Width <= 0 || d.Height <= 0 {
			verr.add(fmt.Sprintf("dimensionSets[%d]", i), "length, width and height must all be positive")
		}
		if d.Weight < 0 {
			verr.add(fmt.Sprintf("dimensionSets[%d].weight", i), "weight cannot be negative")
		}
		// Heavy single items cannot travel on the volumetric sea tariff;
		// they must be routed through the price guide instead.
		if draft.ServiceType == models.ServiceSeaFreight && d.Weight > seaMaxItemWeightKg {
			verr.add(fmt.Sprintf("dimensionSets[%d].weight", i),
				fmt.Sprintf("seafreight items over %.0fkg must be priced via the price guide", seaMaxItemWeightKg))
		}
	}
	return verr.orNil()
}

func validatePhotos(in *PhotosInput) error {
	verr := newValidationError()
	if in == nil || len(in.PhotoRefs) == 0 {
		verr.add("photoRefs", "at least one photo of the shipment is required")
		return verr
	}
	for i, ref := range in.PhotoRefs {
		if strings.TrimSpace(ref) == "" {
			verr.add(fmt.Sprintf("photoRefs[%d]", i), "photo reference cannot be empty")
		}
	}
	return verr.orNil()
}

func validateDelivery(in *DeliveryInput) error {
	verr := newValidationError()
	if in == nil {
		verr.add("delivery", "delivery details are required")
		return verr
	}

	mode := models.DeliveryMode(in.DeliveryMode)
	if !mode.Valid() {
		verr.add("deliveryMode", fmt.Sprintf("unknown delivery mode %q", in.DeliveryMode))
	}

	validateAddr(verr, "pickupAddress", in.PickupAddress)
	if mode == models.DeliveryHome {
		validateAddr(verr, "deliveryAddress", in.DeliveryAddress)
	}

	if in.Receiver == nil {
		verr.add("receiver", "receiver details are required")
	} else {
		if strings.TrimSpace(in.Receiver.Name) == "" {
			verr.add("receiver.name", "receiver name is required")
		}
		if strings.TrimSpace(in.Receiver.Phone) == "" {
			verr.add("receiver.phone", "receiver phone is required")
		}
		if strings.TrimSpace(in.Receiver.CountryCode) == "" {
			verr.add("receiver.countryCode", "receiver country code is required")
		}
	}
	return verr.orNil()
}

func validateAddr(verr *ValidationError, field string, a *AddressIn) {
	if a == nil {
		verr.add(field, "address is required")
		return
	}
	if strings.TrimSpace(a.Street) == "" {
		verr.add(field+".street", "street is required")
	}
	if strings.TrimSpace(a.City) == "" {
		verr.add(field+".city", "city is required")
	}
	if strings.TrimSpace(a.Country) == "" {
		verr.add(field+".country", "country is required")
	}
	if strings.TrimSpace(a.Postcode) == "" {
		verr.add(field+".postcode", "postcode is required")
	}
}
