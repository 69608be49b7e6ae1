package workflow

// StepID names one step of the booking wizard.
type StepID string

const (
	StepService    StepID = "service"
	StepPackage    StepID = "package"
	StepDimensions StepID = "dimensions"
	StepPhotos     StepID = "photos"
	StepDelivery   StepID = "delivery"
	StepPayment    StepID = "payment"
)

// stepOrder is the fixed wizard sequence. Transitions are strictly forward
// by one (advance) or backward by one (retreat).
var stepOrder = []StepID{
	StepService,
	StepPackage,
	StepDimensions,
	StepPhotos,
	StepDelivery,
	StepPayment,
}

// StepAt returns the step id for an index, clamped to the sequence bounds.
func StepAt(index int) StepID {
	if index < 0 {
		return stepOrder[0]
	}
	if index >= len(stepOrder) {
		return stepOrder[len(stepOrder)-1]
	}
	return stepOrder[index]
}

// StepInput is the per-step local payload merged into the draft on advance.
// Exactly the field matching the session's current step must be set.
type StepInput struct {
	Package    *PackageInput    `json:"package,omitempty"`
	Dimensions *DimensionsInput `json:"dimensions,omitempty"`
	Photos     *PhotosInput     `json:"photos,omitempty"`
	Delivery   *DeliveryInput   `json:"delivery,omitempty"`
}

type PackageInput struct {
	PackageType string `json:"packageType"`
	Description string `json:"description"`
	Fragile     bool   `json:"fragile"`
}

// DimensionsInput carries one of the two pricing paths: declared
// weight/dimension sets, or selected price guide items.
type DimensionsInput struct {
	Weight        float64            `json:"weight,omitempty"`
	DimensionSets []DimensionSetIn   `json:"dimensionSets,omitempty"`
	GuideItems    []GuideSelectionIn `json:"guideItems,omitempty"`
}

type DimensionSetIn struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
}

// GuideSelectionIn selects a catalogue item or adds an ad-hoc one. Ad-hoc
// items carry a zero unit price until staff assign one.
type GuideSelectionIn struct {
	GuideID     string  `json:"guideId,omitempty"`
	Name        string  `json:"name"`
	GuideNumber string  `json:"guideNumber,omitempty"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
}

type PhotosInput struct {
	PhotoRefs []string `json:"photoRefs"`
}

type DeliveryInput struct {
	PickupAddress   *AddressIn  `json:"pickupAddress"`
	DeliveryAddress *AddressIn  `json:"deliveryAddress,omitempty"`
	DeliveryMode    string      `json:"deliveryMode"`
	Receiver        *ReceiverIn `json:"receiver"`
}

type AddressIn struct {
	Street   string  `json:"street"`
	City     string  `json:"city"`
	State    string  `json:"state,omitempty"`
	Country  string  `json:"country"`
	Postcode string  `json:"postcode"`
	Lat      float64 `json:"lat,omitempty"`
	Lon      float64 `json:"lon,omitempty"`
	PlaceID  string  `json:"placeId,omitempty"`
	Type     string  `json:"type,omitempty"`
}

type ReceiverIn struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
	CountryCode string `json:"countryCode"`
}
