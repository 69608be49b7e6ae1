package models

import "time"

// ServiceType identifies the shipping product a booking is made against.
type ServiceType string

const (
	ServiceAirFreight ServiceType = "airfreight"
	ServiceSeaFreight ServiceType = "seafreight"
	ServiceJingslly   ServiceType = "jingslly"
	ServiceFrozen     ServiceType = "frozen"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceAirFreight, ServiceSeaFreight, ServiceJingslly, ServiceFrozen:
		return true
	}
	return false
}

// PackageType classifies what is being shipped.
type PackageType string

const (
	PackageDocument  PackageType = "document"
	PackageParcel    PackageType = "parcel"
	PackagePallet    PackageType = "pallet"
	PackageContainer PackageType = "container"
	PackageItems     PackageType = "items"
)

func (p PackageType) Valid() bool {
	switch p {
	case PackageDocument, PackageParcel, PackagePallet, PackageContainer, PackageItems:
		return true
	}
	return false
}

// GuideBased reports whether this package type is always priced from the
// price guide catalogue, regardless of service type.
func (p PackageType) GuideBased() bool {
	switch p {
	case PackagePallet, PackageContainer, PackageItems:
		return true
	}
	return false
}

// DeliveryMode selects between home delivery and depot drop-off.
type DeliveryMode string

const (
	DeliveryHome    DeliveryMode = "home"
	DeliveryDropoff DeliveryMode = "dropoff"
)

func (d DeliveryMode) Valid() bool {
	return d == DeliveryHome || d == DeliveryDropoff
}

// PaymentStatus is the settlement state of a draft.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// DimensionSet holds one piece's measurements (cm / kg). A multi-piece
// shipment carries several sets.
type DimensionSet struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
}

// GuideItem is a catalogue or ad-hoc price guide line. Ad-hoc items may be
// added with a zero UnitPrice, meaning pricing is pending manual assignment.
type GuideItem struct {
	GuideID     string  `json:"guideId"`
	Name        string  `json:"name"`
	GuideNumber string  `json:"guideNumber,omitempty"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
}

type AddressType string

const (
	AddressResidential AddressType = "residential"
	AddressBusiness    AddressType = "business"
)

type Address struct {
	Street   string      `json:"street"`
	City     string      `json:"city"`
	State    string      `json:"state,omitempty"`
	Country  string      `json:"country"`
	Postcode string      `json:"postcode"`
	Lat      float64     `json:"lat,omitempty"`
	Lon      float64     `json:"lon,omitempty"`
	PlaceID  string      `json:"placeId,omitempty"`
	Type     AddressType `json:"type,omitempty"`
}

type Receiver struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
	CountryCode string `json:"countryCode"`
}

// PaymentOutcome records the terminal settlement state reported by the
// Booking Service.
type PaymentOutcome struct {
	Status   PaymentStatus `json:"status"`
	Method   string        `json:"method,omitempty"`
	Amount   float64       `json:"amount,omitempty"`
	Currency string        `json:"currency,omitempty"`
}

// BookingDraft is the mutable aggregate a customer assembles step by step.
// The ID and tracking number are assigned by the Booking Service.
type BookingDraft struct {
	ID             string         `json:"id,omitempty"`
	ServiceType    ServiceType    `json:"serviceType"`
	PackageType    PackageType    `json:"packageType,omitempty"`
	Description    string         `json:"description,omitempty"`
	Fragile        bool           `json:"fragile,omitempty"`
	Weight         float64        `json:"weight,omitempty"`
	DimensionSets  []DimensionSet `json:"dimensionSets,omitempty"`
	GuideItems     []GuideItem    `json:"selectedGuideItems,omitempty"`
	PhotoRefs      []string       `json:"photoRefs,omitempty"`
	PickupAddress  *Address       `json:"pickupAddress,omitempty"`
	DeliveryAddr   *Address       `json:"deliveryAddress,omitempty"`
	DeliveryMode   DeliveryMode   `json:"deliveryMode,omitempty"`
	Receiver       *Receiver      `json:"receiver,omitempty"`
	PaymentOutcome PaymentOutcome `json:"paymentOutcome"`
	TrackingNumber string         `json:"trackingNumber,omitempty"`
	CreatedAt      time.Time      `json:"createdAt,omitempty"`
}

// HasDimensions reports whether the dimension-based pricing path is active.
func (d *BookingDraft) HasDimensions() bool {
	return d.Weight > 0 || len(d.DimensionSets) > 0
}

// HasGuideItems reports whether the guide-based pricing path is active.
func (d *BookingDraft) HasGuideItems() bool {
	return len(d.GuideItems) > 0
}

// Finalized reports whether settlement has reached a terminal state; a
// finalized draft accepts no further wizard edits.
func (d *BookingDraft) Finalized() bool {
	return d.PaymentOutcome.Status == PaymentPaid || d.PaymentOutcome.Status == PaymentPending
}
