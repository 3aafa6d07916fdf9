package domain

// TriggerKind says what started a sync pass over a booking.
type TriggerKind string

const (
	TriggerSchedule TriggerKind = "schedule"
	TriggerSeed     TriggerKind = "seed"
)

// Element type codes the seed backfill is restricted to.
const (
	ElementTypeAccommodation = "ACCO"
	ElementTypeTransport     = "VERVOER"
	ElementTypeActivity      = "ACTIVITEIT"
)

type BookingHeader struct {
	ID                int64  // internal id, 0 until persisted
	Number            string // external booking identifier, stable across syncs
	TripName          *string
	StatusCode        *string
	StatusName        *string
	CompanyName       *string
	DeptorPlace       *string
	ContactFirstName  *string
	ContactMiddleName *string
	ContactSurname    *string
	Summary           *string
	StartDate         *string // YYYY-MM-DD, as delivered by the source
	EndDate           *string
}

type BookingElement struct {
	ID                int64
	ExternalID        string // element id in the remote system
	Name              *string
	TypeCode          *string
	SupplierPlace     *string
	SupplierCountry   *string
	StartDate         *string
	StartTime         *string
	EndDate           *string
	EndTime           *string
	Amount            *float64
	AmountDescription *string
}
