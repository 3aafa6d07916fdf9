package domain

import (
	"context"
	"time"
)

type BookingRepository interface {
	// Write paths (the sync engine is the only writer)
	UpsertHeader(ctx context.Context, h BookingHeader) (int64, error)
	UpsertElement(ctx context.Context, e BookingElement, headerID int64) (int64, error)
	AppendAudit(ctx context.Context, number string, trigger TriggerKind, at time.Time) error

	// Watermark for the scheduled window; zero time means never synced.
	LastSyncedAt(ctx context.Context) (time.Time, error)
	SetLastSyncedAt(ctx context.Context, t time.Time) error

	// Read paths
	BookingsByDateRange(ctx context.Context, start, end string) ([]BookingView, error)
	AllBookings(ctx context.Context) ([]HeaderView, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u User) (int64, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id int64) (User, error)
	MarkVerified(ctx context.Context, id int64) error
	AllUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, id int64, upd UserUpdate) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	DeleteUser(ctx context.Context, id int64) error
}

// ChangeRef is one entry of the remote change-list.
type ChangeRef struct {
	Number string
}

type TravelClient interface {
	// GetChanges lists bookings changed in [from, till), in source order.
	GetChanges(ctx context.Context, from, till time.Time) ([]ChangeRef, error)
	// GetBooking returns the raw detail envelope for one booking number.
	GetBooking(ctx context.Context, number string) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type Mailer interface {
	SendActivation(ctx context.Context, to, name, activationURL string) error
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// Read models. The JSON tags mirror the column aliases of the date-range
// join, which is the response contract API consumers already depend on.

type HeaderView struct {
	ID                int64   `json:"id"`
	Number            string  `json:"number"`
	TripName          *string `json:"trip_name"`
	StatusCode        *string `json:"status_code"`
	StatusName        *string `json:"status_name"`
	CompanyName       *string `json:"company_name"`
	DeptorPlace       *string `json:"deptor_place"`
	ContactFirstName  *string `json:"contact_first_name"`
	ContactMiddleName *string `json:"contact_middle_name"`
	ContactSurname    *string `json:"contact_surname"`
	Summary           *string `json:"summary"`
	StartDate         *string `json:"startdate"`
	EndDate           *string `json:"enddate"`
}

type ElementView struct {
	ID                int64    `json:"id"`
	Name              *string  `json:"element_name"`
	TypeCode          *string  `json:"element_type_code"`
	SupplierPlace     *string  `json:"supplier_place"`
	SupplierCountry   *string  `json:"supplier_country"`
	StartDate         *string  `json:"startdate"`
	StartTime         *string  `json:"starttime"`
	EndDate           *string  `json:"enddate"`
	EndTime           *string  `json:"endtime"`
	Amount            *float64 `json:"amount"`
	AmountDescription *string  `json:"amount_description"`
}

// BookingView is a header with its nested elements. Elements is never nil:
// a booking without elements serializes as "booking_elements": [].
type BookingView struct {
	HeaderView
	Elements []ElementView `json:"booking_elements"`
}
