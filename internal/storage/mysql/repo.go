package mysql

import (
	"context"
	"database/sql"
	"time"

	"huski_bookings/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func f64Ptr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertHeader(ctx context.Context, h domain.BookingHeader) (int64, error) {
	res, err := r.db.ExecContext(ctx, upsertHeaderSQL,
		h.Number,
		valStr(h.TripName),
		valStr(h.StatusCode),
		valStr(h.StatusName),
		valStr(h.CompanyName),
		valStr(h.DeptorPlace),
		valStr(h.ContactFirstName),
		valStr(h.ContactMiddleName),
		valStr(h.ContactSurname),
		valStr(h.Summary),
		valStr(h.StartDate),
		valStr(h.EndDate),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) UpsertElement(ctx context.Context, e domain.BookingElement, headerID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, upsertElementSQL,
		e.ExternalID,
		headerID,
		valStr(e.Name),
		valStr(e.TypeCode),
		valStr(e.SupplierPlace),
		valStr(e.SupplierCountry),
		valStr(e.StartDate),
		valStr(e.StartTime),
		valStr(e.EndDate),
		valStr(e.EndTime),
		valF64(e.Amount),
		valStr(e.AmountDescription),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) AppendAudit(ctx context.Context, number string, trigger domain.TriggerKind, at time.Time) error {
	_, err := r.db.ExecContext(ctx, insertAuditSQL, number, string(trigger), at.UTC())
	return err
}

func (r *Repo) LastSyncedAt(ctx context.Context) (time.Time, error) {
	var t sql.NullTime
	err := r.db.QueryRowContext(ctx, selectWatermarkSQL).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	if !t.Valid {
		return time.Time{}, nil
	}
	return t.Time, nil
}

func (r *Repo) SetLastSyncedAt(ctx context.Context, at time.Time) error {
	_, err := r.db.ExecContext(ctx, upsertWatermarkSQL, at.UTC())
	return err
}

func (r *Repo) BookingsByDateRange(ctx context.Context, start, end string) ([]domain.BookingView, error) {
	rows, err := r.db.QueryContext(ctx, bookingsByDateRangeSQL, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BookingView
	byID := map[int64]int{} // header id -> index in out

	for rows.Next() {
		var (
			hv domain.HeaderView

			tripName, statusCode, statusName, companyName, deptorPlace sql.NullString
			firstName, middleName, surname, summary                    sql.NullString
			startDate, endDate                                         sql.NullString

			elemID                                         sql.NullInt64
			elemName, elemType, supPlace, supCountry       sql.NullString
			elemStart, elemStartTime, elemEnd, elemEndTime sql.NullString
			amount                                         sql.NullFloat64
			amountDesc                                     sql.NullString
		)
		if err := rows.Scan(
			&hv.ID, &hv.Number, &tripName, &statusCode, &statusName,
			&companyName, &deptorPlace, &firstName, &middleName,
			&surname, &summary, &startDate, &endDate,
			&elemID, &elemName, &elemType, &supPlace,
			&supCountry, &elemStart, &elemStartTime,
			&elemEnd, &elemEndTime, &amount, &amountDesc,
		); err != nil {
			return nil, err
		}

		idx, seen := byID[hv.ID]
		if !seen {
			hv.TripName = strPtr(tripName)
			hv.StatusCode = strPtr(statusCode)
			hv.StatusName = strPtr(statusName)
			hv.CompanyName = strPtr(companyName)
			hv.DeptorPlace = strPtr(deptorPlace)
			hv.ContactFirstName = strPtr(firstName)
			hv.ContactMiddleName = strPtr(middleName)
			hv.ContactSurname = strPtr(surname)
			hv.Summary = strPtr(summary)
			hv.StartDate = strPtr(startDate)
			hv.EndDate = strPtr(endDate)
			out = append(out, domain.BookingView{HeaderView: hv, Elements: []domain.ElementView{}})
			idx = len(out) - 1
			byID[hv.ID] = idx
		}

		if elemID.Valid {
			out[idx].Elements = append(out[idx].Elements, domain.ElementView{
				ID:                elemID.Int64,
				Name:              strPtr(elemName),
				TypeCode:          strPtr(elemType),
				SupplierPlace:     strPtr(supPlace),
				SupplierCountry:   strPtr(supCountry),
				StartDate:         strPtr(elemStart),
				StartTime:         strPtr(elemStartTime),
				EndDate:           strPtr(elemEnd),
				EndTime:           strPtr(elemEndTime),
				Amount:            f64Ptr(amount),
				AmountDescription: strPtr(amountDesc),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) AllBookings(ctx context.Context) ([]domain.HeaderView, error) {
	rows, err := r.db.QueryContext(ctx, allBookingsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HeaderView
	for rows.Next() {
		var hv domain.HeaderView
		var tripName, statusCode, statusName, companyName, deptorPlace sql.NullString
		var firstName, middleName, surname, summary sql.NullString
		var startDate, endDate sql.NullString
		if err := rows.Scan(
			&hv.ID, &hv.Number, &tripName, &statusCode, &statusName,
			&companyName, &deptorPlace, &firstName, &middleName,
			&surname, &summary, &startDate, &endDate,
		); err != nil {
			return nil, err
		}
		hv.TripName = strPtr(tripName)
		hv.StatusCode = strPtr(statusCode)
		hv.StatusName = strPtr(statusName)
		hv.CompanyName = strPtr(companyName)
		hv.DeptorPlace = strPtr(deptorPlace)
		hv.ContactFirstName = strPtr(firstName)
		hv.ContactMiddleName = strPtr(middleName)
		hv.ContactSurname = strPtr(surname)
		hv.Summary = strPtr(summary)
		hv.StartDate = strPtr(startDate)
		hv.EndDate = strPtr(endDate)
		out = append(out, hv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
