package app

import (
	"sort"
	"strconv"
	"strings"

	"huski_bookings/internal/domain"
)

/********** alias registries (single source of truth) **********/

var headerAliases = map[string][]string{
	"number":              {"number", "booking_number", "bookingnumber"},
	"trip_name":           {"trip_name", "tripname", "trip.name", "title"},
	"status_code":         {"status_code", "statuscode", "status.code"},
	"status_name":         {"status_name", "statusname", "status.name"},
	"company_name":        {"company_name", "companyname", "company.name"},
	"deptor_place":        {"deptor_place", "deptorplace", "debtor_place"},
	"contact_first_name":  {"contact_first_name", "contact.first_name", "contact.firstname"},
	"contact_middle_name": {"contact_middle_name", "contact.middle_name", "contact.middlename"},
	"contact_surname":     {"contact_surname", "contact.surname", "contact.lastname"},
	"summary":             {"summary", "description"},
	"startdate":           {"startdate", "start_date", "period.startdate"},
	"enddate":             {"enddate", "end_date", "period.enddate"},
}

var elementAliases = map[string][]string{
	"name":               {"element_name", "elementname", "name", "description"},
	"type_code":          {"elementtype_code", "element_type_code", "elementtype.code", "type_code"},
	"supplier_place":     {"supplier_place", "supplierplace", "supplier.place"},
	"supplier_country":   {"supplier_country", "suppliercountry", "supplier.country"},
	"startdate":          {"startdate", "start_date"},
	"starttime":          {"starttime", "start_time"},
	"enddate":            {"enddate", "end_date"},
	"endtime":            {"endtime", "end_time"},
	"amount_description": {"amount_description", "amountdescription", "amount.description"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return v
	case float64:
		// numeric ids arrive as float64 after JSON decode
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// firstAlias: first non-empty string for a named alias set.
func firstAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

// amountFlexible: number from several paths (float64/int/string like "8,0").
func amountFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

/********** payload mapping **********/

// bookingBody digs response.booking out of the detail envelope; some remote
// variants skip the outer response wrapper.
func bookingBody(envelope map[string]any) map[string]any {
	if b, ok := lookupAny(envelope, "response.booking").(map[string]any); ok {
		return b
	}
	if b, ok := envelope["booking"].(map[string]any); ok {
		return b
	}
	return envelope
}

func MapHeader(envelope map[string]any) domain.BookingHeader {
	b := bookingBody(envelope)
	h := domain.BookingHeader{
		TripName:          firstAlias(b, headerAliases, "trip_name"),
		StatusCode:        firstAlias(b, headerAliases, "status_code"),
		StatusName:        firstAlias(b, headerAliases, "status_name"),
		CompanyName:       firstAlias(b, headerAliases, "company_name"),
		DeptorPlace:       firstAlias(b, headerAliases, "deptor_place"),
		ContactFirstName:  firstAlias(b, headerAliases, "contact_first_name"),
		ContactMiddleName: firstAlias(b, headerAliases, "contact_middle_name"),
		ContactSurname:    firstAlias(b, headerAliases, "contact_surname"),
		Summary:           firstAlias(b, headerAliases, "summary"),
		StartDate:         firstAlias(b, headerAliases, "startdate"),
		EndDate:           firstAlias(b, headerAliases, "enddate"),
	}
	if n := firstAlias(b, headerAliases, "number"); n != nil {
		h.Number = *n
	}
	return h
}

// MapElements accepts bookingelements either as an array or as an object
// keyed by element id (both occur in the wild).
func MapElements(envelope map[string]any) []domain.BookingElement {
	b := bookingBody(envelope)

	var raw []map[string]any
	switch v := b["bookingelements"].(type) {
	case []any:
		for _, it := range v {
			if m, ok := it.(map[string]any); ok {
				raw = append(raw, m)
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys) // deterministic order for the object form
		for _, k := range keys {
			if m, ok := v[k].(map[string]any); ok {
				if lookupStr(m, "id") == "" {
					m["id"] = k
				}
				raw = append(raw, m)
			}
		}
	}

	out := make([]domain.BookingElement, 0, len(raw))
	for _, m := range raw {
		e := domain.BookingElement{
			ExternalID:        lookupStr(m, "id"),
			Name:              firstAlias(m, elementAliases, "name"),
			TypeCode:          firstAlias(m, elementAliases, "type_code"),
			SupplierPlace:     firstAlias(m, elementAliases, "supplier_place"),
			SupplierCountry:   firstAlias(m, elementAliases, "supplier_country"),
			StartDate:         firstAlias(m, elementAliases, "startdate"),
			StartTime:         firstAlias(m, elementAliases, "starttime"),
			EndDate:           firstAlias(m, elementAliases, "enddate"),
			EndTime:           firstAlias(m, elementAliases, "endtime"),
			Amount:            amountFlexible(m, "amount", "price", "amount.value"),
			AmountDescription: firstAlias(m, elementAliases, "amount_description"),
		}
		out = append(out, e)
	}
	return out
}
