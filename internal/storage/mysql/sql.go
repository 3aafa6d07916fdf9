package mysql

// id = LAST_INSERT_ID(id) makes LastInsertId() return the existing row's id
// on the update branch, so callers get the header identity either way.
const upsertHeaderSQL = `
INSERT INTO bookingheader
  (number, trip_name, status_code, status_name, company_name, deptor_place,
   contact_first_name, contact_middle_name, contact_surname, summary, startdate, enddate)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  id                  = LAST_INSERT_ID(id),
  trip_name           = VALUES(trip_name),
  status_code         = VALUES(status_code),
  status_name         = VALUES(status_name),
  company_name        = VALUES(company_name),
  deptor_place        = VALUES(deptor_place),
  contact_first_name  = VALUES(contact_first_name),
  contact_middle_name = VALUES(contact_middle_name),
  contact_surname     = VALUES(contact_surname),
  summary             = VALUES(summary),
  startdate           = VALUES(startdate),
  enddate             = VALUES(enddate),
  updated_at          = CURRENT_TIMESTAMP
`

const upsertElementSQL = `
INSERT INTO bookingelement
  (external_id, booking_id, element_name, element_type_code, supplier_place,
   supplier_country, startdate, starttime, enddate, endtime, amount, amount_description)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  id                 = LAST_INSERT_ID(id),
  booking_id         = VALUES(booking_id),
  element_name       = VALUES(element_name),
  element_type_code  = VALUES(element_type_code),
  supplier_place     = VALUES(supplier_place),
  supplier_country   = VALUES(supplier_country),
  startdate          = VALUES(startdate),
  starttime          = VALUES(starttime),
  enddate            = VALUES(enddate),
  endtime            = VALUES(endtime),
  amount             = VALUES(amount),
  amount_description = VALUES(amount_description),
  updated_at         = CURRENT_TIMESTAMP
`

const insertAuditSQL = `
INSERT INTO updatetrack (booking_updated, update_type, date_updated)
VALUES (?, ?, ?)
`

// sync_state is a single-row table; row 1 is the watermark.
const selectWatermarkSQL = `
SELECT last_synced_at FROM sync_state WHERE id = 1
`

const upsertWatermarkSQL = `
INSERT INTO sync_state (id, last_synced_at)
VALUES (1, ?)
ON DUPLICATE KEY UPDATE
  last_synced_at = VALUES(last_synced_at),
  updated_at     = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// One row per (header, element) pair; headers without elements still appear
// with NULL element columns. Ordered so grouping preserves element order.
const bookingsByDateRangeSQL = `
SELECT
  bh.id AS booking_id, bh.number, bh.trip_name, bh.status_code, bh.status_name,
  bh.company_name, bh.deptor_place, bh.contact_first_name, bh.contact_middle_name,
  bh.contact_surname, bh.summary, bh.startdate AS booking_startdate, bh.enddate AS booking_enddate,
  be.id AS element_id, be.element_name, be.element_type_code, be.supplier_place,
  be.supplier_country, be.startdate AS element_startdate, be.starttime,
  be.enddate AS element_enddate, be.endtime, be.amount, be.amount_description
FROM bookingheader bh
LEFT JOIN bookingelement be ON bh.id = be.booking_id
WHERE bh.startdate >= ? AND bh.enddate <= ?
ORDER BY bh.id, be.id
`

const allBookingsSQL = `
SELECT id, number, trip_name, status_code, status_name, company_name, deptor_place,
       contact_first_name, contact_middle_name, contact_surname, summary, startdate, enddate
FROM bookingheader
`

// -----------------------------------------------------------------------------
// USERS
// -----------------------------------------------------------------------------

const insertUserSQL = `
INSERT INTO users (name, email, password, address, phone, role, is_verified)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const selectUserSQL = `
SELECT id, name, email, password, address, phone, role, is_verified, created_at, updated_at
FROM users
`

const markVerifiedSQL = `
UPDATE users SET is_verified = 1 WHERE id = ?
`

const updatePasswordSQL = `
UPDATE users SET password = ? WHERE id = ?
`

const deleteUserSQL = `
DELETE FROM users WHERE id = ?
`
