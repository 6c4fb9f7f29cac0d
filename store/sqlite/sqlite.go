/*
Package sqlite provides a SQLite-backed persistence collaborator for
submitted route sheets.

PURPOSE:
  Implements draft.Submitter. A submitted payload is written as one
  header row plus one row per trip and per expense; trips get their
  permanent identifiers here. The read path reassembles the same
  payload shape, which is what makes the round-trip property testable
  end to end.

KEY TABLES:
  route_sheets:         Header, odometer readings, reconciliation figures
  route_sheet_trips:    One row per fare, keyed (sheet_id, sequence_number)
  route_sheet_expenses: One row per outlay

DECIMALS:
  Monetary columns are TEXT and round-trip through decimal strings.
  REAL would reintroduce exactly the float drift the engine avoids.

CONCURRENCY:
  sync.RWMutex plus WAL mode, same pattern as any of our SQLite stores.
  With PostgreSQL the database would handle this instead.

USAGE:
  store, err := sqlite.New("./data/sheets.db")   // ":memory:" in tests
  d := draft.New(plan, store)
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/routesheet-engine/draft"
)

// ErrSheetNotFound is returned when a sheet id does not exist.
var ErrSheetNotFound = errors.New("route sheet not found")

// Store persists submitted route sheets.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store on the given database path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS route_sheets (
		id TEXT PRIMARY KEY,
		driver_id TEXT NOT NULL,
		vehicle_id TEXT NOT NULL,
		plate_number TEXT NOT NULL,
		shift_date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT,
		interruption TEXT,
		compensation_rule TEXT NOT NULL,
		compensation_rate TEXT NOT NULL,
		note TEXT,

		board_km_start INTEGER NOT NULL, board_km_end INTEGER NOT NULL,
		taxi_total_km_start INTEGER NOT NULL, taxi_total_km_end INTEGER NOT NULL,
		taxi_charged_km_start INTEGER NOT NULL, taxi_charged_km_end INTEGER NOT NULL,
		taxi_pickups_start INTEGER NOT NULL, taxi_pickups_end INTEGER NOT NULL,
		taxi_falls_start INTEGER NOT NULL, taxi_falls_end INTEGER NOT NULL,
		taxi_revenue_start TEXT NOT NULL, taxi_revenue_end TEXT NOT NULL,

		total_revenue TEXT NOT NULL,
		total_meter_price TEXT NOT NULL,
		total_expenses_cash TEXT NOT NULL,
		total_expenses_card TEXT NOT NULL,
		compensation_amount TEXT NOT NULL,
		compensation_explanation TEXT NOT NULL,
		net_result TEXT NOT NULL,

		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_route_sheets_driver_date
		ON route_sheets(driver_id, shift_date);

	CREATE TABLE IF NOT EXISTS route_sheet_trips (
		id TEXT PRIMARY KEY,
		sheet_id TEXT NOT NULL REFERENCES route_sheets(id),
		sequence_number INTEGER NOT NULL,
		departure_index INTEGER NOT NULL,
		pickup_index INTEGER NOT NULL,
		pickup_place TEXT NOT NULL,
		pickup_time TEXT NOT NULL,
		dropoff_index INTEGER NOT NULL,
		dropoff_place TEXT NOT NULL,
		dropoff_time TEXT NOT NULL,
		meter_price TEXT NOT NULL,
		amount_collected TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		billing_client_ref TEXT,
		UNIQUE(sheet_id, sequence_number)
	);

	CREATE INDEX IF NOT EXISTS idx_trips_sheet
		ON route_sheet_trips(sheet_id);

	CREATE TABLE IF NOT EXISTS route_sheet_expenses (
		id TEXT PRIMARY KEY,
		sheet_id TEXT NOT NULL REFERENCES route_sheets(id),
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		amount TEXT NOT NULL,
		payment_method TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_expenses_sheet
		ON route_sheet_expenses(sheet_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SAVE - draft.Submitter
// =============================================================================

// Save persists a submitted payload atomically and returns the sheet's
// permanent identifier.
func (s *Store) Save(ctx context.Context, p draft.Payload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	sheetID := uuid.NewString()
	o := p.VehicleOdometer

	_, err = tx.ExecContext(ctx, `
		INSERT INTO route_sheets (
			id, driver_id, vehicle_id, plate_number, shift_date,
			start_time, end_time, interruption,
			compensation_rule, compensation_rate, note,
			board_km_start, board_km_end,
			taxi_total_km_start, taxi_total_km_end,
			taxi_charged_km_start, taxi_charged_km_end,
			taxi_pickups_start, taxi_pickups_end,
			taxi_falls_start, taxi_falls_end,
			taxi_revenue_start, taxi_revenue_end,
			total_revenue, total_meter_price,
			total_expenses_cash, total_expenses_card,
			compensation_amount, compensation_explanation, net_result,
			created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		sheetID, p.DriverID, p.VehicleID, p.PlateNumber, p.ShiftDate,
		p.StartTime, p.EndTime, p.InterruptionDuration,
		p.CompensationRule, p.CompensationRate.String(), p.Note,
		o.BoardKmStart, o.BoardKmEnd,
		o.TaxiTotalKmStart, o.TaxiTotalKmEnd,
		o.TaxiChargedKmStart, o.TaxiChargedKmEnd,
		o.TaxiPickupsStart, o.TaxiPickupsEnd,
		o.TaxiFallsStart, o.TaxiFallsEnd,
		o.TaxiRevenueStart.String(), o.TaxiRevenueEnd.String(),
		p.Reconciliation.TotalRevenue.String(), p.Reconciliation.TotalMeterPrice.String(),
		p.Reconciliation.TotalExpensesCash.String(), p.Reconciliation.TotalExpensesCard.String(),
		p.Reconciliation.CompensationAmount.String(), p.CompensationExplanation,
		p.Reconciliation.NetResult.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save route sheet: %w", err)
	}

	for _, t := range p.Trips {
		// Permanent trip identifiers are assigned here; the draft ids
		// were temporary.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO route_sheet_trips (
				id, sheet_id, sequence_number,
				departure_index, pickup_index, pickup_place, pickup_time,
				dropoff_index, dropoff_place, dropoff_time,
				meter_price, amount_collected, payment_method, billing_client_ref
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			uuid.NewString(), sheetID, t.SequenceNumber,
			t.DepartureIndex, t.PickupIndex, t.PickupPlace, t.PickupTime,
			t.DropoffIndex, t.DropoffPlace, t.DropoffTime,
			t.MeterPrice.String(), t.AmountCollected.String(),
			t.PaymentMethod, t.BillingClientRef,
		)
		if err != nil {
			return "", fmt.Errorf("failed to save trip %d: %w", t.SequenceNumber, err)
		}
	}

	for _, e := range p.Expenses {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO route_sheet_expenses (
				id, sheet_id, category, description, amount, payment_method
			) VALUES (?,?,?,?,?,?)`,
			uuid.NewString(), sheetID, e.Category, e.Description,
			e.Amount.String(), e.PaymentMethod,
		)
		if err != nil {
			return "", fmt.Errorf("failed to save expense: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return sheetID, nil
}

// Compile-time check that Store implements draft.Submitter.
var _ draft.Submitter = (*Store)(nil)

// =============================================================================
// READ PATH
// =============================================================================

// Get reassembles a stored route sheet into the payload shape.
func (s *Store) Get(ctx context.Context, sheetID string) (draft.Payload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		p                draft.Payload
		rate             string
		revStart, revEnd string
		rec              [6]string // revenue, meter, cash, card, compensation, net
	)
	o := &p.VehicleOdometer

	err := s.db.QueryRowContext(ctx, `
		SELECT driver_id, vehicle_id, plate_number, shift_date,
			start_time, end_time, interruption,
			compensation_rule, compensation_rate, note,
			board_km_start, board_km_end,
			taxi_total_km_start, taxi_total_km_end,
			taxi_charged_km_start, taxi_charged_km_end,
			taxi_pickups_start, taxi_pickups_end,
			taxi_falls_start, taxi_falls_end,
			taxi_revenue_start, taxi_revenue_end,
			total_revenue, total_meter_price,
			total_expenses_cash, total_expenses_card,
			compensation_amount, compensation_explanation, net_result
		FROM route_sheets WHERE id = ?`, sheetID).Scan(
		&p.DriverID, &p.VehicleID, &p.PlateNumber, &p.ShiftDate,
		&p.StartTime, &p.EndTime, &p.InterruptionDuration,
		&p.CompensationRule, &rate, &p.Note,
		&o.BoardKmStart, &o.BoardKmEnd,
		&o.TaxiTotalKmStart, &o.TaxiTotalKmEnd,
		&o.TaxiChargedKmStart, &o.TaxiChargedKmEnd,
		&o.TaxiPickupsStart, &o.TaxiPickupsEnd,
		&o.TaxiFallsStart, &o.TaxiFallsEnd,
		&revStart, &revEnd,
		&rec[0], &rec[1], &rec[2], &rec[3], &rec[4], &p.CompensationExplanation, &rec[5],
	)
	if errors.Is(err, sql.ErrNoRows) {
		return draft.Payload{}, ErrSheetNotFound
	}
	if err != nil {
		return draft.Payload{}, err
	}

	if p.CompensationRate, err = decimal.NewFromString(rate); err != nil {
		return draft.Payload{}, fmt.Errorf("corrupt compensation_rate: %w", err)
	}
	if o.TaxiRevenueStart, err = decimal.NewFromString(revStart); err != nil {
		return draft.Payload{}, err
	}
	if o.TaxiRevenueEnd, err = decimal.NewFromString(revEnd); err != nil {
		return draft.Payload{}, err
	}
	dst := []*decimal.Decimal{
		&p.Reconciliation.TotalRevenue, &p.Reconciliation.TotalMeterPrice,
		&p.Reconciliation.TotalExpensesCash, &p.Reconciliation.TotalExpensesCard,
		&p.Reconciliation.CompensationAmount, &p.Reconciliation.NetResult,
	}
	for i, raw := range rec {
		if *dst[i], err = decimal.NewFromString(raw); err != nil {
			return draft.Payload{}, fmt.Errorf("corrupt reconciliation figure: %w", err)
		}
	}

	if p.Trips, err = s.loadTrips(ctx, sheetID); err != nil {
		return draft.Payload{}, err
	}
	if p.Expenses, err = s.loadExpenses(ctx, sheetID); err != nil {
		return draft.Payload{}, err
	}
	return p, nil
}

func (s *Store) loadTrips(ctx context.Context, sheetID string) ([]draft.TripPayload, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sequence_number, departure_index, pickup_index, pickup_place,
			pickup_time, dropoff_index, dropoff_place, dropoff_time,
			meter_price, amount_collected, payment_method, billing_client_ref
		FROM route_sheet_trips WHERE sheet_id = ?
		ORDER BY sequence_number`, sheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []draft.TripPayload
	for rows.Next() {
		var (
			t            draft.TripPayload
			meter, coll  string
			billingRef   sql.NullString
		)
		if err := rows.Scan(&t.SequenceNumber, &t.DepartureIndex, &t.PickupIndex,
			&t.PickupPlace, &t.PickupTime, &t.DropoffIndex, &t.DropoffPlace,
			&t.DropoffTime, &meter, &coll, &t.PaymentMethod, &billingRef); err != nil {
			return nil, err
		}
		if t.MeterPrice, err = decimal.NewFromString(meter); err != nil {
			return nil, err
		}
		if t.AmountCollected, err = decimal.NewFromString(coll); err != nil {
			return nil, err
		}
		t.BillingClientRef = billingRef.String
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (s *Store) loadExpenses(ctx context.Context, sheetID string) ([]draft.ExpensePayload, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, description, amount, payment_method
		FROM route_sheet_expenses WHERE sheet_id = ?`, sheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []draft.ExpensePayload
	for rows.Next() {
		var (
			e   draft.ExpensePayload
			amt string
		)
		if err := rows.Scan(&e.Category, &e.Description, &amt, &e.PaymentMethod); err != nil {
			return nil, err
		}
		if e.Amount, err = decimal.NewFromString(amt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// =============================================================================
// LISTING
// =============================================================================

// SheetSummary is one row of the back-office sheet listing.
type SheetSummary struct {
	ID           string          `json:"id"`
	DriverID     string          `json:"driverId"`
	VehicleID    string          `json:"vehicleId"`
	ShiftDate    string          `json:"shiftDate"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	NetResult    decimal.Decimal `json:"netResult"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// List returns sheet summaries, newest first, optionally filtered by
// driver.
func (s *Store) List(ctx context.Context, driverID string) ([]SheetSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, driver_id, vehicle_id, shift_date, total_revenue, net_result, created_at
		FROM route_sheets`
	args := []any{}
	if driverID != "" {
		query += ` WHERE driver_id = ?`
		args = append(args, driverID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SheetSummary
	for rows.Next() {
		var (
			sum          SheetSummary
			revenue, net string
			createdAt    string
		)
		if err := rows.Scan(&sum.ID, &sum.DriverID, &sum.VehicleID, &sum.ShiftDate,
			&revenue, &net, &createdAt); err != nil {
			return nil, err
		}
		if sum.TotalRevenue, err = decimal.NewFromString(revenue); err != nil {
			return nil, err
		}
		if sum.NetResult, err = decimal.NewFromString(net); err != nil {
			return nil, err
		}
		sum.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, sum)
	}
	return out, rows.Err()
}
