package quality

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/nse-data/internal/fault"
	"github.com/rickgao/nse-data/internal/model"
)

// Checker runs quality checks over purchase orders.
type Checker struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Checker.
func New(db *pgxpool.Pool, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{db: db, logger: logger}
}

// Check scans all of the user's purchase orders and returns a report.
// A user with no purchases is a not-found condition.
func (c *Checker) Check(ctx context.Context, userID uuid.UUID) (model.QualityReport, error) {
	orders, err := c.fetchOrders(ctx, userID)
	if err != nil {
		return model.QualityReport{}, err
	}
	if len(orders) == 0 {
		return model.QualityReport{}, fault.NotFound("no purchase orders for user %s", userID)
	}

	report := Evaluate(userID, orders, time.Now().UTC())
	c.logger.Info("quality check completed",
		"user_id", userID,
		"orders", len(orders),
		"issues", report.TotalIssues,
	)
	return report, nil
}

func (c *Checker) fetchOrders(ctx context.Context, userID uuid.UUID) ([]model.PurchaseOrder, error) {
	rows, err := c.db.Query(ctx, `
		SELECT id, user_id, instrument_id, purchase_price, purchase_qty, ts
		FROM purchase_orders
		WHERE user_id = $1
		ORDER BY ts ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []model.PurchaseOrder
	for rows.Next() {
		var o model.PurchaseOrder
		if err := rows.Scan(&o.ID, &o.UserID, &o.InstrumentID,
			&o.PurchasePrice, &o.PurchaseQty, &o.Timestamp); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase orders: %w", err)
	}
	return orders, nil
}

// Evaluate applies the check rules to orders as of now. Each violated rule
// yields one issue per offending order:
//
//   - non-positive price: high severity
//   - non-positive quantity: medium severity
//   - timestamp in the future relative to now: high severity
func Evaluate(userID uuid.UUID, orders []model.PurchaseOrder, now time.Time) model.QualityReport {
	report := model.QualityReport{
		UserID:    userID,
		Timestamp: now,
	}

	add := func(severity model.Severity, format string, args ...any) {
		report.Issues = append(report.Issues, model.QualityIssue{
			IssueID:     uuid.New(),
			Description: fmt.Sprintf(format, args...),
			Severity:    severity,
			Timestamp:   now,
		})
	}

	for _, o := range orders {
		if o.PurchasePrice <= 0 {
			add(model.SeverityHigh, "order %s has non-positive price %v", o.ID, o.PurchasePrice)
		}
		if o.PurchaseQty <= 0 {
			add(model.SeverityMedium, "order %s has non-positive quantity %d", o.ID, o.PurchaseQty)
		}
		if o.Timestamp.After(now) {
			add(model.SeverityHigh, "order %s is timestamped in the future (%s)",
				o.ID, o.Timestamp.Format(time.RFC3339))
		}
	}

	report.TotalIssues = len(report.Issues)
	return report
}
