package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/zdziszkee/product-rates/internal/database"
	"github.com/zdziszkee/product-rates/internal/models"
)

// DepositRateRepository defines the data operations on deposit rates
type DepositRateRepository interface {
	Create(ctx context.Context, rate *models.DepositRate) error
	CreateBatch(ctx context.Context, rates []*models.DepositRate) (int, error)
	GetByID(ctx context.Context, id string) (*models.DepositRate, error)
	List(ctx context.Context, rateType models.DepositRateType) ([]models.DepositRate, error)
	Update(ctx context.Context, rate *models.DepositRate) error
	Delete(ctx context.Context, id string) error
}

// SQLDepositRateRepository implements DepositRateRepository via database/sql
type SQLDepositRateRepository struct {
	db     *database.Database
	logger *zap.Logger
}

// NewSQLDepositRateRepository creates a new repository instance
func NewSQLDepositRateRepository(db *database.Database, logger *zap.Logger) DepositRateRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLDepositRateRepository{db: db, logger: logger}
}

const depositRateColumns = "deposit_rate_id, deposit_rate_type, rate, calculation_frequency, application_frequency, additional_value, additional_info, additional_info_uri"

// Create inserts the rate and its tiers in one transaction. Ids are always
// generated here; ids set by the caller are overwritten, and put back when
// the insert fails.
func (r *SQLDepositRateRepository) Create(ctx context.Context, rate *models.DepositRate) error {
	var snapshot idSnapshot
	snapshot.rate(rate)

	err := r.db.WithTx(ctx, func(q database.Queryer) error {
		rate.ID = newID()
		query := r.db.Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", r.db.Table(depositRatesTable), depositRateColumns))
		if _, err := q.ExecContext(ctx, query,
			rate.ID,
			rate.RateType,
			r.db.Decimal(rate.Rate),
			rate.CalculationFrequency,
			rate.ApplicationFrequency,
			rate.AdditionalValue,
			rate.AdditionalInfo,
			rate.AdditionalInfoURI,
		); err != nil {
			return mapError("insert deposit rate", err)
		}

		rate.AttachTiers()
		for i := range rate.Tiers {
			if err := insertTier(ctx, r.db, q, &rate.Tiers[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		snapshot.restore()
		return err
	}

	r.logger.Info("deposit rate created",
		zap.String("depositRateId", rate.ID),
		zap.String("depositRateType", string(rate.RateType)),
		zap.Int("tiers", len(rate.Tiers)),
	)
	return nil
}

// CreateBatch creates every rate in its own transaction, carrying on past
// failures. It returns how many were stored and the joined errors.
func (r *SQLDepositRateRepository) CreateBatch(ctx context.Context, rates []*models.DepositRate) (int, error) {
	var errs []error
	created := 0
	for i, rate := range rates {
		if err := r.Create(ctx, rate); err != nil {
			r.logger.Warn("deposit rate batch insert failed", zap.Int("index", i), zap.Error(err))
			errs = append(errs, fmt.Errorf("rate %d: %w", i, err))
			continue
		}
		created++
	}
	return created, errors.Join(errs...)
}

// GetByID loads a rate with its tiers and the product details bundling it
func (r *SQLDepositRateRepository) GetByID(ctx context.Context, id string) (*models.DepositRate, error) {
	query := r.db.Rebind(fmt.Sprintf("SELECT %s FROM %s WHERE deposit_rate_id = ?", depositRateColumns, r.db.Table(depositRatesTable)))
	rate, err := scanDepositRate(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get deposit rate: %w", err)
	}

	if err := r.loadRelations(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

// List returns all rates, or only those of rateType when it is set
func (r *SQLDepositRateRepository) List(ctx context.Context, rateType models.DepositRateType) ([]models.DepositRate, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", depositRateColumns, r.db.Table(depositRatesTable))
	var args []any
	if rateType != "" {
		query += " WHERE deposit_rate_type = ?"
		args = append(args, rateType)
	}
	query += " ORDER BY deposit_rate_type, deposit_rate_id"

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list deposit rates: %w", err)
	}

	rates := []models.DepositRate{}
	for rows.Next() {
		rate, err := scanDepositRate(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan deposit rate: %w", err)
		}
		rates = append(rates, *rate)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list deposit rates: %w", err)
	}
	rows.Close()

	for i := range rates {
		if err := r.loadRelations(ctx, &rates[i]); err != nil {
			return nil, err
		}
	}
	return rates, nil
}

// Update rewrites the scalar columns of a rate. Tiers are managed through
// the tier repository and product details from the owning side.
func (r *SQLDepositRateRepository) Update(ctx context.Context, rate *models.DepositRate) error {
	if err := r.checkExists(ctx, r.db.DB, rate.ID); err != nil {
		return err
	}

	query := r.db.Rebind(fmt.Sprintf("UPDATE %s SET deposit_rate_type = ?, rate = ?, calculation_frequency = ?, application_frequency = ?, additional_value = ?, additional_info = ?, additional_info_uri = ? WHERE deposit_rate_id = ?",
		r.db.Table(depositRatesTable)))
	if _, err := r.db.ExecContext(ctx, query,
		rate.RateType,
		r.db.Decimal(rate.Rate),
		rate.CalculationFrequency,
		rate.ApplicationFrequency,
		rate.AdditionalValue,
		rate.AdditionalInfo,
		rate.AdditionalInfoURI,
		rate.ID,
	); err != nil {
		return mapError("update deposit rate", err)
	}

	r.logger.Info("deposit rate updated", zap.String("depositRateId", rate.ID))
	return nil
}

// Delete removes a rate together with its tiers. A rate still bundled by a
// product detail cannot be deleted.
func (r *SQLDepositRateRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithTx(ctx, func(q database.Queryer) error {
		if err := r.checkExists(ctx, q, id); err != nil {
			return err
		}

		var bundles int
		query := r.db.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE deposit_rate_id = ?", r.db.Table(productDetailBundlesTable)))
		if err := q.QueryRowContext(ctx, query, id).Scan(&bundles); err != nil {
			return fmt.Errorf("count product detail bundles: %w", err)
		}
		if bundles > 0 {
			return fmt.Errorf("%w: deposit rate %s is bundled by %d product details", ErrConstraintViolation, id, bundles)
		}

		tierIDs, err := r.tierIDs(ctx, q, id)
		if err != nil {
			return err
		}
		for _, tierID := range tierIDs {
			if err := deleteTier(ctx, r.db, q, tierID); err != nil {
				return err
			}
		}

		return deleteByID(ctx, r.db, q, depositRatesTable, "deposit_rate_id", id)
	})
	if err != nil {
		return err
	}

	r.logger.Info("deposit rate deleted", zap.String("depositRateId", id))
	return nil
}

// Helper methods

func (r *SQLDepositRateRepository) loadRelations(ctx context.Context, rate *models.DepositRate) error {
	tiers, err := listTiers(ctx, r.db, r.db.DB, "deposit_rate_id", rate.ID)
	if err != nil {
		return err
	}
	rate.Tiers = tiers

	details, err := r.productDetailIDs(ctx, rate.ID)
	if err != nil {
		return err
	}
	rate.ProductDetail = details
	return nil
}

func (r *SQLDepositRateRepository) productDetailIDs(ctx context.Context, depositRateID string) ([]string, error) {
	query := r.db.Rebind(fmt.Sprintf("SELECT product_detail_id FROM %s WHERE deposit_rate_id = ? ORDER BY product_detail_id", r.db.Table(productDetailBundlesTable)))
	rows, err := r.db.QueryContext(ctx, query, depositRateID)
	if err != nil {
		return nil, fmt.Errorf("list product details: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product detail: %w", err)
		}
		ids = append(ids, strings.TrimSpace(id))
	}
	return ids, rows.Err()
}

// tierIDs reads the ids of a rate's tiers and closes the cursor before
// returning, so the caller can issue statements on the same transaction
func (r *SQLDepositRateRepository) tierIDs(ctx context.Context, q database.Queryer, depositRateID string) ([]string, error) {
	query := r.db.Rebind(fmt.Sprintf("SELECT rate_tier_id FROM %s WHERE deposit_rate_id = ?", r.db.Table(rateTiersTable)))
	rows, err := q.QueryContext(ctx, query, depositRateID)
	if err != nil {
		return nil, fmt.Errorf("list rate tier ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan rate tier id: %w", err)
		}
		ids = append(ids, strings.TrimSpace(id))
	}
	return ids, rows.Err()
}

func (r *SQLDepositRateRepository) checkExists(ctx context.Context, q database.Queryer, id string) error {
	query := r.db.Rebind(fmt.Sprintf("SELECT 1 FROM %s WHERE deposit_rate_id = ? LIMIT 1", r.db.Table(depositRatesTable)))
	var exists int
	err := q.QueryRowContext(ctx, query, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check deposit rate exists: %w", err)
	}
	return nil
}

func scanDepositRate(row scanner) (*models.DepositRate, error) {
	var (
		rate                                          models.DepositRate
		rateType                                      string
		value                                         decimal.NullDecimal
		calcFreq, applFreq, addValue, addInfo, addURI sql.NullString
	)

	err := row.Scan(
		&rate.ID,
		&rateType,
		&value,
		&calcFreq,
		&applFreq,
		&addValue,
		&addInfo,
		&addURI,
	)
	if err != nil {
		return nil, err
	}

	rate.ID = strings.TrimSpace(rate.ID)
	rate.RateType = models.DepositRateType(rateType)
	rate.Rate = decimalFrom(value)
	rate.CalculationFrequency = calcFreq.String
	rate.ApplicationFrequency = applFreq.String
	rate.AdditionalValue = addValue.String
	rate.AdditionalInfo = addInfo.String
	rate.AdditionalInfoURI = addURI.String
	return &rate, nil
}
