package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/zdziszkee/product-rates/internal/database"
	"github.com/zdziszkee/product-rates/internal/models"
)

// RateTierRepository defines the data operations on rate tiers and the
// records they own
type RateTierRepository interface {
	Create(ctx context.Context, tier *models.RateTier) error
	GetByID(ctx context.Context, id string) (*models.RateTier, error)
	ListByDepositRate(ctx context.Context, depositRateID string) ([]models.RateTier, error)
	ListByLendingRate(ctx context.Context, lendingRateID string) ([]models.RateTier, error)
	Update(ctx context.Context, tier *models.RateTier) error
	Delete(ctx context.Context, id string) error
}

// SQLRateTierRepository implements RateTierRepository via database/sql
type SQLRateTierRepository struct {
	db     *database.Database
	logger *zap.Logger
}

func NewSQLRateTierRepository(db *database.Database, logger *zap.Logger) RateTierRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLRateTierRepository{db: db, logger: logger}
}

// Create inserts the tier with its owned condition and sub-tier, assigning
// fresh ids to all of them
func (r *SQLRateTierRepository) Create(ctx context.Context, tier *models.RateTier) error {
	var snapshot idSnapshot
	snapshot.tier(tier)

	err := r.db.WithTx(ctx, func(q database.Queryer) error {
		return insertTier(ctx, r.db, q, tier)
	})
	if err != nil {
		snapshot.restore()
		return err
	}

	r.logger.Info("rate tier created", zap.String("rateTierId", tier.ID))
	return nil
}

func (r *SQLRateTierRepository) GetByID(ctx context.Context, id string) (*models.RateTier, error) {
	query := r.db.Rebind(selectTiers(r.db) + " WHERE t.rate_tier_id = ?")
	row := r.db.QueryRowContext(ctx, query, id)
	tier, err := scanTier(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get rate tier: %w", err)
	}
	return tier, nil
}

func (r *SQLRateTierRepository) ListByDepositRate(ctx context.Context, depositRateID string) ([]models.RateTier, error) {
	return listTiers(ctx, r.db, r.db.DB, "deposit_rate_id", depositRateID)
}

func (r *SQLRateTierRepository) ListByLendingRate(ctx context.Context, lendingRateID string) ([]models.RateTier, error) {
	return listTiers(ctx, r.db, r.db.DB, "lending_rate_id", lendingRateID)
}

// Update rewrites the tier columns. Owned records are updated in place,
// inserted when new and deleted when the tier no longer references them.
func (r *SQLRateTierRepository) Update(ctx context.Context, tier *models.RateTier) error {
	var snapshot idSnapshot
	snapshot.tier(tier)

	err := r.db.WithTx(ctx, func(q database.Queryer) error {
		condID, subID, err := ownedIDs(ctx, r.db, q, tier.ID)
		if err != nil {
			return err
		}

		if err := saveCondition(ctx, r.db, q, tier.ApplicabilityConditions, condID); err != nil {
			return err
		}
		if err := saveSubTier(ctx, r.db, q, tier.SubTier, subID); err != nil {
			return err
		}

		query := r.db.Rebind(fmt.Sprintf(`UPDATE %s SET name = ?, unit_of_measure = ?, minimum_value = ?, maximum_value = ?, rate_application_method = ?, applicability_conditions_id = ?, sub_tier_id = ?, deposit_rate_id = ?, lending_rate_id = ? WHERE rate_tier_id = ?`,
			r.db.Table(rateTiersTable)))
		if _, err := q.ExecContext(ctx, query,
			tier.Name,
			nullable(string(tier.UnitOfMeasure)),
			r.db.Decimal(tier.MinimumValue),
			r.db.NullDecimal(tier.MaximumValue),
			nullable(string(tier.RateApplicationMethod)),
			conditionRef(tier.ApplicabilityConditions),
			subTierRef(tier.SubTier),
			nullableRef(tier.DepositRateID),
			nullableRef(tier.LendingRateID),
			tier.ID,
		); err != nil {
			return mapError("update rate tier", err)
		}

		if tier.ApplicabilityConditions == nil && condID.Valid {
			if err := deleteByID(ctx, r.db, q, rateConditionsTable, "rate_condition_id", condID.String); err != nil {
				return err
			}
		}
		if tier.SubTier == nil && subID.Valid {
			if err := deleteByID(ctx, r.db, q, rateSubTiersTable, "sub_tier_id", subID.String); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		snapshot.restore()
		return err
	}

	r.logger.Info("rate tier updated", zap.String("rateTierId", tier.ID))
	return nil
}

// Delete removes the tier and cascades to its condition and sub-tier. The
// parent rate is left untouched.
func (r *SQLRateTierRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithTx(ctx, func(q database.Queryer) error {
		return deleteTier(ctx, r.db, q, id)
	})
	if err != nil {
		return err
	}

	r.logger.Info("rate tier deleted", zap.String("rateTierId", id))
	return nil
}

// Helper functions shared with the deposit rate repository

func selectTiers(db *database.Database) string {
	return fmt.Sprintf(`SELECT t.rate_tier_id, t.name, t.unit_of_measure, t.minimum_value, t.maximum_value, t.rate_application_method, t.deposit_rate_id, t.lending_rate_id, c.rate_condition_id, c.additional_info, c.additional_info_uri, s.sub_tier_id, s.name, s.unit_of_measure, s.minimum_value, s.maximum_value, s.rate_application_method FROM %s t LEFT JOIN %s c ON c.rate_condition_id = t.applicability_conditions_id LEFT JOIN %s s ON s.sub_tier_id = t.sub_tier_id`,
		db.Table(rateTiersTable), db.Table(rateConditionsTable), db.Table(rateSubTiersTable))
}

func listTiers(ctx context.Context, db *database.Database, q database.Queryer, column, parentID string) ([]models.RateTier, error) {
	query := db.Rebind(fmt.Sprintf("%s WHERE t.%s = ? ORDER BY t.minimum_value, t.rate_tier_id", selectTiers(db), column))
	rows, err := q.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("list rate tiers: %w", err)
	}
	defer rows.Close()

	tiers := []models.RateTier{}
	for rows.Next() {
		tier, err := scanTier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rate tier: %w", err)
		}
		tiers = append(tiers, *tier)
	}
	return tiers, rows.Err()
}

func insertTier(ctx context.Context, db *database.Database, q database.Queryer, tier *models.RateTier) error {
	if tier.ApplicabilityConditions != nil {
		if err := insertCondition(ctx, db, q, tier.ApplicabilityConditions); err != nil {
			return err
		}
	}
	if tier.SubTier != nil {
		if err := insertSubTier(ctx, db, q, tier.SubTier); err != nil {
			return err
		}
	}

	tier.ID = newID()
	query := db.Rebind(fmt.Sprintf("INSERT INTO %s (rate_tier_id, name, unit_of_measure, minimum_value, maximum_value, rate_application_method, applicability_conditions_id, sub_tier_id, deposit_rate_id, lending_rate_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		db.Table(rateTiersTable)))
	if _, err := q.ExecContext(ctx, query,
		tier.ID,
		tier.Name,
		nullable(string(tier.UnitOfMeasure)),
		db.Decimal(tier.MinimumValue),
		db.NullDecimal(tier.MaximumValue),
		nullable(string(tier.RateApplicationMethod)),
		conditionRef(tier.ApplicabilityConditions),
		subTierRef(tier.SubTier),
		nullableRef(tier.DepositRateID),
		nullableRef(tier.LendingRateID),
	); err != nil {
		return mapError("insert rate tier", err)
	}
	return nil
}

func deleteTier(ctx context.Context, db *database.Database, q database.Queryer, id string) error {
	condID, subID, err := ownedIDs(ctx, db, q, id)
	if err != nil {
		return err
	}

	if err := deleteByID(ctx, db, q, rateTiersTable, "rate_tier_id", id); err != nil {
		return err
	}
	if condID.Valid {
		if err := deleteByID(ctx, db, q, rateConditionsTable, "rate_condition_id", condID.String); err != nil {
			return err
		}
	}
	if subID.Valid {
		if err := deleteByID(ctx, db, q, rateSubTiersTable, "sub_tier_id", subID.String); err != nil {
			return err
		}
	}
	return nil
}

// ownedIDs returns the ids of the condition and sub-tier a tier owns, or
// ErrNotFound when the tier does not exist
func ownedIDs(ctx context.Context, db *database.Database, q database.Queryer, tierID string) (sql.NullString, sql.NullString, error) {
	query := db.Rebind(fmt.Sprintf("SELECT applicability_conditions_id, sub_tier_id FROM %s WHERE rate_tier_id = ?", db.Table(rateTiersTable)))
	var condID, subID sql.NullString
	err := q.QueryRowContext(ctx, query, tierID).Scan(&condID, &subID)
	if errors.Is(err, sql.ErrNoRows) {
		return condID, subID, ErrNotFound
	}
	if err != nil {
		return condID, subID, fmt.Errorf("get owned records: %w", err)
	}
	return condID, subID, nil
}

func deleteByID(ctx context.Context, db *database.Database, q database.Queryer, table, column, id string) error {
	query := db.Rebind(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", db.Table(table), column))
	if _, err := q.ExecContext(ctx, query, id); err != nil {
		return mapError("delete from "+table, err)
	}
	return nil
}

func insertCondition(ctx context.Context, db *database.Database, q database.Queryer, c *models.RateCondition) error {
	c.ID = newID()
	query := db.Rebind(fmt.Sprintf("INSERT INTO %s (rate_condition_id, additional_info, additional_info_uri) VALUES (?, ?, ?)", db.Table(rateConditionsTable)))
	if _, err := q.ExecContext(ctx, query, c.ID, c.AdditionalInfo, c.AdditionalInfoURI); err != nil {
		return mapError("insert rate condition", err)
	}
	return nil
}

func insertSubTier(ctx context.Context, db *database.Database, q database.Queryer, s *models.SubTier) error {
	s.ID = newID()
	query := db.Rebind(fmt.Sprintf("INSERT INTO %s (sub_tier_id, name, unit_of_measure, minimum_value, maximum_value, rate_application_method) VALUES (?, ?, ?, ?, ?, ?)", db.Table(rateSubTiersTable)))
	if _, err := q.ExecContext(ctx, query,
		s.ID,
		s.Name,
		nullable(string(s.UnitOfMeasure)),
		db.Decimal(s.MinimumValue),
		db.NullDecimal(s.MaximumValue),
		nullable(string(s.RateApplicationMethod)),
	); err != nil {
		return mapError("insert sub-tier", err)
	}
	return nil
}

// saveCondition updates the condition a tier already owns or inserts a new one
func saveCondition(ctx context.Context, db *database.Database, q database.Queryer, c *models.RateCondition, existing sql.NullString) error {
	if c == nil {
		return nil
	}
	if !existing.Valid {
		return insertCondition(ctx, db, q, c)
	}

	c.ID = existing.String
	query := db.Rebind(fmt.Sprintf("UPDATE %s SET additional_info = ?, additional_info_uri = ? WHERE rate_condition_id = ?", db.Table(rateConditionsTable)))
	if _, err := q.ExecContext(ctx, query, c.AdditionalInfo, c.AdditionalInfoURI, c.ID); err != nil {
		return mapError("update rate condition", err)
	}
	return nil
}

func saveSubTier(ctx context.Context, db *database.Database, q database.Queryer, s *models.SubTier, existing sql.NullString) error {
	if s == nil {
		return nil
	}
	if !existing.Valid {
		return insertSubTier(ctx, db, q, s)
	}

	s.ID = existing.String
	query := db.Rebind(fmt.Sprintf("UPDATE %s SET name = ?, unit_of_measure = ?, minimum_value = ?, maximum_value = ?, rate_application_method = ? WHERE sub_tier_id = ?", db.Table(rateSubTiersTable)))
	if _, err := q.ExecContext(ctx, query,
		s.Name,
		nullable(string(s.UnitOfMeasure)),
		db.Decimal(s.MinimumValue),
		db.NullDecimal(s.MaximumValue),
		nullable(string(s.RateApplicationMethod)),
		s.ID,
	); err != nil {
		return mapError("update sub-tier", err)
	}
	return nil
}

func conditionRef(c *models.RateCondition) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return nullable(c.ID)
}

func subTierRef(s *models.SubTier) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return nullable(s.ID)
}

func scanTier(row scanner) (*models.RateTier, error) {
	var (
		tier                               models.RateTier
		name, unit, method                 sql.NullString
		minValue, subMin, subMax           decimal.NullDecimal
		depositRateID, lendingRateID       sql.NullString
		condID, condInfo, condURI          sql.NullString
		subID, subName, subUnit, subMethod sql.NullString
	)

	err := row.Scan(
		&tier.ID,
		&name,
		&unit,
		&minValue,
		&tier.MaximumValue,
		&method,
		&depositRateID,
		&lendingRateID,
		&condID,
		&condInfo,
		&condURI,
		&subID,
		&subName,
		&subUnit,
		&subMin,
		&subMax,
		&subMethod,
	)
	if err != nil {
		return nil, err
	}

	tier.Name = name.String
	tier.UnitOfMeasure = models.UnitOfMeasure(unit.String)
	tier.MinimumValue = decimalFrom(minValue)
	tier.RateApplicationMethod = models.RateApplicationMethod(method.String)
	tier.DepositRateID = refFrom(depositRateID)
	tier.LendingRateID = refFrom(lendingRateID)

	if condID.Valid {
		tier.ApplicabilityConditions = &models.RateCondition{
			ID:                condID.String,
			AdditionalInfo:    condInfo.String,
			AdditionalInfoURI: condURI.String,
		}
	}
	if subID.Valid {
		tier.SubTier = &models.SubTier{
			ID:                    subID.String,
			Name:                  subName.String,
			UnitOfMeasure:         models.UnitOfMeasure(subUnit.String),
			MinimumValue:          decimalFrom(subMin),
			MaximumValue:          subMax,
			RateApplicationMethod: models.RateApplicationMethod(subMethod.String),
		}
	}
	return &tier, nil
}
