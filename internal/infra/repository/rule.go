package repository

import (
	"context"
	"encoding/json"

	"farelock/internal/domain/pricing"
	"farelock/internal/infra"
	"farelock/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RuleRepository reads pricing rules. Rules are managed out of band; the
// booking flow only ever loads the active set for one service type.
type RuleRepository struct {
	pool *pgxpool.Pool
}

func NewRuleRepository(pool *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{pool: pool}
}

// FindActive returns active rules for the service type whose region is
// either global or the caller's, ordered by precedence so the pricing engine
// applies them deterministically.
func (r *RuleRepository) FindActive(ctx context.Context, serviceType pricing.ServiceType, region string) ([]pricing.Rule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, service_type, markup_type, markup_value, platform_fee,
		       airlines, routes, hotel_ids, cities, countries, ratings,
		       region, min_fare, max_fare, precedence, is_active
		FROM pricing_rules
		WHERE is_active AND service_type = $1 AND region IN ('global', $2)
		ORDER BY precedence, name`,
		serviceType, region,
	)
	if err != nil {
		return nil, wrapQueryErr("failed to query pricing rules", err)
	}
	defer rows.Close()

	var out []pricing.Rule
	for rows.Next() {
		var rule pricing.Rule
		var airlines, routes, hotelIDs, cities, countries, ratings []byte
		if err := rows.Scan(
			&rule.ID, &rule.Name, &rule.ServiceType, &rule.MarkupType, &rule.MarkupValue, &rule.PlatformFee,
			&airlines, &routes, &hotelIDs, &cities, &countries, &ratings,
			&rule.Region, &rule.MinFare, &rule.MaxFare, &rule.Precedence, &rule.IsActive,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan pricing rule", err)
		}

		for _, col := range []struct {
			raw  []byte
			dest any
		}{
			{airlines, &rule.Airlines},
			{routes, &rule.Routes},
			{hotelIDs, &rule.HotelIDs},
			{cities, &rule.Cities},
			{countries, &rule.Countries},
			{ratings, &rule.Ratings},
		} {
			if len(col.raw) == 0 {
				continue
			}
			if err := json.Unmarshal(col.raw, col.dest); err != nil {
				return nil, errs.Wrap(err, "failed to decode rule scoping")
			}
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read pricing rules", err)
	}
	return out, nil
}
