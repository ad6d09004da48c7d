// Package lookup reads the relational state bulk actions need around the
// indexes: current property tag assignments, prospect-to-property links
// and the rows a skip-trace upload is built from.
package lookup

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/parcelworks/stacker/internal/domain/change"
	"github.com/parcelworks/stacker/internal/domain/trace"
)

const (
	tagStatesSQL = `
SELECT pta.prop_id,
       TO_JSONB(ARRAY_REMOVE(ARRAY_AGG(DISTINCT pta.tag_id), NULL)),
       COUNT(DISTINCT pt.id) FILTER (WHERE pt.distress_indicator = true)
FROM properties_propertytagassignment pta
INNER JOIN properties_propertytag pt ON pta.tag_id = pt.id
WHERE pta.prop_id = ANY($1)
GROUP BY pta.prop_id`

	propertyIDsSQL = `
SELECT DISTINCT pros.prop_id
FROM sherpa_prospect pros
WHERE pros.id = ANY($1) AND pros.prop_id IS NOT NULL
ORDER BY pros.prop_id`

	oneProspectPerPropertySQL = `
SELECT DISTINCT ON (pros.prop_id) pros.id
FROM sherpa_prospect pros
WHERE pros.id = ANY($1)
ORDER BY pros.prop_id, pros.id`

	skipTraceRowsSQL = `
SELECT DISTINCT ON (prop.id)
       COALESCE(pros.first_name, ''),
       COALESCE(pros.last_name, ''),
       COALESCE(mail.address, ''),
       COALESCE(mail.city, ''),
       COALESCE(mail.zip_code, ''),
       COALESCE(addr.address, ''),
       COALESCE(addr.city, ''),
       COALESCE(addr.state, ''),
       COALESCE(addr.zip_code, '')
FROM properties_property prop
INNER JOIN properties_address addr ON prop.address_id = addr.id
LEFT JOIN properties_address mail ON prop.mailing_address_id = mail.id
LEFT JOIN sherpa_prospect pros ON pros.prop_id = prop.id
WHERE prop.company_id = $1 AND prop.id = ANY($2)
ORDER BY prop.id, pros.id`
)

// Repo answers relational lookups.
type Repo struct {
	db *sql.DB
}

// New creates a lookup repository over the given database handle.
func New(sqldb *sql.DB) *Repo {
	return &Repo{db: sqldb}
}

// TagStates returns the current tag assignment state of each property.
// Properties without assignments are absent from the result; callers
// treat them as having no tags.
func (r *Repo) TagStates(ctx context.Context, propertyIDs []int64) ([]change.Tags, error) {
	if len(propertyIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, tagStatesSQL, propertyIDs)
	if err != nil {
		return nil, fmt.Errorf("lookup tag states: %w", err)
	}
	defer rows.Close()

	var states []change.Tags
	for rows.Next() {
		var (
			propertyID int64
			raw        []byte
			distress   int64
		)
		if err := rows.Scan(&propertyID, &raw, &distress); err != nil {
			return nil, fmt.Errorf("scan tag state: %w", err)
		}
		tagIDs := []int64{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &tagIDs); err != nil {
				return nil, fmt.Errorf("decode tag ids for property %d: %w", propertyID, err)
			}
		}
		states = append(states, change.Tags{
			PropertyID:         propertyID,
			TagIDs:             tagIDs,
			DistressIndicators: int(distress),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lookup tag states: %w", err)
	}
	return states, nil
}

// PropertyIDs returns the distinct properties the given prospects belong
// to. Prospects without a property are skipped.
func (r *Repo) PropertyIDs(ctx context.Context, prospectIDs []int64) ([]int64, error) {
	if len(prospectIDs) == 0 {
		return nil, nil
	}
	return r.queryIDs(ctx, propertyIDsSQL, prospectIDs, "lookup property ids")
}

// OneProspectPerProperty thins a prospect id list down to one prospect per
// property, the lowest id of each. Direct-mail pushes must not mail the
// same household twice.
func (r *Repo) OneProspectPerProperty(ctx context.Context, prospectIDs []int64) ([]int64, error) {
	if len(prospectIDs) == 0 {
		return nil, nil
	}
	return r.queryIDs(ctx, oneProspectPerPropertySQL, prospectIDs, "dedup prospect ids")
}

func (r *Repo) queryIDs(ctx context.Context, query string, ids []int64, op string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// SkipTraceRows returns one upload row per property, scoped to the
// company so resolved ids can never cross tenants.
func (r *Repo) SkipTraceRows(ctx context.Context, companyID int64, propertyIDs []int64) ([]trace.Row, error) {
	if len(propertyIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, skipTraceRowsSQL, companyID, propertyIDs)
	if err != nil {
		return nil, fmt.Errorf("lookup skip trace rows: %w", err)
	}
	defer rows.Close()

	var out []trace.Row
	for rows.Next() {
		var row trace.Row
		if err := rows.Scan(
			&row.FirstName, &row.LastName,
			&row.MailAddress, &row.MailCity, &row.MailZip,
			&row.PropertyAddress, &row.PropertyCity, &row.PropertyState, &row.PropertyZip,
		); err != nil {
			return nil, fmt.Errorf("scan skip trace row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lookup skip trace rows: %w", err)
	}
	return out, nil
}
