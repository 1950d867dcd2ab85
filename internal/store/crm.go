package store

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"loomsales.app/copilot/core/db"
	"loomsales.app/copilot/internal/model"
)

type crmStore struct {
	conn db.DBTX
}

func newCrmStore(conn db.DBTX) CrmStore {
	return &crmStore{conn: conn}
}

const searchCompaniesSQL = `
SELECT id::text, name, sector, size, description
FROM companies
WHERE name ILIKE $1
ORDER BY name
LIMIT $2`

const searchContactsSQL = `
SELECT id::text, first_name, last_name, title
FROM contacts
WHERE first_name ILIKE $1 OR last_name ILIKE $1
ORDER BY last_name, first_name
LIMIT $2`

const searchDealsSQL = `
SELECT id::text, name, stage, amount::float8
FROM deals
WHERE name ILIKE $1
ORDER BY name
LIMIT $2`

func (s *crmStore) SearchCompanies(ctx context.Context, term string, limit int) ([]model.CrmCompany, error) {
	rows, err := s.conn.Query(ctx, searchCompaniesSQL, containsPattern(term), limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CrmCompany, error) {
		var c model.CrmCompany
		err := row.Scan(&c.ID, &c.Name, &c.Sector, &c.Size, &c.Description)
		return c, err
	})
}

func (s *crmStore) SearchContacts(ctx context.Context, term string, limit int) ([]model.CrmContact, error) {
	rows, err := s.conn.Query(ctx, searchContactsSQL, containsPattern(term), limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CrmContact, error) {
		var c model.CrmContact
		err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Title)
		return c, err
	})
}

func (s *crmStore) SearchDeals(ctx context.Context, term string, limit int) ([]model.CrmDeal, error) {
	rows, err := s.conn.Query(ctx, searchDealsSQL, containsPattern(term), limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CrmDeal, error) {
		var d model.CrmDeal
		err := row.Scan(&d.ID, &d.Name, &d.Stage, &d.Amount)
		return d, err
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching term anywhere, with
// LIKE metacharacters in term taken literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
