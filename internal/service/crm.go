package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"loomsales.app/copilot/internal/model"
	"loomsales.app/copilot/internal/store"
)

// crmLookupLimit caps rows per CRM table in one lookup.
const crmLookupLimit = 3

const unknownValue = "未知"

type CrmService interface {
	Search(ctx context.Context, q string) ([]model.CrmContextItem, error)
}

type crmService struct {
	crm store.CrmStore
}

func NewCrmService(crm store.CrmStore) CrmService {
	return &crmService{crm: crm}
}

// Search looks q up across companies, contacts and deals. A failing table is
// skipped; an error is returned only when every table failed.
func (s *crmService) Search(ctx context.Context, q string) ([]model.CrmContextItem, error) {
	q = strings.TrimSpace(q)
	results := []model.CrmContextItem{}
	if q == "" {
		return results, nil
	}

	var errs []error

	companies, err := s.crm.SearchCompanies(ctx, q, crmLookupLimit)
	if err != nil {
		slog.WarnContext(ctx, "crm company search failed", "error", err)
		errs = append(errs, err)
	}
	for _, c := range companies {
		results = append(results, companyItem(c))
	}

	contacts, err := s.crm.SearchContacts(ctx, q, crmLookupLimit)
	if err != nil {
		slog.WarnContext(ctx, "crm contact search failed", "error", err)
		errs = append(errs, err)
	}
	for _, c := range contacts {
		results = append(results, contactItem(c))
	}

	deals, err := s.crm.SearchDeals(ctx, q, crmLookupLimit)
	if err != nil {
		slog.WarnContext(ctx, "crm deal search failed", "error", err)
		errs = append(errs, err)
	}
	for _, d := range deals {
		results = append(results, dealItem(d))
	}

	if len(errs) == 3 {
		return nil, fmt.Errorf("searching crm: %w", errors.Join(errs...))
	}
	return results, nil
}

func companyItem(c model.CrmCompany) model.CrmContextItem {
	details := fmt.Sprintf("行业: %s, 规模: %s.", orUnknown(c.Sector), orUnknown(c.Size))
	if c.Description != nil && *c.Description != "" {
		details += " 简介: " + *c.Description
	}
	return model.CrmContextItem{
		Type:    model.CrmTypeCompany,
		ID:      model.StringID(c.ID),
		Name:    c.Name,
		Details: details,
	}
}

func contactItem(c model.CrmContact) model.CrmContextItem {
	var parts []string
	for _, p := range []*string{c.FirstName, c.LastName} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	return model.CrmContextItem{
		Type:    model.CrmTypeContact,
		ID:      model.StringID(c.ID),
		Name:    strings.Join(parts, " "),
		Details: "头衔/职位: " + orUnknown(c.Title),
	}
}

func dealItem(d model.CrmDeal) model.CrmContextItem {
	amount := unknownValue
	if d.Amount != nil && *d.Amount != 0 {
		amount = "$" + strconv.FormatFloat(*d.Amount, 'f', -1, 64)
	}
	return model.CrmContextItem{
		Type:    model.CrmTypeDeal,
		ID:      model.StringID(d.ID),
		Name:    d.Name,
		Details: fmt.Sprintf("阶段: %s, 金额: %s", orUnknown(d.Stage), amount),
	}
}

func orUnknown(s *string) string {
	if s == nil || *s == "" {
		return unknownValue
	}
	return *s
}
