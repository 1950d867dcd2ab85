package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"loomsales.app/copilot/internal/model"
	"loomsales.app/copilot/internal/service"
)

var _ = Describe("CrmService", func() {
	var (
		crm *mockCrmStore
		svc service.CrmService
		ctx context.Context
	)

	BeforeEach(func() {
		crm = &mockCrmStore{}
		svc = service.NewCrmService(crm)
		ctx = context.Background()
	})

	It("returns empty results without querying for a blank term", func() {
		called := false
		crm.searchCompaniesFn = func(context.Context, string, int) ([]model.CrmCompany, error) {
			called = true
			return nil, nil
		}

		results, err := svc.Search(ctx, "  ")

		Expect(err).NotTo(HaveOccurred())
		Expect(results).NotTo(BeNil())
		Expect(results).To(BeEmpty())
		Expect(called).To(BeFalse())
	})

	It("maps rows from every table into context items", func() {
		var limits []int
		crm.searchCompaniesFn = func(_ context.Context, term string, limit int) ([]model.CrmCompany, error) {
			Expect(term).To(Equal("华纺"))
			limits = append(limits, limit)
			return []model.CrmCompany{
				{ID: "1", Name: "华纺织造", Sector: ptr("纺织"), Size: ptr("500人"), Description: ptr("喷气织机 300 台")},
				{ID: "2", Name: "华纺二厂"},
			}, nil
		}
		crm.searchContactsFn = func(_ context.Context, _ string, limit int) ([]model.CrmContact, error) {
			limits = append(limits, limit)
			return []model.CrmContact{{ID: "3", FirstName: ptr("伟"), LastName: ptr("王")}}, nil
		}
		crm.searchDealsFn = func(_ context.Context, _ string, limit int) ([]model.CrmDeal, error) {
			limits = append(limits, limit)
			return []model.CrmDeal{
				{ID: "4", Name: "华纺 MES 二期", Stage: ptr("谈判"), Amount: ptr(120000.5)},
				{ID: "5", Name: "华纺试点", Amount: ptr(0.0)},
			}, nil
		}

		results, err := svc.Search(ctx, "华纺")

		Expect(err).NotTo(HaveOccurred())
		Expect(limits).To(Equal([]int{3, 3, 3}))
		Expect(results).To(Equal([]model.CrmContextItem{
			{Type: "company", ID: "1", Name: "华纺织造", Details: "行业: 纺织, 规模: 500人. 简介: 喷气织机 300 台"},
			{Type: "company", ID: "2", Name: "华纺二厂", Details: "行业: 未知, 规模: 未知."},
			{Type: "contact", ID: "3", Name: "伟 王", Details: "头衔/职位: 未知"},
			{Type: "deal", ID: "4", Name: "华纺 MES 二期", Details: "阶段: 谈判, 金额: $120000.5"},
			{Type: "deal", ID: "5", Name: "华纺试点", Details: "阶段: 未知, 金额: 未知"},
		}))
	})

	It("skips a failing table and keeps partial results", func() {
		crm.searchContactsFn = func(context.Context, string, int) ([]model.CrmContact, error) {
			return nil, errors.New("relation \"contacts\" does not exist")
		}
		crm.searchDealsFn = func(context.Context, string, int) ([]model.CrmDeal, error) {
			return []model.CrmDeal{{ID: "9", Name: "MES"}}, nil
		}

		results, err := svc.Search(ctx, "MES")

		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].Type).To(Equal("deal"))
	})

	It("fails when every table fails", func() {
		boom := errors.New("connection refused")
		crm.searchCompaniesFn = func(context.Context, string, int) ([]model.CrmCompany, error) { return nil, boom }
		crm.searchContactsFn = func(context.Context, string, int) ([]model.CrmContact, error) { return nil, boom }
		crm.searchDealsFn = func(context.Context, string, int) ([]model.CrmDeal, error) { return nil, boom }

		_, err := svc.Search(ctx, "MES")
		Expect(err).To(MatchError(boom))
	})
})
