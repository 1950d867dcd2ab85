package copilot_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"loomsales.app/copilot/internal/copilot"
	"loomsales.app/copilot/internal/model"
)

var _ = Describe("ScoreConfidence", func() {
	const threshold = copilot.DefaultConfidenceThreshold

	It("is high only when the top score exceeds the threshold", func() {
		Expect(copilot.ScoreConfidence([]model.KnowledgeRecord{{Score: 0.02}}, threshold)).To(Equal(copilot.ConfidenceHigh))
		Expect(copilot.ScoreConfidence([]model.KnowledgeRecord{{Score: 0.012}}, threshold)).To(Equal(copilot.ConfidenceLow))
		Expect(copilot.ScoreConfidence([]model.KnowledgeRecord{{Score: 0.005}, {Score: 0.9}}, threshold)).To(Equal(copilot.ConfidenceLow))
		Expect(copilot.ScoreConfidence(nil, threshold)).To(Equal(copilot.ConfidenceLow))
	})

	It("honors a recalibrated threshold", func() {
		Expect(copilot.ScoreConfidence([]model.KnowledgeRecord{{Score: 0.4}}, 0.5)).To(Equal(copilot.ConfidenceLow))
	})
})

var _ = Describe("BuildContext", func() {
	one := []model.KnowledgeRecord{{Content: "支持Modbus", Category: "数采", Score: 0.005}}
	two := []model.KnowledgeRecord{
		{Content: "支持Modbus", Category: "数采", Score: 0.005},
		{Content: "自动排产", Type: "faq", Score: 0.004},
	}

	It("uses the sentinel for low confidence with fewer than two records", func() {
		Expect(copilot.BuildContext(one, copilot.ConfidenceLow)).To(Equal(copilot.NoReferenceSentinel))
		Expect(copilot.BuildContext(nil, copilot.ConfidenceLow)).To(Equal(copilot.NoReferenceSentinel))
	})

	It("keeps sparse high-confidence context", func() {
		Expect(copilot.BuildContext(one, copilot.ConfidenceHigh)).To(Equal("[数采] 支持Modbus"))
	})

	It("keeps low-confidence context with two or more records, labeling by category then type", func() {
		Expect(copilot.BuildContext(two, copilot.ConfidenceLow)).To(Equal("[数采] 支持Modbus\n\n[faq] 自动排产"))
	})
})

var _ = Describe("CollectImages", func() {
	It("deduplicates in first-seen order", func() {
		records := []model.KnowledgeRecord{
			{ImageURL: "https://img/b.png"},
			{ImageURL: ""},
			{ImageURL: "https://img/a.png"},
			{ImageURL: "https://img/b.png"},
		}
		Expect(copilot.CollectImages(records)).To(Equal([]string{"https://img/b.png", "https://img/a.png"}))
	})

	It("returns an empty, non-nil slice", func() {
		images := copilot.CollectImages([]model.KnowledgeRecord{{Content: "x"}})
		Expect(images).NotTo(BeNil())
		Expect(images).To(BeEmpty())
	})
})
