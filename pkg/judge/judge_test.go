package judge_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/braidhq/braid/pkg/judge"
)

var _ = Describe("ParseResponse", func() {
	It("treats an empty reply as no link", func() {
		Expect(judge.ParseResponse("").Linked).To(BeFalse())
		Expect(judge.ParseResponse("   \n").Linked).To(BeFalse())
	})

	It("treats negations as no link regardless of case", func() {
		for _, reply := range []string{"No.", "no", "NO, these are unrelated", "Not related at all"} {
			Expect(judge.ParseResponse(reply).Linked).To(BeFalse(), "reply: %s", reply)
		}
	})

	It("returns the phrase for affirmative replies", func() {
		verdict := judge.ParseResponse("The failed login directly triggered the log inspection.")
		Expect(verdict.Linked).To(BeTrue())
		Expect(verdict.Relationship).To(Equal("The failed login directly triggered the log inspection."))
	})

	It("trims surrounding whitespace from the phrase", func() {
		verdict := judge.ParseResponse("  one caused the other  ")
		Expect(verdict.Linked).To(BeTrue())
		Expect(verdict.Relationship).To(Equal("one caused the other"))
	})
})

var _ = Describe("Prompt", func() {
	It("lowercases both events and embeds them in order", func() {
		prompt := judge.Prompt("The Server Crashed", "The Pager Fired")
		Expect(prompt).To(ContainSubstring(`"the server crashed"`))
		Expect(prompt).To(ContainSubstring(`"the pager fired"`))
		Expect(prompt).To(ContainSubstring("same workflow or narrative sequence"))
	})
})
