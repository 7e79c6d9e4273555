package cliui_test

import (
	"bytes"
	"errors"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ssecodec/pkg/cliui"
	"github.com/papercomputeco/ssecodec/pkg/sse"
)

var _ = Describe("FormatDuration", func() {
	DescribeTable("formats",
		func(d time.Duration, want string) {
			Expect(cliui.FormatDuration(d)).To(Equal(want))
		},
		Entry("milliseconds", 12*time.Millisecond, "12ms"),
		Entry("zero", time.Duration(0), "0ms"),
		Entry("seconds", 3200*time.Millisecond, "3.2s"),
	)
})

var _ = Describe("Mark", func() {
	It("returns the success mark for nil", func() {
		Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
	})

	It("returns the fail mark for an error", func() {
		Expect(cliui.Mark(errors.New("boom"))).To(Equal(cliui.FailMark))
	})
})

var _ = Describe("Step", func() {
	It("returns fn's result and prints the final line", func() {
		var buf bytes.Buffer
		err := cliui.Step(&buf, "connecting", func() error { return nil })
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("connecting"))
		Expect(buf.String()).To(ContainSubstring(cliui.SuccessMark))
		Expect(buf.String()).To(HaveSuffix("\n"))
	})

	It("passes through fn's error", func() {
		var buf bytes.Buffer
		boom := errors.New("boom")
		err := cliui.Step(&buf, "connecting", func() error { return boom })
		Expect(err).To(MatchError(boom))
		Expect(buf.String()).To(ContainSubstring(cliui.FailMark))
	})
})

var _ = Describe("RenderEvent", func() {
	It("renders the header and each data line", func() {
		id := "7"
		retry := uint64(1000)
		out := cliui.RenderEvent(3, sse.Event{Type: "update", Data: "one\ntwo", ID: &id, Retry: &retry})

		Expect(out).To(ContainSubstring("#3"))
		Expect(out).To(ContainSubstring("update"))
		Expect(out).To(ContainSubstring(`id="7"`))
		Expect(out).To(ContainSubstring("retry=1000ms"))
		Expect(out).To(ContainSubstring("one"))
		Expect(out).To(ContainSubstring("two"))
	})

	It("omits id and retry when unset", func() {
		out := cliui.RenderEvent(1, sse.Event{Type: "message", Data: "hi"})
		Expect(out).NotTo(ContainSubstring("id="))
		Expect(out).NotTo(ContainSubstring("retry="))
	})

	It("writes through PrintEvent", func() {
		var buf bytes.Buffer
		ev := sse.Event{Type: "message", Data: "hi"}
		Expect(cliui.PrintEvent(&buf, 1, ev)).To(Succeed())
		Expect(buf.String()).To(Equal(cliui.RenderEvent(1, ev)))
	})
})

var _ = Describe("IsTerminal", func() {
	It("is false for in-memory writers", func() {
		Expect(cliui.IsTerminal(&bytes.Buffer{})).To(BeFalse())
	})

	It("is false for a regular file", func() {
		f, err := os.CreateTemp(GinkgoT().TempDir(), "out")
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		Expect(cliui.IsTerminal(f)).To(BeFalse())
	})
})
