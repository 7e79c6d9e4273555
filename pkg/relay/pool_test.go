package relay

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ssecodec/pkg/eventstream"
	"github.com/papercomputeco/ssecodec/pkg/sse"
)

// recordingPublisher collects published envelopes and can be told to fail
// or block.
type recordingPublisher struct {
	mu      sync.Mutex
	events  []*eventstream.DecodedEvent
	err     error
	release chan struct{}
}

func (r *recordingPublisher) Publish(_ context.Context, event *eventstream.DecodedEvent) error {
	if r.release != nil {
		<-r.release
	}
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) sequences() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	seqs := make([]uint64, 0, len(r.events))
	for _, ev := range r.events {
		seqs = append(seqs, ev.Sequence)
	}
	return seqs
}

// deadlinePublisher blocks until the publish context ends.
type deadlinePublisher struct{}

func (deadlinePublisher) Publish(ctx context.Context, _ *eventstream.DecodedEvent) error {
	<-ctx.Done()
	return ctx.Err()
}

func (deadlinePublisher) Close() error { return nil }

func envelope(seq uint64) *eventstream.DecodedEvent {
	return eventstream.NewDecodedEvent("test", seq, sse.Event{Type: "message", Data: "x"})
}

var _ = Describe("Relay Pool", func() {
	var pub *recordingPublisher

	BeforeEach(func() {
		pub = &recordingPublisher{}
	})

	Describe("NewPool", func() {
		It("requires a publisher", func() {
			_, err := NewPool(&Config{})
			Expect(err).To(MatchError(ContainSubstring("publisher")))
		})

		It("applies defaults", func() {
			c := &Config{Publisher: pub}
			wp, err := NewPool(c)
			Expect(err).NotTo(HaveOccurred())
			defer wp.Close()

			Expect(c.NumWorkers).To(Equal(defaultNumWorkers))
			Expect(c.QueueSize).To(Equal(defaultJobQueueSize))
			Expect(c.Logger).NotTo(BeNil())
		})
	})

	Describe("Enqueue", func() {
		It("returns true when the queue has capacity", func() {
			wp, err := NewPool(&Config{Publisher: pub})
			Expect(err).NotTo(HaveOccurred())

			Expect(wp.Enqueue(envelope(1))).To(BeTrue())
			wp.Close()

			Expect(pub.sequences()).To(Equal([]uint64{1}))
		})

		It("returns false and counts the drop when the queue is full", func() {
			pub.release = make(chan struct{})
			wp, err := NewPool(&Config{Publisher: pub, QueueSize: 1})
			Expect(err).NotTo(HaveOccurred())

			// The worker takes the first event and blocks on it; the second
			// fills the queue.
			Expect(wp.Enqueue(envelope(1))).To(BeTrue())
			Eventually(func() int { return len(wp.queue) }).Should(Equal(0))
			Expect(wp.Enqueue(envelope(2))).To(BeTrue())
			Expect(wp.Enqueue(envelope(3))).To(BeFalse())

			close(pub.release)
			wp.Close()

			Expect(pub.sequences()).To(Equal([]uint64{1, 2}))
			Expect(wp.Stats().Dropped).To(Equal(uint64(1)))
		})
	})

	Describe("Submit", func() {
		It("waits for capacity instead of dropping when more events than the queue holds arrive", func() {
			wp, err := NewPool(&Config{Publisher: pub, QueueSize: 2})
			Expect(err).NotTo(HaveOccurred())

			for seq := uint64(1); seq <= 500; seq++ {
				Expect(wp.Submit(context.Background(), envelope(seq))).To(Succeed())
			}
			wp.Close()

			seqs := pub.sequences()
			Expect(seqs).To(HaveLen(500))
			for i, seq := range seqs {
				Expect(seq).To(Equal(uint64(i + 1)))
			}
			stats := wp.Stats()
			Expect(stats.Published).To(Equal(uint64(500)))
			Expect(stats.Dropped).To(BeZero())
		})

		It("gives up when the context ends while the queue is full", func() {
			pub.release = make(chan struct{})
			wp, err := NewPool(&Config{Publisher: pub, QueueSize: 1})
			Expect(err).NotTo(HaveOccurred())

			Expect(wp.Submit(context.Background(), envelope(1))).To(Succeed())
			Eventually(func() int { return len(wp.queue) }).Should(Equal(0))
			Expect(wp.Submit(context.Background(), envelope(2))).To(Succeed())

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			Expect(wp.Submit(ctx, envelope(3))).To(MatchError(context.Canceled))

			close(pub.release)
			wp.Close()

			Expect(pub.sequences()).To(Equal([]uint64{1, 2}))
			Expect(wp.Stats().Dropped).To(BeZero())
		})
	})

	Describe("Close", func() {
		It("drains queued events in order with a single worker", func() {
			wp, err := NewPool(&Config{Publisher: pub})
			Expect(err).NotTo(HaveOccurred())

			for seq := uint64(1); seq <= 50; seq++ {
				Expect(wp.Enqueue(envelope(seq))).To(BeTrue())
			}
			wp.Close()

			seqs := pub.sequences()
			Expect(seqs).To(HaveLen(50))
			for i, seq := range seqs {
				Expect(seq).To(Equal(uint64(i + 1)))
			}
			Expect(wp.Stats().Published).To(Equal(uint64(50)))
		})

		It("drains every event across multiple workers", func() {
			wp, err := NewPool(&Config{Publisher: pub, NumWorkers: 4})
			Expect(err).NotTo(HaveOccurred())

			for seq := uint64(1); seq <= 20; seq++ {
				Expect(wp.Enqueue(envelope(seq))).To(BeTrue())
			}
			wp.Close()

			Expect(pub.sequences()).To(HaveLen(20))
		})
	})

	Describe("publish failures", func() {
		It("counts failures and keeps going", func() {
			pub.err = errors.New("backend down")
			wp, err := NewPool(&Config{Publisher: pub})
			Expect(err).NotTo(HaveOccurred())

			Expect(wp.Enqueue(envelope(1))).To(BeTrue())
			Expect(wp.Enqueue(envelope(2))).To(BeTrue())
			wp.Close()

			stats := wp.Stats()
			Expect(stats.Failed).To(Equal(uint64(2)))
			Expect(stats.Published).To(BeZero())
		})

		It("bounds each publish by PublishTimeout", func() {
			wp, err := NewPool(&Config{
				Publisher:      deadlinePublisher{},
				PublishTimeout: 10 * time.Millisecond,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(wp.Submit(context.Background(), envelope(1))).To(Succeed())
			wp.Close()

			Expect(wp.Stats().Failed).To(Equal(uint64(1)))
		})
	})
})
