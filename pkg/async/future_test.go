package async_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/upvector/pkg/async"
)

var _ = Describe("Future", func() {
	It("delivers the value of the call", func() {
		f := async.Go(context.Background(), func(context.Context) (int, error) {
			return 42, nil
		})

		v, err := f.Await(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(42))
		Eventually(f.Done()).Should(BeClosed())
	})

	It("delivers the error of the call", func() {
		boom := errors.New("boom")
		f := async.Go(context.Background(), func(context.Context) (string, error) {
			return "", boom
		})

		_, err := f.Await(context.Background())
		Expect(err).To(MatchError(boom))
	})

	It("can be awaited more than once", func() {
		f := async.Resolved("ok", nil)
		for range 3 {
			v, err := f.Await(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("ok"))
		}
	})

	It("stops waiting when the await context ends", func() {
		release := make(chan struct{})
		defer close(release)

		f := async.Go(context.Background(), func(context.Context) (int, error) {
			<-release
			return 1, nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := f.Await(ctx)
		Expect(err).To(MatchError(context.DeadlineExceeded))
	})

	It("passes the start context to the call", func() {
		ctx, cancel := context.WithCancel(context.Background())
		f := async.Go(ctx, func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})
		cancel()

		_, err := f.Await(context.Background())
		Expect(err).To(MatchError(context.Canceled))
	})
})
