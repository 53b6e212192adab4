package index_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/upvector/pkg/index"
	upvectorlogger "github.com/papercomputeco/upvector/pkg/logger"
	testutils "github.com/papercomputeco/upvector/pkg/utils/test"
	"github.com/papercomputeco/upvector/pkg/vector"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

var _ = Describe("Session", func() {
	var (
		ctx  context.Context
		exec *testutils.RecordingExecutor
		idx  *index.Index
		req  index.ResumableQueryRequest
	)

	BeforeEach(func() {
		ctx = context.Background()
		exec = testutils.NewRecordingExecutor()
		idx = index.NewWithExecutor(exec, upvectorlogger.Nop())
		req = index.ResumableQueryRequest{
			Query:   payload.Query{Vector: vector.DenseVector{0.1, 0.2}, TopK: 2},
			MaxIdle: 90 * time.Second,
		}
		exec.On(payload.PathResumableQuery, payload.ResumableStartResult{
			UUID:   "session-1",
			Scores: []vector.QueryResult{{ID: "a", Score: 1}, {ID: "b", Score: 0.5}},
		})
	})

	start := func() *index.Session {
		first, s, err := idx.ResumableQuery(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(first).To(HaveLen(2))
		return s
	}

	It("starts in the created state with the server id", func() {
		s := start()
		Expect(s.ID()).To(Equal("session-1"))
		Expect(s.State()).To(Equal(index.SessionCreated))

		var body map[string]any
		Expect(exec.CallsTo(payload.PathResumableQuery)[0].Decode(&body)).To(Succeed())
		Expect(body).To(HaveKeyWithValue("maxIdle", BeNumerically("==", 90)))
		Expect(body).To(HaveKeyWithValue("topK", BeNumerically("==", 2)))
	})

	It("uses the data endpoint for data queries", func() {
		exec.On(payload.PathResumableQueryData+"/docs", payload.ResumableStartResult{UUID: "d"})
		_, s, err := idx.ResumableQuery(ctx, index.ResumableQueryRequest{
			Query:     payload.Query{Data: "hello", TopK: 3},
			Namespace: vector.NamedNamespace("docs"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.ID()).To(Equal("d"))
	})

	It("fails when the service returns no session id", func() {
		exec.On(payload.PathResumableQueryData, payload.ResumableStartResult{})
		_, s, err := idx.ResumableQuery(ctx, index.ResumableQueryRequest{Query: payload.Query{Data: "x", TopK: 1}})
		Expect(vector.IsClientError(err)).To(BeTrue())
		Expect(s).To(BeNil())
	})

	It("refuses to start without a top_k and sends nothing", func() {
		_, s, err := idx.ResumableQuery(ctx, index.ResumableQueryRequest{
			Query: payload.Query{Vector: vector.DenseVector{1}},
		})
		Expect(vector.IsClientError(err)).To(BeTrue())
		Expect(s).To(BeNil())
		Expect(exec.Calls()).To(BeEmpty())
	})

	DescribeTable("rounds max idle up to whole seconds",
		func(maxIdle time.Duration, want int) {
			_, _, err := idx.ResumableQuery(ctx, index.ResumableQueryRequest{
				Query:   payload.Query{Vector: vector.DenseVector{1}, TopK: 1},
				MaxIdle: maxIdle,
			})
			Expect(err).NotTo(HaveOccurred())

			var body map[string]any
			Expect(exec.CallsTo(payload.PathResumableQuery)[0].Decode(&body)).To(Succeed())
			Expect(body).To(HaveKeyWithValue("maxIdle", BeNumerically("==", want)))
		},
		Entry("half a second", 500*time.Millisecond, 1),
		Entry("just over a minute", time.Minute+time.Millisecond, 61),
		Entry("exact seconds", 2*time.Second, 2),
	)

	It("rejects a negative max idle", func() {
		_, s, err := idx.ResumableQuery(ctx, index.ResumableQueryRequest{
			Query:   payload.Query{Vector: vector.DenseVector{1}, TopK: 1},
			MaxIdle: -time.Millisecond,
		})
		Expect(vector.IsClientError(err)).To(BeTrue())
		Expect(s).To(BeNil())
		Expect(exec.Calls()).To(BeEmpty())
	})

	It("becomes active after a successful fetch", func() {
		exec.On(payload.PathResumableQueryNext, []vector.QueryResult{{ID: "c"}})
		s := start()

		next, err := s.FetchNext(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(HaveLen(1))
		Expect(s.State()).To(Equal(index.SessionActive))

		var body payload.ResumableNextPayload
		Expect(exec.CallsTo(payload.PathResumableQueryNext)[0].Decode(&body)).To(Succeed())
		Expect(body).To(Equal(payload.ResumableNextPayload{UUID: "session-1", AdditionalK: 1}))
	})

	It("rejects non-positive k locally", func() {
		s := start()
		_, err := s.FetchNext(ctx, 0)
		Expect(vector.IsClientError(err)).To(BeTrue())
		Expect(exec.CallsTo(payload.PathResumableQueryNext)).To(BeEmpty())
	})

	It("fails every call after stop without touching the network", func() {
		exec.On(payload.PathResumableQueryEnd, "Success")
		s := start()

		status, err := s.Stop(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal("Success"))
		Expect(s.State()).To(Equal(index.SessionStopped))
		Expect(s.ID()).To(BeEmpty())

		_, err = s.FetchNext(ctx, 1)
		Expect(vector.IsClientError(err)).To(BeTrue())
		_, err = s.Stop(ctx)
		Expect(vector.IsClientError(err)).To(BeTrue())
		Expect(s.Close()).To(Succeed())

		Expect(exec.CallsTo(payload.PathResumableQueryNext)).To(BeEmpty())
		Expect(exec.CallsTo(payload.PathResumableQueryEnd)).To(HaveLen(1))
	})

	It("leaves the session usable when stop fails", func() {
		exec.OnError(payload.PathResumableQueryEnd, vector.NewTransportError(4, errors.New("reset")))
		exec.On(payload.PathResumableQueryEnd, "Success")
		s := start()

		_, err := s.Stop(ctx)
		Expect(vector.IsTransportError(err)).To(BeTrue())
		Expect(s.State()).To(Equal(index.SessionCreated))
		Expect(s.ID()).To(Equal("session-1"))

		_, err = s.Stop(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.State()).To(Equal(index.SessionStopped))
	})

	Describe("WithResumableQuery", func() {
		BeforeEach(func() {
			exec.On(payload.PathResumableQueryEnd, "Success")
		})

		It("stops the session once after fn returns", func() {
			var seen *index.Session
			err := index.WithResumableQuery(ctx, idx, req, func(_ context.Context, first []vector.QueryResult, s *index.Session) error {
				Expect(first).To(HaveLen(2))
				seen = s
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(seen.State()).To(Equal(index.SessionStopped))
			Expect(exec.CallsTo(payload.PathResumableQueryEnd)).To(HaveLen(1))
		})

		It("does not stop again when fn stopped the session", func() {
			err := index.WithResumableQuery(ctx, idx, req, func(ctx context.Context, _ []vector.QueryResult, s *index.Session) error {
				_, err := s.Stop(ctx)
				return err
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(exec.CallsTo(payload.PathResumableQueryEnd)).To(HaveLen(1))
		})

		It("stops the session when fn fails and returns fn's error", func() {
			boom := errors.New("boom")
			err := index.WithResumableQuery(ctx, idx, req, func(context.Context, []vector.QueryResult, *index.Session) error {
				return boom
			})
			Expect(err).To(MatchError(boom))
			Expect(exec.CallsTo(payload.PathResumableQueryEnd)).To(HaveLen(1))
		})

		It("stops the session when fn panics", func() {
			Expect(func() {
				_ = index.WithResumableQuery(ctx, idx, req, func(context.Context, []vector.QueryResult, *index.Session) error {
					panic("boom")
				})
			}).To(PanicWith("boom"))
			Expect(exec.CallsTo(payload.PathResumableQueryEnd)).To(HaveLen(1))
		})

		It("stops the session even when ctx is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			err := index.WithResumableQuery(cctx, idx, req, func(context.Context, []vector.QueryResult, *index.Session) error {
				cancel()
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(exec.CallsTo(payload.PathResumableQueryEnd)).To(HaveLen(1))
		})

		It("joins the stop error with fn's error", func() {
			exec = testutils.NewRecordingExecutor()
			idx = index.NewWithExecutor(exec, upvectorlogger.Nop())
			exec.On(payload.PathResumableQuery, payload.ResumableStartResult{UUID: "s"})
			exec.OnError(payload.PathResumableQueryEnd, &vector.ApplicationError{Message: "gone"})

			boom := errors.New("boom")
			err := index.WithResumableQuery(ctx, idx, req, func(context.Context, []vector.QueryResult, *index.Session) error {
				return boom
			})
			Expect(errors.Is(err, boom)).To(BeTrue())
			Expect(vector.IsApplicationError(err)).To(BeTrue())
		})
	})
})

var _ = Describe("AsyncIndex", func() {
	var (
		ctx  context.Context
		exec *testutils.RecordingExecutor
		idx  *index.Index
	)

	BeforeEach(func() {
		ctx = context.Background()
		exec = testutils.NewRecordingExecutor()
		idx = index.NewWithExecutor(exec, upvectorlogger.Nop())
	})

	It("resolves futures with the synchronous result", func() {
		exec.On(payload.PathQuery, []vector.QueryResult{{ID: "a"}})
		f := idx.Async().Query(ctx, index.QueryRequest{Query: payload.Query{Vector: vector.DenseVector{1}}})

		results, err := f.Await(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
	})

	It("resolves futures with local validation errors", func() {
		f := idx.Async().Upsert(ctx, vector.DefaultNamespace, []payload.Input{payload.MappingInput{"id": "x"}})
		_, err := f.Await(ctx)
		Expect(vector.IsClientError(err)).To(BeTrue())
	})

	It("drives a resumable session asynchronously", func() {
		exec.On(payload.PathResumableQuery, payload.ResumableStartResult{UUID: "s", Scores: []vector.QueryResult{{ID: "a"}}})
		exec.On(payload.PathResumableQueryNext, []vector.QueryResult{{ID: "b"}})
		exec.On(payload.PathResumableQueryEnd, "Success")

		start, err := idx.Async().ResumableQuery(ctx, index.ResumableQueryRequest{
			Query: payload.Query{Vector: vector.DenseVector{1}, TopK: 1},
		}).Await(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(start.Results).To(HaveLen(1))

		next, err := start.Session.FetchNext(ctx, 1).Await(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(next[0].ID).To(Equal(vector.ID("b")))

		_, err = start.Session.Stop(ctx).Await(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(start.Session.State()).To(Equal(index.SessionStopped))

		_, err = start.Session.FetchNext(ctx, 1).Await(ctx)
		Expect(vector.IsClientError(err)).To(BeTrue())
		Expect(exec.CallsTo(payload.PathResumableQueryNext)).To(HaveLen(1))
	})
})

var _ = Describe("Resume", func() {
	It("continues a session by id", func() {
		exec := testutils.NewRecordingExecutor()
		idx := index.NewWithExecutor(exec, upvectorlogger.Nop())
		exec.On(payload.PathResumableQueryNext, []vector.QueryResult{{ID: "z"}})

		s := idx.Resume("earlier")
		Expect(s.State()).To(Equal(index.SessionActive))

		next, err := s.FetchNext(context.Background(), 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(HaveLen(1))

		var body payload.ResumableNextPayload
		Expect(exec.Calls()[0].Decode(&body)).To(Succeed())
		Expect(body.UUID).To(Equal("earlier"))
	})

	It("fails locally for an empty id", func() {
		exec := testutils.NewRecordingExecutor()
		s := index.NewWithExecutor(exec, upvectorlogger.Nop()).Resume("")

		_, err := s.FetchNext(context.Background(), 1)
		Expect(vector.IsClientError(err)).To(BeTrue())
		Expect(exec.Calls()).To(BeEmpty())
	})
})
