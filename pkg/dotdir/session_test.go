package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/upvector/pkg/dotdir"
)

var _ = Describe("dotdir.Manager session state", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		m = dotdir.NewManager()
	})

	It("returns nil when no session file exists", func() {
		state, err := m.LoadSessionState(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(BeNil())
	})

	It("round-trips a saved session", func() {
		started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		Expect(m.SaveSessionState(&dotdir.SessionState{
			ID:        "0f6a",
			URL:       "http://localhost:8085",
			Namespace: "books",
			Fetched:   10,
			StartedAt: started,
		}, tmpDir)).To(Succeed())

		state, err := m.LoadSessionState(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state.ID).To(Equal("0f6a"))
		Expect(state.Namespace).To(Equal("books"))
		Expect(state.Fetched).To(Equal(10))
		Expect(state.StartedAt.Equal(started)).To(BeTrue())
	})

	It("returns an error for invalid JSON", func() {
		Expect(os.WriteFile(filepath.Join(tmpDir, "session.json"), []byte("not json"), 0o600)).To(Succeed())

		state, err := m.LoadSessionState(tmpDir)
		Expect(err).To(HaveOccurred())
		Expect(state).To(BeNil())
	})

	It("rejects a state without an id", func() {
		Expect(os.WriteFile(filepath.Join(tmpDir, "session.json"), []byte(`{"fetched":3}`), 0o600)).To(Succeed())

		_, err := m.LoadSessionState(tmpDir)
		Expect(err).To(MatchError(ContainSubstring("no id")))
	})

	It("refuses to save nil", func() {
		Expect(m.SaveSessionState(nil, tmpDir)).NotTo(Succeed())
	})

	It("clears the state and tolerates clearing twice", func() {
		Expect(m.SaveSessionState(&dotdir.SessionState{ID: "x"}, tmpDir)).To(Succeed())
		Expect(m.ClearSessionState(tmpDir)).To(Succeed())
		Expect(m.ClearSessionState(tmpDir)).To(Succeed())

		state, err := m.LoadSessionState(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(BeNil())
	})
})
