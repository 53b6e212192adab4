package mcpcmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/upvector/cmd/upvector/cmdutil"
	mcpcmder "github.com/papercomputeco/upvector/cmd/upvector/mcp"
	"github.com/papercomputeco/upvector/pkg/index"
	upvectorlogger "github.com/papercomputeco/upvector/pkg/logger"
	testutils "github.com/papercomputeco/upvector/pkg/utils/test"
	"github.com/papercomputeco/upvector/pkg/vector"
)

var _ = Describe("mcp", func() {
	It("registers the listen flag with its config default", func() {
		cmd := mcpcmder.NewMCPCmd()
		listen := cmd.Flags().ShorthandLookup("l")
		Expect(listen).NotTo(BeNil())
		Expect(listen.DefValue).To(Equal(":8086"))
	})

	It("serves the MCP handler under its path", func() {
		app, err := mcpcmder.NewApp(&cmdutil.IndexEnv{
			Index:     index.NewWithExecutor(testutils.NewRecordingExecutor(), upvectorlogger.Nop()),
			Namespace: vector.NamedNamespace("docs"),
			Logger:    upvectorlogger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())

		paths := []string{}
		for _, r := range app.GetRoutes() {
			paths = append(paths, r.Path)
		}
		Expect(paths).To(ContainElements(mcpcmder.Path, mcpcmder.Path+"/*"))
	})
})
