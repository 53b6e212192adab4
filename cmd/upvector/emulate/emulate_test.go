package emulatecmder

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/upvector/pkg/config"
	upvectorlogger "github.com/papercomputeco/upvector/pkg/logger"
)

var _ = Describe("emulate", func() {
	It("registers its flags with config defaults", func() {
		cmd := NewEmulateCmd()

		listen := cmd.Flags().Lookup("listen")
		Expect(listen).NotTo(BeNil())
		Expect(listen.DefValue).To(Equal(config.NewDefaultConfig().Emulator.Listen))
		Expect(cmd.Flags().Lookup("dimension").DefValue).To(Equal("256"))
		Expect(cmd.Flags().Lookup("mcp")).NotTo(BeNil())
	})

	DescribeTable("selfURL",
		func(listen, want string) {
			Expect(selfURL(listen)).To(Equal(want))
		},
		Entry("port only", ":8085", "http://localhost:8085"),
		Entry("any address", "0.0.0.0:9000", "http://localhost:9000"),
		Entry("explicit host", "127.0.0.1:8085", "http://127.0.0.1:8085"),
		Entry("IPv6 any", "[::]:8085", "http://localhost:8085"),
	)

	It("builds a server with MCP mounted", func() {
		c := &emulateCommander{
			listen:    ":0",
			dimension: 4,
			withMCP:   true,
			logger:    upvectorlogger.Nop(),
		}
		v, err := config.InitViper(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		c.viper = v

		server, err := c.newServer()
		Expect(err).NotTo(HaveOccurred())

		paths := []string{}
		for _, r := range server.App().GetRoutes() {
			paths = append(paths, r.Path)
		}
		Expect(paths).To(ContainElement(mcpPath))
	})

	It("copies log records into the request log", func() {
		path := filepath.Join(GinkgoT().TempDir(), "requests.jsonl")
		c := &emulateCommander{
			requestLog: path,
			logger:     upvectorlogger.Nop(),
		}
		Expect(c.openRequestLog(NewEmulateCmd())).To(Succeed())
		c.logger.Info("request", "path", "/query")
		Expect(c.logFile.Close()).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"path":"/query"`))
	})

	It("rejects unknown embedding providers", func() {
		c := &emulateCommander{
			dimension:         4,
			embeddingProvider: "nope",
			logger:            upvectorlogger.Nop(),
		}
		_, err := c.newServer()
		Expect(err).To(MatchError(ContainSubstring("unsupported embedding provider")))
	})
})
