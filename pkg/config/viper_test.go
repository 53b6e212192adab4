package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/upvector/pkg/config"
	"github.com/papercomputeco/upvector/pkg/vector"
)

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		GinkgoT().Setenv(config.EnvUpstashURL, "")
		GinkgoT().Setenv(config.EnvUpstashToken, "")
	})

	It("returns viper with defaults when no config file exists", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		defaults := config.NewDefaultConfig()
		Expect(v.GetInt("transport.retries")).To(Equal(defaults.Transport.Retries))
		Expect(v.GetDuration("transport.retry_interval")).To(Equal(time.Second))
		Expect(v.GetString("emulator.listen")).To(Equal(defaults.Emulator.Listen))
		Expect(v.GetUint("emulator.dimension")).To(Equal(defaults.Emulator.Dimension))
	})

	It("reads config file values over defaults", func() {
		data := `[emulator]
listen = ":9000"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("emulator.listen")).To(Equal(":9000"))
		Expect(v.GetString("mcp.listen")).To(Equal(config.NewDefaultConfig().MCP.Listen))
	})

	It("respects environment variables with UPVECTOR_ prefix", func() {
		GinkgoT().Setenv("UPVECTOR_TRANSPORT_RETRIES", "9")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetInt("transport.retries")).To(Equal(9))
	})

	It("falls back to the UPSTASH_ variables for the index", func() {
		GinkgoT().Setenv(config.EnvUpstashURL, "https://hosted")
		GinkgoT().Setenv(config.EnvUpstashToken, "hosted-token")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("index.url")).To(Equal("https://hosted"))
		Expect(v.GetString("index.token")).To(Equal("hosted-token"))
	})

	It("prefers UPVECTOR_INDEX_URL over UPSTASH_VECTOR_REST_URL", func() {
		GinkgoT().Setenv(config.EnvUpstashURL, "https://hosted")
		GinkgoT().Setenv("UPVECTOR_INDEX_URL", "http://local")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("index.url")).To(Equal("http://local"))
	})

	It("env vars take precedence over config file values", func() {
		data := `[index]
namespace = "from-file"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())
		GinkgoT().Setenv("UPVECTOR_INDEX_NAMESPACE", "from-env")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(config.Namespace(v)).To(Equal(vector.NamedNamespace("from-env")))
	})
})

var _ = Describe("BindFlags", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	It("binds cobra flags to viper keys via registry", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Flags, config.FlagEmulatorListen, &listen)

		Expect(cmd.Flags().Set("listen", ":7777")).To(Succeed())
		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagEmulatorListen})

		Expect(v.GetString("emulator.listen")).To(Equal(":7777"))
	})

	It("falls through to config when flag not set", func() {
		data := `[mcp]
listen = ":5555"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Flags, config.FlagMCPListen, &listen)
		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagMCPListen})

		Expect(v.GetString("mcp.listen")).To(Equal(":5555"))
	})

	It("skips bindings for nonexistent registry keys", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		config.BindRegisteredFlags(v, cmd, config.FlagSet{}, []string{"nonexistent"})

		Expect(v.GetString("emulator.listen")).To(Equal(config.NewDefaultConfig().Emulator.Listen))
	})

	It("pulls name, shorthand, default and description from the FlagSet", func() {
		cmd := &cobra.Command{Use: "test"}
		var namespace string
		config.AddPersistentStringFlag(cmd, config.Flags, config.FlagNamespace, &namespace)

		f := cmd.PersistentFlags().Lookup("namespace")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("n"))
		Expect(f.Usage).To(Equal(config.Flags[config.FlagNamespace].Description))
	})

	It("registers int and uint flags with their defaults", func() {
		cmd := &cobra.Command{Use: "test"}
		var retries int
		var dims uint
		config.AddIntFlag(cmd, config.Flags, config.FlagRetries, &retries)
		config.AddUintFlag(cmd, config.Flags, config.FlagDimension, &dims)

		Expect(cmd.Flags().Lookup("retries").DefValue).To(Equal("3"))
		Expect(cmd.Flags().Lookup("dimension").DefValue).To(Equal("256"))
	})
})

var _ = Describe("IndexClientConfig", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		GinkgoT().Setenv(config.EnvUpstashURL, "")
		GinkgoT().Setenv(config.EnvUpstashToken, "")
	})

	It("requires a URL and token", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		_, err = config.IndexClientConfig(v)
		Expect(err).To(MatchError(ContainSubstring("no index URL")))

		v.Set("index.url", "http://localhost:8085")
		_, err = config.IndexClientConfig(v)
		Expect(err).To(MatchError(ContainSubstring("no index token")))
	})

	It("resolves the transport policy", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		v.Set("index.url", "http://localhost:8085")
		v.Set("index.token", "t")
		v.Set("transport.max_retry_interval", "8s")

		c, err := config.IndexClientConfig(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Retries).To(Equal(3))
		Expect(c.RetryInterval).To(Equal(time.Second))
		Expect(c.MaxRetryInterval).To(Equal(8 * time.Second))
		Expect(c.Timeout).To(Equal(60 * time.Second))
	})

	It("rejects bad durations", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		v.Set("index.url", "u")
		v.Set("index.token", "t")
		v.Set("transport.timeout", "never")

		_, err = config.IndexClientConfig(v)
		Expect(err).To(MatchError(ContainSubstring("transport.timeout")))
	})
})
