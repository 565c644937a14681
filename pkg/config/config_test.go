package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/braidhq/braid/pkg/config"
)

var _ = Describe("ParseConfigTOML", func() {
	It("parses a sectioned config", func() {
		data := []byte(`
version = 0

[storage]
db_path = "/tmp/braid.db"

[engine]
similarity_threshold = 0.6
max_consequence_depth = 3

[judge]
provider = "ollama"
model = "llama3.2"
`)
		cfg, err := config.ParseConfigTOML(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Storage.DBPath).To(Equal("/tmp/braid.db"))
		Expect(cfg.Engine.SimilarityThreshold).To(BeNumerically("~", 0.6, 1e-9))
		Expect(cfg.Engine.MaxConsequenceDepth).To(Equal(3))
		Expect(cfg.Judge.Provider).To(Equal("ollama"))
	})

	It("rejects unsupported versions", func() {
		_, err := config.ParseConfigTOML([]byte("version = 99"))
		Expect(err).To(HaveOccurred())
	})

	It("rejects malformed TOML", func() {
		_, err := config.ParseConfigTOML([]byte("[[[nope"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Defaults", func() {
	It("populates every knob", func() {
		cfg := config.NewDefaultConfig()
		Expect(cfg.Storage.DBPath).To(Equal("causal_memory.db"))
		Expect(cfg.Engine.SimilarityThreshold).To(BeNumerically("~", 0.5, 1e-9))
		Expect(cfg.Engine.SoftLinkThreshold).To(BeNumerically("~", 0.85, 1e-9))
		Expect(cfg.Engine.MaxPotentialCauses).To(Equal(5))
		Expect(cfg.Engine.TimeDecayHours).To(Equal(24))
		Expect(cfg.Engine.MaxConsequenceDepth).To(Equal(2))
		Expect(cfg.Engine.EmbeddingCacheSize).To(Equal(1000))
		Expect(cfg.Embedding.Model).To(Equal("all-MiniLM-L6-v2"))
		Expect(cfg.Embedding.Dimensions).To(Equal(uint(384)))
		Expect(cfg.Judge.Model).To(Equal("gpt-3.5-turbo"))
		Expect(cfg.Judge.Temperature).To(BeNumerically("~", 0.1, 1e-9))
		Expect(cfg.API.CORSOrigins).To(Equal("*"))
		Expect(cfg.API.RateLimitEventsPerMin).To(Equal(60))
		Expect(cfg.API.RateLimitQueryPerMin).To(Equal(120))
	})
})

var _ = Describe("Configer", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("returns defaults when no config file exists", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Storage.DBPath).To(Equal("causal_memory.db"))
	})

	It("round-trips values through set and get", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfger.SetConfigValue("judge.model", "gpt-4o-mini")).To(Succeed())

		value, err := cfger.GetConfigValue("judge.model")
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal("gpt-4o-mini"))

		// The file exists and survives a fresh Configer.
		_, err = os.Stat(filepath.Join(dir, "config.toml"))
		Expect(err).NotTo(HaveOccurred())

		fresh, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())
		value, err = fresh.GetConfigValue("judge.model")
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal("gpt-4o-mini"))
	})

	It("rejects unknown keys", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfger.SetConfigValue("nope.nope", "x")).To(HaveOccurred())
		_, err = cfger.GetConfigValue("nope.nope")
		Expect(err).To(HaveOccurred())
	})

	It("validates typed values", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfger.SetConfigValue("engine.max_potential_causes", "not-a-number")).To(HaveOccurred())
		Expect(cfger.SetConfigValue("engine.max_potential_causes", "7")).To(Succeed())

		value, err := cfger.GetConfigValue("engine.max_potential_causes")
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal("7"))
	})
})

var _ = Describe("InitViper", func() {
	It("honours the historical flat env names", func() {
		GinkgoT().Setenv("DB_PATH", "/tmp/flat-named.db")
		GinkgoT().Setenv("SIMILARITY_THRESHOLD", "0.7")
		GinkgoT().Setenv("MAX_CONSEQUENCE_DEPTH", "4")

		v, err := config.InitViper(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		cfg := config.FromViper(v)
		Expect(cfg.Storage.DBPath).To(Equal("/tmp/flat-named.db"))
		Expect(cfg.Engine.SimilarityThreshold).To(BeNumerically("~", 0.7, 1e-9))
		Expect(cfg.Engine.MaxConsequenceDepth).To(Equal(4))
	})

	It("falls back to defaults with no env or file", func() {
		v, err := config.InitViper(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		cfg := config.FromViper(v)
		Expect(cfg.Storage.DBPath).To(Equal("causal_memory.db"))
		Expect(cfg.API.RateLimitEventsPerMin).To(Equal(60))
		Expect(cfg.MCP.Port).To(BeZero())
	})
})
