// Command xfertest runs one transfer-verification activation against a
// simulated platform: a memcpy engine, a working DRAM arena, and a
// fixed reserved-memory window.
package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/xfertest/dmaengine"
	"github.com/sarchlab/xfertest/harness"
	"github.com/sarchlab/xfertest/memory"
	"github.com/sarchlab/xfertest/platform"
	"github.com/sarchlab/xfertest/recording"
)

const (
	storageCapacity = 64 << 20
	dramBase        = 0x100_0000
	dramSize        = 0x100_0000
	fixedBase       = 0x300_0000
)

var (
	flagBufferSize    uint64
	flagTestMode      uint32
	flagAllocMode     string
	flagProvisionMode string
	flagTimeout       time.Duration
	flagLatency       time.Duration
	flagFixedSize     uint64
	flagRecord        string
	flagSeed          uint64
)

var rootCmd = &cobra.Command{
	Use:   "xfertest",
	Short: "Verify engine and CPU copies through a reserved memory window",
	Long: `xfertest copies a pseudo-random payload from a source buffer into a ` +
		`fixed reserved-memory window and on into a destination buffer, once ` +
		`with a memory-to-memory offload engine and once with the CPU, and ` +
		`checks after every hop that both sides hold identical bytes.`,
	Run: run,
}

func init() {
	f := rootCmd.Flags()
	f.Uint64Var(&flagBufferSize, "buffer-size", 16384,
		"size of the memcpy test buffer in bytes")
	f.Uint32Var(&flagTestMode, "test-mode", 3,
		"test sections to run (1: engine, 2: CPU, 3: both)")
	f.StringVar(&flagAllocMode, "alloc-mode", "coherent",
		"buffer allocation discipline (coherent or mapped)")
	f.StringVar(&flagProvisionMode, "provision-mode", "bind",
		"region ownership strategy (bind or child)")
	f.DurationVar(&flagTimeout, "timeout", 3*time.Second,
		"bound on the wait for one engine transfer")
	f.DurationVar(&flagLatency, "latency", 0,
		"simulated completion latency of the engine")
	f.Uint64Var(&flagFixedSize, "fixed-size", 0x1_0000,
		"size of the fixed reserved window in bytes")
	f.StringVar(&flagRecord, "record", "",
		"record hop outcomes into <path>.sqlite3")
	f.Uint64Var(&flagSeed, "seed", 0,
		"payload generator seed (0 picks one at random)")
}

func main() {
	godotenv.Load()
	applyEnvDefaults()

	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
}

// applyEnvDefaults lets a .env file or the environment override flag
// defaults; explicit flags still win.
func applyEnvDefaults() {
	env := map[string]string{
		"XFERTEST_BUFFER_SIZE": "buffer-size",
		"XFERTEST_TEST_MODE":   "test-mode",
		"XFERTEST_ALLOC_MODE":  "alloc-mode",
		"XFERTEST_RECORD":      "record",
	}

	for key, flag := range env {
		if v := os.Getenv(key); v != "" {
			rootCmd.Flags().Lookup(flag).DefValue = v
			rootCmd.Flags().Set(flag, v)
		}
	}
}

func run(cmd *cobra.Command, args []string) {
	log := logrus.StandardLogger()

	cfg := harness.MakeConfig()
	cfg.BufferSize = flagBufferSize
	cfg.TestMode = harness.Mode(flagTestMode)
	cfg.Timeout = flagTimeout

	switch flagAllocMode {
	case "coherent":
		cfg.AllocMode = harness.AllocCoherent
	case "mapped":
		cfg.AllocMode = harness.AllocMapped
	default:
		log.Errorf("unknown alloc mode %q", flagAllocMode)
		atexit.Exit(1)
	}

	switch flagProvisionMode {
	case "bind":
		cfg.ProvisionMode = harness.ProvisionBindOwner
	case "child":
		cfg.ProvisionMode = harness.ProvisionChildOwner
	default:
		log.Errorf("unknown provision mode %q", flagProvisionMode)
		atexit.Exit(1)
	}

	store := memory.NewStorage(storageCapacity)

	channels := dmaengine.NewRegistry()
	channels.Register(dmaengine.MakeBuilder().
		WithName("memcpy0").
		WithStorage(store).
		WithLatency(flagLatency).
		Build())

	dev := platform.NewRootDevice("xfertest", platform.AddrAttrs{
		DMAMask:  storageCapacity - 1,
		Coherent: true,
	})

	platformCfg := platform.MakeConfig().
		WithReservedRegion(platform.ReservedRegion{
			Name: "dram", Base: dramBase, Size: dramSize,
		}).
		WithReservedRegion(platform.ReservedRegion{
			Name: "fixmem", Base: fixedBase, Size: flagFixedSize,
		})

	builder := harness.MakeBuilder().
		WithConfig(cfg).
		WithPlatformConfig(platformCfg).
		WithChannelRegistry(channels).
		WithDeviceRegistry(platform.NewRegistry()).
		WithStorage(store).
		WithDevice(dev).
		WithLogger(log)

	if flagSeed != 0 {
		builder = builder.WithSeed(flagSeed)
	}

	if flagRecord != "" {
		rec := recording.NewSQLiteRecorder(flagRecord)
		if err := rec.Init(); err != nil {
			log.WithError(err).Error("failed to open hop recorder")
			atexit.Exit(1)
		}
		defer rec.Close()
		builder = builder.WithRecorder(rec)
	}

	_, err := builder.Build().Run()
	if err != nil {
		// Hop failures are only logged; acquisition failures fail the
		// activation. A missing channel is transient, so give callers
		// a distinct exit code to retry on.
		if harness.Retryable(err) {
			atexit.Exit(2)
		}
		atexit.Exit(1)
	}
}
