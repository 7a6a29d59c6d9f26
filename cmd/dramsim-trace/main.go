// Command dramsim-trace replays a CSV access trace through a
// memtile.Controller and prints the resulting statistics. It is the
// trace-driven harness standing in for the ISA-level simulator and
// discrete-event framework the controller is designed to plug into
// (spec.md section 1).
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	memtile "github.com/MEEPproject/coyote-sub002"
	"github.com/MEEPproject/coyote-sub002/internal/logging"
	"github.com/MEEPproject/coyote-sub002/trace"
)

// config mirrors memtile.ControllerParams in a YAML-friendly shape
// (spec.md section 6 names every field here).
type config struct {
	NumBanks                int      `yaml:"num_banks"`
	NumBanksPerGroup        int      `yaml:"num_banks_per_group"`
	WriteAllocate           bool     `yaml:"write_allocate"`
	RequestReorderingPolicy string   `yaml:"request_reordering_policy"`
	CommandReorderingPolicy string   `yaml:"command_reordering_policy"`
	AddressPolicy           string   `yaml:"address_policy"`
	UnusedLSBs              uint     `yaml:"unused_lsbs"`
	MemSpec                 []string `yaml:"mem_spec"`

	NumRows           int `yaml:"num_rows"`
	NumColumns        int `yaml:"num_columns"`
	ColumnElementSize int `yaml:"column_element_size"`
	DelayOpen         uint64 `yaml:"delay_open"`
	DelayClose        uint64 `yaml:"delay_close"`
	DelayRead         uint64 `yaml:"delay_read"`
	DelayWrite        uint64 `yaml:"delay_write"`
}

func loadConfig(path string) (memtile.ControllerParams, error) {
	params := memtile.DefaultControllerParams()
	if path == "" {
		return params, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return params, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg config
	// Seed cfg from the defaults so a config file that only overrides a
	// handful of fields doesn't zero out the rest.
	cfg = configFromParams(params)
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return params, fmt.Errorf("parse config: %w", err)
	}
	return paramsFromConfig(cfg, params), nil
}

func configFromParams(p memtile.ControllerParams) config {
	return config{
		NumBanks:                p.NumBanks,
		NumBanksPerGroup:        p.NumBanksPerGroup,
		WriteAllocate:           p.WriteAllocate,
		RequestReorderingPolicy: p.RequestReorderingPolicy,
		CommandReorderingPolicy: p.CommandReorderingPolicy,
		AddressPolicy:           p.AddressPolicy,
		UnusedLSBs:              p.UnusedLSBs,
		MemSpec:                 p.MemSpec,
		NumRows:                 p.Bank.NumRows,
		NumColumns:              p.Bank.NumColumns,
		ColumnElementSize:       p.Bank.ColumnElementSize,
		DelayOpen:               p.Bank.DelayOpen,
		DelayClose:              p.Bank.DelayClose,
		DelayRead:               p.Bank.DelayRead,
		DelayWrite:              p.Bank.DelayWrite,
	}
}

func paramsFromConfig(cfg config, base memtile.ControllerParams) memtile.ControllerParams {
	base.NumBanks = cfg.NumBanks
	base.NumBanksPerGroup = cfg.NumBanksPerGroup
	base.WriteAllocate = cfg.WriteAllocate
	base.RequestReorderingPolicy = cfg.RequestReorderingPolicy
	base.CommandReorderingPolicy = cfg.CommandReorderingPolicy
	base.AddressPolicy = cfg.AddressPolicy
	base.UnusedLSBs = cfg.UnusedLSBs
	base.MemSpec = cfg.MemSpec
	base.Bank.NumRows = cfg.NumRows
	base.Bank.NumColumns = cfg.NumColumns
	base.Bank.ColumnElementSize = cfg.ColumnElementSize
	base.Bank.DelayOpen = cfg.DelayOpen
	base.Bank.DelayClose = cfg.DelayClose
	base.Bank.DelayRead = cfg.DelayRead
	base.Bank.DelayWrite = cfg.DelayWrite
	return base
}

func main() {
	var (
		tracePath  = flag.String("trace", "", "path to a CSV access trace (cycle,address,type,core_id,pc,size)")
		configPath = flag.String("config", "", "path to a YAML controller configuration")
		maxCycles  = flag.Uint64("max-cycles", 10_000_000, "stop after this many cycles even if the trace has not drained")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	params, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	params.Logger = logger

	controller, err := memtile.NewController(params)
	if err != nil {
		logger.Error("failed to build controller", "error", err)
		os.Exit(1)
	}

	entries, err := readTrace(*tracePath)
	if err != nil {
		logger.Error("failed to read trace", "error", err)
		os.Exit(1)
	}
	logger.Info("loaded trace", "entries", len(entries))

	i := 0
	var completed uint64
	for cycle := uint64(0); cycle < *maxCycles; cycle++ {
		for i < len(entries) && entries[i].Cycle == cycle {
			controller.OnRequest(cycle, entries[i].Request)
			i++
		}
		completed += uint64(len(controller.Tick(cycle)))
		if i >= len(entries) && controller.Idle() {
			logger.Info("drained", "cycle", cycle)
			break
		}
	}

	printStats(controller.Stats(), completed)
}

func readTrace(path string) ([]trace.Entry, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return trace.NewReader(f).ReadAll()
}

func printStats(s memtile.Stats, completed uint64) {
	fmt.Printf("requests completed: %d\n", completed)
	fmt.Printf("avg queue occupancy: %.2f (max %d)\n", s.AvgQueueOccupancy(), s.MaxQueueOccupancy())
	printType("load", s.Load)
	printType("fetch", s.Fetch)
	printType("store", s.Store)
	printType("writeback", s.Writeback)
}

func printType(name string, t interface {
	AvgLatency() float64
	AvgQueueLatency() float64
}) {
	fmt.Printf("  %-10s avg_latency=%.2f avg_queue_latency=%.2f\n", name, t.AvgLatency(), t.AvgQueueLatency())
}
