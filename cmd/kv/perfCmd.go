package kv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ValentinKolb/seglog/cmd/util"
	"github.com/ValentinKolb/seglog/lib/store/command"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:   "perf",
		Short: "Performance testing tool for the local store",
		Long: `Runs a series of timed phases (put, get, update, mixed, batch) against the local store
and prints latency and throughput per phase. Every phase uses its own key prefix.`,
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix = "__perf"
	perfPhases    = []string{"put", "get", "update", "mixed", "batch"}
	perfKeySpread = 1000
	perfOps       = 100000
	perfValueSize = 64
	perfBatchSize = 256
	perfSkip      = make([]string, 0)
)

func init() {
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Phases to skip (comma separated - e.g. put,batch)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("How many different keys every phase uses"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 100000, util.WrapString("Number of operations per phase"))
	key = "value-size"
	perfTestCmd.Flags().Int(key, 64, util.WrapString("Size of every written value in bytes"))
	key = "perf-batch-size"
	perfTestCmd.Flags().Int(key, 256, util.WrapString("Number of commands per batch in the batch phase"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
	key = "metrics"
	perfTestCmd.Flags().Bool(key, false, util.WrapString("Print the store and log metrics in Prometheus text format after the run"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	perfKeySpread = viper.GetInt("keys")
	perfOps = viper.GetInt("ops")
	perfValueSize = viper.GetInt("value-size")
	perfBatchSize = viper.GetInt("perf-batch-size")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	switch {
	case perfKeySpread < 1:
		return fmt.Errorf("keys must be at least 1, got %d", perfKeySpread)
	case perfOps < 1:
		return fmt.Errorf("ops must be at least 1, got %d", perfOps)
	case perfValueSize < 1 || perfValueSize > 65535:
		return fmt.Errorf("value-size must be between 1 and 65535, got %d", perfValueSize)
	case perfBatchSize < 1:
		return fmt.Errorf("perf-batch-size must be at least 1, got %d", perfBatchSize)
	}
	return nil
}

// perfResult is the outcome of a single phase
type perfResult struct {
	phase    string
	ops      int
	rejected int
	elapsed  time.Duration
	timer    gometrics.Timer
	skipped  bool
}

func (r perfResult) opsPerSec() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.ops) / r.elapsed.Seconds()
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for seglog")

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(engineConfig.String())
	fmt.Printf("Operations: %d, Keys: %d, Value size: %d bytes, Batch size: %d\n", perfOps, perfKeySpread, perfValueSize, perfBatchSize)
	fmt.Println()

	fmt.Println("starting tests...")

	registry := gometrics.NewRegistry()
	value := make([]byte, perfValueSize)
	for i := range value {
		value[i] = byte('a' + i%26)
	}

	results := make([]perfResult, 0, len(perfPhases))
	for _, phase := range perfPhases {
		if shouldSkip(phase) {
			results = append(results, perfResult{phase: phase, skipped: true})
			printResult(results[len(results)-1])
			continue
		}

		timer := gometrics.GetOrRegisterTimer(phase, registry)
		result := runPhase(phase, timer, value)
		results = append(results, result)
		printResult(result)
	}

	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	if viper.GetBool("metrics") {
		fmt.Println()
		writeMetrics(os.Stdout)
	}

	return nil
}

// runPhase runs a single phase against the local store, timing every operation
// (or every batch in the batch phase) with timer
func runPhase(phase string, timer gometrics.Timer, value []byte) perfResult {
	result := perfResult{phase: phase, timer: timer}
	keys := getKeys(phase)

	put := func(key []byte) {
		ok, err := localStore.Put(key, value)
		if err != nil {
			log.Errorf("(%s) - error putting key: %v", phase, err)
		}
		if !ok {
			result.rejected++
		}
	}
	get := func(key []byte) {
		if _, _, err := localStore.Get(key); err != nil {
			log.Errorf("(%s) - error getting key: %v", phase, err)
		}
	}

	// prepare keys
	if phase == "get" || phase == "update" || phase == "mixed" {
		for _, k := range keys {
			put(k)
		}
		result.rejected = 0
	}

	start := time.Now()
	switch phase {
	case "batch":
		batch := make([]command.Command, 0, perfBatchSize)
		for i := 0; i < perfOps; i += perfBatchSize {
			batch = batch[:0]
			for j := i; j < i+perfBatchSize && j < perfOps; j++ {
				if j%2 == 0 {
					batch = append(batch, command.Put(keys[j%len(keys)], value))
				} else {
					batch = append(batch, command.Get(keys[j%len(keys)]))
				}
			}

			t := time.Now()
			for _, resp := range localStore.ExecuteBatch(batch) {
				if resp.Err != nil {
					log.Errorf("(%s) - error executing batch: %v", phase, resp.Err)
				} else if !resp.IsGet() && !resp.Ok {
					result.rejected++
				}
			}
			timer.UpdateSince(t)
		}
	default:
		for i := 0; i < perfOps; i++ {
			key := keys[i%len(keys)]
			t := time.Now()
			switch phase {
			case "put":
				put(key)
			case "get":
				get(key)
			case "update":
				ok, err := localStore.Update(key, value)
				if err != nil {
					log.Errorf("(%s) - error updating key: %v", phase, err)
				}
				if !ok {
					result.rejected++
				}
			case "mixed":
				if i%4 == 0 {
					put(key)
				} else {
					get(key)
				}
			}
			timer.UpdateSince(t)
		}
	}
	result.elapsed = time.Since(start)
	result.ops = perfOps

	if result.rejected > 0 {
		log.Warningf("(%s) - %d writes were rejected, the log is full", phase, result.rejected)
	}
	return result
}

// writeMetrics writes the metrics of the logs and of the store to w
func writeMetrics(w io.Writer) {
	if logRegistry != nil {
		logRegistry.WriteMetrics(w)
	}
	if m, ok := localStore.(interface{ WriteMetrics(io.Writer) }); ok {
		m.WriteMetrics(w)
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(phase string) bool {
	for _, skip := range perfSkip {
		if phase == strings.TrimSpace(skip) {
			return true
		}
	}
	return false
}

// getKeys creates the test keys of a phase
func getKeys(phase string) [][]byte {
	keys := make([][]byte, perfKeySpread)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("%s-%s-%d", perfKeyPrefix, phase, i))
	}
	return keys
}

// printResult prints the result of a phase in a formatted way
func printResult(result perfResult) {
	if result.skipped {
		fmt.Printf("%-10sskipped\n", result.phase)
		return
	}

	snap := result.timer.Snapshot()
	fmt.Printf("%-10s%8.0f ops/sec\tmean %s\tp99 %s\tmax %s\trejected %d\n",
		result.phase,
		result.opsPerSec(),
		time.Duration(snap.Mean()),
		time.Duration(snap.Percentile(0.99)),
		time.Duration(snap.Max()),
		result.rejected,
	)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []perfResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	return writeResultsCSV(file, results)
}

func writeResultsCSV(w io.Writer, results []perfResult) error {
	writer := csv.NewWriter(w)

	header := []string{
		"Phase", "Skipped", "Ops", "Rejected", "OpsPerSec",
		"Samples", "MeanNs", "MinNs", "P50Ns", "P99Ns", "MaxNs",
		"Cores", "QueueCapacity", "LogSizeBytes", "SegmentSizeBytes",
		"Keys", "ValueSize", "BatchSize",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, result := range results {
		row := []string{result.phase, strconv.FormatBool(result.skipped)}
		if result.skipped {
			row = append(row, make([]string, 9)...)
		} else {
			snap := result.timer.Snapshot()
			row = append(row,
				strconv.Itoa(result.ops),
				strconv.Itoa(result.rejected),
				fmt.Sprintf("%.0f", result.opsPerSec()),
				strconv.FormatInt(snap.Count(), 10),
				fmt.Sprintf("%.0f", snap.Mean()),
				strconv.FormatInt(snap.Min(), 10),
				fmt.Sprintf("%.0f", snap.Percentile(0.5)),
				fmt.Sprintf("%.0f", snap.Percentile(0.99)),
				strconv.FormatInt(snap.Max(), 10),
			)
		}
		row = append(row,
			strconv.Itoa(engineConfig.Cores),
			strconv.Itoa(engineConfig.QueueCapacity),
			strconv.Itoa(engineConfig.LogSizeBytes),
			strconv.Itoa(engineConfig.SegmentSizeBytes),
			strconv.Itoa(perfKeySpread),
			strconv.Itoa(perfValueSize),
			strconv.Itoa(perfBatchSize),
		)

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for phase %s: %v", result.phase, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
