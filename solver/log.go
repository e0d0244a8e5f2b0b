package solver

import (
	"sort"

	"github.com/somasolver/somas/pkg/utils"
)

// LogSummary emits the --INFO-- summary lines a solve run is specified to
// produce: best index, best bytes (and GiB), lifelong bytes, elapsed
// microseconds, the winning algorithm/sort/fit names, the spread
// percentage, and (if a Timer was attached) each phase's duration in
// microseconds.
func LogSummary(log *utils.SolverLogger, s *Summary) {
	if log == nil {
		return
	}
	const gib = 1024 * 1024 * 1024
	log.Info("solve %s: best_sol_index=%d tensors=%d", s.Status, s.BestIndex, s.TensorCount)
	log.Info("best_bytes=%d (%.3f GiB) lifelong_bytes=%d (%.3f GiB)",
		s.BestBytes, float64(s.BestBytes)/gib, s.LifelongBytes, float64(s.LifelongBytes)/gib)
	log.Info("algorithm=%s sort=%s fit=%s elapsed_us=%d", s.Algorithm, s.Sort, s.Fit, s.ElapsedMicros)
	log.Info("worst_bytes=%d spread_pct=%.2f verified=%t", s.WorstBytes, s.SpreadPercent, s.Verified)

	for _, name := range sortedPhaseNames(s.PhaseMicros) {
		log.Info("phase %s took %dus", name, s.PhaseMicros[name])
	}
}

// sortedPhaseNames orders phase names for deterministic log output; map
// iteration order is otherwise unspecified.
func sortedPhaseNames(phases map[string]int64) []string {
	names := make([]string, 0, len(phases))
	for name := range phases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
