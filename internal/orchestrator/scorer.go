package orchestrator

import (
	"sort"

	"github.com/avishaychauhan/EchoLabs/internal/model"
)

// Score returns a copy of intents with priorities assigned from the fixed
// table, sorted by descending priority. Ties keep their input order and the
// input slice is left untouched.
func Score(intents []model.ClassifiedIntent) []model.ClassifiedIntent {
	scored := make([]model.ClassifiedIntent, len(intents))
	for i, in := range intents {
		in.Priority = in.Type.Priority()
		scored[i] = in
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Priority > scored[j].Priority
	})

	return scored
}
