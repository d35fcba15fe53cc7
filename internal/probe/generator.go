package probe

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/roster/internal/domain/model"
)

var (
	years    = []string{"1st Year", "2nd Year", "3rd Year", "4th Year"} //nolint:gochecknoglobals // fixture data
	sections = []string{"A", "B", "C", "D"}                             //nolint:gochecknoglobals // fixture data
)

// generateAttempts builds cfg.Students valid payloads, interleaving one
// payload without a section every cfg.InvalidEvery requests.
func generateAttempts(cfg *Config) []attempt {
	out := make([]attempt, 0, cfg.Students+cfg.Students/max(cfg.InvalidEvery, 1))
	for valid := 0; valid < cfg.Students; {
		n := len(out) + 1
		payload := model.NewStudent{
			Name:    fmt.Sprintf("probe-%s", uuid.NewString()[:8]),
			Year:    years[rand.Intn(len(years))],       //nolint:gosec // not security sensitive
			Section: sections[rand.Intn(len(sections))], //nolint:gosec // not security sensitive
		}
		if cfg.InvalidEvery > 1 && n%cfg.InvalidEvery == 0 {
			payload.Section = ""
			out = append(out, attempt{payload: payload, valid: false})
			continue
		}
		out = append(out, attempt{payload: payload, valid: true})
		valid++
	}
	return out
}
