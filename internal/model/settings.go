package model

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultCycleWeight applies to a current cycle missing from the weight table.
const DefaultCycleWeight = 10

// DefaultRiskThreshold percentToMaintain below which Slack alerts list a dealer
const DefaultRiskThreshold = 50.0

// CycleWeights cycle id -> share (0-100) of the advance goal expected in that cycle
type CycleWeights map[string]int

// Weight returns the configured weight, DefaultCycleWeight when absent.
// A configured 0 stays 0.
func (w CycleWeights) Weight(cycle string) int {
	if v, ok := w[cycle]; ok {
		return v
	}
	return DefaultCycleWeight
}

// Cycles returns the configured cycle ids in chronological order.
func (w CycleWeights) Cycles() []string {
	ids := make([]string, 0, len(w))
	for k := range w {
		ids = append(ids, k)
	}
	SortCycles(ids)
	return ids
}

// Clone returns an independent copy.
func (w CycleWeights) Clone() CycleWeights {
	out := make(CycleWeights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// SortCycles orders "NN/YYYY" ids by year then cycle number.
// Ids in any other shape sort after them, lexically.
func SortCycles(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		ni, yi, oki := splitCycle(ids[i])
		nj, yj, okj := splitCycle(ids[j])
		switch {
		case oki && okj:
			if yi != yj {
				return yi < yj
			}
			if ni != nj {
				return ni < nj
			}
			return ids[i] < ids[j]
		case oki != okj:
			return oki
		default:
			return ids[i] < ids[j]
		}
	})
}

func splitCycle(id string) (num, year int, ok bool) {
	n, y, found := strings.Cut(strings.TrimSpace(id), "/")
	if !found {
		return 0, 0, false
	}
	num, err := strconv.Atoi(n)
	if err != nil {
		return 0, 0, false
	}
	year, err = strconv.Atoi(y)
	if err != nil {
		return 0, 0, false
	}
	return num, year, true
}

// RewardMessage broadcast shown to every supervisor
type RewardMessage struct {
	Title     string    `json:"titulo"`
	Text      string    `json:"texto"`
	Active    bool      `json:"ativa"`
	CreatedAt time.Time `json:"criadaEm"`
}

// SlackSettings runtime switches of the risk alert job
type SlackSettings struct {
	Enabled              bool              `json:"enabled"`
	TestMode             bool              `json:"testMode"`
	RiskThresholdPercent float64           `json:"riskThresholdPercent" validate:"gte=1,lte=100"`
	SendWhenZero         bool              `json:"sendWhenZero"`
	SupervisorsBySector  map[string]string `json:"supervisoresPorSetor" validate:"dive,keys,required,endkeys,required"`
}

// Settings admin-editable runtime settings persisted as settings.json
type Settings struct {
	CurrentCycle  string         `json:"cicloAtual" validate:"required"`
	Weights       CycleWeights   `json:"representatividade" validate:"dive,keys,required,endkeys,gte=0,lte=100"`
	RewardMessage *RewardMessage `json:"mensagemRecompensa"`
	Slack         SlackSettings  `json:"slack"`
}

// DefaultSettings values used before any admin change.
func DefaultSettings() *Settings {
	return &Settings{
		CurrentCycle: "01/2026",
		Weights: CycleWeights{
			"01/2026": 8,
			"02/2026": 11,
			"03/2026": 11,
			"04/2026": 12,
			"05/2026": 11,
			"06/2026": 15,
			"07/2026": 10,
			"08/2026": 11,
			"09/2026": 10,
		},
		Slack: SlackSettings{
			Enabled:              false,
			TestMode:             true,
			RiskThresholdPercent: DefaultRiskThreshold,
			SendWhenZero:         false,
			SupervisorsBySector:  map[string]string{},
		},
	}
}

// Clone deep-copies the settings.
func (s *Settings) Clone() *Settings {
	out := *s
	out.Weights = s.Weights.Clone()
	if s.RewardMessage != nil {
		msg := *s.RewardMessage
		out.RewardMessage = &msg
	}
	out.Slack.SupervisorsBySector = make(map[string]string, len(s.Slack.SupervisorsBySector))
	for k, v := range s.Slack.SupervisorsBySector {
		out.Slack.SupervisorsBySector[k] = v
	}
	return &out
}
