package engine

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"sort"

	"statecraft.ai/internal/sim/game"
)

// StateDigest is a canonical sha256 over the full game state. Map
// iteration is pinned to sorted keys and character order to the
// registration order, so equal states always hash equal. Used for
// determinism tests, the round history and the run index.
func StateDigest(s *game.GameState) string {
	h := sha256.New()
	var tmp [8]byte

	writeU64(h, tmp, uint64(s.CurrentRound))
	writeU64(h, tmp, uint64(s.CurrentDate.Unix()))
	writeU64(h, tmp, uint64(len(s.Topics)))
	for _, t := range s.Topics {
		writeStr(h, tmp, t)
	}

	for _, c := range s.InOrder() {
		writeStr(h, tmp, c.Name)
		writeStr(h, tmp, c.Private.TrueObjectives)
		writeStr(h, tmp, c.Private.TrueStrategy)
		writeF64(h, tmp, c.Private.Assets.TechnicalCapability)
		writeU64(h, tmp, uint64(c.Private.Assets.Capital))
		writeF64(h, tmp, c.Private.Assets.Human)
		writeF64(h, tmp, c.Private.CounterIntel)

		periods := make([]string, 0, len(c.Private.Budget))
		for p := range c.Private.Budget {
			periods = append(periods, p)
		}
		sort.Strings(periods)
		writeU64(h, tmp, uint64(len(periods)))
		for _, p := range periods {
			writeStr(h, tmp, p)
			writeU64(h, tmp, uint64(c.Private.Budget[p]))
		}

		writeU64(h, tmp, uint64(len(c.Private.ActiveProjects)))
		for _, p := range c.Private.ActiveProjects {
			writeStr(h, tmp, p.ID)
			writeStr(h, tmp, p.Topic)
			writeStr(h, tmp, string(p.Status))
			writeF64(h, tmp, p.Progress)
			writeU64(h, tmp, uint64(p.EstimatedDurationRounds))
			writeU64(h, tmp, uint64(p.StartedRound))
			writeF64(h, tmp, p.Committed.TechnicalCapability)
			writeU64(h, tmp, uint64(p.Committed.Capital))
			writeF64(h, tmp, p.Committed.Human)
		}

		writeU64(h, tmp, uint64(len(c.Private.MessagesReceived)))
		for _, m := range c.Private.MessagesReceived {
			writeStr(h, tmp, m.From)
			writeStr(h, tmp, m.To)
			writeU64(h, tmp, uint64(m.Round))
			writeStr(h, tmp, m.Body)
		}

		writeStr(h, tmp, c.Public.StatedObjectives)
		writeStr(h, tmp, c.Public.StatedStrategy)
		writeU64(h, tmp, uint64(len(c.Public.PublicArtifacts)))
		for _, a := range c.Public.PublicArtifacts {
			writeStr(h, tmp, a)
		}
	}

	writeU64(h, tmp, uint64(len(s.PublicEvents)))
	for _, ev := range s.PublicEvents {
		writeU64(h, tmp, uint64(ev.Round))
		writeStr(h, tmp, ev.Description)
	}

	return hex.EncodeToString(h.Sum(nil))
}

func writeU64(h hash.Hash, tmp [8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func writeF64(h hash.Hash, tmp [8]byte, v float64) {
	writeU64(h, tmp, math.Float64bits(v))
}

func writeStr(h hash.Hash, tmp [8]byte, s string) {
	writeU64(h, tmp, uint64(len(s)))
	h.Write([]byte(s))
}
