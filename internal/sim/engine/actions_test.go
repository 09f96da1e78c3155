package engine

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"statecraft.ai/internal/protocol"
	"statecraft.ai/internal/sim/game"
)

func TestFundraiseAddsDiscountedAmountToBudget(t *testing.T) {
	gm := New(quietTuning(), nil) // success rate pinned to 1
	s := testState(t)

	next, summaries, _ := mustRound(t, gm, s, onlyAction(game.Action{
		Kind: game.ActFundraise, Fundraise: &game.FundraiseAction{Amount: 500},
	}), 1)

	// 500 at efficiency 0.8 lands in the current calendar year.
	if got := next.Characters["Alpha"].Private.Budget["2026"]; got != 5400 {
		t.Fatalf("budget = %d, want 5400", got)
	}
	if res := resultFor(summaries["Alpha"], game.ActFundraise); res == nil || !res.OK {
		t.Fatalf("fundraise result = %+v", res)
	}
}

func TestFundraiseFailureLeavesBudgetAlone(t *testing.T) {
	tun := quietTuning()
	tun.Fundraise.SuccessRate = 0
	gm := New(tun, nil)
	s := testState(t)

	next, summaries, _ := mustRound(t, gm, s, onlyAction(game.Action{
		Kind: game.ActFundraise, Fundraise: &game.FundraiseAction{Amount: 500},
	}), 1)

	if got := next.Characters["Alpha"].Private.Budget["2026"]; got != 5000 {
		t.Fatalf("budget = %d, want 5000", got)
	}
	res := resultFor(summaries["Alpha"], game.ActFundraise)
	if res == nil || res.OK || res.Code != "" {
		t.Fatalf("failed roll must be an outcome, not a rejection: %+v", res)
	}
}

func TestInvestAndDivestMoveCapital(t *testing.T) {
	gm := New(quietTuning(), nil)
	s := testState(t)

	next, _, _ := mustRound(t, gm, s, onlyAction(game.Action{
		Kind: game.ActInvestCapital, Invest: &game.CapitalAction{Amount: 1000},
	}), 1)
	alpha := next.Characters["Alpha"]
	if alpha.Private.Budget["2026"] != 4000 {
		t.Fatalf("budget = %d, want 4000", alpha.Private.Budget["2026"])
	}
	if alpha.Private.Assets.Capital != 10900 { // +1000 * 0.9
		t.Fatalf("capital = %d, want 10900", alpha.Private.Assets.Capital)
	}

	next, _, _ = mustRound(t, gm, next, onlyAction(game.Action{
		Kind: game.ActDivestCapital, Divest: &game.CapitalAction{Amount: 900},
	}), 2)
	alpha = next.Characters["Alpha"]
	if alpha.Private.Assets.Capital != 10000 {
		t.Fatalf("capital = %d, want 10000", alpha.Private.Assets.Capital)
	}
	if alpha.Private.Budget["2026"] != 4630 { // +900 * 0.7
		t.Fatalf("budget = %d, want 4630", alpha.Private.Budget["2026"])
	}
}

func TestPoachContentionFirstInOrderWins(t *testing.T) {
	gm := New(quietTuning(), nil) // poach success pinned to 1
	s := testState(t, "Alpha", "Beta", "Gamma")

	subs := map[string]Submission{
		"Alpha": {Primary: []game.Action{{Kind: game.ActPoachTalent, Poach: &game.PoachAction{Target: "Gamma"}}}},
		"Beta":  {Primary: []game.Action{{Kind: game.ActPoachTalent, Poach: &game.PoachAction{Target: "Gamma"}}}},
	}
	next, summaries, _ := mustRound(t, gm, s, subs, 1)

	aRes := resultFor(summaries["Alpha"], game.ActPoachTalent)
	bRes := resultFor(summaries["Beta"], game.ActPoachTalent)
	if aRes == nil || !aRes.OK {
		t.Fatalf("first poacher failed: %+v", aRes)
	}
	if bRes == nil || bRes.OK || bRes.Code != protocol.ErrNoResource {
		t.Fatalf("second poacher = %+v, want %s", bRes, protocol.ErrNoResource)
	}

	// hcap 30 * rate 0.1 = 3, under the cap of 5.
	if got := next.Characters["Gamma"].Private.Assets.Human; math.Abs(got-27) > 1e-9 {
		t.Fatalf("target headcount = %v, want 27", got)
	}
	if got := next.Characters["Alpha"].Private.Assets.Human; math.Abs(got-33) > 1e-9 {
		t.Fatalf("poacher headcount = %v, want 33", got)
	}
	if got := next.Characters["Beta"].Private.Assets.Human; got != 30 {
		t.Fatalf("losing poacher headcount = %v, want 30", got)
	}
}

func TestMessagesDeliverPrivately(t *testing.T) {
	gm := New(quietTuning(), nil)
	s := testState(t, "Alpha", "Beta", "Gamma")

	subs := map[string]Submission{
		"Alpha": {Messages: []game.MessageAction{{To: "Beta", Body: "meet at the summit"}}},
	}
	next, summaries, _ := mustRound(t, gm, s, subs, 1)

	got := summaries["Beta"].NewMessages
	if len(got) != 1 || got[0].From != "Alpha" || got[0].Body != "meet at the summit" || got[0].Round != 1 {
		t.Fatalf("recipient messages = %+v", got)
	}
	if len(summaries["Gamma"].NewMessages) != 0 {
		t.Fatalf("third party saw a private message: %+v", summaries["Gamma"].NewMessages)
	}
	inbox := next.Characters["Beta"].Private.MessagesReceived
	if len(inbox) != 1 || inbox[0].From != "Alpha" {
		t.Fatalf("inbox = %+v", inbox)
	}
	if res := resultFor(summaries["Alpha"], game.ActSendMessage); res == nil || !res.OK {
		t.Fatalf("sender got no delivery result: %+v", summaries["Alpha"].ActionResults)
	}
}

func TestLobbyShiftsStatedObjectives(t *testing.T) {
	gm := New(quietTuning(), nil) // backfire pinned to 0
	s := testState(t)

	claim := "regulation should wait for evidence"
	next, summaries, events := mustRound(t, gm, s, onlyAction(game.Action{
		Kind: game.ActLobby, Lobby: &game.InfluenceAction{Claim: claim},
	}), 1)

	if got := next.Characters["Alpha"].Public.StatedObjectives; got != claim {
		t.Fatalf("stated objectives = %q, want claim", got)
	}
	// The private truth is untouched.
	if got := next.Characters["Alpha"].Private.TrueObjectives; got != "Alpha wants to win" {
		t.Fatalf("true objectives mutated: %q", got)
	}
	if len(events) != 1 || !strings.Contains(events[0].Description, "Alpha") {
		t.Fatalf("events = %+v, want one lobby event", events)
	}
	if views := summaries["Beta"].OtherPublicViews; views["Alpha"].StatedObjectives != claim {
		t.Fatalf("other view = %+v, want updated claim", views["Alpha"])
	}
}

func TestMarketBackfirePublishesDispute(t *testing.T) {
	tun := quietTuning()
	tun.Influence.BackfireRate = 1
	gm := New(tun, nil)
	s := testState(t)

	next, summaries, events := mustRound(t, gm, s, onlyAction(game.Action{
		Kind: game.ActMarket, Market: &game.InfluenceAction{Claim: "our model is the safest"},
	}), 1)

	arts := next.Characters["Alpha"].Public.PublicArtifacts
	if len(arts) != 1 || !strings.HasPrefix(arts[0], "disputed claim:") {
		t.Fatalf("artifacts = %v, want one disputed claim", arts)
	}
	if len(events) != 1 || !strings.Contains(events[0].Description, "backfired") {
		t.Fatalf("events = %+v, want backfire event", events)
	}
	if res := resultFor(summaries["Alpha"], game.ActMarket); res == nil || res.OK {
		t.Fatalf("backfire result = %+v, want not OK", res)
	}
}

func TestSummaryNeverLeaksPrivateInfo(t *testing.T) {
	gm := New(quietTuning(), nil)
	s := testState(t)

	_, summaries, _ := mustRound(t, gm, s, nil, 1)

	views := summaries["Alpha"].OtherPublicViews
	beta, ok := views["Beta"]
	if !ok {
		t.Fatal("missing other public view")
	}
	if beta.StatedObjectives != "Beta wants peace" {
		t.Fatalf("stated objectives = %q", beta.StatedObjectives)
	}
	if strings.Contains(summaries["Alpha"].Digest, "Beta wants to win") {
		t.Fatal("another character's private objectives leaked into the digest")
	}
	if _, ok := views["Alpha"]; ok {
		t.Fatal("own view listed among others")
	}
}

func TestTruncateCutsAtRuneBoundary(t *testing.T) {
	cases := []struct {
		in string
		n  int
	}{
		{strings.Repeat("ü", 40), 7},
		{strings.Repeat("世", 30), 20},
		{"aé" + strings.Repeat("z", 80), 2},
		{strings.Repeat("plain ascii ", 10), 15},
	}
	for _, tc := range cases {
		got := truncate(tc.in, tc.n)
		if !utf8.ValidString(got) {
			t.Fatalf("truncate(%q, %d) = %q is not valid UTF-8", tc.in, tc.n, got)
		}
		if len(got) >= len(tc.in) && got != tc.in {
			t.Fatalf("truncate(%q, %d) grew to %q", tc.in, tc.n, got)
		}
	}
}

func TestPartialRevealKeepsValidUTF8(t *testing.T) {
	for _, in := range []string{
		strings.Repeat("ü", 25),
		"dominate the 世界 through compute" + strings.Repeat("!", 5),
		"short",
	} {
		got := partialReveal(in)
		if !utf8.ValidString(got) {
			t.Fatalf("partialReveal(%q) = %q is not valid UTF-8", in, got)
		}
	}
}
