package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"statecraft.ai/internal/protocol"
	"statecraft.ai/internal/sim/game"
	"statecraft.ai/internal/sim/runner"
)

// A scripted websocket client: connects as one character and plays the
// same rule-based policy the batch sim uses. Handy for exercising a
// server without a real decision-making agent on every seat.
func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "", "character name (required)")
		seed = flag.Int64("seed", 42, "policy seed")
	)
	flag.Parse()
	if *name == "" {
		log.Fatal("missing -name")
	}

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		CharacterName:   *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		_ = conn.Close()
	}()

	// Rivals and topics are learned lazily from the first BRIEF.
	var agent *runner.ScriptedAgent

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME character=%s rounds=%d scenario=%s", w.Character, w.GameParams.Rounds, w.ScenarioDigest)

		case protocol.TypeBrief:
			var brief protocol.BriefMsg
			if err := json.Unmarshal(msg, &brief); err != nil {
				continue
			}
			handleBrief(conn, logger, &agent, *name, *seed, &brief)

		case protocol.TypeAck:
			var ack protocol.AckMsg
			if err := json.Unmarshal(msg, &ack); err != nil {
				continue
			}
			if !ack.Accepted {
				logger.Printf("ACT rejected round=%d code=%s %s", ack.Round, ack.Code, ack.Message)
			}
		}
	}
}

func handleBrief(conn *websocket.Conn, logger *log.Logger, agent **runner.ScriptedAgent, name string, seed int64, brief *protocol.BriefMsg) {
	var summary *game.Summary
	if len(brief.Summary) > 0 {
		summary = &game.Summary{}
		if err := json.Unmarshal(brief.Summary, summary); err != nil {
			logger.Printf("bad summary: %v", err)
			summary = nil
		}
	}

	if *agent == nil {
		var rivals, topics []string
		if summary != nil {
			for other := range summary.OtherPublicViews {
				rivals = append(rivals, other)
			}
		}
		*agent = runner.NewScriptedAgent(name, rivals, topics, seed)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sub, err := (*agent).Propose(ctx, &runner.Brief{
		Round:     brief.Round,
		Character: name,
		Summary:   summary,
	})
	if err != nil {
		logger.Printf("propose: %v", err)
		return
	}

	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Round:           brief.Round,
		Character:       name,
	}
	for _, a := range sub.Primary {
		act.Actions = append(act.Actions, toActionReq(a))
	}
	for _, m := range sub.Messages {
		act.Messages = append(act.Messages, protocol.MessageReq{To: m.To, Body: m.Body})
	}
	if err := conn.WriteJSON(act); err != nil {
		logger.Printf("send ACT: %v", err)
	}
}

func toActionReq(a game.Action) protocol.ActionReq {
	req := protocol.ActionReq{Kind: string(a.Kind)}
	switch {
	case a.Fundraise != nil:
		req.Fundraise = &protocol.FundraiseReq{Amount: a.Fundraise.Amount, Pitch: a.Fundraise.Pitch}
	case a.CreateProject != nil:
		req.CreateProject = &protocol.ProjectReq{
			ProjectID:               a.CreateProject.ProjectID,
			Topic:                   a.CreateProject.Topic,
			CommittedCapital:        a.CreateProject.Committed.Capital,
			CommittedTechnical:      a.CreateProject.Committed.TechnicalCapability,
			CommittedHuman:          a.CreateProject.Committed.Human,
			EstimatedDurationRounds: a.CreateProject.EstimatedDurationRounds,
		}
	case a.CancelProject != nil:
		req.CancelProject = &protocol.CancelReq{ProjectID: a.CancelProject.ProjectID}
	case a.Invest != nil:
		req.Invest = &protocol.AmountReq{Amount: a.Invest.Amount}
	case a.Divest != nil:
		req.Divest = &protocol.AmountReq{Amount: a.Divest.Amount}
	case a.Espionage != nil:
		req.Espionage = &protocol.EspionageReq{Target: a.Espionage.Target, FocusArea: a.Espionage.FocusArea}
	case a.Poach != nil:
		req.Poach = &protocol.PoachReq{Target: a.Poach.Target}
	case a.Lobby != nil:
		req.Lobby = &protocol.ClaimReq{Claim: a.Lobby.Claim}
	case a.Market != nil:
		req.Market = &protocol.ClaimReq{Claim: a.Market.Claim}
	}
	return req
}
