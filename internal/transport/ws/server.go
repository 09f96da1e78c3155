package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/websocket"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"statecraft.ai/internal/protocol"
)

type ServerConfig struct {
	// Roster is the set of playable character names.
	Roster []string

	Params         protocol.GameParams
	ScenarioDigest string

	// SchemaDir holds the wire schemas; when set, incoming ACT
	// messages are validated against act.schema.json before decoding.
	SchemaDir string
}

type Server struct {
	hub    *Hub
	cfg    ServerConfig
	log    *log.Logger
	actSch *jsonschema.Schema

	upgrader websocket.Upgrader
}

func NewServer(cfg ServerConfig, logger *log.Logger) (*Server, error) {
	s := &Server{
		hub: NewHub(cfg.Roster),
		cfg: cfg,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	if cfg.SchemaDir != "" {
		sch, err := jsonschema.Compile(filepath.Join(cfg.SchemaDir, "act.schema.json"))
		if err != nil {
			return nil, err
		}
		s.actSch = sch
	}
	return s, nil
}

// Hub exposes the session registry so the round controller can adopt
// its remote agents.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := s.handshake(conn)
		if sess == nil {
			return
		}
		defer s.hub.release(sess.character, sess)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-sess.out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(10 * time.Minute))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeAct {
				continue
			}
			s.handleAct(sess, msg)
		}
	}
}

func (s *Server) handleAct(sess *session, msg []byte) {
	if s.actSch != nil {
		var doc any
		if err := json.Unmarshal(msg, &doc); err != nil {
			s.ack(sess, 0, false, protocol.ErrProtoBadRequest, "malformed JSON")
			return
		}
		if err := s.actSch.Validate(doc); err != nil {
			s.ack(sess, 0, false, protocol.ErrBadRequest, "schema: "+err.Error())
			return
		}
	}

	var act protocol.ActMsg
	if err := json.Unmarshal(msg, &act); err != nil {
		s.ack(sess, 0, false, protocol.ErrProtoBadRequest, "malformed ACT")
		return
	}
	if act.ProtocolVersion != protocol.Version {
		s.ack(sess, act.Round, false, protocol.ErrProtoBadRequest, "unsupported protocol_version")
		return
	}
	if act.Character != "" && act.Character != sess.character {
		s.ack(sess, act.Round, false, protocol.ErrBadRequest, "character mismatch")
		return
	}

	sub := ToSubmission(act)
	select {
	case sess.acts <- actDelivery{round: act.Round, sub: sub}:
		s.ack(sess, act.Round, true, "", "")
	default:
		// A submission for this round is already queued.
		s.ack(sess, act.Round, false, protocol.ErrStale, "submission already pending")
	}
}

func (s *Server) ack(sess *session, round int, accepted bool, code, detail string) {
	b, err := json.Marshal(protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          protocol.TypeAct,
		Accepted:        accepted,
		Code:            code,
		Message:         detail,
		Round:           round,
	})
	if err != nil {
		return
	}
	select {
	case sess.out <- b:
	default:
	}
}

func (s *Server) handshake(conn *websocket.Conn) *session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closePolicy(conn, "expected HELLO")
		return nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		closePolicy(conn, "malformed HELLO")
		return nil
	}
	if hello.ProtocolVersion != protocol.Version {
		closePolicy(conn, "bad protocol_version")
		return nil
	}

	sess := &session{
		character: hello.CharacterName,
		out:       make(chan []byte, 16),
		acts:      make(chan actDelivery, 1),
	}
	if code := s.hub.claim(hello.CharacterName, sess); code != "" {
		closePolicy(conn, code)
		return nil
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		Character:       hello.CharacterName,
		GameParams:      s.cfg.Params,
		ScenarioDigest:  s.cfg.ScenarioDigest,
	}
	if err := writeJSON(conn, welcome); err != nil {
		s.hub.release(sess.character, sess)
		return nil
	}
	s.log.Printf("[ws] character=%q connected", hello.CharacterName)
	return sess
}

func closePolicy(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
