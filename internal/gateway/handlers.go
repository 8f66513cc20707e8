package gateway

import (
	"encoding/json"
	"log"

	"blackjack-lite/blackjack"
	"blackjack-lite/card"
)

func (c *Connection) handleMessage(data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("invalid_command", "invalid message format")
		return
	}

	switch msg.Cmd {
	case "register":
		c.handleRegister(msg)
		return
	case "login":
		c.handleLogin(msg)
		return
	case "resume":
		c.handleResume(msg)
		return
	}

	playerID := c.PlayerID()
	if playerID == 0 {
		c.sendError("unauthorized", "authenticate first")
		return
	}

	switch msg.Cmd {
	case "create":
		c.handleCreate(playerID, msg)
	case "join":
		c.handleJoin(playerID, msg)
	case "deal":
		c.handleDeal(playerID, msg)
	case "hit":
		c.handleAct(playerID, msg, blackjack.ActionHit)
	case "stand":
		c.handleAct(playerID, msg, blackjack.ActionStand)
	case "end":
		c.handleEnd(playerID, msg)
	case "snapshot":
		c.handleSnapshot(msg)
	case "hand":
		c.handleHand(playerID, msg)
	case "balance":
		c.handleBalance(playerID)
	case "replenish":
		c.handleReplenish(playerID)
	case "leaderboard":
		c.handleLeaderboard(msg)
	default:
		c.sendError("invalid_command", "unknown command "+msg.Cmd)
	}
}

func (c *Connection) handleRegister(msg clientMessage) {
	playerID, token, err := c.Gateway.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.sendError("auth_failed", err.Error())
		return
	}
	c.welcome(playerID, msg.Username, token)
}

func (c *Connection) handleLogin(msg clientMessage) {
	playerID, token, err := c.Gateway.auth.Login(msg.Username, msg.Password)
	if err != nil {
		c.sendError("auth_failed", "invalid username or password")
		return
	}
	c.welcome(playerID, msg.Username, token)
}

func (c *Connection) handleResume(msg clientMessage) {
	playerID, username, ok := c.Gateway.auth.ResolveSession(msg.Token)
	if !ok {
		c.sendError("auth_failed", "invalid session token")
		return
	}
	c.welcome(playerID, username, msg.Token)
}

func (c *Connection) welcome(playerID uint64, username, token string) {
	c.Gateway.bindPlayer(c, playerID, username)
	balance := c.Gateway.ledger.Balance(playerID)
	c.send(serverMessage{
		Type:     "welcome",
		PlayerID: playerID,
		Username: username,
		Token:    token,
		Balance:  &balance,
	})
}

func (c *Connection) handleCreate(playerID uint64, msg clientMessage) {
	s, err := c.Gateway.lobby.CreateSession(msg.TableKey, playerID, msg.Wager)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}
	balance := c.Gateway.ledger.Balance(playerID)
	c.send(serverMessage{
		Type:      "session_created",
		SessionID: s.ID(),
		TableKey:  s.TableKey(),
		HostID:    s.HostID(),
		Pot:       s.Pot(),
		Balance:   &balance,
	})
}

func (c *Connection) handleJoin(playerID uint64, msg clientMessage) {
	s, err := c.Gateway.lobby.Session(msg.TableKey)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}
	if err := s.Join(playerID, msg.Wager); err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}
	c.Gateway.broadcastToPlayers(s.ParticipantIDs(), serverMessage{
		Type:     "joined",
		PlayerID: playerID,
		TableKey: s.TableKey(),
		Pot:      s.Pot(),
	})
}

func (c *Connection) handleDeal(playerID uint64, msg clientMessage) {
	s, err := c.Gateway.lobby.Session(msg.TableKey)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}
	res, err := s.Deal(playerID)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}

	ids := s.ParticipantIDs()
	c.Gateway.broadcastToPlayers(ids, serverMessage{
		Type:         "dealt",
		TableKey:     s.TableKey(),
		DealerUpCard: cardString(res.DealerUpCard),
		DealerValue:  res.DealerUpValue,
	})
	// each participant additionally gets their own hand
	for _, id := range ids {
		hand, value, err := s.Hand(id)
		if err != nil {
			continue
		}
		c.Gateway.broadcastToPlayers([]uint64{id}, serverMessage{
			Type:      "hand",
			PlayerID:  id,
			TableKey:  s.TableKey(),
			Hand:      card.Strings(hand),
			HandValue: value,
		})
	}
}

func (c *Connection) handleAct(playerID uint64, msg clientMessage, action blackjack.ActionType) {
	s, err := c.Gateway.lobby.Session(msg.TableKey)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}
	res, err := s.Act(playerID, action)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}

	c.Gateway.broadcastToPlayers(s.ParticipantIDs(), serverMessage{
		Type:      "action",
		PlayerID:  res.ParticipantID,
		TableKey:  s.TableKey(),
		Action:    blackjack.ActionTypeDictionary[res.Action],
		Drawn:     cardString(res.Drawn),
		HandValue: res.HandValue,
		Status:    blackjack.StatusDictionary[res.Status],
	})

	if res.Resolution != nil {
		c.Gateway.finishSession(s, res.Resolution)
	}
}

func (c *Connection) handleEnd(playerID uint64, msg clientMessage) {
	s, err := c.Gateway.lobby.Session(msg.TableKey)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}
	res, err := s.ForceEnd(playerID)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}
	c.Gateway.finishSession(s, res)
}

func (c *Connection) handleSnapshot(msg clientMessage) {
	s, err := c.Gateway.lobby.Session(msg.TableKey)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}
	c.send(snapshotMessage(s.Snapshot()))
}

func (c *Connection) handleHand(playerID uint64, msg clientMessage) {
	s, err := c.Gateway.lobby.Session(msg.TableKey)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}
	hand, value, err := s.Hand(playerID)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}
	c.send(serverMessage{
		Type:      "hand",
		PlayerID:  playerID,
		TableKey:  s.TableKey(),
		Hand:      card.Strings(hand),
		HandValue: value,
	})
}

func (c *Connection) handleBalance(playerID uint64) {
	balance := c.Gateway.ledger.Balance(playerID)
	c.send(serverMessage{Type: "balance", PlayerID: playerID, Balance: &balance})
}

func (c *Connection) handleReplenish(playerID uint64) {
	balance, err := c.Gateway.ledger.Replenish(playerID)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}
	c.send(serverMessage{Type: "balance", PlayerID: playerID, Balance: &balance})
}

func (c *Connection) handleLeaderboard(msg clientMessage) {
	limit := msg.Limit
	if limit <= 0 || limit > 100 {
		limit = 15
	}
	entries := c.Gateway.ledger.Leaderboard(limit)
	views := make([]leaderboardView, 0, len(entries))
	for i, e := range entries {
		views = append(views, leaderboardView{Rank: i + 1, PlayerID: e.ID, Balance: e.Balance})
	}
	c.send(serverMessage{Type: "leaderboard", Leaderboard: views})
}

// finishSession removes the resolved session from the registry and
// announces the result to its participants.
func (g *Gateway) finishSession(s *blackjack.Session, res *blackjack.ResolutionResult) {
	ids := s.ParticipantIDs()
	g.lobby.Remove(res.TableKey, s)
	g.broadcastToPlayers(ids, resolutionMessage(res))
	log.Printf("[Gateway] session %s resolved at table %d", res.SessionID, res.TableKey)
}

// AnnounceResolution publishes a resolution produced outside a client
// command, such as the idle sweep.
func (g *Gateway) AnnounceResolution(res *blackjack.ResolutionResult) {
	ids := make([]uint64, 0, len(res.Results))
	for _, r := range res.Results {
		ids = append(ids, r.ID)
	}
	g.broadcastToPlayers(ids, resolutionMessage(res))
}
