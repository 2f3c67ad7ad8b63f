package session

import (
	"dungeonsync.gg/internal/protocol"
)

// Roll coordination is a pure relay: the server never computes or validates
// the outcome, it only guarantees every viewer sees the initiator's numbers.

// startRoll opens a roll for the calling participant. A second start from
// the same participant supersedes the prior roll; there is no queue.
func (s *Session) startRoll(p Peer, args protocol.RollArgs) *opError {
	player, err := s.boundPlayer(p)
	if err != nil {
		return err
	}
	s.rolls[player.ID] = &rollState{phase: rollStarted, args: args}

	s.broadcast(protocol.DiceRollStartBroadcast{
		Type:     protocol.TypeDiceRollStart,
		PlayerID: player.ID,
		Args:     args,
	})
	s.journalRoll(player.ID, "started", args.DiceType, protocol.RollOutcome{})
	return nil
}

func (s *Session) resolveRoll(p Peer, outcome protocol.RollOutcome) *opError {
	player, err := s.boundPlayer(p)
	if err != nil {
		return err
	}
	roll, ok := s.rolls[player.ID]
	if !ok {
		return errNotFound("active roll for", player.ID)
	}
	roll.phase = rollResolved
	roll.outcome = outcome

	s.broadcast(protocol.DiceRollResultBroadcast{
		Type:        protocol.TypeDiceRollResult,
		PlayerID:    player.ID,
		RollOutcome: outcome,
	})
	s.journalRoll(player.ID, "resolved", roll.args.DiceType, outcome)
	return nil
}

func (s *Session) closeRoll(p Peer) *opError {
	player, err := s.boundPlayer(p)
	if err != nil {
		return err
	}
	roll, ok := s.rolls[player.ID]
	if !ok {
		return errNotFound("active roll for", player.ID)
	}
	delete(s.rolls, player.ID)

	s.broadcast(protocol.DiceRollCloseBroadcast{
		Type:     protocol.TypeDiceRollClose,
		PlayerID: player.ID,
	})
	s.journalRoll(player.ID, "closed", roll.args.DiceType, roll.outcome)
	return nil
}

func (s *Session) journalRoll(initiatorID, phase, diceType string, outcome protocol.RollOutcome) {
	if s.rollLogger == nil {
		return
	}
	entry := RollEntry{
		Time:              s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		InitiatorID:       initiatorID,
		Phase:             phase,
		DiceType:          diceType,
		Result:            outcome.Result,
		Success:           outcome.Success,
		IsCriticalSuccess: outcome.IsCriticalSuccess,
		IsCriticalFailure: outcome.IsCriticalFailure,
	}
	if err := s.rollLogger.WriteRoll(entry); err != nil {
		s.logf("roll journal: %v", err)
	}
}
