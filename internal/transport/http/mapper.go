package http

import (
	"encoding/json"

	"github.com/duelforge/duel-server/internal/core"
	"github.com/duelforge/duel-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeCreateRoom:
		return &core.Command{Kind: core.CommandCreateRoom}, nil, nil
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		return &core.Command{
			Kind:   core.CommandJoinRoom,
			RoomID: join.RoomID,
		}, nil, nil
	case proto.InboundTypeStartGame:
		var start proto.StartGameData
		if err := json.Unmarshal(inbound.Data, &start); err != nil {
			return nil, nil, err
		}
		if start.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		return &core.Command{
			Kind:   core.CommandStartGame,
			RoomID: start.RoomID,
		}, nil, nil
	case proto.InboundTypePlayerUpdate:
		var upd proto.PlayerUpdateData
		if err := json.Unmarshal(inbound.Data, &upd); err != nil {
			return nil, nil, err
		}
		if upd.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		return &core.Command{
			Kind:   core.CommandPlayerUpdate,
			RoomID: upd.RoomID,
			Update: core.PlayerUpdate{
				Position:       core.Vec3(upd.Position),
				Rotation:       core.Quat(upd.Rotation),
				WeaponPosition: core.Vec3(upd.WeaponPosition),
				WeaponRotation: core.Quat(upd.WeaponRotation),
				IsAttacking:    upd.IsAttacking,
				IsBlocking:     upd.IsBlocking,
			},
		}, nil, nil
	case proto.InboundTypePlayerHit:
		var hit proto.PlayerHitData
		if err := json.Unmarshal(inbound.Data, &hit); err != nil {
			return nil, nil, err
		}
		if hit.RoomID == "" || hit.TargetID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId and targetId are required"}, nil
		}
		// Damage amounts are trusted, but a negative value would heal
		// the target, so it is rejected as malformed.
		if hit.Damage < 0 {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "damage must be non-negative"}, nil
		}
		return &core.Command{
			Kind:     core.CommandPlayerHit,
			RoomID:   hit.RoomID,
			TargetID: hit.TargetID,
			Damage:   hit.Damage,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventConnected:
		return protoEvent(proto.EventConnected, proto.ConnectedData{
			PlayerID: event.PlayerID,
		})
	case core.EventRoomCreated:
		return protoEvent(proto.EventRoomCreated, proto.RoomCreatedData{
			RoomID:  event.RoomID,
			JoinURL: event.JoinURL,
		})
	case core.EventPlayerJoined:
		return protoEvent(proto.EventPlayerJoined, proto.PlayerJoinedData{
			RoomID:   event.RoomID,
			PlayerID: event.PlayerID,
			Players:  rosterToProto(event.Players),
		})
	case core.EventGameStarted:
		return protoEvent(proto.EventGameStarted, proto.GameStartedData{
			RoomID:    event.RoomID,
			StartTime: event.StartedAt.UnixMilli(),
			Players:   rosterToProto(event.Players),
		})
	case core.EventPlayerUpdated:
		return protoEvent(proto.EventPlayerUpdated, proto.PlayerUpdatedData{
			RoomID:         event.RoomID,
			PlayerID:       event.PlayerID,
			Position:       proto.Vec3(event.Update.Position),
			Rotation:       proto.Quat(event.Update.Rotation),
			WeaponPosition: proto.Vec3(event.Update.WeaponPosition),
			WeaponRotation: proto.Quat(event.Update.WeaponRotation),
			IsAttacking:    event.Update.IsAttacking,
			IsBlocking:     event.Update.IsBlocking,
		})
	case core.EventPlayerDamaged:
		return protoEvent(proto.EventPlayerDamaged, proto.PlayerDamagedData{
			RoomID:     event.RoomID,
			PlayerID:   event.PlayerID,
			Health:     event.Health,
			AttackerID: event.AttackerID,
		})
	case core.EventPlayerDefeated:
		return protoEvent(proto.EventPlayerDefeated, proto.PlayerDefeatedData{
			RoomID:   event.RoomID,
			PlayerID: event.PlayerID,
			WinnerID: event.AttackerID,
		})
	case core.EventPlayerLeft:
		return protoEvent(proto.EventPlayerLeft, proto.PlayerLeftData{
			RoomID:   event.RoomID,
			PlayerID: event.PlayerID,
		})
	case core.EventHostDisconnected:
		return protoEvent(proto.EventHostDisconnected, proto.HostDisconnectedData{
			RoomID: event.RoomID,
		})
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func protoEvent(name string, data any) proto.Outbound {
	return proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: name,
		Data:  data,
	}
}

func rosterToProto(players []core.PlayerRecord) []proto.PlayerState {
	roster := make([]proto.PlayerState, 0, len(players))
	for _, p := range players {
		roster = append(roster, proto.PlayerState{
			PlayerID:       p.ConnID,
			Position:       proto.Vec3(p.Position),
			Rotation:       proto.Quat(p.Rotation),
			WeaponPosition: proto.Vec3(p.WeaponPosition),
			WeaponRotation: proto.Quat(p.WeaponRotation),
			Health:         p.Health,
			IsAttacking:    p.IsAttacking,
			IsBlocking:     p.IsBlocking,
		})
	}
	return roster
}
