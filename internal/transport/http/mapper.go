package http

import (
	"encoding/json"

	"github.com/vovakirdan/roomrelay-server/internal/core"
	"github.com/vovakirdan/roomrelay-server/internal/proto"
)

// inboundToCommand maps a wire envelope to a core command. A malformed
// payload is returned as a proto error for the sender; a nil command with
// nil errors never happens.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeRegister:
		var reg proto.RegisterData
		if err := json.Unmarshal(inbound.Data, &reg); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:        core.CommandRegister,
			DisplayName: reg.DisplayName,
			RoleToken:   reg.RoleToken,
		}, nil, nil

	case proto.InboundTypeJoinRoom, proto.InboundTypeCreateRoom, proto.InboundTypeDeleteRoom:
		var room proto.RoomNameData
		if err := json.Unmarshal(inbound.Data, &room); err != nil {
			return nil, nil, err
		}
		if room.RoomName == "" {
			return nil, &proto.Error{Code: core.ErrCodeValidation, Msg: "roomName is required"}, nil
		}
		kind := core.CommandJoinRoom
		switch inbound.Type {
		case proto.InboundTypeCreateRoom:
			kind = core.CommandCreateRoom
		case proto.InboundTypeDeleteRoom:
			kind = core.CommandDeleteRoom
		}
		return &core.Command{Kind: kind, Room: room.RoomName}, nil, nil

	case proto.InboundTypeRenameRoom:
		var ren proto.RenameRoomData
		if err := json.Unmarshal(inbound.Data, &ren); err != nil {
			return nil, nil, err
		}
		if ren.OldName == "" || ren.NewName == "" {
			return nil, &proto.Error{Code: core.ErrCodeValidation, Msg: "oldName and newName are required"}, nil
		}
		return &core.Command{Kind: core.CommandRenameRoom, Room: ren.OldName, NewName: ren.NewName}, nil, nil

	case proto.InboundTypeTextMessage:
		var msg proto.TextMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		return &core.Command{Kind: core.CommandTextMessage, Text: msg.Content}, nil, nil

	case proto.InboundTypeOffer, proto.InboundTypeAnswer, proto.InboundTypeIceCandidate:
		var sig proto.SignalData
		if err := json.Unmarshal(inbound.Data, &sig); err != nil {
			return nil, nil, err
		}
		if sig.TargetSessionID == "" {
			return nil, &proto.Error{Code: core.ErrCodeValidation, Msg: "targetSessionId is required"}, nil
		}
		signal := &core.Signal{TargetID: sig.TargetSessionID}
		switch inbound.Type {
		case proto.InboundTypeOffer:
			signal.Kind = core.SignalOffer
			signal.Payload = sig.Offer
		case proto.InboundTypeAnswer:
			signal.Kind = core.SignalAnswer
			signal.Payload = sig.Answer
		case proto.InboundTypeIceCandidate:
			signal.Kind = core.SignalCandidate
			signal.Payload = sig.Candidate
		}
		return &core.Command{Kind: core.CommandSignal, Signal: signal}, nil, nil

	default:
		return nil, &proto.Error{Code: core.ErrCodeValidation, Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventInfo:
		return proto.Outbound{
			Type: proto.OutboundTypeInfo,
			Data: proto.InfoData{Message: event.Info},
		}
	case core.EventError:
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	case core.EventRegistered:
		return proto.Outbound{
			Type: proto.OutboundTypeRegistered,
			Data: proto.RegisteredData{
				SessionID:   event.Member.ID,
				DisplayName: event.Member.DisplayName,
				Role:        string(event.Role),
				Message:     event.Info,
			},
		}
	case core.EventRoomList:
		rooms := make([]proto.RoomSummary, 0, len(event.Rooms))
		for _, info := range event.Rooms {
			rooms = append(rooms, proto.RoomSummary{Name: info.Name, MemberCount: info.MemberCount})
		}
		return proto.Outbound{
			Type: proto.OutboundTypeRoomList,
			Data: proto.RoomListData{Rooms: rooms},
		}
	case core.EventJoinedRoom:
		members := make([]proto.Member, 0, len(event.Members))
		for _, m := range event.Members {
			members = append(members, proto.Member{ID: m.ID, DisplayName: m.DisplayName})
		}
		return proto.Outbound{
			Type: proto.OutboundTypeJoinedRoom,
			Data: proto.JoinedRoomData{RoomName: event.Room, Members: members},
		}
	case core.EventUserJoined:
		return proto.Outbound{
			Type: proto.OutboundTypeUserJoined,
			Data: proto.UserJoinedData{
				RoomName: event.Room,
				Member:   proto.Member{ID: event.Member.ID, DisplayName: event.Member.DisplayName},
			},
		}
	case core.EventUserLeft:
		return proto.Outbound{
			Type: proto.OutboundTypeUserLeft,
			Data: proto.UserLeftData{
				RoomName: event.Room,
				Member:   proto.Member{ID: event.Member.ID, DisplayName: event.Member.DisplayName},
			},
		}
	case core.EventTextMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeNewText,
			Data: proto.NewTextMessageData{
				DisplayName: event.Member.DisplayName,
				Content:     event.Text,
				Timestamp:   event.At.Unix(),
			},
		}
	case core.EventRoomRenamed:
		return proto.Outbound{
			Type: proto.OutboundTypeRoomRenamed,
			Data: proto.RoomRenamedData{
				OldName: event.Room,
				NewName: event.NewName,
				Message: event.Info,
			},
		}
	case core.EventSignal:
		data := proto.SignalRelayData{SenderSessionID: event.From}
		outType := proto.OutboundTypeOffer
		switch event.Signal.Kind {
		case core.SignalOffer:
			data.Offer = event.Signal.Payload
		case core.SignalAnswer:
			outType = proto.OutboundTypeAnswer
			data.Answer = event.Signal.Payload
		case core.SignalCandidate:
			outType = proto.OutboundTypeIceCandidate
			data.Candidate = event.Signal.Payload
		}
		return proto.Outbound{Type: outType, Data: data}
	default:
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: core.ErrCodeValidation, Msg: "unknown event"},
		}
	}
}
