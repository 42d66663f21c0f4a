package watchparty

// Dispatcher demultiplexes server envelopes into typed handlers. The client
// installs its own handlers so every event mutates the room store before any
// user callback observes it.
type Dispatcher struct {
	onWelcome       func(WelcomeEvent)
	onRoomCreated   func(RoomCreatedEvent)
	onRoomJoined    func(RoomJoinedEvent)
	onUserJoined    func(UserEvent)
	onUserLeft      func(UserEvent)
	onNewHost       func(NewHostEvent)
	onVideoAction   func(VideoAction)
	onChangeEpisode func(ChangeEpisodeEvent)
	onChatMessage   func(ChatMessage)
	onRoomLeft      func()
	onError         func(error)
}

func (d *Dispatcher) SetOnWelcome(fn func(WelcomeEvent))             { d.onWelcome = fn }
func (d *Dispatcher) SetOnRoomCreated(fn func(RoomCreatedEvent))     { d.onRoomCreated = fn }
func (d *Dispatcher) SetOnRoomJoined(fn func(RoomJoinedEvent))       { d.onRoomJoined = fn }
func (d *Dispatcher) SetOnUserJoined(fn func(UserEvent))             { d.onUserJoined = fn }
func (d *Dispatcher) SetOnUserLeft(fn func(UserEvent))               { d.onUserLeft = fn }
func (d *Dispatcher) SetOnNewHost(fn func(NewHostEvent))             { d.onNewHost = fn }
func (d *Dispatcher) SetOnVideoAction(fn func(VideoAction))          { d.onVideoAction = fn }
func (d *Dispatcher) SetOnChangeEpisode(fn func(ChangeEpisodeEvent)) { d.onChangeEpisode = fn }
func (d *Dispatcher) SetOnChatMessage(fn func(ChatMessage))          { d.onChatMessage = fn }
func (d *Dispatcher) SetOnRoomLeft(fn func())                        { d.onRoomLeft = fn }
func (d *Dispatcher) SetOnError(fn func(error))                      { d.onError = fn }

func (d *Dispatcher) Dispatch(out Outbound) {
	if out.Type == outboundError && out.Error != nil {
		d.fireError(FromProtocolError(out.Error))
		return
	}
	switch out.Event {
	case eventWelcome:
		if d.onWelcome == nil {
			return
		}
		var ev WelcomeEvent
		if err := UnmarshalData(out.Data, &ev); err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to unmarshal welcome event", err))
			return
		}
		d.onWelcome(ev)
	case eventRoomCreated:
		if d.onRoomCreated == nil {
			return
		}
		var ev RoomCreatedEvent
		if err := UnmarshalData(out.Data, &ev); err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to unmarshal roomCreated event", err))
			return
		}
		d.onRoomCreated(ev)
	case eventRoomJoined:
		if d.onRoomJoined == nil {
			return
		}
		var ev RoomJoinedEvent
		if err := UnmarshalData(out.Data, &ev); err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to unmarshal roomJoined event", err))
			return
		}
		d.onRoomJoined(ev)
	case eventUserJoined:
		if d.onUserJoined == nil {
			return
		}
		var ev UserEvent
		if err := UnmarshalData(out.Data, &ev); err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to unmarshal userJoined event", err))
			return
		}
		d.onUserJoined(ev)
	case eventUserLeft:
		if d.onUserLeft == nil {
			return
		}
		var ev UserEvent
		if err := UnmarshalData(out.Data, &ev); err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to unmarshal userLeft event", err))
			return
		}
		d.onUserLeft(ev)
	case eventNewHost:
		if d.onNewHost == nil {
			return
		}
		var ev NewHostEvent
		if err := UnmarshalData(out.Data, &ev); err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to unmarshal newHost event", err))
			return
		}
		d.onNewHost(ev)
	case eventVideoAction:
		if d.onVideoAction == nil {
			return
		}
		var ev VideoAction
		if err := UnmarshalData(out.Data, &ev); err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to unmarshal videoAction event", err))
			return
		}
		d.onVideoAction(ev)
	case eventChangeEpisode:
		if d.onChangeEpisode == nil {
			return
		}
		var ev ChangeEpisodeEvent
		if err := UnmarshalData(out.Data, &ev); err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to unmarshal changeEpisode event", err))
			return
		}
		d.onChangeEpisode(ev)
	case eventChatMessage:
		if d.onChatMessage == nil {
			return
		}
		var ev ChatMessage
		if err := UnmarshalData(out.Data, &ev); err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to unmarshal chatMessage event", err))
			return
		}
		d.onChatMessage(ev)
	case eventRoomLeft:
		if d.onRoomLeft != nil {
			d.onRoomLeft()
		}
	}
}

func (d *Dispatcher) fireError(err error) {
	if d.onError != nil && err != nil {
		d.onError(err)
	}
}
