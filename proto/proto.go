// Package proto holds the well-known numeric identifiers of the wire
// protocol: destination ids, per-object opcodes and events, and the
// protocol version. It plays the same role m-lab/tcp-info's tcp.State
// table plays for TCP states — a flat, closed namespace with a String()
// method for logging — except here there are several small closed spaces
// instead of one, one per object kind.
package proto

import "fmt"

// Version is the protocol version advertised in Hello.
const Version = 3

// Well-known destination ids.
const (
	DestCore   uint32 = 0
	DestClient uint32 = 1
)

// CoreMethod enumerates client→server core opcodes.
type CoreMethod uint32

// Core opcodes.
const (
	CoreMethodHello        CoreMethod = 1
	CoreMethodSync         CoreMethod = 2
	CoreMethodPong         CoreMethod = 3
	CoreMethodGetRegistry  CoreMethod = 5
	CoreMethodCreateObject CoreMethod = 6
)

var coreMethodNames = map[CoreMethod]string{
	CoreMethodHello:        "Hello",
	CoreMethodSync:         "Sync",
	CoreMethodPong:         "Pong",
	CoreMethodGetRegistry:  "GetRegistry",
	CoreMethodCreateObject: "CreateObject",
}

func (m CoreMethod) String() string {
	if name, ok := coreMethodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("CoreMethod(%d)", uint32(m))
}

// CoreEvent enumerates server→client core events.
type CoreEvent uint32

// Core events.
const (
	CoreEventInfo     CoreEvent = 0
	CoreEventDone     CoreEvent = 1
	CoreEventPing     CoreEvent = 2
	CoreEventError    CoreEvent = 3
	CoreEventRemoveID CoreEvent = 4
	CoreEventBoundID  CoreEvent = 5
	CoreEventAddMem   CoreEvent = 6
	CoreEventDestroy  CoreEvent = 7
)

var coreEventNames = map[CoreEvent]string{
	CoreEventInfo:     "Info",
	CoreEventDone:     "Done",
	CoreEventPing:     "Ping",
	CoreEventError:    "Error",
	CoreEventRemoveID: "RemoveId",
	CoreEventBoundID:  "BoundId",
	CoreEventAddMem:   "AddMem",
	CoreEventDestroy:  "Destroy",
}

func (e CoreEvent) String() string {
	if name, ok := coreEventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("CoreEvent(%d)", uint32(e))
}

// ClientMethod enumerates client→server client-object opcodes.
type ClientMethod uint32

// Client opcodes.
const (
	ClientMethodUpdateProperties ClientMethod = 2
)

func (m ClientMethod) String() string {
	if m == ClientMethodUpdateProperties {
		return "UpdateProperties"
	}
	return fmt.Sprintf("ClientMethod(%d)", uint32(m))
}

// ClientEvent enumerates server→client client-object events.
type ClientEvent uint32

// Client events.
const (
	ClientEventInfo  ClientEvent = 0
	ClientEventError ClientEvent = 1
)

func (e ClientEvent) String() string {
	switch e {
	case ClientEventInfo:
		return "Info"
	case ClientEventError:
		return "Error"
	default:
		return fmt.Sprintf("ClientEvent(%d)", uint32(e))
	}
}

// RegistryEvent enumerates registry object events.
type RegistryEvent uint32

// Registry events.
const (
	RegistryEventGlobal       RegistryEvent = 0
	RegistryEventGlobalRemove RegistryEvent = 1
)

func (e RegistryEvent) String() string {
	switch e {
	case RegistryEventGlobal:
		return "Global"
	case RegistryEventGlobalRemove:
		return "GlobalRemove"
	default:
		return fmt.Sprintf("RegistryEvent(%d)", uint32(e))
	}
}

// ClientNodeMethod enumerates client→server client-node opcodes.
type ClientNodeMethod uint32

// Client-node opcodes.
const (
	ClientNodeMethodGetNode    ClientNodeMethod = 1
	ClientNodeMethodUpdate     ClientNodeMethod = 2
	ClientNodeMethodPortUpdate ClientNodeMethod = 3
	ClientNodeMethodSetActive  ClientNodeMethod = 4
)

var clientNodeMethodNames = map[ClientNodeMethod]string{
	ClientNodeMethodGetNode:    "GetNode",
	ClientNodeMethodUpdate:     "Update",
	ClientNodeMethodPortUpdate: "PortUpdate",
	ClientNodeMethodSetActive:  "SetActive",
}

func (m ClientNodeMethod) String() string {
	if name, ok := clientNodeMethodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("ClientNodeMethod(%d)", uint32(m))
}

// ClientNodeEvent enumerates server→client client-node events.
type ClientNodeEvent uint32

// Client-node events.
const (
	ClientNodeEventTransport      ClientNodeEvent = 0
	ClientNodeEventSetParam       ClientNodeEvent = 1
	ClientNodeEventSetIO          ClientNodeEvent = 2
	ClientNodeEventCommand        ClientNodeEvent = 4
	ClientNodeEventPortSetParam   ClientNodeEvent = 7
	ClientNodeEventUseBuffers     ClientNodeEvent = 8
	ClientNodeEventPortSetIO      ClientNodeEvent = 9
	ClientNodeEventSetActivation  ClientNodeEvent = 10
	ClientNodeEventPortSetMixInfo ClientNodeEvent = 11
)

var clientNodeEventNames = map[ClientNodeEvent]string{
	ClientNodeEventTransport:      "Transport",
	ClientNodeEventSetParam:       "SetParam",
	ClientNodeEventSetIO:          "SetIo",
	ClientNodeEventCommand:        "Command",
	ClientNodeEventPortSetParam:   "PortSetParam",
	ClientNodeEventUseBuffers:     "UseBuffers",
	ClientNodeEventPortSetIO:      "PortSetIo",
	ClientNodeEventSetActivation:  "SetActivation",
	ClientNodeEventPortSetMixInfo: "PortSetMixInfo",
}

func (e ClientNodeEvent) String() string {
	if name, ok := clientNodeEventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("ClientNodeEvent(%d)", uint32(e))
}

// Well-known object property keys used by FORMAT-family objects, per the
// MEDIA_TYPE/MEDIA_SUB_TYPE/AUDIO_CHANNELS scenario in the codec's test
// properties.
const (
	KeyMediaType    uint32 = 1
	KeyMediaSubType uint32 = 2
	KeyAudioChannels uint32 = 8
)

// Well-known object types.
const (
	ObjectTypeFormat uint32 = 15
)

// Well-known MEDIA_TYPE / MEDIA_SUB_TYPE id values.
const (
	MediaTypeAudio   uint32 = 1
	MediaSubTypeDSP  uint32 = 2
)
