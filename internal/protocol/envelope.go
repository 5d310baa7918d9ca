package protocol

import "encoding/json"

// Message types exchanged over the signaling socket.
const (
	TypeJoin       = "join"
	TypeHello      = "hello"
	TypePeerJoined = "peer-joined"
	TypePeerLeft   = "peer-left"
	TypeRoster     = "roster"

	TypeOffer     = "offer"
	TypeAnswer    = "answer"
	TypeCandidate = "candidate"
	TypeBye       = "bye"
	TypeNeedOffer = "need-offer"
	TypeKeepalive = "keepalive"
)

// Peer roles. Informational only, the relay does not enforce them.
const (
	RoleSender   = "sender"
	RoleReceiver = "receiver"
)

var relayable = map[string]struct{}{
	TypeOffer:     {},
	TypeAnswer:    {},
	TypeCandidate: {},
	TypeBye:       {},
	TypeNeedOffer: {},
	TypeKeepalive: {},
}

// Relayable reports whether the type is forwarded opaquely between peers.
func Relayable(msgType string) bool {
	_, ok := relayable[msgType]
	return ok
}

// NormalizeRole maps anything that is not an explicit sender to receiver.
func NormalizeRole(role string) string {
	if role == RoleSender {
		return RoleSender
	}
	return RoleReceiver
}

// Envelope is a decoded signaling frame. Only the fields the relay reads are
// interpreted; everything else stays raw JSON so relayed payloads pass through
// byte-for-byte.
type Envelope map[string]json.RawMessage

// Decode parses a text frame into an Envelope.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return env, nil
}

func (e Envelope) Type() string { return e.str("type") }
func (e Envelope) Room() string { return e.str("room") }
func (e Envelope) To() string   { return e.str("to") }

func (e Envelope) str(key string) string {
	raw, ok := e[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// WithFrom re-encodes the envelope with the sender id stamped into "from",
// leaving all other fields untouched.
func (e Envelope) WithFrom(id string) ([]byte, error) {
	raw, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}
	e["from"] = raw
	return json.Marshal(e)
}

// PeerInfo is one roster entry.
type PeerInfo struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// Hello tells a freshly accepted connection its assigned id.
func Hello(id string) []byte {
	b, _ := json.Marshal(map[string]string{"type": TypeHello, "id": id})
	return b
}

// PeerJoined announces a new room member to the existing ones.
func PeerJoined(id, role string) []byte {
	b, _ := json.Marshal(map[string]string{"type": TypePeerJoined, "id": id, "role": role})
	return b
}

// PeerLeft announces a departed member to the remaining ones.
func PeerLeft(id string) []byte {
	b, _ := json.Marshal(map[string]string{"type": TypePeerLeft, "id": id})
	return b
}

// Roster is a point-in-time membership snapshot sent to every room member.
func Roster(peers []PeerInfo) []byte {
	if peers == nil {
		peers = []PeerInfo{}
	}
	b, _ := json.Marshal(map[string]any{"type": TypeRoster, "peers": peers})
	return b
}
