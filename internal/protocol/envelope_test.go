package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	env, err := Decode([]byte(`{"type":"offer","sdp":"v=0...","to":"peer-1"}`))
	require.NoError(t, err)
	assert.Equal(t, "offer", env.Type())
	assert.Equal(t, "peer-1", env.To())
	assert.Equal(t, "", env.Room())
}

func TestDecode_Malformed(t *testing.T) {
	for _, raw := range []string{"not json", `"just a string"`, `[1,2,3]`, `{"type":`} {
		_, err := Decode([]byte(raw))
		assert.Error(t, err, "input %q", raw)
	}
}

func TestDecode_NonStringFields(t *testing.T) {
	env, err := Decode([]byte(`{"type":123,"room":true}`))
	require.NoError(t, err)
	assert.Equal(t, "", env.Type())
	assert.Equal(t, "", env.Room())
}

func TestWithFrom_PreservesPayload(t *testing.T) {
	in := []byte(`{"type":"candidate","candidate":{"sdpMid":"0","candidate":"candidate:1 1 UDP ..."}}`)
	env, err := Decode(in)
	require.NoError(t, err)

	out, err := env.WithFrom("conn-42")
	require.NoError(t, err)

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &got))
	assert.JSONEq(t, `"conn-42"`, string(got["from"]))
	assert.JSONEq(t, `{"sdpMid":"0","candidate":"candidate:1 1 UDP ..."}`, string(got["candidate"]))
	assert.JSONEq(t, `"candidate"`, string(got["type"]))
}

func TestRelayable(t *testing.T) {
	for _, typ := range []string{TypeOffer, TypeAnswer, TypeCandidate, TypeBye, TypeNeedOffer, TypeKeepalive} {
		assert.True(t, Relayable(typ), typ)
	}
	for _, typ := range []string{TypeJoin, TypeHello, TypePeerJoined, TypePeerLeft, TypeRoster, "chat", ""} {
		assert.False(t, Relayable(typ), typ)
	}
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleSender, NormalizeRole("sender"))
	assert.Equal(t, RoleReceiver, NormalizeRole("receiver"))
	assert.Equal(t, RoleReceiver, NormalizeRole(""))
	assert.Equal(t, RoleReceiver, NormalizeRole("admin"))
}

func TestServerFrames(t *testing.T) {
	var hello map[string]string
	require.NoError(t, json.Unmarshal(Hello("c1"), &hello))
	assert.Equal(t, map[string]string{"type": "hello", "id": "c1"}, hello)

	var joined map[string]string
	require.NoError(t, json.Unmarshal(PeerJoined("c2", "sender"), &joined))
	assert.Equal(t, map[string]string{"type": "peer-joined", "id": "c2", "role": "sender"}, joined)

	var left map[string]string
	require.NoError(t, json.Unmarshal(PeerLeft("c2"), &left))
	assert.Equal(t, map[string]string{"type": "peer-left", "id": "c2"}, left)

	roster := Roster([]PeerInfo{{ID: "c1", Role: "sender"}, {ID: "c2", Role: "receiver"}})
	var rs struct {
		Type  string     `json:"type"`
		Peers []PeerInfo `json:"peers"`
	}
	require.NoError(t, json.Unmarshal(roster, &rs))
	assert.Equal(t, "roster", rs.Type)
	assert.Len(t, rs.Peers, 2)

	// empty roster still carries an array, not null
	assert.JSONEq(t, `{"type":"roster","peers":[]}`, string(Roster(nil)))
}
