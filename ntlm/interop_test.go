package ntlm

import (
	"testing"

	"github.com/Azure/go-ntlmssp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteropAzureClient(t *testing.T) {
	ti := EncodeAVPairs([]AVPair{
		{ID: AvNbDomainName, Value: encodeUTF16("REALM")},
		{ID: AvNbComputerName, Value: encodeUTF16("SERVER")},
	})

	// domainNeeded makes go-ntlmssp send the challenge's target name as
	// the domain, the way its negotiator does after splitting DOMAIN\user.
	cases := []struct {
		name       string
		version    string
		targetInfo []byte
	}{
		{"lmv2", "LMv2", nil},
		{"ntlmv2 without target info", "NTLMv2", nil},
		{"ntlmv2 with target info", "NTLMv2", ti},
		{"accept all", "", ti},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			type3, err := ntlmssp.ProcessChallenge(challengeWithTargetInfo(t, tc.targetInfo), "dummy", testPassword, true)
			require.NoError(t, err)

			s, err := NewServer(tc.version, "REALM", newTestUsers())
			require.NoError(t, err)
			p, err := s.Verify(type3, testNonce)
			require.NoError(t, err)
			assert.Equal(t, "dummy", p.UserName)
			assert.Equal(t, "REALM", p.Domain)
		})
	}
}

func TestInteropAzureWrongPassword(t *testing.T) {
	type3, err := ntlmssp.ProcessChallenge(challengeWithTargetInfo(t, nil), "dummy", "wrong", true)
	require.NoError(t, err)

	s, err := NewServer("", "REALM", newTestUsers())
	require.NoError(t, err)
	_, err = s.Verify(type3, testNonce)
	assert.Equal(t, AuthFailed, KindOf(err))
}
