package ntlm

// Version selects the response algorithms a Client computes and a Server
// verifies.
type Version int

const (
	// NTLM is the DES based LM / NTLMv1 challenge response.
	NTLM Version = iota
	// NTLM2 is NTLMv1 with the NTLM2 session response.
	NTLM2
	// NTLMv2 is the HMAC-MD5 based LMv2 / NTLMv2 response.
	NTLMv2
)

// DefaultVersion is used by NewClient when no version string is given.
const DefaultVersion = "LMv2/NTLMv2"

func (v Version) String() string {
	switch v {
	case NTLM:
		return "NTLM"
	case NTLM2:
		return "NTLM2"
	case NTLMv2:
		return "NTLMv2"
	}
	return "unknown"
}

type profile struct {
	version   Version
	writeLM   bool
	writeNTLM bool
}

var profiles = map[string]profile{
	"LM":          {version: NTLM, writeLM: true},
	"NTLM":        {version: NTLM, writeNTLM: true},
	"LM/NTLM":     {version: NTLM, writeLM: true, writeNTLM: true},
	"NTLM2":       {version: NTLM2, writeLM: true, writeNTLM: true},
	"LMv2":        {version: NTLMv2, writeLM: true},
	"NTLMv2":      {version: NTLMv2, writeNTLM: true},
	"LMv2/NTLMv2": {version: NTLMv2, writeLM: true, writeNTLM: true},
}

func lookupProfile(name string) (profile, error) {
	p, ok := profiles[name]
	if !ok {
		return profile{}, newError(BadVersion, "unknown version %q", name)
	}
	return p, nil
}

// ParseVersion maps a version string such as "LM/NTLM" or "NTLMv2" to its
// Version.
func ParseVersion(name string) (Version, error) {
	p, err := lookupProfile(name)
	if err != nil {
		return 0, err
	}
	return p.version, nil
}
