package domain

type Profile struct {
	Name    string `json:"name,omitempty"`
	About   string `json:"about,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Identity signs every event. PrivateKey never leaves memory.
type Identity struct {
	PublicKey  PublicKey  `json:"publicKey"`
	PrivateKey PrivateKey `json:"-"`
	Profile    *Profile   `json:"profile,omitempty"`
}

func (i *Identity) CanSign() bool {
	return i != nil && i.PrivateKey != ""
}
